package model

// HealthStatus is the remote server's health report.
type HealthStatus struct {
	Status      string
	ModelLoaded bool
}

// OCRResult is the synchronous OCR response for one image or small document.
type OCRResult struct {
	Text       string
	Pages      int
	DurationMS int64
}
