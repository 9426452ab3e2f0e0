package model

// FileKind classifies a batch input file.
type FileKind string

const (
	FileKindImage    FileKind = "image"
	FileKindDocument FileKind = "document"
)

// BatchItemResult is the outcome of one file within a batch run. Exactly one
// of OutputPath and Error is populated, matching Success.
type BatchItemResult struct {
	File       string
	Kind       FileKind
	Success    bool
	OutputPath string
	Error      string
}

// BatchSummary aggregates the per-file outcomes of one batch run.
type BatchSummary struct {
	RunID     string
	OutputDir string
	Results   []BatchItemResult
}

// Succeeded returns how many items completed successfully.
func (s BatchSummary) Succeeded() int {
	n := 0
	for _, r := range s.Results {
		if r.Success {
			n++
		}
	}
	return n
}

// Failed returns how many items failed.
func (s BatchSummary) Failed() int {
	return len(s.Results) - s.Succeeded()
}
