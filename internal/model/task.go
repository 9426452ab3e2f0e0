package model

import (
	"time"
)

// TaskStatus represents the state of a server-side OCR task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// IsTerminal returns true if the status admits no further transitions.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// ProcessParams are the OCR processing parameters attached to a submission.
type ProcessParams struct {
	// Mode is the output mode (e.g. "markdown", "text", "layout").
	Mode string
	// Resolution is the model resolution preset (tiny, small, base, large, gundam).
	Resolution string
	// Prompt is an optional custom prompt overriding the mode's default.
	Prompt string
	// DPI is the rasterization density for documents (0 means server default).
	DPI int
	// MaxPages caps how many document pages are processed (0 means server default).
	MaxPages int
}

// Task represents one asynchronous server-side OCR job.
type Task struct {
	ID     string
	Status TaskStatus
	// Progress is a completion fraction in [0, 1].
	Progress    float64
	InputFile   string
	Params      ProcessParams
	SubmittedAt time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	// ErrorDetail is set if and only if Status is failed.
	ErrorDetail string
}

// ModelInfo describes the OCR model the remote server runs.
type ModelInfo struct {
	Name        string
	Version     string
	Device      string
	MaxFileMB   int
	Resolutions []string
}
