package model

import "time"

// HistoryEntry is the local, durable record of a submitted task. The history
// store is a best-effort cache for later inspection, not a source of truth:
// the server's task state always wins.
type HistoryEntry struct {
	TaskID      string     `json:"task_id"`
	InputFile   string     `json:"input_file"`
	SubmittedAt time.Time  `json:"submitted_at"`
	LastChecked time.Time  `json:"last_checked"`
	Status      TaskStatus `json:"status"`
	Error       string     `json:"error,omitempty"`
	ResultPath  string     `json:"result_path,omitempty"`
}
