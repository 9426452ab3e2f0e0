package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/lzy756/deepseekocr-cli/internal/model"
)

// JSONPrinter prints OCR task information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// taskOutput represents the full task snapshot output.
type taskOutput struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	Progress    float64    `json:"progress"`
	InputFile   string     `json:"input_file,omitempty"`
	SubmittedAt time.Time  `json:"submitted_at"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	Error       string     `json:"error,omitempty"`
}

// historyItem represents one history entry in the list output.
type historyItem struct {
	TaskID      string    `json:"task_id"`
	InputFile   string    `json:"input_file"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
	LastChecked time.Time `json:"last_checked"`
	ResultPath  string    `json:"result_path,omitempty"`
}

// batchOutput represents a batch run summary.
type batchOutput struct {
	RunID     string            `json:"run_id"`
	OutputDir string            `json:"output_dir"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Results   []batchItemOutput `json:"results"`
}

type batchItemOutput struct {
	File   string `json:"file"`
	Kind   string `json:"kind"`
	Status string `json:"status"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// configOutput represents the effective configuration with the credential
// masked.
type configOutput struct {
	APIURL       string `json:"api_url"`
	APIKey       string `json:"api_key"`
	Timeout      string `json:"timeout"`
	Mode         string `json:"mode"`
	Resolution   string `json:"resolution"`
	DPI          int    `json:"dpi"`
	MaxPages     int    `json:"max_pages"`
	Workers      int    `json:"workers"`
	PollInterval string `json:"poll_interval"`
	PollTimeout  string `json:"poll_timeout"`
}

type modelInfoOutput struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Device      string   `json:"device"`
	MaxFileMB   int      `json:"max_file_mb"`
	Resolutions []string `json:"resolutions,omitempty"`
}

type healthOutput struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintTask prints a task snapshot in JSON format.
func (j *JSONPrinter) PrintTask(task model.Task) error {
	output := taskOutput{
		ID:          task.ID,
		Status:      string(task.Status),
		Progress:    task.Progress,
		InputFile:   task.InputFile,
		SubmittedAt: task.SubmittedAt.UTC(),
		Error:       task.ErrorDetail,
	}

	if task.StartedAt != nil {
		utcTime := task.StartedAt.UTC()
		output.StartedAt = &utcTime
	}
	if task.CompletedAt != nil {
		utcTime := task.CompletedAt.UTC()
		output.CompletedAt = &utcTime
	}

	return j.encode(output)
}

// PrintHistory prints history entries in JSON format.
func (j *JSONPrinter) PrintHistory(entries []model.HistoryEntry) error {
	items := make([]historyItem, len(entries))
	for i, e := range entries {
		items[i] = historyItem{
			TaskID:      e.TaskID,
			InputFile:   e.InputFile,
			Status:      string(e.Status),
			SubmittedAt: e.SubmittedAt.UTC(),
			LastChecked: e.LastChecked.UTC(),
			ResultPath:  e.ResultPath,
		}
	}
	return j.encode(items)
}

// PrintBatchSummary prints a batch run summary in JSON format.
func (j *JSONPrinter) PrintBatchSummary(summary model.BatchSummary) error {
	output := batchOutput{
		RunID:     summary.RunID,
		OutputDir: summary.OutputDir,
		Succeeded: summary.Succeeded(),
		Failed:    summary.Failed(),
		Results:   make([]batchItemOutput, len(summary.Results)),
	}
	for i, r := range summary.Results {
		item := batchItemOutput{File: r.File, Kind: string(r.Kind)}
		if r.Success {
			item.Status = "ok"
			item.Output = r.OutputPath
		} else {
			item.Status = "failed"
			item.Error = r.Error
		}
		output.Results[i] = item
	}
	return j.encode(output)
}

// PrintModelInfo prints the remote model information in JSON format.
func (j *JSONPrinter) PrintModelInfo(info model.ModelInfo) error {
	return j.encode(modelInfoOutput{
		Name:        info.Name,
		Version:     info.Version,
		Device:      info.Device,
		MaxFileMB:   info.MaxFileMB,
		Resolutions: info.Resolutions,
	})
}

// PrintHealth prints the server health report in JSON format.
func (j *JSONPrinter) PrintHealth(health model.HealthStatus) error {
	return j.encode(healthOutput{Status: health.Status, ModelLoaded: health.ModelLoaded})
}

// PrintConfig prints the effective configuration in JSON format with the
// credential masked.
func (j *JSONPrinter) PrintConfig(cfg model.EffectiveConfig) error {
	return j.encode(configOutput{
		APIURL:       cfg.APIURL,
		APIKey:       MaskCredential(cfg.APIKey),
		Timeout:      cfg.RequestTimeout.String(),
		Mode:         cfg.Mode,
		Resolution:   cfg.Resolution,
		DPI:          cfg.DPI,
		MaxPages:     cfg.MaxPages,
		Workers:      cfg.Workers,
		PollInterval: cfg.PollInterval.String(),
		PollTimeout:  cfg.PollTimeout.String(),
	})
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v interface{}) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
