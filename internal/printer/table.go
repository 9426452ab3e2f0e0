package printer

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/lzy756/deepseekocr-cli/internal/model"
)

// TablePrinter prints OCR task information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintTask prints a detailed task snapshot.
func (t *TablePrinter) PrintTask(task model.Task) error {
	fmt.Fprintf(t.writer, "Task:       %s\n", task.ID)
	fmt.Fprintf(t.writer, "Status:     %s\n", task.Status)
	fmt.Fprintf(t.writer, "Progress:   %.0f%%\n", task.Progress*100)
	if task.InputFile != "" {
		fmt.Fprintf(t.writer, "Input:      %s\n", task.InputFile)
	}
	if !task.SubmittedAt.IsZero() {
		fmt.Fprintf(t.writer, "Submitted:  %s\n", FormatTimestamp(task.SubmittedAt))
	}
	if task.StartedAt != nil {
		fmt.Fprintf(t.writer, "Started:    %s\n", FormatTimestamp(*task.StartedAt))
	}
	if task.CompletedAt != nil {
		fmt.Fprintf(t.writer, "Completed:  %s\n", FormatTimestamp(*task.CompletedAt))
	}
	if task.ErrorDetail != "" {
		fmt.Fprintf(t.writer, "Error:      %s\n", task.ErrorDetail)
	}
	return nil
}

// PrintHistory prints history entries in a table format.
func (t *TablePrinter) PrintHistory(entries []model.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "TASK\tFILE\tSTATUS\tSUBMITTED\tRESULT")
	for _, e := range entries {
		result := e.ResultPath
		if result == "" {
			result = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.TaskID, e.InputFile, e.Status, TimeAgo(e.SubmittedAt), result)
	}
	return nil
}

// PrintBatchSummary prints per-file batch outcomes and totals.
func (t *TablePrinter) PrintBatchSummary(summary model.BatchSummary) error {
	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "FILE\tKIND\tRESULT\tOUTPUT")
	for _, r := range summary.Results {
		if r.Success {
			fmt.Fprintf(tw, "%s\t%s\tok\t%s\n", r.File, r.Kind, r.OutputPath)
		} else {
			fmt.Fprintf(tw, "%s\t%s\tfailed\t%s\n", r.File, r.Kind, r.Error)
		}
	}
	tw.Flush()

	fmt.Fprintf(t.writer, "\n%d succeeded, %d failed (run %s)\n", summary.Succeeded(), summary.Failed(), summary.RunID)
	return nil
}

// PrintModelInfo prints the remote model information.
func (t *TablePrinter) PrintModelInfo(info model.ModelInfo) error {
	fmt.Fprintf(t.writer, "Model:        %s\n", info.Name)
	fmt.Fprintf(t.writer, "Version:      %s\n", info.Version)
	fmt.Fprintf(t.writer, "Device:       %s\n", info.Device)
	fmt.Fprintf(t.writer, "Max file:     %d MB\n", info.MaxFileMB)
	if len(info.Resolutions) > 0 {
		fmt.Fprintf(t.writer, "Resolutions:  %v\n", info.Resolutions)
	}
	return nil
}

// PrintHealth prints the server health report.
func (t *TablePrinter) PrintHealth(health model.HealthStatus) error {
	fmt.Fprintf(t.writer, "Status:        %s\n", health.Status)
	fmt.Fprintf(t.writer, "Model loaded:  %t\n", health.ModelLoaded)
	return nil
}

// PrintConfig prints the effective configuration with the credential masked.
func (t *TablePrinter) PrintConfig(cfg model.EffectiveConfig) error {
	fmt.Fprintf(t.writer, "API URL:        %s\n", cfg.APIURL)
	fmt.Fprintf(t.writer, "API key:        %s\n", MaskCredential(cfg.APIKey))
	fmt.Fprintf(t.writer, "Timeout:        %s\n", cfg.RequestTimeout)
	fmt.Fprintf(t.writer, "Mode:           %s\n", cfg.Mode)
	fmt.Fprintf(t.writer, "Resolution:     %s\n", cfg.Resolution)
	fmt.Fprintf(t.writer, "DPI:            %d\n", cfg.DPI)
	fmt.Fprintf(t.writer, "Max pages:      %d\n", cfg.MaxPages)
	fmt.Fprintf(t.writer, "Workers:        %d\n", cfg.Workers)
	fmt.Fprintf(t.writer, "Poll interval:  %s\n", cfg.PollInterval)
	fmt.Fprintf(t.writer, "Poll timeout:   %s\n", cfg.PollTimeout)
	return nil
}

// PrintMessage prints a simple message.
func (t *TablePrinter) PrintMessage(msg string) error {
	_, err := fmt.Fprintln(t.writer, msg)
	return err
}
