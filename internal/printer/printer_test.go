package printer_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lzy756/deepseekocr-cli/internal/model"
	"github.com/lzy756/deepseekocr-cli/internal/printer"
)

func TestMaskCredential(t *testing.T) {
	tests := map[string]struct {
		credential string
		expMasked  string
	}{
		"an empty credential should stay empty": {
			credential: "",
			expMasked:  "",
		},
		"a short credential should be fully masked": {
			credential: "sk-short",
			expMasked:  "********",
		},
		"a 15 character credential should still be fully masked": {
			credential: "123456789012345",
			expMasked:  "********",
		},
		"a 16 character credential should show both ends": {
			credential: "1234567890123456",
			expMasked:  "12345678...90123456",
		},
		"a long credential should show both ends": {
			credential: "sk-test-0123456789abcdefghij",
			expMasked:  "sk-test-...cdefghij",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expMasked, printer.MaskCredential(test.credential))
		})
	}
}

func TestTablePrinter_PrintTask(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	started := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	var b bytes.Buffer
	p := printer.NewTablePrinter(&b)

	err := p.PrintTask(model.Task{
		ID:          "task-1",
		Status:      model.TaskStatusProcessing,
		Progress:    0.42,
		InputFile:   "report.pdf",
		SubmittedAt: started,
		StartedAt:   &started,
	})
	require.NoError(err)

	out := b.String()
	assert.Contains(out, "task-1")
	assert.Contains(out, "processing")
	assert.Contains(out, "42%")
	assert.Contains(out, "report.pdf")
}

func TestTablePrinter_PrintHistory(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	var b bytes.Buffer
	p := printer.NewTablePrinter(&b)

	err := p.PrintHistory([]model.HistoryEntry{
		{TaskID: "task-1", InputFile: "a.pdf", Status: model.TaskStatusCompleted, SubmittedAt: time.Now().Add(-time.Hour), ResultPath: "/out/task-1"},
		{TaskID: "task-2", InputFile: "b.pdf", Status: model.TaskStatusPending, SubmittedAt: time.Now()},
	})
	require.NoError(err)

	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	require.Len(lines, 3)
	assert.Contains(lines[0], "TASK")
	assert.Contains(lines[1], "task-1")
	assert.Contains(lines[1], "/out/task-1")
	assert.Contains(lines[2], "task-2")
	// Pending entries have no result path yet.
	assert.Contains(lines[2], "-")
}

func TestTablePrinter_PrintHistoryEmpty(t *testing.T) {
	var b bytes.Buffer
	p := printer.NewTablePrinter(&b)

	require.NoError(t, p.PrintHistory(nil))
	assert.Empty(t, b.String())
}

func TestTablePrinter_PrintBatchSummary(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	var b bytes.Buffer
	p := printer.NewTablePrinter(&b)

	err := p.PrintBatchSummary(model.BatchSummary{
		RunID: "01RUN",
		Results: []model.BatchItemResult{
			{File: "a.png", Kind: model.FileKindImage, Success: true, OutputPath: "/out/a.md"},
			{File: "b.pdf", Kind: model.FileKindDocument, Error: "server rejected the file"},
		},
	})
	require.NoError(err)

	out := b.String()
	assert.Contains(out, "a.png")
	assert.Contains(out, "/out/a.md")
	assert.Contains(out, "server rejected the file")
	assert.Contains(out, "1 succeeded, 1 failed (run 01RUN)")
}

func TestTablePrinter_PrintConfigMasksKey(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	var b bytes.Buffer
	p := printer.NewTablePrinter(&b)

	err := p.PrintConfig(model.EffectiveConfig{
		APIURL:         "https://ocr.example.com",
		APIKey:         "sk-test-0123456789abcdefghij",
		RequestTimeout: 2 * time.Minute,
		Mode:           "markdown",
		Workers:        4,
	})
	require.NoError(err)

	out := b.String()
	assert.Contains(out, "sk-test-...cdefghij")
	assert.NotContains(out, "sk-test-0123456789abcdefghij")
}

func TestJSONPrinter_PrintTask(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	submitted := time.Date(2026, 8, 30, 10, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	var b bytes.Buffer
	p := printer.NewJSONPrinter(&b)

	err := p.PrintTask(model.Task{
		ID:          "task-1",
		Status:      model.TaskStatusCompleted,
		Progress:    1,
		SubmittedAt: submitted,
	})
	require.NoError(err)

	var got map[string]interface{}
	require.NoError(json.Unmarshal(b.Bytes(), &got))
	assert.Equal("task-1", got["id"])
	assert.Equal("completed", got["status"])
	assert.Equal(float64(1), got["progress"])
	// Timestamps are normalized to UTC.
	assert.Equal("2026-08-30T08:00:00Z", got["submitted_at"])
}

func TestJSONPrinter_PrintBatchSummary(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	var b bytes.Buffer
	p := printer.NewJSONPrinter(&b)

	err := p.PrintBatchSummary(model.BatchSummary{
		RunID:     "01RUN",
		OutputDir: "/out",
		Results: []model.BatchItemResult{
			{File: "a.png", Kind: model.FileKindImage, Success: true, OutputPath: "/out/a.md"},
			{File: "b.pdf", Kind: model.FileKindDocument, Error: "boom"},
		},
	})
	require.NoError(err)

	var got struct {
		RunID     string `json:"run_id"`
		Succeeded int    `json:"succeeded"`
		Failed    int    `json:"failed"`
		Results   []struct {
			File   string `json:"file"`
			Status string `json:"status"`
			Error  string `json:"error"`
		} `json:"results"`
	}
	require.NoError(json.Unmarshal(b.Bytes(), &got))
	assert.Equal("01RUN", got.RunID)
	assert.Equal(1, got.Succeeded)
	assert.Equal(1, got.Failed)
	require.Len(got.Results, 2)
	assert.Equal("ok", got.Results[0].Status)
	assert.Equal("failed", got.Results[1].Status)
	assert.Equal("boom", got.Results[1].Error)
}

func TestJSONPrinter_PrintConfigMasksKey(t *testing.T) {
	require := require.New(t)

	var b bytes.Buffer
	p := printer.NewJSONPrinter(&b)

	err := p.PrintConfig(model.EffectiveConfig{
		APIURL:         "https://ocr.example.com",
		APIKey:         "sk-test-0123456789abcdefghij",
		RequestTimeout: 2 * time.Minute,
		PollInterval:   2 * time.Second,
		PollTimeout:    10 * time.Minute,
	})
	require.NoError(err)

	var got map[string]interface{}
	require.NoError(json.Unmarshal(b.Bytes(), &got))
	require.Equal("sk-test-...cdefghij", got["api_key"])
	require.Equal("2m0s", got["timeout"])
}

func TestJSONPrinter_PrintHistoryEmpty(t *testing.T) {
	require := require.New(t)

	var b bytes.Buffer
	p := printer.NewJSONPrinter(&b)

	require.NoError(p.PrintHistory(nil))
	require.Equal("[]", strings.TrimSpace(b.String()))
}
