package batch

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"

	"github.com/lzy756/deepseekocr-cli/internal/log"
	"github.com/lzy756/deepseekocr-cli/internal/model"
)

// ProcessFunc processes one input file and returns the output artifact path.
// Implementations dispatch on the file kind (image vs document).
type ProcessFunc func(ctx context.Context, file string, kind model.FileKind) (outputPath string, err error)

// ProgressFunc receives per-file updates keyed by the file's input index.
type ProgressFunc func(index int, result model.BatchItemResult)

// Input is one pre-classified batch input file.
type Input struct {
	File string
	Kind model.FileKind
}

// RunnerConfig is the configuration for the batch runner.
type RunnerConfig struct {
	// Workers bounds how many files are processed concurrently.
	Workers int
	// OutputDir receives per-file artifacts and the run summary document.
	OutputDir string
	Logger    log.Logger
}

func (c *RunnerConfig) defaults() error {
	if c.Workers <= 0 {
		return fmt.Errorf("worker count must be positive")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "batch.Runner"})
	return nil
}

// Runner applies a single-file operation across a list of files with a
// bounded worker pool. Files run in consecutive chunks of up to Workers
// members; chunk members run in parallel, chunks run one after another.
type Runner struct {
	workers   int
	outputDir string
	logger    log.Logger
}

// NewRunner creates a new batch runner.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Runner{
		workers:   cfg.Workers,
		outputDir: cfg.OutputDir,
		logger:    cfg.Logger,
	}, nil
}

// Run processes every input file and returns one result per input, in input
// order regardless of completion order. A single file's failure is converted
// into a failed result entry and never aborts sibling or later work; Run
// itself only fails if the output directory cannot be set up before any file
// is processed.
//
// The summary document is rewritten after every chunk so an interrupt loses
// at most one chunk of results.
func (r *Runner) Run(ctx context.Context, inputs []Input, process ProcessFunc, onProgress ProgressFunc) (*model.BatchSummary, error) {
	if err := os.MkdirAll(r.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("could not create output directory: %w", err)
	}

	summary := &model.BatchSummary{
		RunID:     newRunID(),
		OutputDir: r.outputDir,
		Results:   make([]model.BatchItemResult, len(inputs)),
	}

	r.logger.Infof("batch run %s: %d files, %d workers", summary.RunID, len(inputs), r.workers)

	for chunkStart := 0; chunkStart < len(inputs); chunkStart += r.workers {
		chunkEnd := chunkStart + r.workers
		if chunkEnd > len(inputs) {
			chunkEnd = len(inputs)
		}

		var wg sync.WaitGroup
		for i := chunkStart; i < chunkEnd; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				// Each worker writes into its pre-assigned slot, preserving
				// input order.
				summary.Results[idx] = r.processOne(ctx, inputs[idx], process)
				if onProgress != nil {
					onProgress(idx, summary.Results[idx])
				}
			}(i)
		}
		wg.Wait()

		if err := r.flushSummary(summary, chunkEnd); err != nil {
			r.logger.Warningf("could not flush batch summary: %s", err)
		}
	}

	return summary, nil
}

func (r *Runner) processOne(ctx context.Context, in Input, process ProcessFunc) (result model.BatchItemResult) {
	result = model.BatchItemResult{File: in.File, Kind: in.Kind}

	defer func() {
		if rec := recover(); rec != nil {
			result.Success = false
			result.OutputPath = ""
			result.Error = fmt.Sprintf("panic while processing: %v", rec)
		}
	}()

	out, err := process(ctx, in.File, in.Kind)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.OutputPath = out
	return result
}

// summaryDoc is the on-disk batch summary shape.
type summaryDoc struct {
	RunID   string           `yaml:"run_id"`
	Results []summaryItemDoc `yaml:"results"`
}

type summaryItemDoc struct {
	File    string `yaml:"file"`
	Kind    string `yaml:"kind"`
	Success bool   `yaml:"success"`
	Output  string `yaml:"output,omitempty"`
	Error   string `yaml:"error,omitempty"`
}

// SummaryPath returns the summary document path for a run.
func (r *Runner) SummaryPath(runID string) string {
	return filepath.Join(r.outputDir, fmt.Sprintf("batch-%s.yaml", runID))
}

func (r *Runner) flushSummary(summary *model.BatchSummary, upto int) error {
	doc := summaryDoc{RunID: summary.RunID}
	for _, res := range summary.Results[:upto] {
		doc.Results = append(doc.Results, summaryItemDoc{
			File:    res.File,
			Kind:    string(res.Kind),
			Success: res.Success,
			Output:  res.OutputPath,
			Error:   res.Error,
		})
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("could not marshal summary: %w", err)
	}

	if err := os.WriteFile(r.SummaryPath(summary.RunID), data, 0644); err != nil {
		return fmt.Errorf("could not write summary: %w", err)
	}
	return nil
}

func newRunID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
