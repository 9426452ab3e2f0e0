package taskresult

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/lzy756/deepseekocr-cli/internal/archive"
	"github.com/lzy756/deepseekocr-cli/internal/client"
	"github.com/lzy756/deepseekocr-cli/internal/conventions"
	"github.com/lzy756/deepseekocr-cli/internal/history"
	"github.com/lzy756/deepseekocr-cli/internal/log"
	"github.com/lzy756/deepseekocr-cli/internal/model"
	"github.com/lzy756/deepseekocr-cli/internal/task"
)

// Poller drives an asynchronous task to a terminal state.
type Poller interface {
	Wait(ctx context.Context, taskID string, cfg task.WaitConfig, onProgress task.ProgressFunc) (*model.Task, error)
}

// ServiceConfig is the configuration for the task result service.
type ServiceConfig struct {
	API       client.API
	Poller    Poller
	History   history.Store
	OutputDir string
	Logger    log.Logger

	// Extract unpacks a downloaded ZIP result, archive.ExtractZip by
	// default.
	Extract func(archivePath, destDir string) (string, error)
}

func (c *ServiceConfig) defaults() error {
	if c.API == nil {
		return fmt.Errorf("api client is required")
	}
	if c.Poller == nil {
		return fmt.Errorf("poller is required")
	}
	if c.History == nil {
		return fmt.Errorf("history store is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	if c.Extract == nil {
		c.Extract = archive.ExtractZip
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.TaskResult"})
	return nil
}

// Service fetches the result of a previously submitted task, waiting for it
// to finish first if needed.
type Service struct {
	api       client.API
	poller    Poller
	hist      history.Store
	outputDir string
	logger    log.Logger
	extract   func(archivePath, destDir string) (string, error)
}

// NewService creates a new task result service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Service{
		api:       cfg.API,
		poller:    cfg.Poller,
		hist:      cfg.History,
		outputDir: cfg.OutputDir,
		logger:    cfg.Logger,
		extract:   cfg.Extract,
	}, nil
}

// Request represents the result request parameters.
type Request struct {
	TaskID string
	// Wait tunes the polling schedule if the task is still running.
	Wait task.WaitConfig
	// OnProgress receives task snapshots while waiting.
	OnProgress task.ProgressFunc
}

// Result is where the task result was extracted.
type Result struct {
	TaskID    string
	ResultDir string
}

// Run waits for the task to reach a terminal state (a completed task
// returns immediately on the first query), downloads the ZIP result and
// extracts it into the output directory.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if req.TaskID == "" {
		return nil, fmt.Errorf("task id is required: %w", model.ErrValidation)
	}

	final, err := s.poller.Wait(ctx, req.TaskID, req.Wait, req.OnProgress)
	if err != nil {
		if errors.Is(err, model.ErrTaskFailed) {
			s.updateHistory(ctx, req.TaskID, model.TaskStatusFailed, err.Error())
		}
		return nil, err
	}

	s.updateHistory(ctx, req.TaskID, final.Status, "")

	archivePath := conventions.TaskArchivePath(s.outputDir, req.TaskID)
	if err := s.api.DownloadResult(ctx, req.TaskID, archivePath); err != nil {
		return nil, err
	}
	defer os.Remove(archivePath)

	resultDir, err := s.extract(archivePath, conventions.TaskResultDir(s.outputDir, req.TaskID))
	if err != nil {
		return nil, fmt.Errorf("could not extract result of task %s: %w", req.TaskID, err)
	}

	if err := s.hist.SetResultPath(ctx, req.TaskID, resultDir); err != nil {
		s.logger.Warningf("could not record result path for task %s: %s", req.TaskID, err)
	}

	s.logger.Infof("extracted result of task %s into %s", req.TaskID, resultDir)
	return &Result{TaskID: req.TaskID, ResultDir: resultDir}, nil
}

func (s *Service) updateHistory(ctx context.Context, taskID string, status model.TaskStatus, detail string) {
	if err := s.hist.UpdateStatus(ctx, taskID, status, detail); err != nil {
		s.logger.Warningf("could not update history for task %s: %s", taskID, err)
	}
}
