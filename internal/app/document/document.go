package document

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
	"github.com/lzy756/deepseekocr-cli/internal/validate"
)

// SyncPageThreshold is the page-count estimate at or under which a document
// is submitted synchronously. The estimate comes from the caller, not the
// server, so the heuristic may occasionally pick the slower-but-correct
// path.
const SyncPageThreshold = 10

// Poller drives an asynchronous task to a terminal state.
type Poller interface {
	Wait(ctx context.Context, taskID string, cfg task.WaitConfig, onProgress task.ProgressFunc) (*model.Task, error)
}

// ServiceConfig is the configuration for the document OCR service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Document"})
	return nil
}

// Service runs OCR on documents, synchronously for small ones and through
// the asynchronous task lifecycle for the rest.
type Service struct {
	api       client.API
	poller    Poller
	hist      history.Store
	outputDir string
	logger    log.Logger
	extract   func(archivePath, destDir string) (string, error)
}

// NewService creates a new document OCR service.
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

// Request represents the document OCR request parameters.
type Request struct {
	File   string
	Params model.ProcessParams

	// ForceAsync skips the page-count heuristic and always goes async,
	// ForceSync does the opposite (batch runs use it).
	ForceAsync bool
	ForceSync  bool

	// Wait tunes the polling schedule for the async path.
	Wait task.WaitConfig
	// OnProgress receives task snapshots while waiting.
	OnProgress task.ProgressFunc
}

// Result is the outcome of one document OCR run.
type Result struct {
	// Async tells which path was taken.
	Async bool
	// TaskID is set on the async path.
	TaskID string
	// OutputPath is the text artifact (sync) or extracted result directory
	// (async).
	OutputPath string
}

// Run validates the document and routes it through the sync or async path.
//
// The async path records the task in history, polls it to a terminal state,
// downloads the ZIP result and extracts it. A wait timeout leaves the
// server-side task running; the task ID stays in history for a later
// "task result" call.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if err := validate.File(req.File, model.FileKindDocument); err != nil {
		return nil, err
	}
	if err := validate.Params(req.Params); err != nil {
		return nil, err
	}

	if s.useSyncPath(req) {
		return s.runSync(ctx, req)
	}
	return s.runAsync(ctx, req)
}

func (s *Service) useSyncPath(req Request) bool {
	if req.ForceSync {
		return true
	}
	if req.ForceAsync {
		return false
	}
	return req.Params.MaxPages > 0 && req.Params.MaxPages <= SyncPageThreshold
}

func (s *Service) runSync(ctx context.Context, req Request) (*Result, error) {
	s.logger.Debugf("submitting document %s synchronously", req.File)

	res, err := s.api.SubmitPDF(ctx, req.File, req.Params)
	if err != nil {
		return nil, err
	}

	outPath := conventions.ArtifactPath(s.outputDir, req.File, req.Params.Mode)
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("could not create output directory: %w", err)
	}
	if err := os.WriteFile(outPath, []byte(res.Text), 0644); err != nil {
		return nil, fmt.Errorf("could not write artifact: %w", err)
	}

	s.logger.Infof("wrote %s (%d pages)", outPath, res.Pages)
	return &Result{OutputPath: outPath}, nil
}

func (s *Service) runAsync(ctx context.Context, req Request) (*Result, error) {
	s.logger.Debugf("submitting document %s asynchronously", req.File)

	taskID, err := s.api.SubmitPDFAsync(ctx, req.File, req.Params)
	if err != nil {
		return nil, err
	}

	if err := s.hist.Record(ctx, taskID, req.File); err != nil {
		// History is a best-effort cache, a write failure shouldn't lose
		// the submission.
		s.logger.Warningf("could not record task %s in history: %s", taskID, err)
	}

	s.logger.Infof("task %s submitted, waiting", taskID)

	final, err := s.poller.Wait(ctx, taskID, req.Wait, req.OnProgress)
	if err != nil {
		s.noteFailure(ctx, taskID, err)
		return nil, err
	}

	s.updateHistory(ctx, taskID, final.Status, "")

	resultDir, err := s.fetchResult(ctx, taskID)
	if err != nil {
		return nil, err
	}

	return &Result{Async: true, TaskID: taskID, OutputPath: resultDir}, nil
}

func (s *Service) fetchResult(ctx context.Context, taskID string) (string, error) {
	archivePath := conventions.TaskArchivePath(s.outputDir, taskID)
	if err := s.api.DownloadResult(ctx, taskID, archivePath); err != nil {
		return "", err
	}
	defer os.Remove(archivePath)

	resultDir, err := s.extract(archivePath, conventions.TaskResultDir(s.outputDir, taskID))
	if err != nil {
		return "", fmt.Errorf("could not extract result of task %s: %w", taskID, err)
	}

	if err := s.hist.SetResultPath(ctx, taskID, resultDir); err != nil {
		s.logger.Warningf("could not record result path for task %s: %s", taskID, err)
	}

	s.logger.Infof("extracted result of task %s into %s", taskID, resultDir)
	return resultDir, nil
}

func (s *Service) noteFailure(ctx context.Context, taskID string, err error) {
	// Only a server-reported failure is terminal; timeouts and local
	// cancellation leave the task running server-side.
	if errors.Is(err, model.ErrTaskFailed) {
		s.updateHistory(ctx, taskID, model.TaskStatusFailed, err.Error())
	}
}

func (s *Service) updateHistory(ctx context.Context, taskID string, status model.TaskStatus, detail string) {
	if err := s.hist.UpdateStatus(ctx, taskID, status, detail); err != nil {
		s.logger.Warningf("could not update history for task %s: %s", taskID, err)
	}
}
