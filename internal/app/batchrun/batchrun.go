package batchrun

import (
	"context"
	"fmt"

	"github.com/lzy756/deepseekocr-cli/internal/app/document"
	"github.com/lzy756/deepseekocr-cli/internal/app/ocr"
	"github.com/lzy756/deepseekocr-cli/internal/batch"
	"github.com/lzy756/deepseekocr-cli/internal/log"
	"github.com/lzy756/deepseekocr-cli/internal/model"
	"github.com/lzy756/deepseekocr-cli/internal/validate"
)

// ImageProcessor runs synchronous OCR on one image.
type ImageProcessor interface {
	Run(ctx context.Context, req ocr.Request) (*ocr.Result, error)
}

// DocumentProcessor runs OCR on one document.
type DocumentProcessor interface {
	Run(ctx context.Context, req document.Request) (*document.Result, error)
}

// ServiceConfig is the configuration for the batch service.
type ServiceConfig struct {
	Image     ImageProcessor
	Document  DocumentProcessor
	Workers   int
	OutputDir string
	Logger    log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Image == nil {
		return fmt.Errorf("image processor is required")
	}
	if c.Document == nil {
		return fmt.Errorf("document processor is required")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("worker count must be positive")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.BatchRun"})
	return nil
}

// Service processes many files through the bounded-concurrency batch runner,
// dispatching each file to the image or document path by kind.
type Service struct {
	image     ImageProcessor
	document  DocumentProcessor
	workers   int
	outputDir string
	logger    log.Logger
}

// NewService creates a new batch service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Service{
		image:     cfg.Image,
		document:  cfg.Document,
		workers:   cfg.Workers,
		outputDir: cfg.OutputDir,
		logger:    cfg.Logger,
	}, nil
}

// Request represents the batch request parameters.
type Request struct {
	Files      []string
	Params     model.ProcessParams
	OnProgress batch.ProgressFunc
}

// Run classifies every file, then processes all of them through the batch
// runner. Unclassifiable files become failed result entries, they don't
// abort the run.
func (s *Service) Run(ctx context.Context, req Request) (*model.BatchSummary, error) {
	if len(req.Files) == 0 {
		return nil, fmt.Errorf("no input files: %w", model.ErrValidation)
	}
	if err := validate.Params(req.Params); err != nil {
		return nil, err
	}

	inputs := make([]batch.Input, len(req.Files))
	for i, f := range req.Files {
		kind, err := validate.KindOf(f)
		if err != nil {
			// The runner converts the unknown kind into a per-file failure.
			s.logger.Warningf("could not classify %s: %s", f, err)
		}
		inputs[i] = batch.Input{File: f, Kind: kind}
	}

	runner, err := batch.NewRunner(batch.RunnerConfig{
		Workers:   s.workers,
		OutputDir: s.outputDir,
		Logger:    s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create batch runner: %w", err)
	}

	return runner.Run(ctx, inputs, s.processOne(req.Params), req.OnProgress)
}

// processOne is the kind-dispatching single-file operation. Documents go
// through the synchronous path: batch runs already bound concurrency, a
// poll loop per file would only add latency.
func (s *Service) processOne(params model.ProcessParams) batch.ProcessFunc {
	return func(ctx context.Context, file string, kind model.FileKind) (string, error) {
		switch kind {
		case model.FileKindImage:
			res, err := s.image.Run(ctx, ocr.Request{File: file, Params: params})
			if err != nil {
				return "", err
			}
			return res.OutputPath, nil
		case model.FileKindDocument:
			res, err := s.document.Run(ctx, document.Request{File: file, Params: params, ForceSync: true})
			if err != nil {
				return "", err
			}
			return res.OutputPath, nil
		default:
			return "", fmt.Errorf("unsupported file kind for %s: %w", file, model.ErrValidation)
		}
	}
}
