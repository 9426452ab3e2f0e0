package ocr

import (
	"context"
	"fmt"
	"os"

	"github.com/lzy756/deepseekocr-cli/internal/client"
	"github.com/lzy756/deepseekocr-cli/internal/conventions"
	"github.com/lzy756/deepseekocr-cli/internal/log"
	"github.com/lzy756/deepseekocr-cli/internal/model"
	"github.com/lzy756/deepseekocr-cli/internal/validate"
)

// ServiceConfig is the configuration for the image OCR service.
type ServiceConfig struct {
	API       client.API
	OutputDir string
	Logger    log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.API == nil {
		return fmt.Errorf("api client is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.OCR"})
	return nil
}

// Service runs synchronous OCR on single images.
type Service struct {
	api       client.API
	outputDir string
	logger    log.Logger
}

// NewService creates a new image OCR service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Service{
		api:       cfg.API,
		outputDir: cfg.OutputDir,
		logger:    cfg.Logger,
	}, nil
}

// Request represents the image OCR request parameters.
type Request struct {
	File   string
	Params model.ProcessParams
}

// Result is the outcome of one image OCR run.
type Result struct {
	OutputPath string
	Text       string
	DurationMS int64
}

// Run validates the image, submits it for synchronous OCR and writes the
// text artifact into the output directory.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if err := validate.File(req.File, model.FileKindImage); err != nil {
		return nil, err
	}
	if err := validate.Params(req.Params); err != nil {
		return nil, err
	}

	s.logger.Debugf("submitting image %s (mode %s)", req.File, req.Params.Mode)
	res, err := s.api.SubmitImage(ctx, req.File, req.Params)
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

	s.logger.Infof("wrote %s", outPath)
	return &Result{
		OutputPath: outPath,
		Text:       res.Text,
		DurationMS: res.DurationMS,
	}, nil
}
