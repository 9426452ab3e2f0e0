package modelinfo

import (
	"context"
	"fmt"

	"github.com/lzy756/deepseekocr-cli/internal/client"
	"github.com/lzy756/deepseekocr-cli/internal/log"
	"github.com/lzy756/deepseekocr-cli/internal/model"
)

// ServiceConfig is the configuration for the model info service.
type ServiceConfig struct {
	API    client.API
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.API == nil {
		return fmt.Errorf("api client is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	return nil
}

// Service retrieves the remote OCR model information.
type Service struct {
	api    client.API
	logger log.Logger
}

// NewService creates a new model info service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Service{api: cfg.API, logger: cfg.Logger}, nil
}

// Run queries the model info endpoint.
func (s *Service) Run(ctx context.Context) (*model.ModelInfo, error) {
	info, err := s.api.ModelInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get model info: %w", err)
	}
	return info, nil
}
