package health

import (
	"context"
	"fmt"

	"github.com/lzy756/deepseekocr-cli/internal/client"
	"github.com/lzy756/deepseekocr-cli/internal/log"
	"github.com/lzy756/deepseekocr-cli/internal/model"
)

// ServiceConfig is the configuration for the health service.
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

// Service checks the remote server health.
type Service struct {
	api    client.API
	logger log.Logger
}

// NewService creates a new health service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Service{api: cfg.API, logger: cfg.Logger}, nil
}

// Run queries the server health endpoint.
func (s *Service) Run(ctx context.Context) (*model.HealthStatus, error) {
	h, err := s.api.Health(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not check server health: %w", err)
	}
	return h, nil
}
