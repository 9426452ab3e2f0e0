package taskstatus

import (
	"context"
	"fmt"

	"github.com/lzy756/deepseekocr-cli/internal/client"
	"github.com/lzy756/deepseekocr-cli/internal/history"
	"github.com/lzy756/deepseekocr-cli/internal/log"
	"github.com/lzy756/deepseekocr-cli/internal/model"
)

// ServiceConfig is the configuration for the task status service.
type ServiceConfig struct {
	API     client.API
	History history.Store
	Logger  log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.API == nil {
		return fmt.Errorf("api client is required")
	}
	if c.History == nil {
		return fmt.Errorf("history store is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.TaskStatus"})
	return nil
}

// Service queries one task's current snapshot.
type Service struct {
	api    client.API
	hist   history.Store
	logger log.Logger
}

// NewService creates a new task status service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Service{api: cfg.API, hist: cfg.History, logger: cfg.Logger}, nil
}

// Request represents the status request parameters.
type Request struct {
	TaskID string
}

// Run queries the server for the task snapshot and refreshes the local
// history entry with what it learned.
func (s *Service) Run(ctx context.Context, req Request) (*model.Task, error) {
	if req.TaskID == "" {
		return nil, fmt.Errorf("task id is required: %w", model.ErrValidation)
	}

	t, err := s.api.TaskStatus(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}

	if err := s.hist.UpdateStatus(ctx, t.ID, t.Status, t.ErrorDetail); err != nil {
		s.logger.Warningf("could not update history for task %s: %s", t.ID, err)
	}

	return t, nil
}
