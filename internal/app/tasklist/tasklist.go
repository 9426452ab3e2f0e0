package tasklist

import (
	"context"
	"fmt"

	"github.com/lzy756/deepseekocr-cli/internal/history"
	"github.com/lzy756/deepseekocr-cli/internal/log"
	"github.com/lzy756/deepseekocr-cli/internal/model"
)

// ServiceConfig is the configuration for the task list service.
type ServiceConfig struct {
	History history.Store
	Logger  log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.History == nil {
		return fmt.Errorf("history store is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	return nil
}

// Service lists locally known tasks with optional status filtering.
type Service struct {
	hist   history.Store
	logger log.Logger
}

// NewService creates a new task list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Service{hist: cfg.History, logger: cfg.Logger}, nil
}

// Request represents the list request parameters.
type Request struct {
	// StatusFilter is an optional filter to only show tasks with this status.
	StatusFilter *model.TaskStatus
}

// Run lists history entries, pruned to the retention window by the store.
func (s *Service) Run(ctx context.Context, req Request) ([]model.HistoryEntry, error) {
	s.logger.Debugf("listing tasks with filter: %v", req.StatusFilter)

	entries, err := s.hist.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}

	if req.StatusFilter != nil {
		filtered := make([]model.HistoryEntry, 0, len(entries))
		for _, e := range entries {
			if e.Status == *req.StatusFilter {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	s.logger.Debugf("found %d tasks", len(entries))
	return entries, nil
}
