package task

import (
	"context"
	"fmt"
	"time"

	"github.com/lzy756/deepseekocr-cli/internal/log"
	"github.com/lzy756/deepseekocr-cli/internal/model"
)

const (
	// DefaultInitialDelay is the fixed delay used during the burst phase.
	DefaultInitialDelay = 2 * time.Second
	// DefaultMaxDelay caps the backoff growth.
	DefaultMaxDelay = 30 * time.Second
	// DefaultTimeout is the overall wall-clock ceiling for one wait.
	DefaultTimeout = 10 * time.Minute
	// DefaultBurstQueries is how many queries keep the fixed initial delay
	// before geometric growth starts. Tuned for tasks that finish quickly.
	DefaultBurstQueries = 5
	// DefaultGrowthFactor is the backoff multiplier after the burst phase.
	DefaultGrowthFactor = 1.5
)

// StatusClient is the status-query capability the poller drives, implemented
// by the API client. Transient query failures are the client's concern: a
// query either yields a task snapshot or a final error.
type StatusClient interface {
	TaskStatus(ctx context.Context, taskID string) (*model.Task, error)
}

// ProgressFunc receives the latest task snapshot after each non-terminal
// status query. Callbacks are strictly sequential: each query completes,
// including its callback, before the next one is issued.
type ProgressFunc func(t model.Task)

// WaitConfig are the timing parameters for one wait.
type WaitConfig struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	// Timeout is the overall wall-clock budget, independent of any single
	// request's own timeout.
	Timeout      time.Duration
	BurstQueries int
	GrowthFactor float64
}

func (c *WaitConfig) defaults() {
	if c.InitialDelay <= 0 {
		c.InitialDelay = DefaultInitialDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = DefaultMaxDelay
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.BurstQueries <= 0 {
		c.BurstQueries = DefaultBurstQueries
	}
	if c.GrowthFactor <= 1 {
		c.GrowthFactor = DefaultGrowthFactor
	}
}

// PollerConfig is the configuration for the poller.
type PollerConfig struct {
	Client StatusClient
	Logger log.Logger

	// now and sleep are injectable for tests.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

func (c *PollerConfig) defaults() error {
	if c.Client == nil {
		return fmt.Errorf("status client is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Sleep == nil {
		c.Sleep = sleepCtx
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "task.Poller"})
	return nil
}

// Poller drives a submitted asynchronous task to a terminal state by
// repeated status queries with adaptive delay.
type Poller struct {
	client StatusClient
	logger log.Logger
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewPoller creates a new poller.
func NewPoller(cfg PollerConfig) (*Poller, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Poller{
		client: cfg.Client,
		logger: cfg.Logger,
		now:    cfg.Now,
		sleep:  cfg.Sleep,
	}, nil
}

// Wait polls the task until it reaches a terminal state.
//
// It returns the final snapshot on completed, an ErrTaskFailed wrapping the
// server-reported detail on failed, and ErrTaskTimeout when the wall-clock
// budget runs out first. Delay schedule: the fixed initial delay for the
// first BurstQueries queries, then geometric growth capped at MaxDelay.
//
// Cancelling ctx abandons the local wait only: the server-side task keeps
// running and can be queried again later with the same ID.
func (p *Poller) Wait(ctx context.Context, taskID string, cfg WaitConfig, onProgress ProgressFunc) (*model.Task, error) {
	cfg.defaults()

	deadline := p.now().Add(cfg.Timeout)
	delay := cfg.InitialDelay

	for query := 1; ; query++ {
		t, err := p.client.TaskStatus(ctx, taskID)
		if err != nil {
			return nil, err
		}

		switch t.Status {
		case model.TaskStatusCompleted:
			p.logger.Debugf("task %s completed after %d queries", taskID, query)
			return t, nil
		case model.TaskStatusFailed:
			detail := t.ErrorDetail
			if detail == "" {
				detail = "no detail provided"
			}
			return nil, fmt.Errorf("task %s: %s: %w", taskID, detail, model.ErrTaskFailed)
		}

		if onProgress != nil {
			onProgress(*t)
		}

		if query >= cfg.BurstQueries {
			delay = time.Duration(float64(delay) * cfg.GrowthFactor)
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		}

		if p.now().Add(delay).After(deadline) {
			return nil, fmt.Errorf("task %s did not finish within %s, re-query it later with the same ID: %w", taskID, cfg.Timeout, model.ErrTaskTimeout)
		}

		p.logger.Debugf("task %s at %.0f%% (%s), next query in %s", taskID, t.Progress*100, t.Status, delay)
		if err := p.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
