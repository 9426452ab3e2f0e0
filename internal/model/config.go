package model

import "time"

// EffectiveConfig is the merged, immutable-per-invocation configuration
// snapshot. It is constructed once by the resolver and passed by value to
// every component that needs it.
type EffectiveConfig struct {
	APIURL string
	APIKey string

	// RequestTimeout bounds a single HTTP request, not a whole operation.
	RequestTimeout time.Duration

	// Processing defaults applied when a command doesn't override them.
	Mode       string
	Resolution string
	DPI        int
	MaxPages   int

	// Workers bounds batch concurrency.
	Workers int

	// PollInterval seeds the polling delay schedule, PollTimeout is the
	// overall wall-clock ceiling for waiting on one task.
	PollInterval time.Duration
	PollTimeout  time.Duration
}
