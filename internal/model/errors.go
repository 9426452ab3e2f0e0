package model

import "errors"

var (
	// ErrConfiguration is returned when a required configuration field is
	// missing after the precedence merge.
	ErrConfiguration = errors.New("configuration error")
	// ErrValidation is returned when a local precondition on a file or
	// parameter fails before any network call.
	ErrValidation = errors.New("validation error")
	// ErrTransient is returned when a network operation kept failing with
	// retryable errors until the attempt ceiling was reached.
	ErrTransient = errors.New("transient network error")
	// ErrTaskFailed is returned when the server reports a terminal failure
	// for an asynchronous task.
	ErrTaskFailed = errors.New("task failed")
	// ErrTaskTimeout is returned when the local wall-clock budget is
	// exceeded while waiting for a task. It does not imply the server-side
	// task failed; the task ID can be queried again later.
	ErrTaskTimeout = errors.New("task wait timed out")
	// ErrTaskNotFound is returned when the server does not know the task ID.
	ErrTaskNotFound = errors.New("task not found")
	// ErrTaskExpired is returned when the server has already discarded the
	// task and its result.
	ErrTaskExpired = errors.New("task expired")
)
