package dispatch

import "errors"

// Sentinel errors for the dispatch package.
var (
	// ErrAlreadyRunning is returned when Start is called on a running queue.
	ErrAlreadyRunning = errors.New("fault queue is already running")

	// ErrNotRunning is returned when operations are attempted on a stopped queue.
	ErrNotRunning = errors.New("fault queue is not running")

	// ErrNilSink is returned when a fault queue is created without a sink.
	ErrNilSink = errors.New("fault sink cannot be nil")
)
