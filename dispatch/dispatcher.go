package dispatch

import (
	"context"
	"time"
)

// Status is a listener's verdict after one delivery.
type Status int

const (
	// Continue keeps the listener registered for future events.
	Continue Status = iota

	// Stop deregisters the listener after the current delivery.
	Stop
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case Continue:
		return "continue"
	case Stop:
		return "stop"
	default:
		return "unknown"
	}
}

// Listener is the interface executed by dispatchers.
// This mirrors the stormbus.Listener interface to avoid circular imports.
type Listener interface {
	Listen(ctx context.Context, event any) (Status, error)
}

// Result represents the outcome of one listener execution.
type Result struct {
	// Status is the listener's verdict. Forced to Stop on error or panic.
	Status Status

	// Error is the error returned by the listener, if any.
	Error error

	// Panicked is true if the listener panicked.
	Panicked bool

	// PanicValue is the value passed to panic(), if Panicked is true.
	PanicValue any

	// PanicStack is the stack trace at the point of panic.
	PanicStack []byte

	// Duration is how long the listener took to execute.
	Duration time.Duration

	// Skipped is true if the listener was not executed (context done).
	Skipped bool
}

// Failed returns true if the listener errored or panicked.
func (r Result) Failed() bool {
	return r.Error != nil || r.Panicked
}

// PanicHandler is called when a listener panics during execution.
// It receives the event being processed, the panic value, and the stack.
type PanicHandler func(event any, panicValue any, stack []byte)

// defaultPanicHandler is a no-op; the bus installs its own reporting.
func defaultPanicHandler(event any, panicValue any, stack []byte) {}
