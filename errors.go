package stormbus

import "errors"

// Sentinel errors for the event bus.
var (
	// ErrNilListener is returned when a nil listener is provided.
	ErrNilListener = errors.New("listener cannot be nil")

	// ErrInvalidEventType is returned when subscribing with a type that
	// does not satisfy the event contract.
	ErrInvalidEventType = errors.New("type does not satisfy the event contract")

	// ErrListenerPanic is returned when a listener panics.
	ErrListenerPanic = errors.New("listener panicked")
)

// ListenerError wraps an error from a listener with additional context.
type ListenerError struct {
	// HandleID is the ID of the handle whose listener failed.
	HandleID string

	// EventName is the name of the event being delivered.
	EventName string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ListenerError) Error() string {
	return "listener error for handle " + e.HandleID + " on event " + e.EventName + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ListenerError) Unwrap() error {
	return e.Err
}

// PanicError wraps a panic value as an error.
type PanicError struct {
	// HandleID is the ID of the handle whose listener panicked.
	HandleID string

	// EventName is the name of the event being delivered.
	EventName string

	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace at the time of the panic.
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return "listener panic for handle " + e.HandleID + " on event " + e.EventName
}

// Is allows errors.Is to match PanicError with ErrListenerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrListenerPanic
}
