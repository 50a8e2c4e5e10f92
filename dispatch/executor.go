package dispatch

import (
	"context"
	"runtime/debug"
	"time"
)

// Executor handles the actual execution of listeners with panic recovery
// and timing.
type Executor struct {
	panicHandler PanicHandler
}

// NewExecutor creates a new executor with the given options.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		panicHandler: defaultPanicHandler,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithExecutorPanicHandler sets the panic handler for the executor.
func WithExecutorPanicHandler(h PanicHandler) ExecutorOption {
	return func(e *Executor) {
		if h != nil {
			e.panicHandler = h
		}
	}
}

// Execute runs a listener with the given event and returns the result.
// It recovers from panics and captures timing information. A listener that
// errors or panics yields Status Stop; a skipped listener yields Continue
// so it survives for future deliveries.
func (e *Executor) Execute(ctx context.Context, event any, l Listener) (result Result) {
	// Check context before starting
	select {
	case <-ctx.Done():
		return Result{
			Status:  Continue,
			Error:   ctx.Err(),
			Skipped: true,
		}
	default:
	}

	start := time.Now()

	defer func() {
		result.Duration = time.Since(start)

		if r := recover(); r != nil {
			stack := debug.Stack()

			result.Status = Stop
			result.Panicked = true
			result.PanicValue = r
			result.PanicStack = stack

			// Protect the panic handler call - don't let it crash the process
			if e.panicHandler != nil {
				func() {
					defer func() {
						_ = recover()
					}()
					e.panicHandler(event, r, stack)
				}()
			}
		}
	}()

	status, err := l.Listen(ctx, event)
	result.Status = status
	result.Error = err
	if err != nil {
		result.Status = Stop
	}

	return result
}

// ExecuteWithTimeout runs a listener with a timeout.
// If the listener doesn't complete within the timeout, the context is
// cancelled. The listener must respect context cancellation for this to be
// effective.
func (e *Executor) ExecuteWithTimeout(ctx context.Context, event any, l Listener, timeout time.Duration) Result {
	if timeout <= 0 {
		return e.Execute(ctx, event, l)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return e.Execute(ctx, event, l)
}
