package dispatch

import (
	"context"
	"sync/atomic"
	"time"
)

// SyncDispatcher executes listeners synchronously in the caller's goroutine.
// It provides panic recovery, context support, and execution statistics.
type SyncDispatcher struct {
	executor *Executor
	timeout  time.Duration

	// Stats
	dispatched  atomic.Uint64
	succeeded   atomic.Uint64
	failed      atomic.Uint64
	panicked    atomic.Uint64
	skipped     atomic.Uint64
	stopped     atomic.Uint64
	totalTimeNs atomic.Int64
}

// NewSyncDispatcher creates a new synchronous dispatcher.
func NewSyncDispatcher(opts ...SyncOption) *SyncDispatcher {
	d := &SyncDispatcher{
		executor: NewExecutor(),
		timeout:  0, // No timeout by default
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SyncOption configures a SyncDispatcher.
type SyncOption func(*SyncDispatcher)

// WithPanicHandler sets the panic handler for the dispatcher.
func WithPanicHandler(h PanicHandler) SyncOption {
	return func(d *SyncDispatcher) {
		d.executor = NewExecutor(WithExecutorPanicHandler(h))
	}
}

// WithTimeout sets a default timeout for listener execution.
func WithTimeout(timeout time.Duration) SyncOption {
	return func(d *SyncDispatcher) {
		d.timeout = timeout
	}
}

// Dispatch executes a listener synchronously with the given event.
// It blocks until the listener completes, times out, or panics.
func (d *SyncDispatcher) Dispatch(ctx context.Context, event any, l Listener) Result {
	d.dispatched.Add(1)

	var result Result
	if d.timeout > 0 {
		result = d.executor.ExecuteWithTimeout(ctx, event, l, d.timeout)
	} else {
		result = d.executor.Execute(ctx, event, l)
	}

	d.totalTimeNs.Add(result.Duration.Nanoseconds())

	switch {
	case result.Skipped:
		d.skipped.Add(1)
	case result.Panicked:
		d.panicked.Add(1)
	case result.Error != nil:
		d.failed.Add(1)
	default:
		d.succeeded.Add(1)
		if result.Status == Stop {
			d.stopped.Add(1)
		}
	}

	return result
}

// Stats returns dispatch statistics.
// Stats are read without a mutex, so values may be slightly inconsistent if
// stats are being updated concurrently.
func (d *SyncDispatcher) Stats() SyncDispatcherStats {
	dispatched := d.dispatched.Load()
	totalNs := d.totalTimeNs.Load()

	var avgNs int64
	if dispatched > 0 {
		avgNs = totalNs / int64(dispatched)
	}

	return SyncDispatcherStats{
		Dispatched:    dispatched,
		Succeeded:     d.succeeded.Load(),
		Failed:        d.failed.Load(),
		Panicked:      d.panicked.Load(),
		Skipped:       d.skipped.Load(),
		Stopped:       d.stopped.Load(),
		TotalDuration: time.Duration(totalNs),
		AvgDuration:   time.Duration(avgNs),
	}
}

// ResetStats resets all statistics to zero.
func (d *SyncDispatcher) ResetStats() {
	d.dispatched.Store(0)
	d.succeeded.Store(0)
	d.failed.Store(0)
	d.panicked.Store(0)
	d.skipped.Store(0)
	d.stopped.Store(0)
	d.totalTimeNs.Store(0)
}

// SyncDispatcherStats contains statistics for a sync dispatcher.
type SyncDispatcherStats struct {
	// Dispatched is the total number of dispatch calls.
	Dispatched uint64

	// Succeeded is the number of listeners that completed without failure.
	Succeeded uint64

	// Failed is the number of listeners that returned errors.
	Failed uint64

	// Panicked is the number of listeners that panicked.
	Panicked uint64

	// Skipped is the number of listeners skipped (context done).
	Skipped uint64

	// Stopped is the number of successful executions that returned Stop.
	Stopped uint64

	// TotalDuration is the cumulative time spent in listeners.
	TotalDuration time.Duration

	// AvgDuration is the average listener execution time.
	AvgDuration time.Duration
}
