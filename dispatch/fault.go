package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
)

// Fault is a record of one listener failure captured during delivery.
type Fault struct {
	// Event is the event being delivered when the listener failed.
	Event any

	// EventName is the event's stable name, for sinks that don't want to
	// inspect the payload.
	EventName string

	// HandleID identifies the subscription whose listener failed.
	HandleID string

	// Err is the listener's error. For panics it wraps the panic value.
	Err error

	// PanicValue is the value passed to panic(), if the listener panicked.
	PanicValue any

	// PanicStack is the stack trace at the point of panic.
	PanicStack []byte
}

// FaultSink receives fault records. Delivery is fire-and-forget: the bus
// never inspects a sink's outcome, and a panicking sink is isolated.
type FaultSink interface {
	Record(f Fault)
}

// FaultSinkFunc is a function adapter for FaultSink.
type FaultSinkFunc func(f Fault)

// Record implements the FaultSink interface.
func (fn FaultSinkFunc) Record(f Fault) {
	fn(f)
}

// FaultQueue delivers fault records to a sink using a worker pool with a
// bounded queue. Enqueue never blocks; records are dropped when the queue
// is full so a slow sink cannot stall a broadcast.
type FaultQueue struct {
	// Configuration
	queueSize   int
	workerCount int
	sink        FaultSink

	// State
	mu      sync.Mutex // protects queue creation/destruction
	queue   chan Fault
	running atomic.Bool
	wg      sync.WaitGroup

	// Stats
	enqueued  atomic.Uint64
	delivered atomic.Uint64
	dropped   atomic.Uint64
}

// NewFaultQueue creates a fault queue delivering to sink.
func NewFaultQueue(sink FaultSink, opts ...FaultQueueOption) (*FaultQueue, error) {
	if sink == nil {
		return nil, ErrNilSink
	}
	q := &FaultQueue{
		queueSize:   256,
		workerCount: 1,
		sink:        sink,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q, nil
}

// FaultQueueOption configures a FaultQueue.
type FaultQueueOption func(*FaultQueue)

// WithQueueSize sets the fault queue size.
func WithQueueSize(size int) FaultQueueOption {
	return func(q *FaultQueue) {
		if size > 0 {
			q.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of delivery goroutines.
func WithWorkerCount(count int) FaultQueueOption {
	return func(q *FaultQueue) {
		if count > 0 {
			q.workerCount = count
		}
	}
}

// Start starts the worker pool.
func (q *FaultQueue) Start() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running.Load() {
		return ErrAlreadyRunning
	}

	q.queue = make(chan Fault, q.queueSize)
	q.running.Store(true)

	for i := 0; i < q.workerCount; i++ {
		q.wg.Add(1)
		go q.worker()
	}

	return nil
}

// Stop stops the worker pool gracefully.
// It waits for queued records to drain or until the context is cancelled.
func (q *FaultQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.running.Load() {
		q.mu.Unlock()
		return ErrNotRunning
	}

	q.running.Store(false)
	close(q.queue)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running reports whether the queue is accepting records.
func (q *FaultQueue) Running() bool {
	return q.running.Load()
}

// Enqueue submits a fault record for delivery. It never blocks: the record
// is dropped (and counted) when the queue is stopped or full.
func (q *FaultQueue) Enqueue(f Fault) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.running.Load() || q.queue == nil {
		q.dropped.Add(1)
		return false
	}

	select {
	case q.queue <- f:
		q.enqueued.Add(1)
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// worker delivers records until the queue is closed.
func (q *FaultQueue) worker() {
	defer q.wg.Done()
	for f := range q.queue {
		q.deliver(f)
	}
}

// deliver hands one record to the sink, isolating sink panics.
func (q *FaultQueue) deliver(f Fault) {
	defer func() {
		_ = recover()
	}()
	q.sink.Record(f)
	q.delivered.Add(1)
}

// Stats returns delivery statistics.
func (q *FaultQueue) Stats() FaultQueueStats {
	return FaultQueueStats{
		Enqueued:  q.enqueued.Load(),
		Delivered: q.delivered.Load(),
		Dropped:   q.dropped.Load(),
	}
}

// FaultQueueStats contains statistics for a fault queue.
type FaultQueueStats struct {
	// Enqueued is the number of records accepted into the queue.
	Enqueued uint64

	// Delivered is the number of records handed to the sink.
	Delivered uint64

	// Dropped is the number of records dropped (queue stopped or full).
	Dropped uint64
}
