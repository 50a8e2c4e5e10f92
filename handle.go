package stormbus

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/dshills/stormbus/lifecycle"
)

// HandleState represents the lifecycle state of a subscription handle.
type HandleState int32

const (
	// StateActive means the handle is receiving events.
	StateActive HandleState = iota

	// StatePaused means the handle is temporarily not receiving events.
	// Unlike the terminal states, a paused handle stays registered and
	// resumes delivery when Resume is called.
	StatePaused

	// StateCompleted means the listener finished (returned Stop, failed,
	// or was subscribed with WithOnce). Terminal.
	StateCompleted

	// StateCancelled means the handle was cancelled, directly or through
	// its parent scope. Terminal.
	StateCancelled
)

// String returns a human-readable state name.
func (s HandleState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StatePaused:
		return "paused"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is final.
// A terminal handle is never invoked again and is eligible for removal.
func (s HandleState) Terminal() bool {
	return s == StateCompleted || s == StateCancelled
}

// SubscribeConfig contains configuration for a subscription.
type SubscribeConfig struct {
	// Filter is an optional predicate; events it rejects are skipped
	// without touching the handle's state.
	Filter FilterFunc

	// Once indicates the handle should complete after its first
	// successful delivery.
	Once bool

	// Serialized runs the listener under a per-handle mutex, so
	// overlapping broadcasts never execute it concurrently.
	Serialized bool

	// Scope links the handle to a parent lifecycle scope; cancelling the
	// scope cancels the handle.
	Scope *lifecycle.Scope
}

// DefaultSubscribeConfig returns a default subscription configuration.
func DefaultSubscribeConfig() SubscribeConfig {
	return SubscribeConfig{}
}

// SubscribeOption is a function that configures a subscription.
type SubscribeOption func(*SubscribeConfig)

// WithFilter sets a filter predicate.
func WithFilter(f FilterFunc) SubscribeOption {
	return func(c *SubscribeConfig) {
		c.Filter = f
	}
}

// WithOnce completes the handle after the first successful delivery.
func WithOnce() SubscribeOption {
	return func(c *SubscribeConfig) {
		c.Once = true
	}
}

// WithSerialized serializes listener executions across overlapping
// broadcasts.
func WithSerialized() SubscribeOption {
	return func(c *SubscribeConfig) {
		c.Serialized = true
	}
}

// WithScope links the handle to a parent lifecycle scope.
func WithScope(s *lifecycle.Scope) SubscribeOption {
	return func(c *SubscribeConfig) {
		c.Scope = s
	}
}

// Handle represents one subscription: a listener, its lifecycle state, and
// the execution context captured at subscribe time.
type Handle struct {
	id        string
	eventType reflect.Type
	listener  Listener
	ctx       context.Context // captured at subscribe time
	config    SubscribeConfig
	bus       *Bus
	state     atomic.Int32

	execMu sync.Mutex // guards listener execution when Serialized

	cleanupMu   sync.Mutex
	cleanup     []func()
	cleanupDone bool
}

// newHandle creates a handle in state Active.
func newHandle(id string, eventType reflect.Type, l Listener, ctx context.Context, bus *Bus, cfg SubscribeConfig) *Handle {
	h := &Handle{
		id:        id,
		eventType: eventType,
		listener:  l,
		ctx:       ctx,
		config:    cfg,
		bus:       bus,
	}
	h.state.Store(int32(StateActive))
	return h
}

// ID returns the unique handle identifier.
func (h *Handle) ID() string {
	return h.id
}

// EventType returns the type the handle is registered under.
func (h *Handle) EventType() reflect.Type {
	return h.eventType
}

// State returns the current lifecycle state.
func (h *Handle) State() HandleState {
	return HandleState(h.state.Load())
}

// IsActive returns true if the handle can receive events.
func (h *Handle) IsActive() bool {
	return h.State() == StateActive
}

// IsPaused returns true if the handle is paused.
func (h *Handle) IsPaused() bool {
	return h.State() == StatePaused
}

// IsCompleted returns true if the listener finished.
func (h *Handle) IsCompleted() bool {
	return h.State() == StateCompleted
}

// IsCancelled returns true if the handle was cancelled.
func (h *Handle) IsCancelled() bool {
	return h.State() == StateCancelled
}

// Pause temporarily stops event delivery to this handle.
func (h *Handle) Pause() {
	h.state.CompareAndSwap(int32(StateActive), int32(StatePaused))
}

// Resume restarts event delivery after a pause.
func (h *Handle) Resume() {
	h.state.CompareAndSwap(int32(StatePaused), int32(StateActive))
}

// Cancel permanently cancels the handle. It is idempotent and never
// interrupts an in-flight invocation; it only prevents future ones.
// Removal from the registry happens lazily on the next broadcast pass.
func (h *Handle) Cancel() {
	if h.transitionTo(StateCancelled) {
		h.runCleanup()
	}
}

// complete marks the listener as finished.
func (h *Handle) complete() {
	if h.transitionTo(StateCompleted) {
		h.runCleanup()
	}
}

// transitionTo moves the handle into a terminal state. Returns false if the
// handle is already terminal; the terminal transition happens exactly once.
func (h *Handle) transitionTo(target HandleState) bool {
	for {
		cur := h.state.Load()
		if HandleState(cur).Terminal() {
			return false
		}
		if h.state.CompareAndSwap(cur, int32(target)) {
			return true
		}
	}
}

// addCleanup registers fn to run when the handle reaches a terminal state.
// If the handle is already terminal, fn runs immediately.
func (h *Handle) addCleanup(fn func()) {
	h.cleanupMu.Lock()
	if h.cleanupDone {
		h.cleanupMu.Unlock()
		fn()
		return
	}
	h.cleanup = append(h.cleanup, fn)
	h.cleanupMu.Unlock()
}

// runCleanup detaches the handle from its scope and context watchers.
func (h *Handle) runCleanup() {
	h.cleanupMu.Lock()
	fns := h.cleanup
	h.cleanup = nil
	h.cleanupDone = true
	h.cleanupMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// invoke delivers one event to the handle and reports whether the handle
// should be removed from its registry.
//
// Terminal handles return Stop without side effects. Paused handles and
// filtered events return Continue without running the listener, so the
// handle survives for future events. Failures (error or panic) are
// recorded through the bus's fault sink and permanently complete the
// handle.
func (h *Handle) invoke(ev Event) Status {
	switch h.State() {
	case StateCompleted, StateCancelled:
		return Stop
	case StatePaused:
		return Continue
	}

	if h.config.Filter != nil && !h.config.Filter(ev) {
		return Continue
	}

	if h.config.Serialized {
		h.execMu.Lock()
		defer h.execMu.Unlock()
		// State may have turned terminal while waiting for the lock.
		if h.State().Terminal() {
			return Stop
		}
	}

	result := h.bus.dispatcher.Dispatch(h.ctx, ev, h.listener)

	if result.Skipped {
		// Captured context is done; the context watcher cancels the
		// handle and the next pass removes it.
		return Continue
	}

	if result.Failed() {
		h.bus.recordFault(h, ev, result)
		h.complete()
		return Stop
	}

	if result.Status == Stop || h.config.Once {
		h.complete()
		return Stop
	}

	return Continue
}
