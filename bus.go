package stormbus

import (
	"context"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/stormbus/dispatch"
	"github.com/dshills/stormbus/hierarchy"
)

// Bus is the central event bus. It is safe for concurrent use; multiple
// goroutines may broadcast, subscribe, and cancel at the same time.
type Bus struct {
	resolver   hierarchy.Resolver
	dispatcher *dispatch.SyncDispatcher
	registries registrySet
	logger     *zap.Logger
	sink       dispatch.FaultSink
	faults     *dispatch.FaultQueue

	disabled  atomic.Bool
	published atomic.Uint64
	removed   atomic.Uint64
}

// BusOption configures a Bus.
type BusOption func(*busConfig)

// busConfig contains configuration for the event bus.
type busConfig struct {
	resolver       hierarchy.Resolver
	logger         *zap.Logger
	sink           dispatch.FaultSink
	timeout        time.Duration
	asyncFaults    bool
	faultQueueSize int
	faultWorkers   int
}

// defaultBusConfig returns sensible default configuration.
func defaultBusConfig() busConfig {
	return busConfig{
		faultQueueSize: 256,
		faultWorkers:   1,
	}
}

// WithResolver sets the type-hierarchy resolver.
func WithResolver(r hierarchy.Resolver) BusOption {
	return func(c *busConfig) {
		if r != nil {
			c.resolver = r
		}
	}
}

// WithLogger sets the logger used for fault reporting.
// Without it faults are recorded through a no-op logger.
func WithLogger(l *zap.Logger) BusOption {
	return func(c *busConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithFaultSink replaces the default zap-backed fault sink.
func WithFaultSink(s dispatch.FaultSink) BusOption {
	return func(c *busConfig) {
		if s != nil {
			c.sink = s
		}
	}
}

// WithListenerTimeout sets a default timeout for listener execution.
// Listeners must respect context cancellation for this to be effective.
func WithListenerTimeout(d time.Duration) BusOption {
	return func(c *busConfig) {
		c.timeout = d
	}
}

// WithAsyncFaultLogging delivers fault records to the sink on a background
// worker pool instead of the broadcasting goroutine. Close drains the
// queue.
func WithAsyncFaultLogging(queueSize, workers int) BusOption {
	return func(c *busConfig) {
		c.asyncFaults = true
		if queueSize > 0 {
			c.faultQueueSize = queueSize
		}
		if workers > 0 {
			c.faultWorkers = workers
		}
	}
}

// New creates a new event bus with the given options.
func New(opts ...BusOption) *Bus {
	cfg := defaultBusConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.resolver == nil {
		cfg.resolver = hierarchy.NewResolver()
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	if cfg.sink == nil {
		cfg.sink = zapFaultSink{logger: cfg.logger}
	}

	b := &Bus{
		resolver: cfg.resolver,
		logger:   cfg.logger,
		sink:     cfg.sink,
	}

	var dopts []dispatch.SyncOption
	if cfg.timeout > 0 {
		dopts = append(dopts, dispatch.WithTimeout(cfg.timeout))
	}
	b.dispatcher = dispatch.NewSyncDispatcher(dopts...)

	if cfg.asyncFaults {
		q, err := dispatch.NewFaultQueue(cfg.sink,
			dispatch.WithQueueSize(cfg.faultQueueSize),
			dispatch.WithWorkerCount(cfg.faultWorkers),
		)
		if err == nil && q.Start() == nil {
			b.faults = q
		}
	}

	return b
}

// Close drains the async fault queue, if one is configured.
func (b *Bus) Close(ctx context.Context) error {
	if b.faults != nil {
		return b.faults.Stop(ctx)
	}
	return nil
}

// Subscribe registers a listener for events of eventType and its subtypes.
// The given context is captured and re-entered on every delivery; when it
// is cancelled the handle is cancelled. The returned handle is created in
// state Active and can be paused, resumed, or cancelled at any time.
func (b *Bus) Subscribe(ctx context.Context, eventType reflect.Type, l Listener, opts ...SubscribeOption) (*Handle, error) {
	if l == nil {
		return nil, ErrNilListener
	}
	for eventType != nil && eventType.Kind() == reflect.Pointer {
		eventType = eventType.Elem()
	}
	if !hierarchy.Qualifies(eventType) {
		return nil, ErrInvalidEventType
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := DefaultSubscribeConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	h := newHandle(uuid.NewString(), eventType, l, ctx, b, cfg)

	if ctx.Done() != nil {
		stop := context.AfterFunc(ctx, h.Cancel)
		h.addCleanup(func() { stop() })
	}
	if cfg.Scope != nil {
		// OnCancel fires immediately if the scope is already cancelled;
		// the handle then enters the registry terminal and is unlinked on
		// the first pass that reaches it.
		remove := cfg.Scope.OnCancel(h.Cancel)
		h.addCleanup(remove)
	}

	b.registries.get(eventType).add(h)

	return h, nil
}

// SubscribeFunc is a convenience method for subscribing a function listener.
func (b *Bus) SubscribeFunc(ctx context.Context, eventType reflect.Type, fn ListenerFunc, opts ...SubscribeOption) (*Handle, error) {
	return b.Subscribe(ctx, eventType, fn, opts...)
}

// On subscribes a typed listener on b for events of type T and its
// subtypes.
func On[T hierarchy.Event](b *Bus, ctx context.Context, fn TypedListenerFunc[T], opts ...SubscribeOption) (*Handle, error) {
	return b.Subscribe(ctx, hierarchy.TypeOf[T](), As(fn), opts...)
}

// Broadcast delivers ev to every live listener registered on its type or a
// qualifying ancestor type. Within each registry, listeners run strictly
// sequentially in registration order; a listener that returns Stop, errors,
// or panics is removed during the same pass. Broadcast never fails and
// never propagates listener outcomes to the caller.
func (b *Bus) Broadcast(ev Event) {
	if ev == nil || b.disabled.Load() {
		return
	}

	types := b.resolver.Resolve(ev)
	if len(types) == 0 {
		return
	}

	b.published.Add(1)

	for _, rt := range types {
		reg := b.registries.get(rt)
		for _, h := range reg.snapshot() {
			if h.invoke(ev) == Stop {
				if reg.remove(h) {
					b.removed.Add(1)
				}
			}
		}
	}
}

// Disable suspends all delivery without affecting registrations.
func (b *Bus) Disable() {
	b.disabled.Store(true)
}

// Enable resumes delivery after Disable.
func (b *Bus) Enable() {
	b.disabled.Store(false)
}

// Disabled reports whether delivery is suspended.
func (b *Bus) Disabled() bool {
	return b.disabled.Load()
}

// Stats returns current event bus statistics.
func (b *Bus) Stats() Stats {
	ds := b.dispatcher.Stats()
	s := Stats{
		EventsPublished:   b.published.Load(),
		ListenersExecuted: ds.Dispatched - ds.Skipped,
		EventsDelivered:   ds.Succeeded,
		ListenerErrors:    ds.Failed,
		ListenerPanics:    ds.Panicked,
		ListenersStopped:  ds.Stopped,
		HandlesRemoved:    b.removed.Load(),
	}
	b.registries.rangeAll(func(_ reflect.Type, r *registry) bool {
		s.EventTypes++
		for _, h := range r.snapshot() {
			if !h.State().Terminal() {
				s.ActiveHandles++
			}
		}
		return true
	})
	return s
}

// recordFault reports one listener failure through the fault sink.
// Fire-and-forget: the sink's outcome is ignored.
func (b *Bus) recordFault(h *Handle, ev Event, res dispatch.Result) {
	f := dispatch.Fault{
		Event:      ev,
		EventName:  ev.EventName(),
		HandleID:   h.id,
		PanicValue: res.PanicValue,
		PanicStack: res.PanicStack,
	}
	switch {
	case res.Panicked:
		f.Err = &PanicError{
			HandleID:  h.id,
			EventName: f.EventName,
			Value:     res.PanicValue,
			Stack:     res.PanicStack,
		}
	default:
		f.Err = &ListenerError{
			HandleID:  h.id,
			EventName: f.EventName,
			Err:       res.Error,
		}
	}

	if b.faults != nil {
		b.faults.Enqueue(f)
		return
	}
	b.sink.Record(f)
}

// zapFaultSink is the default fault sink: structured logging via zap.
type zapFaultSink struct {
	logger *zap.Logger
}

// Record implements the dispatch.FaultSink interface.
func (s zapFaultSink) Record(f dispatch.Fault) {
	fields := []zap.Field{
		zap.String("handle_id", f.HandleID),
		zap.String("event", f.EventName),
		zap.Error(f.Err),
	}
	if f.PanicValue != nil {
		fields = append(fields,
			zap.Any("panic", f.PanicValue),
			zap.ByteString("stack", f.PanicStack),
		)
	}
	s.logger.Warn("listener fault; handle completed", fields...)
}
