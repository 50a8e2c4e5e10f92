package stormbus

import (
	"context"

	"github.com/dshills/stormbus/dispatch"
	"github.com/dshills/stormbus/hierarchy"
)

// Event is the capability contract for broadcastable events.
type Event = hierarchy.Event

// Status is a listener's verdict after one delivery.
type Status = dispatch.Status

const (
	// Continue keeps the listener registered for future events.
	Continue = dispatch.Continue

	// Stop deregisters the listener after the current delivery.
	Stop = dispatch.Stop
)

// Listener is the interface for event listeners.
// The event parameter is type-erased; listeners should type-assert.
// Returning Stop deregisters the listener; returning an error logs the
// failure and permanently deactivates the listener.
type Listener interface {
	Listen(ctx context.Context, event any) (Status, error)
}

// ListenerFunc is a function adapter for Listener.
type ListenerFunc func(ctx context.Context, event any) (Status, error)

// Listen implements the Listener interface.
func (f ListenerFunc) Listen(ctx context.Context, event any) (Status, error) {
	return f(ctx, event)
}

// TypedListenerFunc is a type-safe listener for events of type T.
type TypedListenerFunc[T hierarchy.Event] func(ctx context.Context, ev T) (Status, error)

// As converts a TypedListenerFunc to a generic Listener.
// When T is an ancestor of the broadcast event's type, the embedded
// ancestor value is extracted and passed through; events of unrelated
// types are skipped with Continue.
func As[T hierarchy.Event](fn TypedListenerFunc[T]) Listener {
	return ListenerFunc(func(ctx context.Context, event any) (Status, error) {
		if ev, ok := event.(T); ok {
			return fn(ctx, ev)
		}
		if src, ok := event.(hierarchy.Event); ok {
			if ev, ok := hierarchy.Embedded[T](src); ok {
				return fn(ctx, ev)
			}
		}
		return Continue, nil
	})
}

// Stats contains event bus statistics.
type Stats struct {
	// EventsPublished is the number of Broadcast calls that were delivered
	// (the disable switch was off and the event was non-nil).
	EventsPublished uint64

	// ListenersExecuted is the number of listener executions.
	ListenersExecuted uint64

	// EventsDelivered is the number of executions that completed without
	// error or panic.
	EventsDelivered uint64

	// ListenerErrors is the number of listeners that returned errors.
	ListenerErrors uint64

	// ListenerPanics is the number of listeners that panicked.
	ListenerPanics uint64

	// ListenersStopped is the number of successful executions that
	// returned Stop.
	ListenersStopped uint64

	// HandlesRemoved is the number of handles unlinked from registries.
	HandlesRemoved uint64

	// ActiveHandles is the current number of non-terminal handles.
	ActiveHandles int

	// EventTypes is the number of event types with a registry.
	EventTypes int
}
