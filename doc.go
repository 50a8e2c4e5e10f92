// Package stormbus provides an in-process, hierarchy-aware event bus.
//
// Listeners register against an event type and receive every broadcast of
// that type and of any type that embeds it, in registration order. Each
// subscription is represented by a Handle with an explicit lifecycle
// (active, paused, completed, cancelled) that can be linked to a parent
// lifecycle scope.
//
// # Architecture
//
//	                ┌─────────────────────────────────────────┐
//	                │                  Bus                     │
//	                │  - registry per event type (lazy)        │
//	                │  - hierarchy resolution                  │
//	                │  - broadcast pass with lazy removal      │
//	                └─────────────────────────────────────────┘
//	                                  │
//	        ┌─────────────────────────┼─────────────────────────┐
//	        ▼                         ▼                         ▼
//	┌───────────────┐       ┌─────────────────┐       ┌─────────────────┐
//	│   hierarchy   │       │    lifecycle    │       │    dispatch     │
//	│  - ancestry   │       │  - scope forest │       │  - executor     │
//	│    from       │       │  - parent→child │       │  - panic        │
//	│    embedding  │       │    cancellation │       │    recovery     │
//	└───────────────┘       └─────────────────┘       └─────────────────┘
//
// # Delivery Semantics
//
// Broadcast resolves the event's own type plus its qualifying ancestor
// types, then walks each type's registry once, invoking live handles
// strictly sequentially in registration order. A listener that returns
// Stop is removed during the same pass. A listener that errors or panics
// is logged through the fault sink, permanently completed, and removed;
// nothing ever propagates to the broadcaster.
//
// Handles are removed lazily: cancelling a handle (directly or through its
// parent scope) prevents future invocations immediately, but the registry
// entry is unlinked on the next broadcast pass that reaches it.
//
// # Quick Example
//
//	type MessageEvent struct{ Text string }
//	func (MessageEvent) EventName() string { return "message" }
//
//	bus := stormbus.New()
//	stormbus.On(bus, ctx, func(ctx context.Context, ev MessageEvent) (stormbus.Status, error) {
//	    fmt.Println(ev.Text)
//	    return stormbus.Continue, nil
//	})
//	bus.Broadcast(MessageEvent{Text: "hello"})
//
// Delivery can be suspended process-wide with Disable; registrations are
// untouched and delivery resumes with Enable.
package stormbus
