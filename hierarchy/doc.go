// Package hierarchy resolves the type ancestry of events for hierarchical
// delivery.
//
// An event's ancestry is derived from Go struct embedding: a type that
// anonymously embeds another qualifying event type inherits its position in
// the hierarchy, so a listener registered on the embedded type receives
// events of every type that embeds it.
//
// # Qualifying Types
//
// A type qualifies as an event type when it (or its pointer form) implements
// the Event interface. Non-qualifying embedded types are skipped and their
// own embedded fields are not examined - a type cannot inherit event
// ancestry through a non-event intermediary.
//
// # Resolution Order
//
// Resolve returns the event's own runtime type first, followed by its
// qualifying embedded ancestors in depth-first field order, followed by any
// seeded interface supertypes the runtime type implements. The order is
// deterministic for a given type and each type appears at most once.
//
// # Caching
//
// Ancestry is a static property of a type, so CachedResolver memoizes
// resolution results per runtime type. Resolution cost is paid once per
// event type for the process lifetime.
//
// # Usage
//
//	type MessageEvent struct{}
//	func (MessageEvent) EventName() string { return "message" }
//
//	type GroupMessageEvent struct {
//	    MessageEvent
//	    GroupID string
//	}
//
//	r := hierarchy.NewResolver()
//	r.Resolve(GroupMessageEvent{})
//	// -> [GroupMessageEvent, MessageEvent]
package hierarchy
