package hierarchy

import "reflect"

// Event is the capability contract for broadcastable events.
// A type participates in hierarchical delivery only if it (or its pointer
// form) implements Event.
type Event interface {
	// EventName returns a stable, human-readable name for the event type.
	// It is used for logging, metrics labels, and name-based filters.
	EventName() string
}

// eventIface is the reflect view of the Event interface.
var eventIface = reflect.TypeOf((*Event)(nil)).Elem()

// TypeOf returns the registration type for T.
// T may be a concrete event type or an interface supertype.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// RuntimeType returns the runtime type of ev with pointer indirections
// removed. Returns nil for a nil event.
func RuntimeType(ev any) reflect.Type {
	rt := reflect.TypeOf(ev)
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	return rt
}

// Qualifies reports whether rt participates in the event contract.
// Interface types qualify when their method set includes Event's;
// concrete types qualify when the type or its pointer form implements Event.
func Qualifies(rt reflect.Type) bool {
	if rt == nil {
		return false
	}
	if rt.Kind() == reflect.Interface {
		return rt.Implements(eventIface)
	}
	return rt.Implements(eventIface) || reflect.PointerTo(rt).Implements(eventIface)
}

// Embedded extracts the ancestor value of type T embedded in ev.
// It searches anonymous fields depth-first, mirroring the order Resolve
// reports ancestors in. The second return is false if ev does not embed T.
func Embedded[T Event](ev Event) (T, bool) {
	var zero T
	target := TypeOf[T]()

	v := reflect.ValueOf(ev)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return zero, false
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return zero, false
	}
	if v.Type() == target {
		return v.Interface().(T), true
	}

	found, ok := findEmbedded(v, target)
	if !ok {
		return zero, false
	}
	out, ok := found.Interface().(T)
	return out, ok
}

// findEmbedded walks anonymous struct fields depth-first looking for target.
func findEmbedded(v reflect.Value, target reflect.Type) (reflect.Value, bool) {
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	rt := v.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.Anonymous || !f.IsExported() {
			continue
		}
		fv := v.Field(i)
		ft := f.Type
		if ft.Kind() == reflect.Pointer {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
			ft = ft.Elem()
		}
		if ft == target {
			return fv, true
		}
		if got, ok := findEmbedded(fv, target); ok {
			return got, true
		}
	}
	return reflect.Value{}, false
}
