package hierarchy

import (
	"reflect"
	"sync"
)

// Resolver yields the ordered list of event types a broadcast must visit:
// the event's own runtime type followed by its qualifying ancestors.
type Resolver interface {
	Resolve(ev Event) []reflect.Type
}

// CachedResolver resolves ancestry from struct embedding and memoizes the
// result per runtime type. It is safe for concurrent use.
type CachedResolver struct {
	supertypes []reflect.Type
	cache      sync.Map // reflect.Type -> []reflect.Type
}

// ResolverOption configures a CachedResolver.
type ResolverOption func(*CachedResolver)

// WithSupertypes seeds interface supertypes to report as ancestors for any
// event type that implements them. Non-interface and non-qualifying types
// are ignored. Supertypes are reported after embedded ancestors, in the
// order given here.
func WithSupertypes(types ...reflect.Type) ResolverOption {
	return func(r *CachedResolver) {
		for _, t := range types {
			if t != nil && t.Kind() == reflect.Interface && Qualifies(t) {
				r.supertypes = append(r.supertypes, t)
			}
		}
	}
}

// NewResolver creates a resolver with the given options.
func NewResolver(opts ...ResolverOption) *CachedResolver {
	r := &CachedResolver{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the event's own type plus its qualifying ancestors.
// The returned slice is shared; callers must not modify it.
func (r *CachedResolver) Resolve(ev Event) []reflect.Type {
	rt := RuntimeType(ev)
	if rt == nil {
		return nil
	}
	if got, ok := r.cache.Load(rt); ok {
		return got.([]reflect.Type)
	}
	types := r.expand(rt)
	got, _ := r.cache.LoadOrStore(rt, types)
	return got.([]reflect.Type)
}

// expand lists rt followed by its qualifying ancestors: a depth-first walk
// over anonymous embedded fields that prunes branches rooted at
// non-qualifying types, then any seeded interface supertypes rt implements.
func (r *CachedResolver) expand(rt reflect.Type) []reflect.Type {
	types := []reflect.Type{rt}
	seen := map[reflect.Type]bool{rt: true}

	var walk func(t reflect.Type)
	walk = func(t reflect.Type) {
		if t.Kind() != reflect.Struct {
			return
		}
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.Anonymous {
				continue
			}
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if !Qualifies(ft) {
				// Non-qualifying types cannot own registries, and
				// nothing behind them can contribute ancestry.
				continue
			}
			if seen[ft] {
				continue
			}
			seen[ft] = true
			types = append(types, ft)
			walk(ft)
		}
	}
	walk(rt)

	for _, st := range r.supertypes {
		if seen[st] {
			continue
		}
		if rt.Implements(st) || reflect.PointerTo(rt).Implements(st) {
			seen[st] = true
			types = append(types, st)
		}
	}
	return types
}
