package stormbus

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// registry holds the handles subscribed to one event type in registration
// order.
//
// The handle slice is copy-on-write behind an atomic pointer: broadcast
// passes iterate an immutable snapshot while subscriptions append and
// removals unlink through compare-and-swap loops. No lock is ever held
// around listener execution, appends never wait on an in-flight pass, and a
// handle appears in the slice at most once - so a pass can never invoke it
// twice, and an append that loses a race simply retries against the new
// slice and is never lost.
type registry struct {
	handles atomic.Pointer[[]*Handle]
}

func newRegistry() *registry {
	r := &registry{}
	empty := make([]*Handle, 0)
	r.handles.Store(&empty)
	return r
}

// add appends h in registration order.
func (r *registry) add(h *Handle) {
	for {
		old := r.handles.Load()
		next := make([]*Handle, len(*old)+1)
		copy(next, *old)
		next[len(*old)] = h
		if r.handles.CompareAndSwap(old, &next) {
			return
		}
	}
}

// remove unlinks h. A no-op if h is not present (a concurrent pass may have
// removed it already).
func (r *registry) remove(h *Handle) bool {
	for {
		old := r.handles.Load()
		idx := -1
		for i, cur := range *old {
			if cur == h {
				idx = i
				break
			}
		}
		if idx < 0 {
			return false
		}
		next := make([]*Handle, 0, len(*old)-1)
		next = append(next, (*old)[:idx]...)
		next = append(next, (*old)[idx+1:]...)
		if r.handles.CompareAndSwap(old, &next) {
			return true
		}
	}
}

// snapshot returns the current handle slice. Callers must not modify it.
func (r *registry) snapshot() []*Handle {
	return *r.handles.Load()
}

// registrySet lazily creates and caches exactly one registry per event
// type. Registries persist for the process lifetime even when emptied.
type registrySet struct {
	m sync.Map // reflect.Type -> *registry
}

// get returns the registry for rt, creating it on first access.
// Under concurrent first access exactly one registry wins and is shared by
// all racing callers.
func (s *registrySet) get(rt reflect.Type) *registry {
	if got, ok := s.m.Load(rt); ok {
		return got.(*registry)
	}
	got, _ := s.m.LoadOrStore(rt, newRegistry())
	return got.(*registry)
}

// rangeAll calls fn for every registry until fn returns false.
func (s *registrySet) rangeAll(fn func(rt reflect.Type, r *registry) bool) {
	s.m.Range(func(k, v any) bool {
		return fn(k.(reflect.Type), v.(*registry))
	})
}
