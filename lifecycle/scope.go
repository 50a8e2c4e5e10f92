package lifecycle

import (
	"context"
	"sync"
)

// Scope is a node in a cancellation forest.
// The zero value is not usable; create scopes with NewScope or Bind.
type Scope struct {
	parent *Scope // non-owning back-reference, nil for roots

	mu        sync.Mutex
	cancelled bool
	done      chan struct{}
	children  []*Scope
	callbacks map[int]func()
	nextID    int
}

// NewScope creates a scope attached to parent. A nil parent creates a root.
// If the parent is already cancelled the new scope starts cancelled.
func NewScope(parent *Scope) *Scope {
	s := &Scope{
		parent:    parent,
		done:      make(chan struct{}),
		callbacks: make(map[int]func()),
	}
	if parent != nil && !parent.adopt(s) {
		s.cancelled = true
		close(s.done)
	}
	return s
}

// Bind creates a root scope that cancels when ctx is done.
func Bind(ctx context.Context) *Scope {
	s := NewScope(nil)
	if ctx != nil && ctx.Done() != nil {
		context.AfterFunc(ctx, s.Cancel)
	}
	return s
}

// adopt registers c as a child. Returns false if s is already cancelled.
func (s *Scope) adopt(c *Scope) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return false
	}
	s.children = append(s.children, c)
	return true
}

// Parent returns the parent scope, or nil for a root.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Cancelled reports whether the scope has been cancelled.
func (s *Scope) Cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

// Done returns a channel closed when the scope is cancelled.
func (s *Scope) Done() <-chan struct{} {
	return s.done
}

// Cancel cancels the scope, runs its OnCancel callbacks, and cancels every
// descendant. It is idempotent and safe for concurrent use.
func (s *Scope) Cancel() {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		return
	}
	s.cancelled = true
	close(s.done)
	children := s.children
	s.children = nil
	callbacks := make([]func(), 0, len(s.callbacks))
	for _, fn := range s.callbacks {
		callbacks = append(callbacks, fn)
	}
	s.callbacks = nil
	s.mu.Unlock()

	// Callbacks and child cancellation run outside the lock so a callback
	// may inspect or create scopes without deadlocking.
	for _, fn := range callbacks {
		fn()
	}
	for _, c := range children {
		c.Cancel()
	}
}

// OnCancel registers fn to run when the scope is cancelled. If the scope is
// already cancelled, fn runs immediately on the calling goroutine. The
// returned function unregisters fn; calling it after cancellation is a
// no-op.
func (s *Scope) OnCancel(fn func()) (remove func()) {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		fn()
		return func() {}
	}
	id := s.nextID
	s.nextID++
	s.callbacks[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		if s.callbacks != nil {
			delete(s.callbacks, id)
		}
		s.mu.Unlock()
	}
}
