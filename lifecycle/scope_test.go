package lifecycle

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewScope(t *testing.T) {
	root := NewScope(nil)
	if root.Parent() != nil {
		t.Error("expected root to have no parent")
	}
	if root.Cancelled() {
		t.Error("expected new scope to not be cancelled")
	}

	child := NewScope(root)
	if child.Parent() != root {
		t.Error("expected child to reference its parent")
	}
}

func TestScope_CancelIdempotent(t *testing.T) {
	s := NewScope(nil)

	var calls atomic.Int32
	s.OnCancel(func() { calls.Add(1) })

	s.Cancel()
	s.Cancel()
	s.Cancel()

	if !s.Cancelled() {
		t.Error("expected scope to be cancelled")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("expected callback to run once, ran %d times", got)
	}

	select {
	case <-s.Done():
	default:
		t.Error("expected Done channel to be closed")
	}
}

func TestScope_CancelPropagatesToDescendants(t *testing.T) {
	root := NewScope(nil)
	child := NewScope(root)
	grandchild := NewScope(child)
	sibling := NewScope(nil)

	root.Cancel()

	if !child.Cancelled() {
		t.Error("expected child to be cancelled")
	}
	if !grandchild.Cancelled() {
		t.Error("expected grandchild to be cancelled")
	}
	if sibling.Cancelled() {
		t.Error("expected unrelated scope to be unaffected")
	}
}

func TestScope_ChildCancelDoesNotAffectParent(t *testing.T) {
	root := NewScope(nil)
	child := NewScope(root)
	other := NewScope(root)

	child.Cancel()

	if root.Cancelled() {
		t.Error("expected parent to be unaffected by child cancellation")
	}
	if other.Cancelled() {
		t.Error("expected sibling to be unaffected by child cancellation")
	}
}

func TestScope_ChildOfCancelledParentStartsCancelled(t *testing.T) {
	root := NewScope(nil)
	root.Cancel()

	child := NewScope(root)
	if !child.Cancelled() {
		t.Error("expected child of cancelled parent to start cancelled")
	}
	select {
	case <-child.Done():
	default:
		t.Error("expected Done channel to be closed")
	}
}

func TestScope_OnCancel(t *testing.T) {
	t.Run("runs on cancel", func(t *testing.T) {
		s := NewScope(nil)
		ran := false
		s.OnCancel(func() { ran = true })
		s.Cancel()
		if !ran {
			t.Error("expected callback to run")
		}
	})

	t.Run("remove prevents callback", func(t *testing.T) {
		s := NewScope(nil)
		ran := false
		remove := s.OnCancel(func() { ran = true })
		remove()
		s.Cancel()
		if ran {
			t.Error("expected removed callback to not run")
		}
	})

	t.Run("immediate when already cancelled", func(t *testing.T) {
		s := NewScope(nil)
		s.Cancel()
		ran := false
		s.OnCancel(func() { ran = true })
		if !ran {
			t.Error("expected callback to run immediately")
		}
	})
}

func TestScope_ConcurrentCancel(t *testing.T) {
	s := NewScope(nil)
	for i := 0; i < 16; i++ {
		NewScope(s)
	}

	var calls atomic.Int32
	s.OnCancel(func() { calls.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Cancel()
		}()
	}
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("expected callback to run once, ran %d times", got)
	}
}

func TestBind(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := Bind(ctx)

	if s.Cancelled() {
		t.Fatal("expected bound scope to start active")
	}

	cancel()

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("expected scope to cancel when context is done")
	}
}

func TestBind_BackgroundContext(t *testing.T) {
	s := Bind(context.Background())
	if s.Cancelled() {
		t.Error("expected scope bound to background context to stay active")
	}
	s.Cancel()
	if !s.Cancelled() {
		t.Error("expected direct cancel to work")
	}
}
