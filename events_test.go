package stormbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dshills/stormbus/dispatch"
)

// Shared test fixtures: a two-level event hierarchy and a counting listener.

type BaseEvent struct{}

func (BaseEvent) EventName() string { return "base" }

type DerivedEvent struct {
	BaseEvent
	Seq int
}

type OtherEvent struct {
	Amount int
}

func (OtherEvent) EventName() string { return "other" }

// countListener counts invocations and can stop, error, or panic on demand.
type countListener struct {
	mu     sync.Mutex
	calls  int
	stopAt int // return Stop on this call number; 0 means never
	err    error
	panics bool
}

func (l *countListener) Listen(ctx context.Context, event any) (Status, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.panics {
		panic("listener boom")
	}
	if l.err != nil {
		return Continue, l.err
	}
	if l.stopAt > 0 && l.calls >= l.stopAt {
		return Stop, nil
	}
	return Continue, nil
}

func (l *countListener) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

// recordingSink collects fault records for assertions.
type recordingSink struct {
	mu     sync.Mutex
	faults []dispatch.Fault
}

func (s *recordingSink) Record(f dispatch.Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, f)
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.faults)
}

func (s *recordingSink) last() (dispatch.Fault, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.faults) == 0 {
		return dispatch.Fault{}, false
	}
	return s.faults[len(s.faults)-1], true
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
