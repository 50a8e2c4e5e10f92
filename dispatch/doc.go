// Package dispatch executes listeners on behalf of the event bus.
//
// The package provides the single point where listener code runs:
// Executor wraps one invocation with panic recovery, timing, and context
// checks; SyncDispatcher layers per-dispatcher statistics on top and is the
// delivery path used by broadcast passes.
//
// # Panic Recovery
//
// Every execution recovers from panics so one misbehaving listener cannot
// take down the broadcaster. A panicking listener yields a Result with
// Panicked set, the panic value, and the captured stack; the dispatcher
// treats it the same as a returned error. Panics are additionally reported
// through a configurable PanicHandler, which is itself recover-protected.
//
// # Fault Delivery
//
// FaultQueue delivers listener failure records to a FaultSink on a worker
// pool with a bounded queue. Enqueueing never blocks: when the queue is
// full the record is dropped and counted. This keeps a slow fault sink off
// the broadcast path entirely.
//
// # Usage
//
//	d := dispatch.NewSyncDispatcher(
//	    dispatch.WithPanicHandler(func(event any, v any, stack []byte) {
//	        log.Printf("listener panic: %v\n%s", v, stack)
//	    }),
//	)
//	result := d.Dispatch(ctx, event, listener)
//	if result.Failed() {
//	    // listener errored or panicked
//	}
package dispatch
