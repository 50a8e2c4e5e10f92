// Package lifecycle provides a cancellation forest for scoping
// subscriptions to a parent's lifetime.
//
// A Scope is a node in an explicit forest: children hold a non-owning
// reference to their parent, and cancellation flows strictly parent to
// child. Cancelling a child never affects its parent or siblings, and a
// child completing its work never cancels anything.
//
// # Cancellation Semantics
//
//   - Cancel is idempotent; cancelling a cancelled scope is a no-op.
//   - Cancelling a scope cancels every descendant, depth-first.
//   - A scope created under an already-cancelled parent starts cancelled.
//   - OnCancel callbacks run exactly once, on the goroutine that cancels.
//
// # Context Integration
//
// Bind ties a scope to a context.Context: when the context is done the
// scope cancels. This lets request-scoped or application-scoped contexts
// drive subscription teardown without manual bookkeeping.
//
//	scope := lifecycle.Bind(ctx)
//	child := lifecycle.NewScope(scope)
//	// child.Cancel() runs when ctx is done, or earlier if called directly.
package lifecycle
