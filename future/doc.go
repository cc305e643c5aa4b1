// Package future implements CompletionFuture, a one-shot latch for the
// outcome of an operation bound to a session. A future starts
// pending and transitions exactly once to ready-with-value; listeners
// attached before or after that transition are each invoked exactly once.
package future
