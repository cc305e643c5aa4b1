package concurrency

import "errors"

// ErrExecutorClosed is returned by Executor.Submit once Close has been
// called.
var ErrExecutorClosed = errors.New("executor is closed")
