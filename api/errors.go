// Package api
//
// Common error types and error handling utilities for hioaccept.

package api

import "fmt"

// Common errors used across the library.
var (
	// ErrInvalidArgument is returned when a caller hands a SessionProcessor
	// an api.Session implementation it does not know how to handle.
	ErrInvalidArgument = fmt.Errorf("invalid argument")

	// ErrGateClosed is returned by AdmissionGate.Acquire once the gate has
	// been closed; it unblocks any acquire currently waiting.
	ErrGateClosed = fmt.Errorf("admission gate closed")

	// ErrAcceptorDisposed marks operations attempted on a disposed Acceptor.
	// Every acceptor operation except Dispose itself is a no-op once
	// disposed; callers that care can match this sentinel.
	ErrAcceptorDisposed = fmt.Errorf("acceptor disposed")
)
