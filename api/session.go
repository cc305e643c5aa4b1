// Package api
//
// Boundary contracts between the acceptor core and the session layer that
// owns accepted connections after handoff. These are named only by
// interface: the filter chain, codec filters, and idle-status policy that
// implement them are external collaborators, not part of this package.

package api

import "time"

// Session is a single connected endpoint's lifecycle context. The acceptor
// core treats it as opaque beyond the two properties below.
type Session interface {
	// ID returns an identity distinct from every other live session.
	ID() string

	// Done returns a channel closed exactly once, when the session is
	// destroyed. The acceptor subscribes to this to release admission
	// permits; it never inspects session state beyond this signal.
	Done() <-chan struct{}
}

// SessionProcessor owns the lifecycle of sessions after accept. The
// acceptor core consumes only the methods below.
type SessionProcessor interface {
	// Add hands a newly accepted session to the processor for registration
	// and I/O servicing. Add must not block on network I/O; it enqueues.
	Add(s Session) error

	// Managed exposes a read-only, live snapshot of sessions currently
	// owned by this processor, for idle detection and diagnostics.
	Managed() ManagedSessions

	// IdleChecker returns the idle-status checker paired with this
	// processor; the acceptor starts it when the first listener binds and
	// stops it when the acceptor is fully unbound or disposed.
	IdleChecker() IdleStatusChecker

	// Dispose releases any resources the processor owns. Called once at
	// acceptor shutdown.
	Dispose() error
}

// ManagedSessions is a read-only, point-in-time enumerable view over the
// sessions a processor currently owns.
type ManagedSessions interface {
	// Range calls fn for each currently managed session. fn cannot stop
	// the enumeration; Range always visits every session
	// present at the time it is called.
	Range(fn func(Session))

	// Len returns the number of sessions presently managed.
	Len() int
}

// IdleStatusChecker periodically scans a ManagedSessions snapshot to detect
// and react to idle connections. Start/Stop must be idempotent.
type IdleStatusChecker interface {
	Start()
	Stop()
}

// ExceptionSink is the process-wide sink to which background goroutines —
// accept-loop workers, listener callbacks, session-processor dispatch —
// report otherwise-unhandled errors. A single global default exists, but
// callers should treat it as an explicit injectable rather than reach for
// global state directly.
type ExceptionSink interface {
	// Report records an error raised on a background goroutine. Report
	// itself must never panic or block the reporting goroutine.
	Report(component string, err error)
}

// IdleDeadline is a convenience value object idle checkers can use to
// describe why a session was flagged.
type IdleDeadline struct {
	Since time.Time
}
