// Package gate implements AdmissionGate, the counting semaphore that bounds
// the number of concurrently live sessions an acceptor will admit.
//
// A permit is acquired before an accept operation is allowed to produce a
// session and released exactly once, when that session is destroyed (or,
// symmetrically, when the accept that would have produced it fails). Close
// permanently disables further acquires and wakes every blocked acquirer
// with api.ErrGateClosed.
package gate

import (
	"context"
	"sync"

	"github.com/momentics/hioaccept/api"
)

// AdmissionGate is a closable counting semaphore sized to maxConnections.
// The zero value is not usable; construct with New.
type AdmissionGate struct {
	tokens chan struct{}

	closeOnce sync.Once
	closeCh   chan struct{}
}

// New creates an AdmissionGate with capacity permits, all initially free.
// New panics if capacity <= 0; callers gate construction on maxConnections >
// 0 themselves (invariant: the gate exists iff admission control is
// enabled).
func New(capacity int) *AdmissionGate {
	if capacity <= 0 {
		panic("gate: capacity must be positive")
	}
	tokens := make(chan struct{}, capacity)
	for i := 0; i < capacity; i++ {
		tokens <- struct{}{}
	}
	return &AdmissionGate{
		tokens:  tokens,
		closeCh: make(chan struct{}),
	}
}

// Acquire blocks until a permit is available, the gate is closed, or ctx is
// done, whichever happens first. Returns api.ErrGateClosed if the gate was
// closed while waiting (or already closed), and ctx.Err() if ctx expired
// first.
func (g *AdmissionGate) Acquire(ctx context.Context) error {
	select {
	case <-g.closeCh:
		return api.ErrGateClosed
	default:
	}
	select {
	case <-g.tokens:
		return nil
	case <-g.closeCh:
		return api.ErrGateClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns one permit to the gate. Releasing more permits than were
// ever acquired is a caller bug; Release on a closed gate is a silent no-op
// since the token pool is being drained anyway.
func (g *AdmissionGate) Release() {
	select {
	case <-g.closeCh:
		return
	default:
	}
	select {
	case g.tokens <- struct{}{}:
	default:
		// Capacity exceeded: more releases than acquires. Nothing sane to do
		// with an already-full buffered channel; drop it rather than block
		// or panic a caller's accept-loop goroutine.
	}
}

// Close permanently disables Acquire, waking every blocked acquirer with
// api.ErrGateClosed. Idempotent.
func (g *AdmissionGate) Close() {
	g.closeOnce.Do(func() { close(g.closeCh) })
}

// Closed reports whether Close has been called.
func (g *AdmissionGate) Closed() bool {
	select {
	case <-g.closeCh:
		return true
	default:
		return false
	}
}

// Available returns a snapshot of the number of free permits. Intended for
// diagnostics; the value is stale the instant it is read under concurrent
// use.
func (g *AdmissionGate) Available() int {
	return len(g.tokens)
}
