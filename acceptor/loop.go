package acceptor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"

	"github.com/momentics/hioaccept/api"
	"github.com/momentics/hioaccept/gate"
)

// loopState names the per-listener accept state machine: Armed, Waiting,
// AcceptInFlight, Completing, Stopped. Values only observed by tests;
// production code drives transitions internally.
type loopState int32

const (
	stateArmed loopState = iota
	stateWaiting
	stateAcceptInFlight
	stateCompleting
	stateStopped
)

// AcceptLoop drives asynchronous accept for a single bound listener:
// Armed -> (Waiting ->) AcceptInFlight -> Completing -> Armed, or -> Stopped
// on gate-closed / listener-closed.
type AcceptLoop struct {
	addr     string
	listener *net.TCPListener
	g        *gate.AdmissionGate
	exec     api.Executor
	hooks    Hooks
	sink     api.ExceptionSink

	state   atomic.Int32
	stopCh  chan struct{}
	stopped chan struct{}
}

// Hooks let the accept loop stay decoupled from session construction and
// accounting: NewSession builds a session wrapper around an accepted
// connection and hands it to the processor; EndAccept is invoked by the
// concrete accept primitive on every completion (success or failure) so
// higher layers can update metrics.
type Hooks struct {
	NewSession func(conn net.Conn) error
	EndAccept  func(addr string, err error)
}

func newAcceptLoop(addr string, l *net.TCPListener, g *gate.AdmissionGate, exec api.Executor, hooks Hooks, sink api.ExceptionSink) *AcceptLoop {
	al := &AcceptLoop{
		addr:     addr,
		listener: l,
		g:        g,
		exec:     exec,
		hooks:    hooks,
		sink:     sink,
		stopCh:   make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	al.state.Store(int32(stateArmed))
	return al
}

// start dispatches the first Armed->* transition and returns immediately;
// the loop continues re-arming itself until Stop is called or the listener
// closes.
func (al *AcceptLoop) start() {
	go al.arm()
}

// State returns the loop's current state, for tests/diagnostics only.
func (al *AcceptLoop) State() loopState {
	return loopState(al.state.Load())
}

// stop requests the loop terminate. It does not block; the loop observes
// stopCh the next time it would re-arm, and in-flight work unblocks via the
// listener/gate being closed by the caller.
func (al *AcceptLoop) stop() {
	select {
	case <-al.stopCh:
	default:
		close(al.stopCh)
	}
}

func (al *AcceptLoop) arm() {
	select {
	case <-al.stopCh:
		al.setState(stateStopped)
		close(al.stopped)
		return
	default:
	}
	al.setState(stateArmed)

	if al.g == nil {
		al.acceptInFlight()
		return
	}

	al.setState(stateWaiting)
	task := func() {
		if err := al.g.Acquire(context.Background()); err != nil {
			if errors.Is(err, api.ErrGateClosed) {
				al.setState(stateStopped)
				close(al.stopped)
				return
			}
			al.sink.Report("acceptor.gate.acquire", err)
			al.setState(stateStopped)
			close(al.stopped)
			return
		}
		al.acceptInFlight()
	}
	if err := al.exec.Submit(task); err != nil {
		// Executor saturated or closed: run inline rather than dropping the
		// accept slot silently.
		task()
	}
}

func (al *AcceptLoop) acceptInFlight() {
	al.setState(stateAcceptInFlight)

	conn, err := al.listener.Accept()
	if al.hooks.EndAccept != nil {
		al.hooks.EndAccept(al.addr, err)
	}
	if err != nil {
		al.releasePermit()
		if isClosedErr(err) {
			al.setState(stateStopped)
			close(al.stopped)
			return
		}
		al.sink.Report("acceptor.accept", err)
		go al.arm()
		return
	}

	al.completing(conn)
}

func (al *AcceptLoop) completing(conn net.Conn) {
	al.setState(stateCompleting)

	func() {
		defer func() {
			if r := recover(); r != nil {
				al.sink.Report("acceptor.session_init", panicErr{r})
				al.releasePermit()
				_ = conn.Close()
			}
		}()
		if err := al.hooks.NewSession(conn); err != nil {
			al.sink.Report("acceptor.session_init", err)
			al.releasePermit()
			_ = conn.Close()
		}
	}()

	go al.arm()
}

// releasePermit returns the admission slot acquired for an accept that
// never produced a live session (accept failure, or session-init failure).
// Without this, the permit would leak forever: it is never paired with a
// session-destroyed event because no session was ever created.
func (al *AcceptLoop) releasePermit() {
	if al.g != nil {
		al.g.Release()
	}
}

func (al *AcceptLoop) setState(s loopState) {
	al.state.Store(int32(s))
}

type panicErr struct{ v any }

func (p panicErr) Error() string { return fmt.Sprintf("session init panic: %v", p.v) }

func isClosedErr(err error) bool {
	return errors.Is(err, net.ErrClosed)
}
