package acceptor

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/momentics/hioaccept/adapters"
	"github.com/momentics/hioaccept/api"
	"github.com/momentics/hioaccept/gate"
	"github.com/momentics/hioaccept/session"
	"github.com/momentics/hioaccept/sink"
)

// Acceptor holds the immutable config template, the ListenerSet, the
// optional AdmissionGate, the SessionProcessor handle, and the disposed
// flag, tied together with a worker pool that drives every bound
// listener's AcceptLoop.
type Acceptor struct {
	cfg           Config
	processor     api.SessionProcessor
	exceptionSink api.ExceptionSink

	listeners *ListenerSet

	mu    sync.Mutex // guards gate/exec/loops together (I5, I7)
	gate  *gate.AdmissionGate
	exec  api.Executor
	loops map[string]*AcceptLoop

	sessions atomic.Int64 // next session id counter

	disposed atomic.Bool
}

// New constructs an Acceptor bound to processor, with no listeners bound
// yet. exceptionSink may be nil to use the process-wide default.
func New(cfg Config, processor api.SessionProcessor, exceptionSink api.ExceptionSink) *Acceptor {
	if exceptionSink == nil {
		exceptionSink = sink.Default()
	}
	return &Acceptor{
		cfg:           cfg,
		processor:     processor,
		exceptionSink: exceptionSink,
		listeners:     newListenerSet(),
		loops:         make(map[string]*AcceptLoop),
	}
}

// Bind opens every requested endpoint atomically (all-or-nothing) and
// starts an AcceptLoop for each. The AdmissionGate is created the first
// time a listener is bound while MaxConnections > 0; it is shared across
// every listener bound afterward. A no-op on a disposed acceptor.
func (a *Acceptor) Bind(ctx context.Context, endpoints []string) ([]string, error) {
	if a.disposed.Load() {
		return nil, api.ErrAcceptorDisposed
	}

	actual, err := a.listeners.Bind(ctx, endpoints, a.cfg, a.exceptionSink)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.disposed.Load() {
		// Raced with Dispose between the atomic check above and acquiring
		// mu: undo the bind we just performed rather than leaving orphaned
		// listeners.
		a.listeners.Unbind(actual, a.exceptionSink)
		return nil, api.ErrAcceptorDisposed
	}

	if a.gate == nil && a.cfg.MaxConnections > 0 {
		a.gate = gate.New(a.cfg.MaxConnections)
	}
	if a.exec == nil {
		a.exec = adapters.NewExecutorAdapter(a.cfg.Workers, a.cfg.NUMANode)
	}

	// Start is idempotent, so calling it on every successful Bind (not
	// just the first) is safe and keeps the checker running across an
	// Unbind-to-empty/Bind-again cycle.
	a.processor.IdleChecker().Start()

	for _, addr := range actual {
		if _, already := a.loops[addr]; already {
			continue
		}
		l, ok := a.listeners.Get(addr)
		if !ok {
			continue
		}
		loop := newAcceptLoop(addr, l, a.gate, a.exec, Hooks{
			NewSession: a.newSession,
			EndAccept:  a.cfg.OnAcceptComplete,
		}, a.exceptionSink)
		a.loops[addr] = loop
		loop.start()
	}

	return actual, nil
}

// Unbind closes the listener for each requested endpoint and stops its
// AcceptLoop. When the ListenerSet becomes empty, the AdmissionGate is
// closed and discarded.
func (a *Acceptor) Unbind(endpoints []string) {
	if a.disposed.Load() {
		return
	}

	a.mu.Lock()
	for _, ep := range endpoints {
		if loop, ok := a.loops[ep]; ok {
			loop.stop()
			delete(a.loops, ep)
		}
	}
	a.mu.Unlock()

	a.listeners.Unbind(endpoints, a.exceptionSink)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listeners.Len() == 0 {
		if a.gate != nil {
			a.gate.Close()
			a.gate = nil
		}
		// Stop the idle-status checker once no listener remains to feed it
		// new sessions.
		a.processor.IdleChecker().Stop()
	}
}

// Dispose releases every resource the acceptor owns: every listening
// socket, the gate, and the worker pool. Idempotent; every operation except
// Dispose itself is a no-op once disposed.
func (a *Acceptor) Dispose() error {
	if !a.disposed.CompareAndSwap(false, true) {
		return nil
	}

	a.mu.Lock()
	for _, loop := range a.loops {
		loop.stop()
	}
	a.loops = make(map[string]*AcceptLoop)
	if a.gate != nil {
		a.gate.Close()
		a.gate = nil
	}
	exec := a.exec
	a.exec = nil
	a.mu.Unlock()

	a.listeners.CloseAll(a.exceptionSink)
	a.processor.IdleChecker().Stop()
	if exec != nil {
		exec.Close()
	}
	return a.processor.Dispose()
}

// ExecutorStats reports the worker pool's dispatch counters, or nil if no
// listener has been bound yet (the pool is created lazily on first Bind).
func (a *Acceptor) ExecutorStats() map[string]int64 {
	a.mu.Lock()
	exec := a.exec
	a.mu.Unlock()
	if exec == nil {
		return nil
	}
	return exec.Stats()
}

// newSession is the NewSession hook: it wraps an accepted connection as a
// session, hands it to the processor, and arranges for the admission
// permit to be released exactly once, when the session's Done channel
// closes — the sole release path.
func (a *Acceptor) newSession(conn net.Conn) error {
	id := fmt.Sprintf("sess-%d", a.sessions.Add(1))
	sess := session.New(id, conn)

	if err := a.processor.Add(sess); err != nil {
		return err
	}

	a.mu.Lock()
	g := a.gate
	a.mu.Unlock()
	if g != nil {
		go func() {
			<-sess.Done()
			g.Release()
		}()
	}
	return nil
}
