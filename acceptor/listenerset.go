package acceptor

import (
	"context"
	"fmt"
	"net"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/momentics/hioaccept/api"
)

// ListenerSet is the live mapping from bound local endpoint to open
// listening socket. Mutated only by Bind/Unbind/CloseAll under the write
// lock; readers go through Get or Range (which visits a snapshot) under the
// read lock, so nothing iterates it concurrently with a mutation. Each
// AcceptLoop holds its own listener and does not read the set.
type ListenerSet struct {
	mu        sync.RWMutex
	listeners map[string]*net.TCPListener
}

func newListenerSet() *ListenerSet {
	return &ListenerSet{listeners: make(map[string]*net.TCPListener)}
}

// Bind opens a listening socket for every requested endpoint concurrently
// and is all-or-nothing: if any endpoint fails, every socket opened during
// this call (including ones that succeeded) is closed, close errors are
// swallowed through sink, and the first failure is returned. On success,
// every opened listener is installed under its actual local address (which
// may differ from the request when port 0 was given) and the actual
// addresses are returned in input order.
func (ls *ListenerSet) Bind(ctx context.Context, endpoints []string, cfg Config, sink api.ExceptionSink) ([]string, error) {
	opened := make([]*net.TCPListener, len(endpoints))

	g, gctx := errgroup.WithContext(ctx)
	for i, ep := range endpoints {
		i, ep := i, ep
		g.Go(func() error {
			l, err := listenTCP(gctx, ep, cfg)
			if err != nil {
				return fmt.Errorf("bind %s: %w", ep, err)
			}
			opened[i] = l
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, l := range opened {
			if l == nil {
				continue
			}
			if cerr := l.Close(); cerr != nil {
				sink.Report("acceptor.bind.rollback", cerr)
			}
		}
		return nil, err
	}

	actual := make([]string, len(endpoints))
	ls.mu.Lock()
	for i, l := range opened {
		addr := l.Addr().String()
		actual[i] = addr
		ls.listeners[addr] = l
	}
	ls.mu.Unlock()

	return actual, nil
}

// Unbind closes and removes the listener registered under each requested
// endpoint. Endpoints not present are silently skipped (unbind idempotence,
// invariant/property 6).
func (ls *ListenerSet) Unbind(endpoints []string, sink api.ExceptionSink) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	for _, ep := range endpoints {
		l, ok := ls.listeners[ep]
		if !ok {
			continue
		}
		if err := l.Close(); err != nil {
			sink.Report("acceptor.unbind", err)
		}
		delete(ls.listeners, ep)
	}
}

// Get returns the listener currently bound under addr, if any.
func (ls *ListenerSet) Get(addr string) (*net.TCPListener, bool) {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	l, ok := ls.listeners[addr]
	return l, ok
}

// Range visits a snapshot of (address, listener) pairs bound at the moment
// of the call.
func (ls *ListenerSet) Range(fn func(addr string, l *net.TCPListener)) {
	ls.mu.RLock()
	snapshot := make(map[string]*net.TCPListener, len(ls.listeners))
	for k, v := range ls.listeners {
		snapshot[k] = v
	}
	ls.mu.RUnlock()
	for k, v := range snapshot {
		fn(k, v)
	}
}

// Len returns the number of currently bound listeners.
func (ls *ListenerSet) Len() int {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return len(ls.listeners)
}

// CloseAll closes every bound listener and empties the set. Used by
// Acceptor.Dispose.
func (ls *ListenerSet) CloseAll(sink api.ExceptionSink) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	for addr, l := range ls.listeners {
		if err := l.Close(); err != nil {
			sink.Report("acceptor.dispose", err)
		}
		delete(ls.listeners, addr)
	}
}
