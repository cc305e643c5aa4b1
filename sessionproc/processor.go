// Package sessionproc provides a reference api.SessionProcessor: it
// registers accepted sessions in a sharded session.Registry, hands each one
// a NUMA-local read buffer from a pool.BufferPoolManager, and runs a
// ticker-based idle-status checker over the live snapshot. It exists to
// exercise the acceptor end-to-end; the filter/codec pipeline that would
// actually read and dispatch bytes on these buffers is out of scope.
package sessionproc

import (
	"sync"
	"time"

	"github.com/momentics/hioaccept/api"
	"github.com/momentics/hioaccept/pool"
	"github.com/momentics/hioaccept/session"
	"github.com/momentics/hioaccept/sink"
)

// Config configures a DefaultProcessor.
type Config struct {
	// ShardCount sizes the session registry's shard table.
	ShardCount int

	// NUMANode selects which BufferPoolManager pool new sessions draw
	// their read buffer from. -1 requests the system-default pool.
	NUMANode int

	// BufferSize is the read buffer handed to each accepted session.
	BufferSize int

	// IdleInterval is how often the idle checker scans managed sessions.
	// <= 0 disables idle scanning (Start becomes a no-op).
	IdleInterval time.Duration

	// IdleTimeout flags a session idle once it has been managed for at
	// least this long without being destroyed. This reference processor
	// has no I/O activity signal beyond session lifetime, so "idle" here
	// approximates "long-lived"; a real filter pipeline would reset an
	// activity timestamp per read/write instead.
	IdleTimeout time.Duration
}

// DefaultConfig returns reasonable defaults: 16 shards, system-default NUMA
// pool, 64KiB buffers, a 5s idle scan interval, and a 60s idle timeout.
func DefaultConfig() Config {
	return Config{
		ShardCount:   16,
		NUMANode:     -1,
		BufferSize:   64 * 1024,
		IdleInterval: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// sessionEntry pairs a session with the buffer it was handed and the time
// it was registered, for idle detection.
type sessionEntry struct {
	sess       *session.Session
	buf        api.Buffer
	registered time.Time
}

// DefaultProcessor is a reference api.SessionProcessor.
type DefaultProcessor struct {
	cfg Config

	bufPool api.BufferPool
	sink    api.ExceptionSink

	registry  *session.Registry
	entryPool *pool.SyncPool[*sessionEntry]

	mu      sync.Mutex
	entries map[string]*sessionEntry

	idle *idleChecker
}

// New constructs a DefaultProcessor. exceptionSink may be nil to use the
// process-wide default.
func New(cfg Config, exceptionSink api.ExceptionSink) *DefaultProcessor {
	if exceptionSink == nil {
		exceptionSink = sink.Default()
	}
	p := &DefaultProcessor{
		cfg:       cfg,
		bufPool:   pool.DefaultManager().GetPool(cfg.NUMANode),
		sink:      exceptionSink,
		registry:  session.NewRegistry(cfg.ShardCount),
		entryPool: pool.NewSyncPool(func() *sessionEntry { return &sessionEntry{} }),
		entries:   make(map[string]*sessionEntry),
	}
	p.idle = newIdleChecker(p, cfg.IdleInterval, cfg.IdleTimeout, cfg.NUMANode)
	return p
}

// Add registers s, hands it a NUMA-local read buffer, and arranges cleanup
// when s is destroyed. Must not block on network I/O; it only touches
// in-memory bookkeeping.
func (p *DefaultProcessor) Add(s api.Session) error {
	sess, ok := s.(*session.Session)
	if !ok {
		return api.ErrInvalidArgument
	}

	buf := p.bufPool.Get(p.cfg.BufferSize, p.cfg.NUMANode)
	entry := p.entryPool.Get()
	entry.sess = sess
	entry.buf = buf
	entry.registered = time.Now()

	p.registry.Put(sess)
	p.mu.Lock()
	p.entries[sess.ID()] = entry
	p.mu.Unlock()

	go func() {
		<-sess.Done()
		p.mu.Lock()
		delete(p.entries, sess.ID())
		p.mu.Unlock()
		p.registry.Remove(sess.ID())
		buf.Release()
		*entry = sessionEntry{}
		p.entryPool.Put(entry)
	}()

	return nil
}

// Managed exposes the live session registry for idle detection and
// diagnostics.
func (p *DefaultProcessor) Managed() api.ManagedSessions { return p.registry }

// BufferPoolStats reports the underlying read-buffer pool's allocation and
// reuse counters, surfaced through server.Server's control adapter.
func (p *DefaultProcessor) BufferPoolStats() api.BufferPoolStats { return p.bufPool.Stats() }

// IdleChecker returns this processor's idle-status checker.
func (p *DefaultProcessor) IdleChecker() api.IdleStatusChecker { return p.idle }

// Dispose stops the idle checker. It does not destroy sessions already
// added: their connections stay open and their Done channels are not
// closed until something calls Destroy on them.
func (p *DefaultProcessor) Dispose() error {
	p.idle.Stop()
	return nil
}

// registeredAt returns when id was added, for the idle checker.
func (p *DefaultProcessor) registeredAt(id string) (time.Time, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[id]
	if !ok {
		return time.Time{}, false
	}
	return e.registered, true
}
