package sessionproc

import (
	"sync"
	"time"

	"github.com/momentics/hioaccept/adapters"
	"github.com/momentics/hioaccept/api"
)

// idleChecker is a ticker-based api.IdleStatusChecker scanning the
// processor's managed sessions and destroying any that have been live
// longer than timeout.
type idleChecker struct {
	proc     *DefaultProcessor
	interval time.Duration
	timeout  time.Duration
	numaNode int

	mu      sync.Mutex
	stopCh  chan struct{}
	running bool
}

func newIdleChecker(proc *DefaultProcessor, interval, timeout time.Duration, numaNode int) *idleChecker {
	return &idleChecker{proc: proc, interval: interval, timeout: timeout, numaNode: numaNode}
}

// Start begins periodic scanning. A no-op if already running or if the
// configured interval is non-positive.
func (c *idleChecker) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running || c.interval <= 0 {
		return
	}
	c.running = true
	c.stopCh = make(chan struct{})
	go c.run(c.stopCh)
}

// Stop halts scanning. Idempotent.
func (c *idleChecker) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	close(c.stopCh)
	c.running = false
}

func (c *idleChecker) run(stopCh chan struct{}) {
	if c.numaNode >= 0 {
		affinity := adapters.NewAffinityAdapter()
		if err := affinity.Pin(-1, c.numaNode); err != nil {
			c.proc.sink.Report("sessionproc.idle.pin", err)
		} else {
			defer affinity.Unpin()
		}
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			c.scan()
		}
	}
}

func (c *idleChecker) scan() {
	now := time.Now()
	var idle []*sessionEntryHandle

	c.proc.Managed().Range(func(s api.Session) {
		sess, ok := s.(idleSession)
		if !ok {
			return
		}
		registeredAt, ok := c.proc.registeredAt(sess.ID())
		if !ok {
			return
		}
		if now.Sub(registeredAt) >= c.timeout {
			idle = append(idle, &sessionEntryHandle{sess: sess})
		}
	})

	for _, h := range idle {
		if err := h.sess.Destroy(); err != nil {
			c.proc.sink.Report("sessionproc.idle", err)
		}
	}
}

// idleSession is the subset of session.Session the idle checker needs;
// named as an interface so tests can substitute fakes without importing
// the concrete session type.
type idleSession interface {
	api.Session
	Destroy() error
}

type sessionEntryHandle struct {
	sess idleSession
}
