package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/momentics/hioaccept/acceptor"
	"github.com/momentics/hioaccept/adapters"
	"github.com/momentics/hioaccept/api"
	"github.com/momentics/hioaccept/sessionproc"
	"github.com/momentics/hioaccept/sink"
)

var _ api.GracefulShutdown = (*Server)(nil)

// Server is the facade orchestrating the acceptor, the reference session
// processor, and the control/metrics surface. Construct with New, bind
// endpoints with Start, and release everything with Shutdown.
type Server struct {
	cfg     *Config
	sink    api.ExceptionSink
	control *adapters.ControlAdapter

	processor *sessionproc.DefaultProcessor
	acceptor  *acceptor.Acceptor

	mu      sync.Mutex
	started bool
	actual  []string
}

// New builds a Server from cfg (DefaultConfig() if nil), applying opts in
// order.
func New(cfg *Config, opts ...ServerOption) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	s := &Server{
		cfg:     cfg,
		sink:    sink.Default(),
		control: adapters.NewControlAdapter("hioaccept"),
	}
	for _, opt := range opts {
		opt(s)
	}

	procCfg := sessionproc.DefaultConfig()
	procCfg.NUMANode = s.cfg.NUMANode
	procCfg.BufferSize = s.cfg.IOBufferSize
	procCfg.IdleInterval = s.cfg.IdleInterval
	procCfg.IdleTimeout = s.cfg.IdleTimeout
	s.processor = sessionproc.New(procCfg, s.sink)

	accCfg := acceptor.DefaultConfig()
	accCfg.MaxConnections = s.cfg.MaxConnections
	accCfg.Backlog = s.cfg.Backlog
	accCfg.ReuseAddress = s.cfg.ReuseAddress
	accCfg.Workers = s.cfg.Workers
	accCfg.NUMANode = s.cfg.NUMANode
	accCfg.OnAcceptComplete = s.recordAccept
	s.acceptor = acceptor.New(accCfg, s.processor, s.sink)

	s.control.SetConfig(map[string]any{
		"listen_addrs":    s.cfg.ListenAddrs,
		"max_connections": s.cfg.MaxConnections,
		"numa_node":       s.cfg.NUMANode,
	})
	s.control.RegisterDebugProbe("sessions.managed", func() any {
		return s.processor.Managed().Len()
	})
	s.control.RegisterDebugProbe("acceptor.executor", func() any {
		return s.acceptor.ExecutorStats()
	})
	s.control.RegisterDebugProbe("sessionproc.buffers", func() any {
		return s.processor.BufferPoolStats()
	})

	return s
}

// Start binds every configured endpoint. The idle-status checker is
// started by the acceptor itself as part of Bind. Returns the actual
// bound addresses (may differ from the configured ones when a port of 0
// was requested).
func (s *Server) Start(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return s.actual, nil
	}

	actual, err := s.acceptor.Bind(ctx, s.cfg.ListenAddrs)
	if err != nil {
		return nil, fmt.Errorf("server start: %w", err)
	}

	s.actual = actual
	s.started = true
	return actual, nil
}

// Shutdown disposes the acceptor and session processor, waiting up to
// cfg.ShutdownTimeout for graceful teardown.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	s.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- s.acceptor.Dispose()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(s.cfg.ShutdownTimeout):
		return fmt.Errorf("server shutdown: timeout after %v", s.cfg.ShutdownTimeout)
	}
}

// GetControl exposes dynamic config, metrics, and debug probes.
func (s *Server) GetControl() api.Control {
	return s.control
}

func (s *Server) recordAccept(addr string, err error) {
	if err != nil {
		s.control.IncrCounter([]string{"accept", "failed"}, 1)
		return
	}
	s.control.IncrCounter([]string{"accept", "total"}, 1)
}
