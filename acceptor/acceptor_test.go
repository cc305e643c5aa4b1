package acceptor_test

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/momentics/hioaccept/acceptor"
	"github.com/momentics/hioaccept/api"
)

// fakeProcessor is a minimal api.SessionProcessor that just tracks adds.
type fakeProcessor struct {
	mu    sync.Mutex
	added []api.Session
}

func (p *fakeProcessor) Add(s api.Session) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.added = append(p.added, s)
	return nil
}

func (p *fakeProcessor) Managed() api.ManagedSessions { return fakeManaged{} }
func (p *fakeProcessor) IdleChecker() api.IdleStatusChecker { return fakeIdle{} }
func (p *fakeProcessor) Dispose() error                     { return nil }

func (p *fakeProcessor) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.added)
}

type fakeManaged struct{}

func (fakeManaged) Range(func(api.Session)) {}
func (fakeManaged) Len() int                { return 0 }

type fakeIdle struct{}

func (fakeIdle) Start() {}
func (fakeIdle) Stop()  {}

func TestBindRollbackOnConflict(t *testing.T) {
	proc := &fakeProcessor{}
	a := acceptor.New(acceptor.DefaultConfig(), proc, nil)
	defer a.Dispose()

	// Bind one real endpoint then deliberately reuse its exact address to
	// force the second bind in a batch to fail (port already in use),
	// exercising the all-or-nothing rollback (S6).
	actual, err := a.Bind(context.Background(), []string{"127.0.0.1:0"})
	require.NoError(t, err)
	taken := actual[0]

	a2 := acceptor.New(acceptor.DefaultConfig(), proc, nil)
	defer a2.Dispose()
	_, err = a2.Bind(context.Background(), []string{taken, "127.0.0.1:0"})
	require.Error(t, err)

	// The failed batch must leave the original listener (owned by a) intact.
	conn, dialErr := net.DialTimeout("tcp", taken, 100*time.Millisecond)
	require.NoError(t, dialErr, "original listener must still be reachable")
	conn.Close()

	// A fresh bind on a2 (still undisposed) must succeed since the failed
	// batch left it empty.
	_, err = a2.Bind(context.Background(), []string{"127.0.0.1:0"})
	require.NoError(t, err)
}

func TestAdmissionSaturationEndToEnd(t *testing.T) {
	proc := &fakeProcessor{}
	cfg := acceptor.DefaultConfig()
	cfg.MaxConnections = 2
	a := acceptor.New(cfg, proc, nil)
	defer a.Dispose()

	actual, err := a.Bind(context.Background(), []string{"127.0.0.1:0"})
	require.NoError(t, err)
	addr := actual[0]

	var conns []net.Conn
	defer func() {
		for _, c := range conns {
			c.Close()
		}
	}()
	for i := 0; i < 3; i++ {
		c, err := net.DialTimeout("tcp", addr, time.Second)
		require.NoError(t, err)
		conns = append(conns, c)
	}

	require.Eventually(t, func() bool {
		return proc.count() == 2
	}, time.Second, 10*time.Millisecond, "exactly two sessions should be admitted promptly")

	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 2, proc.count(), "third connection must not be admitted while saturated")
}
