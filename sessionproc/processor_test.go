package sessionproc_test

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/momentics/hioaccept/sessionproc"
)

func TestAddRegistersAndCleansUpOnDestroy(t *testing.T) {
	cfg := sessionproc.DefaultConfig()
	cfg.IdleInterval = 0 // disable background scanning for this test
	p := sessionproc.New(cfg, nil)
	defer p.Dispose()

	c1, c2 := net.Pipe()
	defer c2.Close()

	sess := newTestSession(t, "s1", c1)
	require.NoError(t, p.Add(sess))
	require.Equal(t, 1, p.Managed().Len())

	require.NoError(t, sess.Destroy())

	require.Eventually(t, func() bool {
		return p.Managed().Len() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestIdleCheckerDestroysLongLivedSessions(t *testing.T) {
	cfg := sessionproc.DefaultConfig()
	cfg.IdleInterval = 10 * time.Millisecond
	cfg.IdleTimeout = 20 * time.Millisecond
	p := sessionproc.New(cfg, nil)
	defer p.Dispose()

	c1, c2 := net.Pipe()
	defer c2.Close()
	sess := newTestSession(t, "s1", c1)
	require.NoError(t, p.Add(sess))

	p.IdleChecker().Start()
	defer p.IdleChecker().Stop()

	require.Eventually(t, func() bool {
		select {
		case <-sess.Done():
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond, "idle checker should destroy a long-lived session")
}
