package server_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/momentics/hioaccept/server"
)

func TestServerStartAcceptsAndShutsDown(t *testing.T) {
	cfg := server.DefaultConfig()
	cfg.ListenAddrs = []string{"127.0.0.1:0"}
	s := server.New(cfg, server.WithMaxConnections(4))

	actual, err := s.Start(context.Background())
	require.NoError(t, err)
	require.Len(t, actual, 1)

	conn, err := net.DialTimeout("tcp", actual[0], time.Second)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		stats := s.GetControl().Stats()
		v, ok := stats["probe.sessions.managed"]
		if !ok {
			return false
		}
		n, ok := v.(int)
		return ok && n == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, s.Shutdown())
	require.NoError(t, s.Shutdown(), "shutdown must be idempotent")
}

func TestServerStartIsIdempotent(t *testing.T) {
	cfg := server.DefaultConfig()
	cfg.ListenAddrs = []string{"127.0.0.1:0"}
	s := server.New(cfg)
	defer s.Shutdown()

	first, err := s.Start(context.Background())
	require.NoError(t, err)
	second, err := s.Start(context.Background())
	require.NoError(t, err)
	require.Equal(t, first, second)
}
