package session_test

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/momentics/hioaccept/api"
	"github.com/momentics/hioaccept/session"
)

func TestDestroyIsIdempotent(t *testing.T) {
	c1, c2 := net.Pipe()
	defer c2.Close()
	s := session.New("s1", c1)

	require.NoError(t, s.Destroy())
	require.NoError(t, s.Destroy())

	select {
	case <-s.Done():
	default:
		t.Fatal("Done channel must be closed after Destroy")
	}
}

func TestRegistryPutGetRemove(t *testing.T) {
	r := session.NewRegistry(4)
	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()

	s := session.New("a", c1)
	prev, replaced := r.Put(s)
	require.False(t, replaced)
	require.Nil(t, prev)

	got, ok := r.Get("a")
	require.True(t, ok)
	require.Equal(t, s, got)
	require.Equal(t, 1, r.Len())

	r.Remove("a")
	_, ok = r.Get("a")
	require.False(t, ok)
	require.Equal(t, 0, r.Len())
}

func TestRegistryRangeVisitsAll(t *testing.T) {
	r := session.NewRegistry(4)
	const n = 50
	conns := make([]net.Conn, 0, n)
	for i := 0; i < n; i++ {
		c1, c2 := net.Pipe()
		conns = append(conns, c1, c2)
		r.Put(session.New(idFor(i), c1))
	}
	defer func() {
		for _, c := range conns {
			c.Close()
		}
	}()

	seen := make(map[string]bool)
	r.Range(func(s api.Session) {
		seen[s.ID()] = true
	})
	require.Len(t, seen, n)
	require.Equal(t, n, r.Len())
}

func idFor(i int) string {
	return "session-" + string(rune('a'+i%26)) + string(rune('0'+i/26))
}
