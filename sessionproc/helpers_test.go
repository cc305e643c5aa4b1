package sessionproc_test

import (
	"net"
	"testing"

	"github.com/momentics/hioaccept/session"
)

func newTestSession(t *testing.T, id string, conn net.Conn) *session.Session {
	t.Helper()
	return session.New(id, conn)
}
