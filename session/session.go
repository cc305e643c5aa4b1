// Package session implements the lifecycle primitive accepted connections
// are wrapped in once handed across the acceptor/SessionProcessor boundary,
// plus a sharded registry for tracking the sessions a processor currently
// owns.
package session

import (
	"net"
	"sync"
)

// Session is the concrete implementation of api.Session used by the
// reference SessionProcessor. It carries the accepted connection and an
// idempotent cancellation signal; Done() closes exactly once, at which
// point the acceptor releases the admission permit this session was
// created under.
type Session struct {
	id   string
	conn net.Conn

	done     chan struct{}
	doneOnce sync.Once
}

// New wraps conn as a Session identified by id. id must be unique among
// concurrently live sessions. Registry.Put does not enforce this: it
// replaces any entry with the same id and reports the replaced session.
func New(id string, conn net.Conn) *Session {
	return &Session{
		id:   id,
		conn: conn,
		done: make(chan struct{}),
	}
}

// ID returns this session's unique identifier.
func (s *Session) ID() string { return s.id }

// Conn returns the underlying accepted connection.
func (s *Session) Conn() net.Conn { return s.conn }

// Done returns a channel closed exactly once, at destruction.
func (s *Session) Done() <-chan struct{} { return s.done }

// Destroy closes the underlying connection and signals Done. Idempotent:
// only the first call has any effect, and only the first call's error (if
// any) from closing the connection is returned.
func (s *Session) Destroy() error {
	var err error
	s.doneOnce.Do(func() {
		if s.conn != nil {
			err = s.conn.Close()
		}
		close(s.done)
	})
	return err
}
