//go:build !linux && !windows
// +build !linux,!windows

package acceptor

import (
	"context"
	"fmt"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// listenTCP falls back to net.ListenConfig outside Linux. SO_REUSEADDR is
// still applied via Control; cfg.Backlog has no effect here since the
// portable net package does not expose listen(2)'s backlog parameter.
func listenTCP(ctx context.Context, endpoint string, cfg Config) (*net.TCPListener, error) {
	lc := net.ListenConfig{}
	if cfg.ReuseAddress {
		lc.Control = func(_, _ string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			})
			if err != nil {
				return err
			}
			return sockErr
		}
	}

	ln, err := lc.Listen(ctx, "tcp", endpoint)
	if err != nil {
		return nil, err
	}
	tl, ok := ln.(*net.TCPListener)
	if !ok {
		ln.Close()
		return nil, fmt.Errorf("unexpected listener type %T for tcp endpoint", ln)
	}
	return tl, nil
}
