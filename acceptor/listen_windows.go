//go:build windows
// +build windows

package acceptor

import (
	"context"
	"fmt"
	"net"
	"syscall"
)

// listenTCP falls back to net.ListenConfig on Windows, where x/sys/unix
// does not build. SO_REUSEADDR is applied via Control; cfg.Backlog has no
// effect here since the portable net package does not expose listen(2)'s
// backlog parameter.
func listenTCP(ctx context.Context, endpoint string, cfg Config) (*net.TCPListener, error) {
	lc := net.ListenConfig{}
	if cfg.ReuseAddress {
		lc.Control = func(_, _ string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				sockErr = syscall.SetsockoptInt(syscall.Handle(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1)
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
