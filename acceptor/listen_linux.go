//go:build linux
// +build linux

package acceptor

import (
	"context"
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// listenTCP opens a raw, non-blocking TCP listening socket via x/sys/unix.
// Going through the raw socket path rather than net.ListenConfig is what
// lets Bind honor cfg.Backlog: the stdlib's net.Listen hardcodes the
// kernel backlog to somaxconn and exposes no override.
func listenTCP(ctx context.Context, endpoint string, cfg Config) (*net.TCPListener, error) {
	addr, err := net.ResolveTCPAddr("tcp", endpoint)
	if err != nil {
		return nil, err
	}

	family := unix.AF_INET
	sa, err := tcpAddrToSockaddr(addr, &family)
	if err != nil {
		return nil, err
	}

	fd, err := unix.Socket(family, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return nil, fmt.Errorf("socket: %w", err)
	}
	closeOnErr := func() {
		_ = unix.Close(fd)
	}

	if cfg.ReuseAddress {
		// SO_REUSEADDR only, matching the non-Linux fallbacks: it lets a
		// bind reclaim a port stuck in TIME_WAIT, but must not also set
		// SO_REUSEPORT, which would let two listeners share the same
		// address and defeat the atomic-bind guarantee (a duplicate Bind
		// on an already-listening address must fail, not succeed).
		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
			closeOnErr()
			return nil, fmt.Errorf("SO_REUSEADDR: %w", err)
		}
	}

	if err := unix.Bind(fd, sa); err != nil {
		closeOnErr()
		return nil, fmt.Errorf("bind: %w", err)
	}

	backlog := cfg.Backlog
	if backlog <= 0 {
		backlog = unix.SOMAXCONN
	}
	if err := unix.Listen(fd, backlog); err != nil {
		closeOnErr()
		return nil, fmt.Errorf("listen: %w", err)
	}

	f := os.NewFile(uintptr(fd), "hioaccept-listener")
	ln, err := net.FileListener(f)
	// FileListener dup()s the fd; our copy must be closed either way.
	_ = f.Close()
	if err != nil {
		closeOnErr()
		return nil, fmt.Errorf("FileListener: %w", err)
	}
	tl, ok := ln.(*net.TCPListener)
	if !ok {
		ln.Close()
		return nil, fmt.Errorf("unexpected listener type %T for tcp endpoint", ln)
	}
	return tl, nil
}

func tcpAddrToSockaddr(addr *net.TCPAddr, family *int) (unix.Sockaddr, error) {
	if ip4 := addr.IP.To4(); ip4 != nil {
		*family = unix.AF_INET
		var sa unix.SockaddrInet4
		sa.Port = addr.Port
		copy(sa.Addr[:], ip4)
		return &sa, nil
	}
	if addr.IP == nil {
		*family = unix.AF_INET
		var sa unix.SockaddrInet4
		sa.Port = addr.Port
		return &sa, nil
	}
	*family = unix.AF_INET6
	var sa unix.SockaddrInet6
	sa.Port = addr.Port
	copy(sa.Addr[:], addr.IP.To16())
	if addr.Zone != "" {
		if iface, err := net.InterfaceByName(addr.Zone); err == nil {
			sa.ZoneId = uint32(iface.Index)
		}
	}
	return &sa, nil
}
