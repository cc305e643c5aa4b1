// Command echo-acceptor wires the acceptor, the reference session
// processor, and the control surface into a minimal TCP server for manual
// exercise: it prints the bound addresses and periodic stats, and the idle
// checker closes every accepted session once it reaches the idle timeout.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/momentics/hioaccept/server"
)

func main() {
	cfg := server.DefaultConfig()
	cfg.ListenAddrs = []string{":9000"}
	cfg.MaxConnections = 256
	cfg.IdleTimeout = 30 * time.Second

	s := server.New(cfg)

	actual, err := s.Start(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "echo-acceptor: start failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("[echo-acceptor] listening on %v\n", actual)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			fmt.Println("[echo-acceptor] shutting down")
			if err := s.Shutdown(); err != nil {
				fmt.Fprintf(os.Stderr, "echo-acceptor: shutdown error: %v\n", err)
				os.Exit(1)
			}
			return
		case <-ticker.C:
			stats := s.GetControl().Stats()
			fmt.Printf("[echo-acceptor] stats: %v\n", stats)
		}
	}
}
