// Package server is the high-level facade wiring Config, the acceptor, the
// reference session processor, and the control/metrics surface into one
// object an application constructs once.
package server

import "time"

// Config holds all server-side configuration parameters.
type Config struct {
	ListenAddrs     []string      // TCP endpoints to bind, e.g. [":9000"]
	MaxConnections  int           // <= 0 disables admission control
	Backlog         int           // listen(2) backlog per endpoint
	ReuseAddress    bool          // SO_REUSEADDR on bind (never SO_REUSEPORT)
	IOBufferSize    int           // size of each session's read buffer
	NUMANode        int           // preferred NUMA node (-1 = auto)
	Workers         int           // accept-loop worker pool size (0 = NumCPU)
	IdleInterval    time.Duration // idle-status scan period (0 disables)
	IdleTimeout     time.Duration // session age before it is flagged idle
	ShutdownTimeout time.Duration // graceful shutdown timeout
}

// DefaultConfig returns sensible defaults: admission control disabled,
// reuse-address on, a 5s idle scan every 60s of session age, and a 30s
// shutdown timeout.
func DefaultConfig() *Config {
	return &Config{
		ListenAddrs:     []string{":9000"},
		MaxConnections:  0,
		Backlog:         128,
		ReuseAddress:    true,
		IOBufferSize:    64 * 1024,
		NUMANode:        -1,
		Workers:         0,
		IdleInterval:    5 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}
