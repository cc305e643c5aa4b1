// Package pool
// Author: momentics <momentics@gmail.com>
//
// NUMA-segmented buffer pooling for hioaccept's per-session read buffers,
// plus a small generic sync.Pool wrapper (objpool.go) for other reusable
// values. See bufferpool.go for the manager and bufferpool_linux.go /
// bufferpool_windows.go for the platform-specific pools.
package pool
