// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// High-performance concurrency primitives for hioaccept with NUMA-aware,
// lock-free, and cross-platform support. Includes CPU/NUMA pinning and the
// worker-pool executor the accept loop dispatches onto.
//
// The pinning implementation is selected by build tags: Linux with and
// without cgo, Windows, and a no-op fallback elsewhere.
package concurrency
