// File: pool/bufferpool_linux.go
// +build linux

// Package pool
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux NUMA-segmented buffer pool backing sessionproc.DefaultProcessor's
// per-session read buffers (see sessionproc.Config.BufferSize).

package pool

import (
	"sync"
	"sync/atomic"

	"github.com/momentics/hioaccept/api"
)

// linuxBuffer implements api.Buffer, backed by a plain byte slice recycled
// through its owning pool's sync.Pool.
type linuxBuffer struct {
	data   []byte
	pool   *linuxBufferPool
	numaID int
	mu     sync.Mutex
	live   bool
}

func (b *linuxBuffer) Bytes() []byte { return b.data }

func (b *linuxBuffer) Slice(start, end int) api.Buffer {
	if start < 0 || end > len(b.data) || start > end {
		panic("pool: slice bounds out of range")
	}
	return &linuxBuffer{
		data:   b.data[start:end],
		pool:   b.pool,
		numaID: b.numaID,
		live:   false, // b owns the memory; releasing the slice is a no-op
	}
}

// Release returns the buffer to its pool. Double-release is a no-op, so a
// session's cleanup goroutine calling Release after an earlier Release (e.g.
// a buffer re-sliced and released twice) cannot double-count InUse.
func (b *linuxBuffer) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.live {
		return
	}
	b.live = false
	b.pool.put(b)
}

func (b *linuxBuffer) Copy() []byte {
	dst := make([]byte, len(b.data))
	copy(dst, b.data)
	return dst
}

func (b *linuxBuffer) NUMANode() int { return b.numaID }

// linuxBufferPool recycles linuxBuffers via sync.Pool, tracking the
// allocation/reuse counters sessionproc.DefaultProcessor surfaces through
// its "sessionproc.buffers" debug probe.
type linuxBufferPool struct {
	raw    sync.Pool
	numaID int

	totalAlloc int64
	totalFree  int64
	inUse      int64
}

func (bp *linuxBufferPool) Get(size, numaPreferred int) api.Buffer {
	atomic.AddInt64(&bp.inUse, 1)
	if v := bp.raw.Get(); v != nil {
		buf := v.(*linuxBuffer)
		if cap(buf.data) < size {
			buf.data = make([]byte, size)
			atomic.AddInt64(&bp.totalAlloc, 1)
		} else {
			buf.data = buf.data[:size]
		}
		buf.live = true
		return buf
	}
	atomic.AddInt64(&bp.totalAlloc, 1)
	return &linuxBuffer{data: make([]byte, size), pool: bp, numaID: bp.numaID, live: true}
}

func (bp *linuxBufferPool) put(b *linuxBuffer) {
	atomic.AddInt64(&bp.totalFree, 1)
	atomic.AddInt64(&bp.inUse, -1)
	bp.raw.Put(b)
}

func (bp *linuxBufferPool) Put(b api.Buffer) {
	if lb, ok := b.(*linuxBuffer); ok {
		lb.Release()
	}
}

func (bp *linuxBufferPool) Stats() api.BufferPoolStats {
	return api.BufferPoolStats{
		TotalAlloc: atomic.LoadInt64(&bp.totalAlloc),
		TotalFree:  atomic.LoadInt64(&bp.totalFree),
		InUse:      atomic.LoadInt64(&bp.inUse),
		NUMAStats:  map[int]int64{bp.numaID: atomic.LoadInt64(&bp.inUse)},
	}
}

// newBufferPool creates a buffer pool for numaNode on Linux.
func newBufferPool(numaNode int) api.BufferPool {
	return &linuxBufferPool{numaID: numaNode}
}
