// File: pool/bufferpool_windows.go
// +build windows

// Package pool
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Windows NUMA-segmented buffer pool backing sessionproc.DefaultProcessor's
// per-session read buffers (see sessionproc.Config.BufferSize). Falls back
// to a plain heap allocation whenever VirtualAlloc is refused, which is
// common for large-page requests without SeLockMemoryPrivilege.

package pool

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/momentics/hioaccept/api"
	"golang.org/x/sys/windows"
)

var (
	kern32           = windows.NewLazySystemDLL("kernel32.dll")
	procVirtualAlloc = kern32.NewProc("VirtualAlloc")
)

const memLargePages = 0x20000000

type windowsBuffer struct {
	data   []byte
	pool   *windowsBufferPool
	numaID int
}

func (b *windowsBuffer) Bytes() []byte { return b.data }
func (b *windowsBuffer) Release()      { b.pool.put(b) }
func (b *windowsBuffer) Copy() []byte {
	c := make([]byte, len(b.data))
	copy(c, b.data)
	return c
}
func (b *windowsBuffer) NUMANode() int { return b.numaID }
func (b *windowsBuffer) Slice(from, to int) api.Buffer {
	return &windowsBuffer{data: b.data[from:to], pool: b.pool, numaID: b.numaID}
}

// windowsBufferPool keeps one recycle channel per NUMA node, created lazily
// under mu rather than only at construction, so a pool asked for a node it
// wasn't built with (e.g. a later NUMANodes() change) still works.
type windowsBufferPool struct {
	mu    sync.Mutex
	pools map[int]chan *windowsBuffer

	totalAlloc int64
	totalFree  int64
	inUse      int64
}

func newBufferPool(numaNode int) api.BufferPool {
	return &windowsBufferPool{pools: map[int]chan *windowsBuffer{numaNode: make(chan *windowsBuffer, 1024)}}
}

func (p *windowsBufferPool) channel(numaPref int) chan *windowsBuffer {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, ok := p.pools[numaPref]
	if !ok {
		ch = make(chan *windowsBuffer, 1024)
		p.pools[numaPref] = ch
	}
	return ch
}

func (p *windowsBufferPool) Get(size, numaPref int) api.Buffer {
	atomic.AddInt64(&p.inUse, 1)
	ch := p.channel(numaPref)
	select {
	case buf := <-ch:
		if cap(buf.data) < size {
			buf.data = make([]byte, size)
			atomic.AddInt64(&p.totalAlloc, 1)
		} else {
			buf.data = buf.data[:size]
		}
		return buf
	default:
	}

	atomic.AddInt64(&p.totalAlloc, 1)
	addr, _, _ := procVirtualAlloc.Call(
		0, uintptr(size),
		windows.MEM_RESERVE|windows.MEM_COMMIT|memLargePages,
		windows.PAGE_READWRITE,
	)
	if addr == 0 {
		return &windowsBuffer{data: make([]byte, size), pool: p, numaID: numaPref}
	}
	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	return &windowsBuffer{data: data, pool: p, numaID: numaPref}
}

func (p *windowsBufferPool) put(b *windowsBuffer) {
	atomic.AddInt64(&p.totalFree, 1)
	atomic.AddInt64(&p.inUse, -1)
	ch := p.channel(b.numaID)
	select {
	case ch <- b:
	default:
	}
}

func (p *windowsBufferPool) Put(b api.Buffer) {
	if wb, ok := b.(*windowsBuffer); ok {
		p.put(wb)
	}
}

func (p *windowsBufferPool) Stats() api.BufferPoolStats {
	p.mu.Lock()
	node := 0
	for n := range p.pools {
		node = n
		break
	}
	p.mu.Unlock()
	return api.BufferPoolStats{
		TotalAlloc: atomic.LoadInt64(&p.totalAlloc),
		TotalFree:  atomic.LoadInt64(&p.totalFree),
		InUse:      atomic.LoadInt64(&p.inUse),
		NUMAStats:  map[int]int64{node: atomic.LoadInt64(&p.inUse)},
	}
}
