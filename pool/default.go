package pool

import (
	"sync"

	"github.com/momentics/hioaccept/api"
)

var (
	defaultOnce sync.Once
	defaultMgr  *BufferPoolManager
)

// DefaultManager returns a process-wide BufferPoolManager so all components
// reuse the same NUMA-segmented pools instead of fragmenting allocations.
func DefaultManager() *BufferPoolManager {
	defaultOnce.Do(func() {
		defaultMgr = NewBufferPoolManager()
	})
	return defaultMgr
}

// DefaultPool is a shortcut to fetch the default manager's pool for
// numaNode (-1 for system default).
func DefaultPool(numaNode int) api.BufferPool {
	return DefaultManager().GetPool(numaNode)
}
