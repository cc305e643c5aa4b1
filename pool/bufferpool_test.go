package pool_test

import (
	"testing"

	"github.com/momentics/hioaccept/pool"
)

func TestBufferPoolReuse(t *testing.T) {
	mgr := pool.NewBufferPoolManager()
	bp := mgr.GetPool(-1)
	b1 := bp.Get(128, -1)
	b1.Release()
	b2 := bp.Get(64, -1)
	if cap(b2.Bytes()) < 128 {
		t.Error("buffer capacity too small; reuse failed")
	}
}

func TestBufferPoolStats(t *testing.T) {
	mgr := pool.NewBufferPoolManager()
	bp := mgr.GetPool(-1)

	b := bp.Get(256, -1)
	if got := bp.Stats().InUse; got != 1 {
		t.Fatalf("InUse = %d, want 1", got)
	}
	b.Release()
	if got := bp.Stats().InUse; got != 0 {
		t.Fatalf("InUse after release = %d, want 0", got)
	}
	if got := bp.Stats().TotalAlloc; got < 1 {
		t.Fatalf("TotalAlloc = %d, want >= 1", got)
	}
}
