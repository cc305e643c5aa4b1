package future

import (
	"sync/atomic"

	"github.com/eapache/queue"
)

// listenerList is a copy-on-write, CAS-guarded FIFO of *ListenerHandle[T].
// Mutations never happen in place: every add/remove builds a fresh queue
// from the previous snapshot and swaps it in, so a concurrent reader that
// already holds a snapshot (via snapshot()) never observes a torn list. Ordering
// is preserved because eapache/queue is itself a FIFO and every rebuild
// walks the prior snapshot front-to-back.
type listenerList[T any] struct {
	ptr atomic.Pointer[queue.Queue]
}

func newListenerList[T any]() *listenerList[T] {
	l := &listenerList[T]{}
	l.ptr.Store(queue.New())
	return l
}

func (l *listenerList[T]) add(h *ListenerHandle[T]) {
	for {
		old := l.ptr.Load()
		next := queue.New()
		for i := 0; i < old.Length(); i++ {
			next.Add(old.Get(i))
		}
		next.Add(h)
		if l.ptr.CompareAndSwap(old, next) {
			return
		}
	}
}

// remove drops the first occurrence of h, by identity. A no-op if h is not
// present (already fired-and-forgotten handles are harmless to remove).
func (l *listenerList[T]) remove(h *ListenerHandle[T]) {
	for {
		old := l.ptr.Load()
		next := queue.New()
		removed := false
		for i := 0; i < old.Length(); i++ {
			entry := old.Get(i).(*ListenerHandle[T])
			if !removed && entry == h {
				removed = true
				continue
			}
			next.Add(entry)
		}
		if !removed {
			return
		}
		if l.ptr.CompareAndSwap(old, next) {
			return
		}
	}
}

// snapshot returns the listeners registered at the moment of the call, in
// registration order. The caller owns the returned slice.
func (l *listenerList[T]) snapshot() []*ListenerHandle[T] {
	q := l.ptr.Load()
	n := q.Length()
	if n == 0 {
		return nil
	}
	out := make([]*ListenerHandle[T], n)
	for i := 0; i < n; i++ {
		out[i] = q.Get(i).(*ListenerHandle[T])
	}
	return out
}
