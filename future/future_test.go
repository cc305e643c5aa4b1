package future_test

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/momentics/hioaccept/api"
	"github.com/momentics/hioaccept/future"
)

type stubSession struct {
	id   string
	done chan struct{}
}

func newStubSession(id string) *stubSession {
	return &stubSession{id: id, done: make(chan struct{})}
}

func (s *stubSession) ID() string             { return s.id }
func (s *stubSession) Done() <-chan struct{}  { return s.done }

type recordingSink struct {
	mu   sync.Mutex
	errs []error
}

func (r *recordingSink) Report(component string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, fmt.Errorf("%s: %w", component, err))
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

// S1: basic latch — a listener registered before completion fires once,
// with the completed value, and Await unblocks.
func TestBasicLatch(t *testing.T) {
	sess := newStubSession("s1")
	f := future.New[int](sess, nil)

	var got int
	var fired atomic.Bool
	f.AddListener(func(_ api.Session, ev future.CompletionEvent[int]) error {
		v, ok := ev.Future.Value()
		require.True(t, ok)
		got = v
		fired.Store(true)
		return nil
	})

	go f.SetValue(42)

	f.Await()
	// SetValue wakes awaiters before it runs listeners, so the listener may
	// still be running when Await returns.
	require.Eventually(t, fired.Load, time.Second, time.Millisecond)
	require.True(t, fired.Load())
	require.Equal(t, 42, got)

	require.True(t, f.AwaitTimeout(0))
	v, ok := f.Value()
	require.True(t, ok)
	require.Equal(t, 42, v)
}

// S2: late register — set-value first, then a listener registered
// afterward is invoked synchronously, before AddListener returns.
func TestLateRegister(t *testing.T) {
	sess := newStubSession("s2")
	f := future.New[int](sess, nil)
	f.SetValue(7)

	var invoked bool
	f.AddListener(func(_ api.Session, ev future.CompletionEvent[int]) error {
		invoked = true
		v, _ := ev.Future.Value()
		require.Equal(t, 7, v)
		return nil
	})
	require.True(t, invoked, "listener must fire synchronously within AddListener")
}

// S3: timeout — a pending future's AwaitTimeout returns false after the
// deadline, and IsDone remains false.
func TestAwaitTimeout(t *testing.T) {
	sess := newStubSession("s3")
	f := future.New[int](sess, nil)

	start := time.Now()
	ok := f.AwaitTimeout(50 * time.Millisecond)
	elapsed := time.Since(start)

	require.False(t, ok)
	require.False(t, f.IsDone())
	require.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
}

// S4: listener exception isolation — one listener errors, the sink
// receives exactly one report, and the second listener still runs.
func TestListenerErrorIsolation(t *testing.T) {
	sess := newStubSession("s4")
	rs := &recordingSink{}
	f := future.New[int](sess, rs)

	var l2Ran bool
	f.AddListener(func(_ api.Session, _ future.CompletionEvent[int]) error {
		return errors.New("boom")
	})
	f.AddListener(func(_ api.Session, _ future.CompletionEvent[int]) error {
		l2Ran = true
		return nil
	})

	f.SetValue(1)

	require.True(t, l2Ran)
	require.Equal(t, 1, rs.count())
}

// Exactly-once delivery: a listener removed before completion never fires;
// one that survives fires exactly once even under concurrent adders.
func TestExactlyOnceUnderConcurrentAdd(t *testing.T) {
	sess := newStubSession("race")
	f := future.New[int](sess, nil)

	const n = 200
	var fireCount atomic.Int64
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			f.AddListener(func(_ api.Session, _ future.CompletionEvent[int]) error {
				fireCount.Add(1)
				return nil
			})
		}()
	}

	// Removed-before-completion listener must never fire.
	removedRan := false
	h := f.AddListener(func(_ api.Session, _ future.CompletionEvent[int]) error {
		removedRan = true
		return nil
	})
	f.RemoveListener(h)

	go f.SetValue(9)
	wg.Wait()
	f.Await()

	// Listeners fired by SetValue run after Await has been woken.
	require.Eventually(t, func() bool { return fireCount.Load() == n }, time.Second, time.Millisecond)
	require.EqualValues(t, n, fireCount.Load())
	require.False(t, removedRan)
}
