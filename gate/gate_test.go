package gate_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/momentics/hioaccept/api"
	"github.com/momentics/hioaccept/gate"
)

func TestAcquireReleaseConservation(t *testing.T) {
	g := gate.New(2)
	require.Equal(t, 2, g.Available())

	require.NoError(t, g.Acquire(context.Background()))
	require.Equal(t, 1, g.Available())
	require.NoError(t, g.Acquire(context.Background()))
	require.Equal(t, 0, g.Available())

	g.Release()
	require.Equal(t, 1, g.Available())
	g.Release()
	require.Equal(t, 2, g.Available())
}

// S5-style admission saturation: capacity 2, three acquirers race; the third
// only succeeds after one of the first two releases.
func TestAdmissionSaturation(t *testing.T) {
	g := gate.New(2)
	require.NoError(t, g.Acquire(context.Background()))
	require.NoError(t, g.Acquire(context.Background()))

	acquired := make(chan struct{})
	go func() {
		_ = g.Acquire(context.Background())
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("third acquire must not succeed while gate is saturated")
	case <-time.After(50 * time.Millisecond):
	}

	g.Release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("third acquire should succeed once a permit is released")
	}
}

func TestCloseUnblocksWaiters(t *testing.T) {
	g := gate.New(1)
	require.NoError(t, g.Acquire(context.Background()))

	var wg sync.WaitGroup
	errs := make([]error, 4)
	wg.Add(len(errs))
	for i := range errs {
		i := i
		go func() {
			defer wg.Done()
			errs[i] = g.Acquire(context.Background())
		}()
	}

	time.Sleep(20 * time.Millisecond)
	g.Close()
	wg.Wait()

	for _, err := range errs {
		require.ErrorIs(t, err, api.ErrGateClosed)
	}
	require.True(t, g.Closed())

	require.ErrorIs(t, g.Acquire(context.Background()), api.ErrGateClosed)
}

func TestAcquireRespectsContext(t *testing.T) {
	g := gate.New(1)
	require.NoError(t, g.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := g.Acquire(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClosePreventsDoubleCloseAndPanicFree(t *testing.T) {
	g := gate.New(1)
	require.NotPanics(t, func() {
		g.Close()
		g.Close()
	})
}
