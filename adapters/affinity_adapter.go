// File: adapters/affinity_adapter.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
// Description:
//   Adapter implementing the api.Affinity interface, delegating to
//   internal concurrency primitives for CPU and NUMA pinning.
//
// Package adapters provides glue code between the core API contracts
// and the internal implementation.

package adapters

import (
	"sync"

	"github.com/momentics/hioaccept/api"
	"github.com/momentics/hioaccept/internal/concurrency"
)

// AffinityAdapter implements api.Affinity using internal concurrency
// functions. sessionproc's idle-status checker (sessionproc/idle.go) creates
// one each time its scan goroutine starts and pins/unpins that goroutine to
// keep memory-resident scans local to the NUMA node its buffers came from.
type AffinityAdapter struct {
	mu          sync.Mutex
	currentCPU  int
	currentNUMA int
	pinned      bool
	scope       api.AffinityScope
}

// NewAffinityAdapter creates a new AffinityAdapter with default thread scope.
// Default CPU and NUMA IDs are set to -1 (no binding).
func NewAffinityAdapter() api.Affinity {
	return &AffinityAdapter{
		currentCPU:  -1,
		currentNUMA: -1,
		scope:       api.ScopeThread,
	}
}

// Pin assigns the calling entity (thread) to a specific CPU and/or NUMA node.
// cpuID -1 is replaced by concurrency.PreferredCPUID(numaID) (CPU 0 when
// numaID is also -1); numaID -1 is replaced by the calling thread's current
// NUMA node.
func (a *AffinityAdapter) Pin(cpuID int, numaID int) error {
	if cpuID == -1 {
		cpuID = concurrency.PreferredCPUID(numaID)
	}
	if numaID == -1 {
		numaID = concurrency.CurrentNUMANodeID()
	}

	if err := concurrency.PinCurrentThread(numaID, cpuID); err != nil {
		return err
	}

	a.mu.Lock()
	a.currentCPU = cpuID
	a.currentNUMA = numaID
	a.pinned = true
	a.mu.Unlock()
	return nil
}

// Unpin clears any CPU/NUMA binding, allowing the OS scheduler to migrate
// the thread. A no-op if this adapter never successfully pinned.
func (a *AffinityAdapter) Unpin() error {
	a.mu.Lock()
	if !a.pinned {
		a.mu.Unlock()
		return nil
	}
	a.mu.Unlock()

	if err := concurrency.UnpinCurrentThread(); err != nil {
		return err
	}

	a.mu.Lock()
	a.pinned = false
	a.currentCPU = -1
	a.currentNUMA = -1
	a.mu.Unlock()
	return nil
}

// Get returns the currently effective CPU and NUMA IDs for this adapter.
func (a *AffinityAdapter) Get() (cpuID int, numaID int, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentCPU, a.currentNUMA, nil
}

// Scope returns the binding scope (process, thread, or goroutine).
func (a *AffinityAdapter) Scope() api.AffinityScope {
	return a.scope
}

// ImmutableDescriptor returns a snapshot of the current binding state,
// useful for metrics, logging, or diagnostics.
func (a *AffinityAdapter) ImmutableDescriptor() api.AffinityDescriptor {
	a.mu.Lock()
	defer a.mu.Unlock()
	return api.AffinityDescriptor{
		CPUID:  a.currentCPU,
		NUMAID: a.currentNUMA,
		Scope:  a.scope,
		Pinned: a.pinned,
	}
}
