package session

import (
	"hash/fnv"
	"sync"

	"github.com/momentics/hioaccept/api"
)

// Registry is a sharded, thread-safe registry of live sessions. It
// implements api.ManagedSessions directly, so a SessionProcessor can expose
// a Registry as its Managed() view with no adapter.
type Registry struct {
	shards []*registryShard
	mask   uint32
}

type registryShard struct {
	mu   sync.RWMutex
	byID map[string]*Session
}

// NewRegistry builds a Registry with shardCount shards, rounded up to the
// next power of two; a non-positive shardCount uses 16. A small shard count is fine for modest
// connection counts; size it to expected concurrent session churn.
func NewRegistry(shardCount int) *Registry {
	if shardCount <= 0 {
		shardCount = 16
	}
	n := nextPowerOfTwo(uint32(shardCount))
	shards := make([]*registryShard, n)
	for i := range shards {
		shards[i] = &registryShard{byID: make(map[string]*Session)}
	}
	return &Registry{shards: shards, mask: n - 1}
}

func (r *Registry) shard(id string) *registryShard {
	return r.shards[fnv32(id)&r.mask]
}

// Put registers sess under its ID, replacing any prior entry with the same
// ID. Returns the replaced session, if any, so the caller can decide
// whether a collision is a bug.
func (r *Registry) Put(sess *Session) (prev *Session, replaced bool) {
	sh := r.shard(sess.ID())
	sh.mu.Lock()
	defer sh.mu.Unlock()
	prev, replaced = sh.byID[sess.ID()]
	sh.byID[sess.ID()] = sess
	return prev, replaced
}

// Get returns the session registered under id, if any.
func (r *Registry) Get(id string) (*Session, bool) {
	sh := r.shard(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	s, ok := sh.byID[id]
	return s, ok
}

// Remove drops the session registered under id. It does not call Destroy;
// callers that own the session's lifecycle destroy it themselves (typically
// before or after removing it from the registry) and react to Done to
// release admission permits.
func (r *Registry) Remove(id string) {
	sh := r.shard(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	delete(sh.byID, id)
}

// Range visits every session present at the time of the call, per
// api.ManagedSessions. Each shard is locked independently for the duration
// of its own scan, so a full-registry Range never blocks writers in other
// shards.
func (r *Registry) Range(fn func(api.Session)) {
	for _, sh := range r.shards {
		sh.mu.RLock()
		for _, s := range sh.byID {
			fn(s)
		}
		sh.mu.RUnlock()
	}
}

// Len returns the total number of sessions across all shards.
func (r *Registry) Len() int {
	total := 0
	for _, sh := range r.shards {
		sh.mu.RLock()
		total += len(sh.byID)
		sh.mu.RUnlock()
	}
	return total
}

func fnv32(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32()
}

func nextPowerOfTwo(v uint32) uint32 {
	if v == 0 {
		return 1
	}
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v++
	return v
}
