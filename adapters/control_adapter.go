// File: adapters/control_adapter.go
// Package adapters provides glue code between the core API contracts
// and the internal implementation.
//
// ControlAdapter implements api.Control, backing Stats() with real
// counters and gauges from github.com/armon/go-metrics instead of a
// bespoke registry.

package adapters

import (
	"sync"
	"time"

	gometrics "github.com/armon/go-metrics"

	"github.com/momentics/hioaccept/api"
)

// ControlAdapter implements api.Control. Metrics are instance-scoped (a
// fresh *gometrics.Metrics per adapter) rather than routed through the
// library's process-wide global, so multiple acceptors in one process (or
// in tests) never share counters.
type ControlAdapter struct {
	mu       sync.RWMutex
	config   map[string]any
	onReload []func()
	probes   map[string]func() any

	metrics *gometrics.Metrics
	sink    *gometrics.InmemSink
}

// NewControlAdapter builds a ControlAdapter named serviceName for metric
// key prefixing.
func NewControlAdapter(serviceName string) *ControlAdapter {
	sink := gometrics.NewInmemSink(10*time.Second, time.Minute)
	cfg := gometrics.DefaultConfig(serviceName)
	cfg.EnableHostname = false
	m, _ := gometrics.New(cfg, sink)
	return &ControlAdapter{
		config:  make(map[string]any),
		probes:  make(map[string]func() any),
		metrics: m,
		sink:    sink,
	}
}

// GetConfig returns a snapshot of the current dynamic config.
func (c *ControlAdapter) GetConfig() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]any, len(c.config))
	for k, v := range c.config {
		out[k] = v
	}
	return out
}

// SetConfig replaces the dynamic config and fires every registered reload
// callback.
func (c *ControlAdapter) SetConfig(cfg map[string]any) error {
	c.mu.Lock()
	c.config = cfg
	callbacks := append([]func(){}, c.onReload...)
	c.mu.Unlock()
	for _, fn := range callbacks {
		fn()
	}
	return nil
}

// Stats returns the latest interval's counters/gauges plus every
// registered debug probe's current value.
func (c *ControlAdapter) Stats() map[string]any {
	out := make(map[string]any)

	intervals := c.sink.Data()
	if len(intervals) > 0 {
		latest := intervals[len(intervals)-1]
		latest.RLock()
		for name, v := range latest.Counters {
			if v.AggregateSample != nil {
				out["counter."+name] = v.AggregateSample.Sum
			}
		}
		for name, v := range latest.Gauges {
			out["gauge."+name] = v.Value
		}
		latest.RUnlock()
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	for name, fn := range c.probes {
		out["probe."+name] = fn()
	}
	return out
}

// OnReload registers fn to be invoked after every SetConfig.
func (c *ControlAdapter) OnReload(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReload = append(c.onReload, fn)
}

// RegisterDebugProbe registers fn under name; Stats() includes its current
// value on every call.
func (c *ControlAdapter) RegisterDebugProbe(name string, fn func() any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.probes[name] = fn
}

// IncrCounter bumps the named counter by delta. Exposed for components
// (the acceptor, the accept loop) to report throughput, separate from the
// api.Control read surface.
func (c *ControlAdapter) IncrCounter(key []string, delta float32) {
	c.metrics.IncrCounter(key, delta)
}

// SetGauge sets the named gauge to val.
func (c *ControlAdapter) SetGauge(key []string, val float32) {
	c.metrics.SetGauge(key, val)
}

var _ api.Control = (*ControlAdapter)(nil)
