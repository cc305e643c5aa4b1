package adapters_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/momentics/hioaccept/adapters"
)

func TestControlAdapterConfigRoundtrip(t *testing.T) {
	c := adapters.NewControlAdapter("hioaccept-test")

	var reloaded bool
	c.OnReload(func() { reloaded = true })

	require.NoError(t, c.SetConfig(map[string]any{"backlog": 128}))
	require.True(t, reloaded)
	require.Equal(t, 128, c.GetConfig()["backlog"])
}

func TestControlAdapterStatsIncludesCountersAndProbes(t *testing.T) {
	c := adapters.NewControlAdapter("hioaccept-test")
	c.RegisterDebugProbe("live", func() any { return true })
	c.IncrCounter([]string{"accept", "total"}, 1)
	c.SetGauge([]string{"gate", "permits_in_use"}, 2)

	require.Eventually(t, func() bool {
		stats := c.Stats()
		_, hasProbe := stats["probe.live"]
		var hasCounter, hasGauge bool
		for k := range stats {
			hasCounter = hasCounter || strings.HasPrefix(k, "counter.")
			hasGauge = hasGauge || strings.HasPrefix(k, "gauge.")
		}
		return hasProbe && hasCounter && hasGauge
	}, time.Second, 10*time.Millisecond)
}
