package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesSpecRates(t *testing.T) {
	d := Default()
	assert.Equal(t, 1.0, d.Scheduler.DatalinkRateHz)
	assert.Equal(t, 4.0, d.Scheduler.CommsLinkRateHz)
	assert.Equal(t, 2.0, d.Scheduler.CommsRoutingRateHz)
	assert.False(t, d.Comms.ClampUtilization)
}

func TestLoadWithNoPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Bridge.BatchTimeoutS, cfg.Bridge.BatchTimeoutS)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadOverridesFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("comms:\n  clamp_utilization: true\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Comms.ClampUtilization)
}

func TestLoadOverridesFromEnvironment(t *testing.T) {
	t.Setenv("SIMCTL_BRIDGE_BATCH_TIMEOUT_S", "42")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 42.0, cfg.Bridge.BatchTimeoutS)
}

func TestSaveDefaultWritesReadableYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, SaveDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Conjunction.WatchThresholdM, cfg.Conjunction.WatchThresholdM)
}
