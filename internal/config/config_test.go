package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinvirt/internal/store"
	"pinvirt/internal/topology"
)

func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, store.DefaultPath, cfg.StateFile)
	assert.Equal(t, topology.DefaultCommand, cfg.TopologyCommand)
	assert.Equal(t, "warning", cfg.LogLevel)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "state_file: /var/lib/pinvirt/state.json\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/pinvirt/state.json", cfg.StateFile)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, topology.DefaultCommand, cfg.TopologyCommand)
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))
	t.Setenv("PINVIRT_STATE_FILE", "/tmp/pinvirt-test.json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/pinvirt-test.json", cfg.StateFile)
}
