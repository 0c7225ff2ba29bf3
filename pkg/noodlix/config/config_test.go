package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("NOODLIX_DATA_DIR", "/var/lib/noodlix")
	t.Setenv("NOODLIX_COMPRESS", "true")
	t.Setenv("NOODLIX_HOSTNAME", "box")
	t.Setenv("NOODLIX_FETCH_TIMEOUT", "2s")
	t.Setenv("NOODLIX_FETCH_RATE_LIMIT", "0.5")
	t.Setenv("NOODLIX_SCRIPT_TIMEOUT", "250ms")
	t.Setenv("NOODLIX_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/noodlix", cfg.DataDir)
	assert.True(t, cfg.Compress)
	assert.Equal(t, "box", cfg.Hostname)
	assert.Equal(t, 2*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 0.5, cfg.FetchRateLimit)
	assert.Equal(t, 250*time.Millisecond, cfg.ScriptTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "toor", cfg.RootPassword)
}

func TestLoad_IgnoresUnprefixedVariables(t *testing.T) {
	t.Setenv("HOSTNAME", "host-machine")
	t.Setenv("LOG_LEVEL", "trace")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "noodlix", cfg.Hostname)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("NOODLIX_FETCH_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
	assert.Equal(t, Default(), LoadOrDefault())
}
