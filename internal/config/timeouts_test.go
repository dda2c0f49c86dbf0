package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadTimeouts_Defaults(t *testing.T) {
	clearTimeoutEnvVars(t)

	timeouts := LoadTimeouts()

	assert.Equal(t, 5*time.Second, timeouts.PollInterval)
	assert.Equal(t, 60*time.Second, timeouts.PollCeiling)
	assert.Equal(t, 3*time.Second, timeouts.SettleDelay)
	assert.Equal(t, 2*time.Second, timeouts.ReadyInterval)
	assert.Equal(t, 2*time.Minute, timeouts.ReadyCeiling)
	assert.Equal(t, 5*time.Minute, timeouts.Download)
}

func TestLoadTimeouts_EnvOverrides(t *testing.T) {
	clearTimeoutEnvVars(t)
	t.Setenv("WSLDEV_POLL_INTERVAL", "1s")
	t.Setenv("WSLDEV_POLL_CEILING", "30s")
	t.Setenv("WSLDEV_READY_CEILING", "5m")

	timeouts := LoadTimeouts()

	assert.Equal(t, 1*time.Second, timeouts.PollInterval)
	assert.Equal(t, 30*time.Second, timeouts.PollCeiling)
	assert.Equal(t, 5*time.Minute, timeouts.ReadyCeiling)
	assert.Equal(t, 3*time.Second, timeouts.SettleDelay)
}

func TestLoadTimeouts_InvalidValuesFallBack(t *testing.T) {
	clearTimeoutEnvVars(t)
	t.Setenv("WSLDEV_POLL_INTERVAL", "soon")
	t.Setenv("WSLDEV_POLL_CEILING", "-5s")

	timeouts := LoadTimeouts()

	assert.Equal(t, 5*time.Second, timeouts.PollInterval)
	assert.Equal(t, 60*time.Second, timeouts.PollCeiling)
}

func clearTimeoutEnvVars(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"WSLDEV_POLL_INTERVAL",
		"WSLDEV_POLL_CEILING",
		"WSLDEV_SETTLE_DELAY",
		"WSLDEV_READY_INTERVAL",
		"WSLDEV_READY_CEILING",
		"WSLDEV_DOWNLOAD_TIMEOUT",
	} {
		t.Setenv(name, "")
	}
}
