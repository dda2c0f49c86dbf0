package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable wait values.
// These values can be customized via environment variables.
type Timeouts struct {
	PollInterval  time.Duration // Interval between inspections of a stuck distribution
	PollCeiling   time.Duration // Total wait before a stuck uninstall is force-unregistered
	SettleDelay   time.Duration // Wait after a forced unregister
	ReadyInterval time.Duration // Interval between readiness checks after install
	ReadyCeiling  time.Duration // Total wait for a fresh install to register
	Download      time.Duration // HTTP timeout for a single download attempt
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - WSLDEV_POLL_INTERVAL (default: 5s)
//   - WSLDEV_POLL_CEILING (default: 60s)
//   - WSLDEV_SETTLE_DELAY (default: 3s)
//   - WSLDEV_READY_INTERVAL (default: 2s)
//   - WSLDEV_READY_CEILING (default: 2m)
//   - WSLDEV_DOWNLOAD_TIMEOUT (default: 5m)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		PollInterval:  parseDuration("WSLDEV_POLL_INTERVAL", 5*time.Second),
		PollCeiling:   parseDuration("WSLDEV_POLL_CEILING", 60*time.Second),
		SettleDelay:   parseDuration("WSLDEV_SETTLE_DELAY", 3*time.Second),
		ReadyInterval: parseDuration("WSLDEV_READY_INTERVAL", 2*time.Second),
		ReadyCeiling:  parseDuration("WSLDEV_READY_CEILING", 2*time.Minute),
		Download:      parseDuration("WSLDEV_DOWNLOAD_TIMEOUT", 5*time.Minute),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set, not positive, or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}

	return d
}

// parseBool parses a boolean from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseBool(envVar string, defaultVal bool) bool {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}

	return b
}
