package wsl

import (
	"context"
	"regexp"
	"strings"

	"github.com/hashicorp/go-version"
)

// SubsystemStatus is a point-in-time snapshot of the subsystem on the host.
type SubsystemStatus struct {
	Installed bool
	Enabled   bool

	// Version is the WSL package version, empty when unknown.
	Version string
}

// minSetDefaultUser is the first WSL release with "--manage <distro> --set-default-user".
var minSetDefaultUser = version.Must(version.NewVersion("2.4.4"))

// SupportsSetDefaultUser reports whether the native default-user subcommand exists.
func (s SubsystemStatus) SupportsSetDefaultUser() bool {
	if !s.Enabled || s.Version == "" {
		return false
	}
	v, err := version.NewVersion(s.Version)
	if err != nil {
		return false
	}
	return v.GreaterThanOrEqual(minSetDefaultUser)
}

// String renders the status for log lines.
func (s SubsystemStatus) String() string {
	switch {
	case !s.Installed:
		return "not installed"
	case !s.Enabled:
		return "installed, disabled"
	case s.Version == "":
		return "installed, enabled (version unknown)"
	default:
		return "installed, enabled (version " + s.Version + ")"
	}
}

// versionLine matches the first "<label>: X.Y.Z" line of "wsl.exe --version";
// the label is localized, the WSL package version always comes first.
var versionLine = regexp.MustCompile(`(?m)^[^:\n]*:\s*v?(\d+\.\d+\.\d+(?:\.\d+)?)\s*$`)

// ParseVersion extracts the WSL package version from "wsl.exe --version" output.
func ParseVersion(output string) string {
	m := versionLine.FindStringSubmatch(output)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// Probe classifies the subsystem. It never fails: anything that prevents the
// status query from running is reported as not installed, with a warning.
func (c *Client) Probe(ctx context.Context) SubsystemStatus {
	if _, err := c.runner.LookPath(c.binary); err != nil {
		c.logger.Warnf("WSL entry point %s not found: %v", c.binary, err)
		return SubsystemStatus{}
	}

	res, err := c.run(ctx, nil, "--status")
	if err != nil {
		c.logger.Warnf("WSL status query could not run: %v", err)
		return SubsystemStatus{}
	}
	if !res.Success() {
		return SubsystemStatus{Installed: true}
	}

	status := SubsystemStatus{Installed: true, Enabled: true}

	// The version query may fail on its own (inbox WSL has no --version).
	vres, err := c.run(ctx, nil, "--version")
	switch {
	case err != nil:
		c.logger.Warnf("WSL version query could not run: %v", err)
	case !vres.Success():
		c.logger.Warnf("WSL version query exited with code %d", vres.ExitCode)
	default:
		status.Version = ParseVersion(vres.Stdout)
	}

	return status
}
