package wsl

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DistributionState is the lifecycle state reported for a registered image.
type DistributionState string

const (
	StateStopped      DistributionState = "Stopped"
	StateRunning      DistributionState = "Running"
	StateInstalling   DistributionState = "Installing"
	StateUninstalling DistributionState = "Uninstalling"
	StateConverting   DistributionState = "Converting"
	StateUnknown      DistributionState = "Unknown"
)

// Transitional reports states in which the image must not be touched.
func (s DistributionState) Transitional() bool {
	switch s {
	case StateInstalling, StateUninstalling, StateConverting:
		return true
	default:
		return false
	}
}

// ParseState maps a state keyword to its DistributionState, case-insensitively.
func ParseState(s string) DistributionState {
	for _, st := range []DistributionState{StateStopped, StateRunning, StateInstalling, StateUninstalling, StateConverting} {
		if strings.EqualFold(s, string(st)) {
			return st
		}
	}
	return StateUnknown
}

// DistributionRecord is one registered image.
type DistributionRecord struct {
	Name      string
	State     DistributionState
	IsDefault bool

	// Version is the WSL architecture version (1 or 2), 0 when unknown.
	Version int
}

// verboseLine anchors on the trailing state keyword so names that contain a
// state word ("Running-Tests") still parse.
var verboseLine = regexp.MustCompile(`^(\*)?\s*(\S.*?)\s+(?i:(Stopped|Running|Installing|Uninstalling|Converting))(?:\s+(\d+))?$`)

// ParseVerboseList parses "wsl.exe --list --verbose" output:
//
//	  NAME            STATE           VERSION
//	* Ubuntu          Running         2
//	  Debian          Stopped         2
//
// Lines that do not end in a known state keyword are skipped.
func ParseVerboseList(output string) []DistributionRecord {
	var records []DistributionRecord
	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || isHeader(line) {
			continue
		}

		m := verboseLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		rec := DistributionRecord{
			Name:      strings.TrimSpace(m[2]),
			State:     ParseState(m[3]),
			IsDefault: m[1] == "*",
		}
		if m[4] != "" {
			rec.Version, _ = strconv.Atoi(m[4])
		}
		records = append(records, rec)
	}
	return records
}

func isHeader(line string) bool {
	fields := strings.Fields(line)
	return len(fields) >= 2 && fields[0] == "NAME" && fields[1] == "STATE"
}

// ParseQuietList parses "wsl.exe --list --quiet" output, one name per line.
// The state of every record is Unknown.
func ParseQuietList(output string) []DistributionRecord {
	var records []DistributionRecord
	for _, raw := range strings.Split(output, "\n") {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		records = append(records, DistributionRecord{Name: name, State: StateUnknown})
	}
	return records
}

// ListDistributions enumerates every registered image. The verbose listing is
// preferred; the names-only listing is a degraded fallback used when the
// verbose one fails or yields nothing parseable.
func (c *Client) ListDistributions(ctx context.Context) ([]DistributionRecord, error) {
	res, err := c.run(ctx, nil, "--list", "--verbose")
	switch {
	case err != nil:
		c.logger.Warnf("verbose distribution listing failed: %v", err)
	case !res.Success() && Classify(res.Output()) == CauseNoDistributions:
		return nil, nil
	case !res.Success():
		c.logger.Warnf("verbose distribution listing exited with code %d", res.ExitCode)
	default:
		if records := ParseVerboseList(res.Stdout); len(records) > 0 {
			return records, nil
		}
		c.logger.Warnf("verbose distribution listing could not be parsed, falling back to names only")
	}

	res, err = c.run(ctx, nil, "--list", "--quiet")
	if err != nil {
		return nil, fmt.Errorf("failed to list distributions: %w", err)
	}
	if !res.Success() {
		if Classify(res.Output()) == CauseNoDistributions {
			return nil, nil
		}
		return nil, newCommandError("list distributions", res)
	}
	return ParseQuietList(res.Stdout), nil
}

// FindDistribution picks the record for name: an exact (case-insensitive)
// match first, else the first record whose name contains name.
func FindDistribution(records []DistributionRecord, name string) (DistributionRecord, bool) {
	if name == "" {
		return DistributionRecord{}, false
	}
	for _, rec := range records {
		if strings.EqualFold(rec.Name, name) {
			return rec, true
		}
	}
	needle := strings.ToLower(name)
	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.Name), needle) {
			return rec, true
		}
	}
	return DistributionRecord{}, false
}

// Find lists the registered images and matches name against them.
func (c *Client) Find(ctx context.Context, name string) (DistributionRecord, bool, error) {
	records, err := c.ListDistributions(ctx)
	if err != nil {
		return DistributionRecord{}, false, err
	}
	rec, ok := FindDistribution(records, name)
	return rec, ok, nil
}
