package handlers

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/imamik/wsldev/internal/config"
	"github.com/imamik/wsldev/internal/logging"
	"github.com/imamik/wsldev/internal/platform/wsl"
	"github.com/imamik/wsldev/internal/provisioning"
	"github.com/imamik/wsldev/internal/provisioning/distro"
	testutil "github.com/imamik/wsldev/internal/testing"
	"github.com/imamik/wsldev/internal/util/prerequisites"
)

// saveAndRestoreFactories saves all factory variables and restores them after the test.
func saveAndRestoreFactories(t *testing.T) {
	t.Helper()
	origLoadConfig := loadConfig
	origNewLogger := newLogger
	origNewSubsystem := newSubsystem
	origNewValidationPhase := newValidationPhase
	origNewFontDownloader := newFontDownloader
	origStdin := stdin
	origNewStatusClient := newStatusClient
	origCheckTools := checkTools

	t.Cleanup(func() {
		loadConfig = origLoadConfig
		newLogger = origNewLogger
		newSubsystem = origNewSubsystem
		newValidationPhase = origNewValidationPhase
		newFontDownloader = origNewFontDownloader
		stdin = origStdin
		newStatusClient = origNewStatusClient
		checkTools = origCheckTools
	})
}

// stubRun wires a provision run to cfg and sub, with console output in the
// returned buffer and pre-flight checks passing.
func stubRun(t *testing.T, cfg *config.Config, sub distro.Subsystem) *bytes.Buffer {
	t.Helper()
	saveAndRestoreFactories(t)

	var console bytes.Buffer
	loadConfig = func(string) (*config.Config, error) { return cfg, nil }
	newLogger = func(*config.Config) (*logging.Logger, error) {
		return logging.New(logging.Options{Console: &console})
	}
	newSubsystem = func(*config.Config, wsl.Logger) distro.Subsystem { return sub }
	newValidationPhase = func() provisioning.Phase {
		return provisioning.NewPhase("validation", func(*provisioning.Context) error { return nil })
	}
	stdin = strings.NewReader("s3cret\n")
	return &console
}

type fakeStatusClient struct {
	status  wsl.SubsystemStatus
	records []wsl.DistributionRecord
	err     error
}

func (f *fakeStatusClient) Probe(context.Context) wsl.SubsystemStatus { return f.status }

func (f *fakeStatusClient) ListDistributions(context.Context) ([]wsl.DistributionRecord, error) {
	return f.records, f.err
}

func aliceConfig() *testutil.ConfigBuilder {
	return testutil.NewConfigBuilder().WithUsername("alice")
}

func stubTools(found ...string) func(string) *prerequisites.CheckResults {
	return func(string) *prerequisites.CheckResults {
		res := &prerequisites.CheckResults{}
		for _, tool := range append(prerequisites.DefaultTools("wsl.exe"), prerequisites.OptionalTools()...) {
			r := prerequisites.CheckResult{Tool: tool}
			for _, name := range found {
				if name == tool.Name {
					r.Found = true
					r.Path = `C:\bin\` + name
				}
			}
			if !r.Found {
				res.Missing = append(res.Missing, tool)
			}
			res.Results = append(res.Results, r)
		}
		return res
	}
}
