// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command definitions
// in the commands package. Handlers are framework-agnostic and can be tested
// independently of the CLI framework.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/imamik/wsldev/internal/config"
	"github.com/imamik/wsldev/internal/logging"
	"github.com/imamik/wsldev/internal/peripherals/font"
	"github.com/imamik/wsldev/internal/peripherals/prompt"
	"github.com/imamik/wsldev/internal/peripherals/settings"
	"github.com/imamik/wsldev/internal/platform/wsl"
	"github.com/imamik/wsldev/internal/provisioning"
	"github.com/imamik/wsldev/internal/provisioning/distro"
	"github.com/imamik/wsldev/internal/secret"
)

// passwordEnv is read when --password-stdin is not given.
const passwordEnv = "WSLDEV_PASSWORD"

// ProvisionOptions are the provision command's flags.
type ProvisionOptions struct {
	ConfigPath string
	Distro     string

	// DistroSet reports whether --distro was given explicitly; otherwise the
	// configured distribution wins.
	DistroSet bool

	Username      string
	PasswordStdin bool
	LogFile       string

	SkipFont     bool
	SkipPrompt   bool
	SkipTerminal bool
	SkipEditor   bool
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfig loads the configuration file and environment overrides.
	loadConfig = config.Load

	// newLogger creates the run logger.
	newLogger = func(cfg *config.Config) (*logging.Logger, error) {
		return logging.New(logging.Options{
			File:    cfg.LogFile,
			Console: os.Stdout,
			Styled:  isInteractiveTTY(),
		})
	}

	// newSubsystem creates the WSL client.
	newSubsystem = func(cfg *config.Config, logger wsl.Logger) distro.Subsystem {
		return wsl.NewClient(cfg.WSLBinary, wsl.NewCmdRunner(), logger)
	}

	// newValidationPhase creates the pre-flight phase.
	newValidationPhase = func() provisioning.Phase {
		return provisioning.NewValidationPhase()
	}

	// newFontDownloader creates the font archive client; nil uses the default.
	newFontDownloader = func() font.Downloader { return nil }

	// stdin is where --password-stdin reads from.
	stdin io.Reader = os.Stdin
)

// Provision installs and provisions a distribution.
//
// The distribution phase is fatal: any failure there returns an error. Font,
// prompt, and settings steps are best effort and only show up as warnings
// and in the summary.
func Provision(ctx context.Context, opts ProvisionOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyOptions(cfg, opts)

	if cfg.Username == "" {
		return errors.New("a username is required: pass --username or set WSLDEV_USERNAME")
	}

	password, err := readPassword(opts.PasswordStdin)
	if err != nil {
		return err
	}
	// The distro phase destroys the password when it returns. This covers
	// runs that fail before it starts.
	defer password.Destroy()

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer func() { _ = logger.Close() }()
	logger.Printf("wsldev %s run %s (log: %s)", cfg.Distro.Name, logger.RunID(), cfg.LogFile)

	sub := newSubsystem(cfg, logger)
	pctx := provisioning.NewContext(ctx, cfg, logger)

	request := &distro.ProvisioningRequest{
		DistroName: cfg.Distro.Name,
		Username:   cfg.Username,
		Password:   password,
	}
	distroPhase := distro.NewPhase(distro.NewProvisioner(sub, nil), request)

	phases := []provisioning.Phase{newValidationPhase(), distroPhase}
	phases = append(phases, peripheralPhases(cfg, sub)...)

	if err := provisioning.RunPhases(pctx, phases); err != nil {
		return err
	}

	printSummary(logger, pctx.State)
	return nil
}

// applyOptions layers command-line flags over the loaded configuration.
func applyOptions(cfg *config.Config, opts ProvisionOptions) {
	if opts.DistroSet && opts.Distro != "" {
		cfg.Distro.Name = opts.Distro
	}
	if opts.Username != "" {
		cfg.Username = opts.Username
	}
	if opts.LogFile != "" {
		cfg.LogFile = opts.LogFile
	}
	cfg.Skip.Font = cfg.Skip.Font || opts.SkipFont
	cfg.Skip.Prompt = cfg.Skip.Prompt || opts.SkipPrompt
	cfg.Skip.Terminal = cfg.Skip.Terminal || opts.SkipTerminal
	cfg.Skip.Editor = cfg.Skip.Editor || opts.SkipEditor
}

// peripheralPhases returns the best-effort steps that are not skipped.
func peripheralPhases(cfg *config.Config, sub distro.Subsystem) []provisioning.Phase {
	var phases []provisioning.Phase

	if !cfg.Skip.Prompt {
		installer := prompt.NewInstaller(sub, cfg.Prompt)
		phases = append(phases, provisioning.Peripheral("prompt", func(ctx *provisioning.Context) bool {
			return installer.Install(ctx, ctx.State.Distro, ctx.State.Username)
		}))
	}
	if !cfg.Skip.Font {
		installer := font.NewInstaller(cfg, newFontDownloader())
		phases = append(phases, provisioning.Peripheral("font", installer.Install))
	}

	patcher := settings.NewPatcher(cfg)
	if !cfg.Skip.Terminal {
		phases = append(phases, provisioning.Peripheral("terminal", patcher.PatchTerminalConfig))
	}
	if !cfg.Skip.Editor {
		phases = append(phases, provisioning.Peripheral("editor", patcher.PatchEditorConfig))
	}
	return phases
}

// readPassword reads the password from stdin or the environment. The
// environment variable is cleared once read.
func readPassword(fromStdin bool) (*secret.Secret, error) {
	if fromStdin {
		pw, err := secret.ReadLine(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read password from stdin: %w", err)
		}
		return pw, nil
	}

	if v, ok := os.LookupEnv(passwordEnv); ok && v != "" {
		_ = os.Unsetenv(passwordEnv)
		return secret.New([]byte(v)), nil
	}
	return nil, fmt.Errorf("a password is required: pass it on stdin with --password-stdin or set %s", passwordEnv)
}

func printSummary(logger *logging.Logger, state *provisioning.State) {
	logger.Successf("%s is ready, default user %s", state.Distro, state.Username)
	for _, name := range []string{"prompt", "font", "terminal", "editor"} {
		ok, ran := state.Peripherals[name]
		switch {
		case !ran:
			logger.Printf("  %-9s skipped", name)
		case ok:
			logger.Printf("  %-9s done", name)
		default:
			logger.Warnf("  %-9s failed (see log)", name)
		}
	}
}

func isInteractiveTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
