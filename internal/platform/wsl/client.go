package wsl

import (
	"context"
	"fmt"
	"io"
)

// Logger receives diagnostics the client reports without failing.
type Logger interface {
	Warnf(format string, v ...any)
}

// Client issues commands against the subsystem entry point.
type Client struct {
	binary string
	runner Runner
	logger Logger
}

// NewClient creates a client for the given entry point (usually "wsl.exe").
func NewClient(binary string, runner Runner, logger Logger) *Client {
	return &Client{
		binary: binary,
		runner: runner,
		logger: logger,
	}
}

func (c *Client) run(ctx context.Context, stdin io.Reader, args ...string) (Result, error) {
	return c.runner.Run(ctx, stdin, c.binary, args...)
}

// runChecked runs a command and converts a non-zero exit into a *CommandError.
func (c *Client) runChecked(ctx context.Context, op string, args ...string) error {
	res, err := c.run(ctx, nil, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !res.Success() {
		return newCommandError(op, res)
	}
	return nil
}

// Install installs a distribution image without launching it.
func (c *Client) Install(ctx context.Context, name string, webDownload bool) error {
	args := []string{"--install", "--distribution", name, "--no-launch"}
	if webDownload {
		args = append(args, "--web-download")
	}
	return c.runChecked(ctx, fmt.Sprintf("install %s", name), args...)
}

// RegisterWithLauncher registers an installed image through its launcher,
// creating only the root account.
func (c *Client) RegisterWithLauncher(ctx context.Context, launcher string) error {
	res, err := c.runner.Run(ctx, nil, launcher, "install", "--root")
	if err != nil {
		return fmt.Errorf("register with %s: %w", launcher, err)
	}
	if !res.Success() {
		return newCommandError(fmt.Sprintf("register with %s", launcher), res)
	}
	return nil
}

// Unregister removes a distribution and all of its data.
func (c *Client) Unregister(ctx context.Context, name string) error {
	return c.runChecked(ctx, fmt.Sprintf("unregister %s", name), "--unregister", name)
}

// Terminate stops a running distribution.
func (c *Client) Terminate(ctx context.Context, name string) error {
	return c.runChecked(ctx, fmt.Sprintf("terminate %s", name), "--terminate", name)
}

// SetDefaultUser binds the default login user with the native subcommand.
// Only available on subsystem versions where SupportsSetDefaultUser is true.
func (c *Client) SetDefaultUser(ctx context.Context, name, user string) error {
	return c.runChecked(ctx, fmt.Sprintf("set default user of %s", name), "--manage", name, "--set-default-user", user)
}

// Exec runs argv inside a distribution as user without an intermediate shell.
// A non-zero exit is reported in the Result, not as an error.
func (c *Client) Exec(ctx context.Context, distro, user string, stdin io.Reader, argv ...string) (Result, error) {
	args := make([]string, 0, len(argv)+5)
	args = append(args, "--distribution", distro, "--user", user, "--exec")
	args = append(args, argv...)

	res, err := c.run(ctx, stdin, args...)
	if err != nil {
		return res, fmt.Errorf("exec in %s: %w", distro, err)
	}
	return res, nil
}
