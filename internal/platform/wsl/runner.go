package wsl

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"strings"

	"github.com/go-cmd/cmd"
	"golang.org/x/text/encoding/unicode"
)

// Result is the captured outcome of a finished command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success reports a zero exit code.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Output combines stderr and stdout. wsl.exe prints most errors on stdout.
func (r Result) Output() string {
	switch {
	case r.Stderr == "":
		return r.Stdout
	case r.Stdout == "":
		return r.Stderr
	default:
		return r.Stderr + "\n" + r.Stdout
	}
}

// Runner starts processes and waits for them.
type Runner interface {
	// LookPath resolves an executable the way the runner will start it.
	LookPath(name string) (string, error)

	// Run blocks until the process exits. The error is non-nil only when the
	// process could not be started or ctx ended first; a non-zero exit is
	// reported in Result.ExitCode.
	Run(ctx context.Context, stdin io.Reader, name string, args ...string) (Result, error)
}

// CmdRunner runs processes with go-cmd.
type CmdRunner struct {
	env []string
}

// NewCmdRunner creates a runner that inherits the current environment and
// asks wsl.exe for UTF-8 output.
func NewCmdRunner() *CmdRunner {
	return &CmdRunner{env: append(os.Environ(), "WSL_UTF8=1")}
}

// LookPath implements Runner.
func (r *CmdRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Run implements Runner.
func (r *CmdRunner) Run(ctx context.Context, stdin io.Reader, name string, args ...string) (Result, error) {
	c := cmd.NewCmdOptions(cmd.Options{Buffered: true}, name, args...)
	c.Env = r.env

	var statusChan <-chan cmd.Status
	if stdin != nil {
		statusChan = c.StartWithStdin(stdin)
	} else {
		statusChan = c.Start()
	}

	select {
	case <-ctx.Done():
		_ = c.Stop()
		<-statusChan
		return Result{ExitCode: -1}, ctx.Err()
	case status := <-statusChan:
		if status.Error != nil {
			return Result{ExitCode: -1}, fmt.Errorf("failed to run %s: %w", name, status.Error)
		}
		return Result{
			ExitCode: normalizeExitCode(status.Exit),
			Stdout:   decodeOutput(status.Stdout),
			Stderr:   decodeOutput(status.Stderr),
		}, nil
	}
}

// normalizeExitCode maps Windows' unsigned 32-bit exit codes back to their
// signed value so 0xFFFFFFFF reads as -1.
func normalizeExitCode(code int) int {
	if c := int64(code); c > math.MaxInt32 && c <= math.MaxUint32 {
		return int(int32(uint32(c)))
	}
	return code
}

var utf16Decoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// decodeOutput rejoins buffered lines and decodes UTF-16LE output when the
// text carries the NUL bytes that give it away.
func decodeOutput(lines []string) string {
	joined := strings.Join(lines, "\n")
	if strings.IndexByte(joined, 0) >= 0 {
		if decoded, err := utf16Decoder.NewDecoder().String(joined); err == nil {
			joined = decoded
		} else {
			joined = strings.ReplaceAll(joined, "\x00", "")
		}
	}
	joined = strings.TrimPrefix(joined, "\ufeff")
	return strings.ReplaceAll(joined, "\r", "")
}
