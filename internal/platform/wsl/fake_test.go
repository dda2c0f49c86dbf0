package wsl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

type fakeCall struct {
	name  string
	args  []string
	stdin string
}

type fakeResponse struct {
	res Result
	err error
}

// fakeRunner replays scripted results keyed by the joined argument list.
// The last response queued for a key repeats.
type fakeRunner struct {
	lookPathErr error
	responses   map[string][]fakeResponse
	calls       []fakeCall
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{responses: make(map[string][]fakeResponse)}
}

func (f *fakeRunner) on(args string, res Result) *fakeRunner {
	f.responses[args] = append(f.responses[args], fakeResponse{res: res})
	return f
}

func (f *fakeRunner) fail(args string, err error) *fakeRunner {
	f.responses[args] = append(f.responses[args], fakeResponse{res: Result{ExitCode: -1}, err: err})
	return f
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.lookPathErr != nil {
		return "", f.lookPathErr
	}
	return `C:\Windows\System32\` + name, nil
}

func (f *fakeRunner) Run(_ context.Context, stdin io.Reader, name string, args ...string) (Result, error) {
	c := fakeCall{name: name, args: args}
	if stdin != nil {
		data, _ := io.ReadAll(stdin)
		c.stdin = string(data)
	}
	f.calls = append(f.calls, c)

	key := strings.Join(args, " ")
	queue := f.responses[key]
	if len(queue) == 0 {
		return Result{ExitCode: 1, Stderr: fmt.Sprintf("unexpected command: %s %s", name, key)}, nil
	}
	resp := queue[0]
	if len(queue) > 1 {
		f.responses[key] = queue[1:]
	}
	return resp.res, resp.err
}

func (f *fakeRunner) count(args string) int {
	n := 0
	for _, c := range f.calls {
		if strings.Join(c.args, " ") == args {
			n++
		}
	}
	return n
}

type recordingLogger struct {
	warnings []string
}

func (l *recordingLogger) Warnf(format string, v ...any) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, v...))
}

var errNotFound = errors.New("executable file not found in %PATH%")
