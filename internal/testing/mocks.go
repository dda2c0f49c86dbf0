package testing

import (
	"context"
	"io"
	"slices"

	"github.com/imamik/wsldev/internal/platform/wsl"

	"github.com/stretchr/testify/mock"
)

// MockSubsystem is a mock implementation of the WSL subsystem surface used by
// the provisioner. Exec passes stdin to the mock as a string so expectations
// and assertions can inspect it.
type MockSubsystem struct {
	mock.Mock
}

// Probe returns the mocked subsystem status.
func (m *MockSubsystem) Probe(ctx context.Context) wsl.SubsystemStatus {
	args := m.Called(ctx)
	return args.Get(0).(wsl.SubsystemStatus)
}

// Find returns the mocked distribution lookup.
func (m *MockSubsystem) Find(ctx context.Context, name string) (wsl.DistributionRecord, bool, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(wsl.DistributionRecord), args.Bool(1), args.Error(2)
}

// Install records an install.
func (m *MockSubsystem) Install(ctx context.Context, name string, webDownload bool) error {
	args := m.Called(ctx, name, webDownload)
	return args.Error(0)
}

// RegisterWithLauncher records a launcher registration.
func (m *MockSubsystem) RegisterWithLauncher(ctx context.Context, launcher string) error {
	args := m.Called(ctx, launcher)
	return args.Error(0)
}

// Unregister records a forced unregister.
func (m *MockSubsystem) Unregister(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// Terminate records a terminate.
func (m *MockSubsystem) Terminate(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// SetDefaultUser records a native default-user binding.
func (m *MockSubsystem) SetDefaultUser(ctx context.Context, name, user string) error {
	args := m.Called(ctx, name, user)
	return args.Error(0)
}

// Exec records a command run inside a distribution.
func (m *MockSubsystem) Exec(ctx context.Context, distro, user string, stdin io.Reader, argv ...string) (wsl.Result, error) {
	var input string
	if stdin != nil {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return wsl.Result{ExitCode: -1}, err
		}
		input = string(data)
	}
	args := m.Called(ctx, distro, user, input, argv)
	return args.Get(0).(wsl.Result), args.Error(1)
}

// Argv matches an Exec argv that starts with head.
func Argv(head ...string) any {
	return mock.MatchedBy(func(argv []string) bool {
		return len(argv) >= len(head) && slices.Equal(argv[:len(head)], head)
	})
}

// ExecCalls returns the argv of every Exec call run as user.
func (m *MockSubsystem) ExecCalls(user string) [][]string {
	var calls [][]string
	for _, c := range m.Calls {
		if c.Method == "Exec" && c.Arguments.String(2) == user {
			calls = append(calls, c.Arguments.Get(4).([]string))
		}
	}
	return calls
}

// ExecStdin returns the stdin text of every Exec call whose argv starts with head.
func (m *MockSubsystem) ExecStdin(head ...string) []string {
	var inputs []string
	for _, c := range m.Calls {
		if c.Method != "Exec" {
			continue
		}
		argv := c.Arguments.Get(4).([]string)
		if len(argv) >= len(head) && slices.Equal(argv[:len(head)], head) {
			inputs = append(inputs, c.Arguments.String(3))
		}
	}
	return inputs
}

// NewMockSubsystem creates a MockSubsystem with no expectations.
func NewMockSubsystem() *MockSubsystem {
	return &MockSubsystem{}
}
