package testing

import (
	"github.com/imamik/wsldev/internal/platform/wsl"

	"github.com/stretchr/testify/mock"
)

// DistroFixture provides pre-configured mock subsystems for common scenarios.
type DistroFixture struct {
	mock   *MockSubsystem
	distro string
	user   string
	status wsl.SubsystemStatus
}

// NewDistroFixture creates a fixture for one distribution and user on a
// subsystem recent enough for the native default-user command.
func NewDistroFixture(distro, user string) *DistroFixture {
	return &DistroFixture{
		mock:   NewMockSubsystem(),
		distro: distro,
		user:   user,
		status: wsl.SubsystemStatus{Installed: true, Enabled: true, Version: "2.4.11.0"},
	}
}

// WithStatus overrides the probed subsystem status.
func (f *DistroFixture) WithStatus(status wsl.SubsystemStatus) *DistroFixture {
	f.status = status
	return f
}

// Mock returns the underlying MockSubsystem for custom configuration.
func (f *DistroFixture) Mock() *MockSubsystem {
	return f.mock
}

// Record returns a stopped record for the fixture's distribution.
func (f *DistroFixture) Record() wsl.DistributionRecord {
	return wsl.DistributionRecord{Name: f.distro, State: wsl.StateStopped, Version: 2}
}

// FreshInstall configures an environment without the distribution where
// every step succeeds. The first two lookups (resolver, inspection) find
// nothing; later ones find the installed image.
func (f *DistroFixture) FreshInstall() *MockSubsystem {
	f.mock.On("Probe", mock.Anything).Return(f.status)
	f.mock.On("Find", mock.Anything, f.distro).Return(wsl.DistributionRecord{}, false, nil).Times(2)
	f.mock.On("Find", mock.Anything, f.distro).Return(f.Record(), true, nil)
	f.mock.On("Install", mock.Anything, f.distro, false).Return(nil)
	f.UserCreation()
	return f.mock
}

// ExistingWithUser configures an installed distribution that already has the user.
func (f *DistroFixture) ExistingWithUser() *MockSubsystem {
	f.mock.On("Probe", mock.Anything).Return(f.status)
	f.mock.On("Find", mock.Anything, f.distro).Return(f.Record(), true, nil)
	f.mock.On("Exec", mock.Anything, f.distro, "root", "", []string{"id", "-u", f.user}).
		Return(wsl.Result{Stdout: "1000\n"}, nil)
	return f.mock
}

// ExistingWithoutUser configures an installed distribution lacking the user.
func (f *DistroFixture) ExistingWithoutUser() *MockSubsystem {
	f.mock.On("Probe", mock.Anything).Return(f.status)
	f.mock.On("Find", mock.Anything, f.distro).Return(f.Record(), true, nil)
	f.mock.On("Exec", mock.Anything, f.distro, "root", "", []string{"id", "-u", f.user}).
		Return(wsl.Result{ExitCode: 1, Stderr: "id: '" + f.user + "': no such user"}, nil)
	f.UserCreation()
	return f.mock
}

// UserCreation configures successful user creation, native binding, first
// boot, and verification.
func (f *DistroFixture) UserCreation() *MockSubsystem {
	f.mock.On("Exec", mock.Anything, f.distro, "root", "", Argv("useradd")).Return(wsl.Result{}, nil)
	f.mock.On("Exec", mock.Anything, f.distro, "root", mock.Anything, Argv("chpasswd")).Return(wsl.Result{}, nil)
	f.mock.On("SetDefaultUser", mock.Anything, f.distro, f.user).Return(nil)
	f.mock.On("Exec", mock.Anything, f.distro, f.user, mock.Anything, Argv("/bin/bash", "-c")).
		Return(wsl.Result{Stdout: "first boot complete\n"}, nil)
	f.mock.On("Exec", mock.Anything, f.distro, f.user, "", []string{"whoami"}).
		Return(wsl.Result{Stdout: f.user + "\n"}, nil)
	return f.mock
}
