package distro

import (
	"errors"
	"strings"
	"testing"

	"github.com/imamik/wsldev/internal/platform/wsl"
	"github.com/imamik/wsldev/internal/provisioning"
	testutil "github.com/imamik/wsldev/internal/testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var inProgress = &wsl.CommandError{
	Op:       "install Ubuntu",
	ExitCode: -1,
	Output:   "Another operation is in progress.\nError code: Wsl/InstallDistro/Service/0x8000000d",
}

func newTestProvisioner(sub Subsystem) (*Provisioner, *countingResolver, *testutil.FakeSleeper) {
	sleeper := &testutil.FakeSleeper{}
	inner := NewResolver(sub)
	inner.Sleep = sleeper.Sleep
	resolver := &countingResolver{inner: inner}
	p := NewProvisioner(sub, resolver)
	p.Sleep = sleeper.Sleep
	return p, resolver, sleeper
}

func TestProvision_FreshInstall(t *testing.T) {
	t.Parallel()
	sub := testutil.NewDistroFixture("Ubuntu", "alice").FreshInstall()
	p, resolver, _ := newTestProvisioner(sub)
	ctx, _ := newTestContext(t, nil)

	outcome := p.Provision(ctx, newRequest(t, "Ubuntu", "alice", "s3cret"))

	require.True(t, outcome.Success, outcome.ErrorDetail)
	assert.Equal(t, "alice", outcome.Username)
	assert.Equal(t, "Ubuntu", outcome.DistroName)
	assert.Equal(t, 1, resolver.calls)

	sub.AssertNumberOfCalls(t, "Install", 1)
	sub.AssertNumberOfCalls(t, "SetDefaultUser", 1)
	sub.AssertNotCalled(t, "RegisterWithLauncher", mock.Anything, mock.Anything)
	assert.Equal(t, [][]string{{"useradd", "-m", "-s", "/bin/bash", "-G", "sudo", "alice"}, {"chpasswd"}}, sub.ExecCalls("root"))

	userCalls := sub.ExecCalls("alice")
	require.Len(t, userCalls, 2)
	assert.Equal(t, []string{"/bin/bash", "-c"}, userCalls[0][:2], "first boot runs as the user")
	assert.Equal(t, []string{"whoami"}, userCalls[1], "verification runs last")

	assert.True(t, ctx.State.Provisioned)
	assert.Equal(t, "Ubuntu", ctx.State.Distro)
}

func TestProvision_PasswordOnlyOnStdin(t *testing.T) {
	t.Parallel()
	sub := testutil.NewDistroFixture("Ubuntu", "alice").FreshInstall()
	p, _, _ := newTestProvisioner(sub)
	ctx, observer := newTestContext(t, nil)

	outcome := p.Provision(ctx, newRequest(t, "Ubuntu", "alice", "hunter2"))
	require.True(t, outcome.Success, outcome.ErrorDetail)

	assert.Equal(t, []string{"alice:hunter2\n"}, sub.ExecStdin("chpasswd"))
	assert.Equal(t, []string{"hunter2\n"}, sub.ExecStdin("/bin/bash", "-c"))

	for _, c := range sub.Calls {
		if c.Method == "Exec" {
			assert.NotContains(t, strings.Join(c.Arguments.Get(4).([]string), " "), "hunter2")
		}
	}
	for _, msg := range observer.All() {
		assert.NotContains(t, msg, "hunter2")
	}
}

func TestProvision_RoundTrip(t *testing.T) {
	t.Parallel()
	sub := testutil.NewDistroFixture("Ubuntu", "devuser").FreshInstall()
	p, _, _ := newTestProvisioner(sub)
	ctx, _ := newTestContext(t, nil)

	outcome := p.Provision(ctx, newRequest(t, "Ubuntu", "devuser", "pw"))

	assert.True(t, outcome.Success)
	assert.Equal(t, "devuser", outcome.Username)
	assert.Empty(t, outcome.ErrorDetail)
}

func TestProvision_ContentionRetriesInstallOnce(t *testing.T) {
	t.Parallel()
	fixture := testutil.NewDistroFixture("Ubuntu", "alice")
	sub := fixture.Mock()
	sub.On("Probe", mock.Anything).Return(wsl.SubsystemStatus{Installed: true, Enabled: true, Version: "2.4.11.0"})
	// Resolver and inspection find nothing; after the failed install the
	// resolver sees the image Stopped.
	sub.On("Find", mock.Anything, "Ubuntu").Return(wsl.DistributionRecord{}, false, nil).Times(2)
	sub.On("Find", mock.Anything, "Ubuntu").Return(fixture.Record(), true, nil)
	sub.On("Install", mock.Anything, "Ubuntu", false).Return(inProgress).Once()
	sub.On("Install", mock.Anything, "Ubuntu", false).Return(nil).Once()
	fixture.UserCreation()

	p, resolver, _ := newTestProvisioner(sub)
	ctx, observer := newTestContext(t, nil)

	outcome := p.Provision(ctx, newRequest(t, "Ubuntu", "alice", "pw"))

	require.True(t, outcome.Success, outcome.ErrorDetail)
	assert.Equal(t, 2, resolver.calls)
	sub.AssertNumberOfCalls(t, "Install", 2)
	assert.True(t, observer.HasWarning("Another WSL operation is in progress"))
}

func TestProvision_ContentionTwiceFails(t *testing.T) {
	t.Parallel()
	sub := testutil.NewMockSubsystem()
	sub.On("Probe", mock.Anything).Return(wsl.SubsystemStatus{Installed: true, Enabled: true})
	sub.On("Find", mock.Anything, "Ubuntu").Return(wsl.DistributionRecord{}, false, nil)
	sub.On("Install", mock.Anything, "Ubuntu", false).Return(inProgress)

	p, resolver, _ := newTestProvisioner(sub)
	ctx, _ := newTestContext(t, nil)

	outcome := p.Provision(ctx, newRequest(t, "Ubuntu", "alice", "pw"))

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.ErrorDetail, "in progress")
	assert.Equal(t, 2, resolver.calls)
	sub.AssertNumberOfCalls(t, "Install", 2)
	sub.AssertNotCalled(t, "Exec", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProvision_NonContentionInstallErrorIsNotRetried(t *testing.T) {
	t.Parallel()
	sub := testutil.NewMockSubsystem()
	sub.On("Probe", mock.Anything).Return(wsl.SubsystemStatus{Installed: true, Enabled: true})
	sub.On("Find", mock.Anything, "Ubuntu").Return(wsl.DistributionRecord{}, false, nil)
	sub.On("Install", mock.Anything, "Ubuntu", false).Return(&wsl.CommandError{
		Op:       "install Ubuntu",
		ExitCode: -1,
		Output:   "Error code: Wsl/Service/CreateInstance/CreateVm/HCS/0x80370102",
	})

	p, _, _ := newTestProvisioner(sub)
	ctx, _ := newTestContext(t, nil)

	outcome := p.Provision(ctx, newRequest(t, "Ubuntu", "alice", "pw"))

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.ErrorDetail, "virtualization is disabled")
	assert.NotContains(t, outcome.ErrorDetail, "fatal error", "retry wrapping is stripped from the detail")
	sub.AssertNumberOfCalls(t, "Install", 1)
}

func TestProvision_ForeignInstallBlocks(t *testing.T) {
	t.Parallel()
	sub := testutil.NewMockSubsystem()
	sub.On("Probe", mock.Anything).Return(wsl.SubsystemStatus{Installed: true, Enabled: true})
	sub.On("Find", mock.Anything, "Ubuntu").Return(record(wsl.StateInstalling), true, nil)

	p, _, _ := newTestProvisioner(sub)
	ctx, _ := newTestContext(t, nil)

	outcome := p.Provision(ctx, newRequest(t, "Ubuntu", "alice", "pw"))

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.ErrorDetail, "another process")
	sub.AssertNotCalled(t, "Install", mock.Anything, mock.Anything, mock.Anything)
}

func TestProvision_ExistingWithUser(t *testing.T) {
	t.Parallel()
	sub := testutil.NewDistroFixture("Ubuntu", "alice").ExistingWithUser()
	p, _, _ := newTestProvisioner(sub)
	ctx, _ := newTestContext(t, nil)

	outcome := p.Provision(ctx, newRequest(t, "Ubuntu", "alice", "pw"))

	assert.True(t, outcome.Success)
	sub.AssertNotCalled(t, "Install", mock.Anything, mock.Anything, mock.Anything)
	sub.AssertNotCalled(t, "SetDefaultUser", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, [][]string{{"id", "-u", "alice"}}, sub.ExecCalls("root"))
}

func TestProvision_ExistingWithoutUser(t *testing.T) {
	t.Parallel()
	sub := testutil.NewDistroFixture("Ubuntu", "alice").ExistingWithoutUser()
	p, _, _ := newTestProvisioner(sub)
	ctx, _ := newTestContext(t, nil)

	outcome := p.Provision(ctx, newRequest(t, "Ubuntu", "alice", "pw"))

	require.True(t, outcome.Success, outcome.ErrorDetail)
	sub.AssertNotCalled(t, "Install", mock.Anything, mock.Anything, mock.Anything)
	sub.AssertNumberOfCalls(t, "SetDefaultUser", 1)
	assert.Len(t, sub.ExecCalls("alice"), 2)
}

func TestProvision_LooseMatchUsesRegisteredName(t *testing.T) {
	t.Parallel()
	sub := testutil.NewMockSubsystem()
	sub.On("Probe", mock.Anything).Return(wsl.SubsystemStatus{Installed: true, Enabled: true})
	sub.On("Find", mock.Anything, "Ubuntu").Return(wsl.DistributionRecord{Name: "Ubuntu-22.04", State: wsl.StateRunning}, true, nil)
	sub.On("Exec", mock.Anything, "Ubuntu-22.04", "root", "", []string{"id", "-u", "alice"}).Return(wsl.Result{}, nil)

	p, _, _ := newTestProvisioner(sub)
	ctx, _ := newTestContext(t, nil)

	outcome := p.Provision(ctx, newRequest(t, "Ubuntu", "alice", "pw"))

	assert.True(t, outcome.Success)
	assert.Equal(t, "Ubuntu-22.04", outcome.DistroName)
}

func TestProvision_ConvertingFails(t *testing.T) {
	t.Parallel()
	sub := testutil.NewMockSubsystem()
	sub.On("Probe", mock.Anything).Return(wsl.SubsystemStatus{Installed: true, Enabled: true})
	sub.On("Find", mock.Anything, "Ubuntu").Return(record(wsl.StateConverting), true, nil)

	p, _, _ := newTestProvisioner(sub)
	ctx, _ := newTestContext(t, nil)

	outcome := p.Provision(ctx, newRequest(t, "Ubuntu", "alice", "pw"))

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.ErrorDetail, "Converting")
}

func TestProvision_SubsystemMissing(t *testing.T) {
	t.Parallel()
	sub := testutil.NewMockSubsystem()
	sub.On("Probe", mock.Anything).Return(wsl.SubsystemStatus{})

	p, _, _ := newTestProvisioner(sub)
	ctx, _ := newTestContext(t, nil)

	outcome := p.Provision(ctx, newRequest(t, "Ubuntu", "alice", "pw"))

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.ErrorDetail, "not installed")
	sub.AssertNotCalled(t, "Find", mock.Anything, mock.Anything)
}

func TestProvision_InvalidRequest(t *testing.T) {
	t.Parallel()
	sub := testutil.NewMockSubsystem()
	p, _, _ := newTestProvisioner(sub)
	ctx, _ := newTestContext(t, nil)

	outcome := p.Provision(ctx, newRequest(t, "Ubuntu", "Alice", "pw"))
	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.ErrorDetail, "Username")

	outcome = p.Provision(ctx, nil)
	assert.False(t, outcome.Success)

	sub.AssertNotCalled(t, "Probe", mock.Anything)
}

func TestProvision_LauncherRegistration(t *testing.T) {
	t.Parallel()
	fixture := testutil.NewDistroFixture("Ubuntu-22.04", "alice")
	sub := fixture.Mock()
	sub.On("Probe", mock.Anything).Return(wsl.SubsystemStatus{Installed: true, Enabled: true, Version: "2.4.11.0"})
	sub.On("Find", mock.Anything, "Ubuntu-22.04").Return(wsl.DistributionRecord{}, false, nil).Times(3)
	sub.On("Find", mock.Anything, "Ubuntu-22.04").Return(fixture.Record(), true, nil)
	sub.On("Install", mock.Anything, "Ubuntu-22.04", false).Return(nil)
	sub.On("RegisterWithLauncher", mock.Anything, "ubuntu2204.exe").Return(nil)
	fixture.UserCreation()

	p, _, sleeper := newTestProvisioner(sub)
	ctx, _ := newTestContext(t, nil)

	outcome := p.Provision(ctx, newRequest(t, "Ubuntu-22.04", "alice", "pw"))

	require.True(t, outcome.Success, outcome.ErrorDetail)
	sub.AssertNumberOfCalls(t, "RegisterWithLauncher", 1)
	assert.Equal(t, 2*unit, sleeper.Total(), "one readiness interval")
}

func TestProvision_NeverReady(t *testing.T) {
	t.Parallel()
	sub := testutil.NewMockSubsystem()
	sub.On("Probe", mock.Anything).Return(wsl.SubsystemStatus{Installed: true, Enabled: true})
	sub.On("Find", mock.Anything, "Ubuntu").Return(wsl.DistributionRecord{}, false, nil)
	sub.On("Install", mock.Anything, "Ubuntu", false).Return(nil)
	sub.On("RegisterWithLauncher", mock.Anything, "ubuntu.exe").Return(errors.New("not found"))

	p, _, sleeper := newTestProvisioner(sub)
	ctx, observer := newTestContext(t, nil)

	outcome := p.Provision(ctx, newRequest(t, "Ubuntu", "alice", "pw"))

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.ErrorDetail, "did not become ready")
	assert.Equal(t, 120*unit, sleeper.Total())
	assert.True(t, observer.HasWarning("Launcher registration failed"))
}

func TestProvision_UserCreationFails(t *testing.T) {
	t.Parallel()
	fixture := testutil.NewDistroFixture("Ubuntu", "alice")
	sub := fixture.Mock()
	sub.On("Probe", mock.Anything).Return(wsl.SubsystemStatus{Installed: true, Enabled: true})
	sub.On("Find", mock.Anything, "Ubuntu").Return(fixture.Record(), true, nil)
	sub.On("Exec", mock.Anything, "Ubuntu", "root", "", []string{"id", "-u", "alice"}).Return(wsl.Result{ExitCode: 1}, nil)
	sub.On("Exec", mock.Anything, "Ubuntu", "root", "", testutil.Argv("useradd")).
		Return(wsl.Result{ExitCode: 6, Stderr: "useradd: group 'sudo' does not exist"}, nil)

	p, _, _ := newTestProvisioner(sub)
	ctx, _ := newTestContext(t, nil)

	outcome := p.Provision(ctx, newRequest(t, "Ubuntu", "alice", "pw"))

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.ErrorDetail, "failed to create user alice")
	assert.Contains(t, outcome.ErrorDetail, "exit code 6")
}

func TestProvision_ExistingAccountGetsPasswordReset(t *testing.T) {
	t.Parallel()
	fixture := testutil.NewDistroFixture("Ubuntu", "alice")
	sub := fixture.Mock()
	sub.On("Probe", mock.Anything).Return(wsl.SubsystemStatus{Installed: true, Enabled: true, Version: "2.4.11.0"})
	sub.On("Find", mock.Anything, "Ubuntu").Return(fixture.Record(), true, nil)
	sub.On("Exec", mock.Anything, "Ubuntu", "root", "", []string{"id", "-u", "alice"}).Return(wsl.Result{ExitCode: 1}, nil)
	sub.On("Exec", mock.Anything, "Ubuntu", "root", "", testutil.Argv("useradd")).Return(wsl.Result{ExitCode: 9}, nil)
	fixture.UserCreation()

	p, _, _ := newTestProvisioner(sub)
	ctx, observer := newTestContext(t, nil)

	outcome := p.Provision(ctx, newRequest(t, "Ubuntu", "alice", "pw"))

	require.True(t, outcome.Success, outcome.ErrorDetail)
	assert.True(t, observer.HasWarning("resetting its password"))
}

func TestProvision_WSLConfFallback(t *testing.T) {
	t.Parallel()
	fixture := testutil.NewDistroFixture("Ubuntu", "alice")
	sub := fixture.Mock()
	sub.On("Probe", mock.Anything).Return(wsl.SubsystemStatus{Installed: true, Enabled: true, Version: "2.0.14.0"})
	sub.On("Find", mock.Anything, "Ubuntu").Return(fixture.Record(), true, nil)
	sub.On("Exec", mock.Anything, "Ubuntu", "root", "", []string{"id", "-u", "alice"}).Return(wsl.Result{ExitCode: 1}, nil)
	sub.On("Exec", mock.Anything, "Ubuntu", "root", "", testutil.Argv("useradd")).Return(wsl.Result{}, nil)
	sub.On("Exec", mock.Anything, "Ubuntu", "root", mock.Anything, testutil.Argv("chpasswd")).Return(wsl.Result{}, nil)
	sub.On("Exec", mock.Anything, "Ubuntu", "root", "", []string{"cat", "/etc/wsl.conf"}).
		Return(wsl.Result{Stdout: "[boot]\nsystemd=true\n"}, nil)
	sub.On("Exec", mock.Anything, "Ubuntu", "root", "", testutil.Argv("/bin/sh", "-c")).Return(wsl.Result{}, nil)
	sub.On("Terminate", mock.Anything, "Ubuntu").Return(nil)
	sub.On("Exec", mock.Anything, "Ubuntu", "alice", mock.Anything, testutil.Argv("/bin/bash", "-c")).Return(wsl.Result{}, nil)
	sub.On("Exec", mock.Anything, "Ubuntu", "alice", "", []string{"whoami"}).Return(wsl.Result{Stdout: "alice\n"}, nil)

	p, _, _ := newTestProvisioner(sub)
	ctx, _ := newTestContext(t, nil)

	outcome := p.Provision(ctx, newRequest(t, "Ubuntu", "alice", "pw"))

	require.True(t, outcome.Success, outcome.ErrorDetail)
	sub.AssertNotCalled(t, "SetDefaultUser", mock.Anything, mock.Anything, mock.Anything)
	sub.AssertNumberOfCalls(t, "Terminate", 1)

	var written string
	for _, argv := range sub.ExecCalls("root") {
		if argv[0] == "/bin/sh" {
			written = argv[2]
		}
	}
	assert.Contains(t, written, "> '/etc/wsl.conf'")
}

func TestProvision_BindingFailureOnlyWarns(t *testing.T) {
	t.Parallel()
	fixture := testutil.NewDistroFixture("Ubuntu", "alice")
	sub := fixture.Mock()
	sub.On("Probe", mock.Anything).Return(wsl.SubsystemStatus{Installed: true, Enabled: true, Version: "2.4.11.0"})
	sub.On("Find", mock.Anything, "Ubuntu").Return(fixture.Record(), true, nil)
	sub.On("Exec", mock.Anything, "Ubuntu", "root", "", []string{"id", "-u", "alice"}).Return(wsl.Result{ExitCode: 1}, nil)
	sub.On("SetDefaultUser", mock.Anything, "Ubuntu", "alice").Return(errors.New("unknown option --manage")).Once()
	sub.On("Exec", mock.Anything, "Ubuntu", "root", "", []string{"cat", "/etc/wsl.conf"}).Return(wsl.Result{}, errors.New("wsl.exe crashed"))
	fixture.UserCreation()

	p, _, _ := newTestProvisioner(sub)
	ctx, observer := newTestContext(t, nil)

	outcome := p.Provision(ctx, newRequest(t, "Ubuntu", "alice", "pw"))

	require.True(t, outcome.Success, outcome.ErrorDetail)
	assert.True(t, observer.HasWarning("falling back to /etc/wsl.conf"))
	assert.True(t, observer.HasWarning("Could not bind alice"))
}

func TestProvision_FirstBootFailureOnlyWarns(t *testing.T) {
	t.Parallel()
	fixture := testutil.NewDistroFixture("Ubuntu", "alice")
	sub := fixture.Mock()
	sub.On("Exec", mock.Anything, "Ubuntu", "alice", mock.Anything, testutil.Argv("/bin/bash", "-c")).
		Return(wsl.Result{ExitCode: 19}, nil).Once()
	fixture.FreshInstall()

	p, _, _ := newTestProvisioner(sub)
	ctx, observer := newTestContext(t, nil)

	outcome := p.Provision(ctx, newRequest(t, "Ubuntu", "alice", "pw"))

	require.True(t, outcome.Success, outcome.ErrorDetail)
	assert.True(t, observer.HasWarning("package index refresh failed"))
	assert.True(t, observer.HasWarning("package installation failed"))
}

func TestProvision_VerificationMismatch(t *testing.T) {
	t.Parallel()
	fixture := testutil.NewDistroFixture("Ubuntu", "alice")
	sub := fixture.Mock()
	sub.On("Exec", mock.Anything, "Ubuntu", "alice", "", []string{"whoami"}).Return(wsl.Result{Stdout: "root\n"}, nil).Once()
	fixture.FreshInstall()

	p, _, _ := newTestProvisioner(sub)
	ctx, _ := newTestContext(t, nil)

	outcome := p.Provision(ctx, newRequest(t, "Ubuntu", "alice", "pw"))

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.ErrorDetail, `commands run as "root", expected "alice"`)
	assert.False(t, ctx.State.Provisioned)
}

func TestPhase(t *testing.T) {
	t.Parallel()
	sub := testutil.NewDistroFixture("Ubuntu", "alice").FreshInstall()
	p, _, _ := newTestProvisioner(sub)
	ctx, _ := newTestContext(t, nil)

	req := newRequest(t, "Ubuntu", "alice", "pw")
	phase := NewPhase(p, req)
	var _ provisioning.Phase = phase

	require.NoError(t, provisioning.RunPhases(ctx, []provisioning.Phase{phase}))
	assert.Equal(t, "distro", phase.Name())
	assert.True(t, phase.Outcome.Success)
	assert.Zero(t, req.Password.Len(), "password is destroyed once the distribution is provisioned")
}

func TestPhase_FailureIsError(t *testing.T) {
	t.Parallel()
	sub := testutil.NewMockSubsystem()
	sub.On("Probe", mock.Anything).Return(wsl.SubsystemStatus{Installed: true})
	p, _, _ := newTestProvisioner(sub)
	ctx, _ := newTestContext(t, nil)

	req := newRequest(t, "Ubuntu", "alice", "pw")
	phase := NewPhase(p, req)
	err := phase.Provision(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
	assert.False(t, phase.Outcome.Success)
	assert.Zero(t, req.Password.Len())
}
