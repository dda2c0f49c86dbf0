package distro

import (
	"fmt"

	"github.com/imamik/wsldev/internal/platform/wsl"
	"github.com/imamik/wsldev/internal/provisioning"
	"github.com/imamik/wsldev/internal/util/retry"
)

// installAttempts bounds the install retry on subsystem contention.
const installAttempts = 2

// Provisioner installs a distribution and provisions its default user.
type Provisioner struct {
	wsl      Subsystem
	resolver StateResolver

	// Sleep is swapped in tests.
	Sleep retry.Sleeper
}

// NewProvisioner creates a provisioner. A nil resolver uses NewResolver(sub).
func NewProvisioner(sub Subsystem, resolver StateResolver) *Provisioner {
	if resolver == nil {
		resolver = NewResolver(sub)
	}
	return &Provisioner{
		wsl:      sub,
		resolver: resolver,
		Sleep:    retry.Sleep,
	}
}

// Provision runs the full sequence for req and never panics or returns an
// error: every failure is reported in the outcome. Best-effort steps
// (default-user binding, first boot) only warn.
func (p *Provisioner) Provision(ctx *provisioning.Context, req *ProvisioningRequest) ProvisioningOutcome {
	if err := req.Validate(); err != nil {
		var name, user string
		if req != nil {
			name, user = req.DistroName, req.Username
		}
		return failed(name, user, err)
	}
	name, user := req.DistroName, req.Username
	ctx.Observer.Printf("[Distro] Provisioning %s with default user %s", name, user)

	status := p.wsl.Probe(ctx)
	ctx.State.Subsystem = status
	ctx.Observer.Printf("[Distro] WSL is %s", status)
	if !status.Installed || !status.Enabled {
		return failed(name, user, fmt.Errorf("WSL is %s; run 'wsl --install --no-distribution' as administrator and reboot", status))
	}

	if !p.resolver.Resolve(ctx, name) {
		return failed(name, user, fmt.Errorf("distribution %s is being installed by another process", name))
	}

	rec, found, err := p.wsl.Find(ctx, name)
	if err != nil {
		return failed(name, user, fmt.Errorf("failed to inspect distributions: %w", err))
	}

	target := name
	switch {
	case found && rec.State == wsl.StateUninstalling:
		ctx.Observer.Warnf("[Distro] %s is still uninstalling, treating it as absent", rec.Name)
		found = false
	case found && rec.State.Transitional():
		return failed(rec.Name, user, fmt.Errorf("distribution %s is %s; try again once it settles", rec.Name, rec.State))
	}

	if found {
		target = rec.Name
		ctx.Observer.Printf("[Distro] %s is already installed (%s)", target, rec.State)

		exists, err := p.userExists(ctx, target, user)
		if err != nil {
			return failed(target, user, err)
		}
		if exists {
			ctx.Observer.Successf("[Distro] User %s already exists in %s, nothing to do", user, target)
			p.record(ctx, target, user)
			return succeeded(target, user)
		}
		ctx.Observer.Printf("[Distro] User %s not found in %s", user, target)
	} else {
		target, err = p.install(ctx, name)
		if err != nil {
			return failed(name, user, err)
		}
	}

	if err := p.createUser(ctx, target, req); err != nil {
		return failed(target, user, err)
	}

	p.bindDefaultUser(ctx, target, user, status)
	p.firstBoot(ctx, target, req)

	if err := p.verify(ctx, target, user); err != nil {
		return failed(target, user, err)
	}

	ctx.Observer.Successf("[Distro] %s is ready with default user %s", target, user)
	p.record(ctx, target, user)
	return succeeded(target, user)
}

func (p *Provisioner) record(ctx *provisioning.Context, distro, user string) {
	ctx.State.Distro = distro
	ctx.State.Username = user
	ctx.State.Provisioned = true
}

// install installs name, retrying once when the subsystem reports another
// operation in progress, and waits until the image is registered. It
// returns the registered name.
func (p *Provisioner) install(ctx *provisioning.Context, name string) (string, error) {
	webDownload := ctx.Config.Distro.WebDownload

	err := retry.Attempts(ctx, installAttempts, func(attempt int) error {
		if attempt > 1 {
			ctx.Observer.Warnf("[Distro] Another WSL operation is in progress, re-checking %s before retrying", name)
			if !p.resolver.Resolve(ctx, name) {
				return retry.Fatal(fmt.Errorf("distribution %s is being installed by another process", name))
			}
		}

		ctx.Observer.Printf("[Distro] Installing %s (attempt %d/%d)", name, attempt, installAttempts)
		err := p.wsl.Install(ctx, name, webDownload)
		if err == nil || wsl.IsOperationInProgress(err) {
			return err
		}
		return retry.Fatal(err)
	}, retry.WithSleeper(p.Sleep))
	if err != nil {
		return "", err
	}

	return p.waitUntilRegistered(ctx, name)
}

// waitUntilRegistered polls until the fresh image is registered and settled.
// An image that is installed but not registered is registered once through
// its launcher.
func (p *Provisioner) waitUntilRegistered(ctx *provisioning.Context, name string) (string, error) {
	var registered wsl.DistributionRecord
	ready := func() (bool, error) {
		rec, found, err := p.wsl.Find(ctx, name)
		if err != nil {
			ctx.Observer.Warnf("[Distro] Could not inspect %s: %v", name, err)
			return false, nil
		}
		if found && !rec.State.Transitional() {
			registered = rec
			return true, nil
		}
		return false, nil
	}

	if ok, _ := ready(); ok {
		return registered.Name, nil
	}

	d := ctx.Config.Distro
	d.Name = name
	launcher := d.LauncherOrDefault()
	ctx.Observer.Printf("[Distro] %s is not registered yet, registering with %s", name, launcher)
	if err := p.wsl.RegisterWithLauncher(ctx, launcher); err != nil {
		ctx.Observer.Warnf("[Distro] Launcher registration failed, waiting for the subsystem instead: %v", err)
	}

	t := ctx.Timeouts
	ok, elapsed, err := retry.Poll(ctx, t.ReadyInterval, t.ReadyCeiling, ready, retry.WithSleeper(p.Sleep))
	if err != nil {
		return "", fmt.Errorf("waiting for %s to register: %w", name, err)
	}
	if !ok {
		return "", fmt.Errorf("distribution %s did not become ready within %v", name, elapsed)
	}
	ctx.Observer.Printf("[Distro] %s registered after %v", registered.Name, elapsed)
	return registered.Name, nil
}

// verify checks that the new user is who commands run as.
func (p *Provisioner) verify(ctx *provisioning.Context, distro, user string) error {
	res, err := p.wsl.Exec(ctx, distro, user, nil, "whoami")
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}
	if !res.Success() {
		return fmt.Errorf("verification failed: %s", wsl.Translate(res.ExitCode, res.Output()))
	}
	if got := trimLine(res.Stdout); got != user {
		return fmt.Errorf("verification failed: commands run as %q, expected %q", got, user)
	}
	return nil
}
