package distro

import (
	"github.com/imamik/wsldev/internal/platform/wsl"
	"github.com/imamik/wsldev/internal/provisioning"
	"github.com/imamik/wsldev/internal/util/retry"
)

// StateResolver decides whether a named distribution may be touched.
type StateResolver interface {
	Resolve(ctx *provisioning.Context, name string) bool
}

// Resolver clears distributions stuck mid-transition before provisioning.
type Resolver struct {
	wsl Subsystem

	// Sleep is swapped in tests.
	Sleep retry.Sleeper
}

// NewResolver creates a resolver backed by sub.
func NewResolver(sub Subsystem) *Resolver {
	return &Resolver{wsl: sub, Sleep: retry.Sleep}
}

// Resolve reports whether it is safe to proceed with name.
//
// An Uninstalling record is polled every PollInterval until it disappears or
// changes state; at PollCeiling it is force-unregistered once and, after
// SettleDelay, considered gone. An Installing record belongs to another
// process and blocks the run. Every other state, a missing record, or a
// failed inspection lets the run proceed.
func (r *Resolver) Resolve(ctx *provisioning.Context, name string) bool {
	rec, found, err := r.wsl.Find(ctx, name)
	if err != nil {
		ctx.Observer.Warnf("[Resolve] Could not inspect %s, proceeding: %v", name, err)
		return true
	}
	if !found {
		return true
	}

	switch rec.State {
	case wsl.StateInstalling:
		ctx.Observer.Errorf("[Resolve] %s is being installed by another process; wait for it to finish", rec.Name)
		return false
	case wsl.StateUninstalling:
		return r.waitForUninstall(ctx, rec.Name)
	default:
		return true
	}
}

func (r *Resolver) waitForUninstall(ctx *provisioning.Context, name string) bool {
	t := ctx.Timeouts
	ctx.Observer.Printf("[Resolve] %s is uninstalling, waiting up to %v", name, t.PollCeiling)

	done, elapsed, err := retry.Poll(ctx, t.PollInterval, t.PollCeiling, func() (bool, error) {
		rec, found, err := r.wsl.Find(ctx, name)
		if err != nil {
			ctx.Observer.Warnf("[Resolve] Could not inspect %s, proceeding: %v", name, err)
			return true, nil
		}
		return !found || rec.State != wsl.StateUninstalling, nil
	}, retry.WithSleeper(r.Sleep))
	if err != nil {
		ctx.Observer.Warnf("[Resolve] Waiting for %s was interrupted: %v", name, err)
		return true
	}
	if done {
		ctx.Observer.Printf("[Resolve] %s left the uninstalling state after %v", name, elapsed)
		return true
	}

	ctx.Observer.Warnf("[Resolve] %s still uninstalling after %v, forcing unregister", name, elapsed)
	if err := r.wsl.Unregister(ctx, name); err != nil {
		ctx.Observer.Warnf("[Resolve] Forced unregister of %s failed: %v", name, err)
	}
	if err := r.Sleep(ctx, t.SettleDelay); err != nil {
		ctx.Observer.Warnf("[Resolve] Settle wait interrupted: %v", err)
	}
	return true
}
