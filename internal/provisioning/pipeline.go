package provisioning

import (
	"fmt"
	"time"
)

// RunPhases executes all provisioning phases sequentially.
func RunPhases(ctx *Context, phases []Phase) error {
	start := time.Now()
	ctx.Observer.Printf("Starting provisioning with %d phases...", len(phases))

	for i, phase := range phases {
		phaseStart := time.Now()
		name := fmt.Sprintf("%s (%d/%d)", phase.Name(), i+1, len(phases))

		ctx.Observer.Printf("[%s] starting", name)

		if err := phase.Provision(ctx); err != nil {
			ctx.Observer.Errorf("[%s] failed: %v", name, err)
			return fmt.Errorf("%s phase failed: %w", phase.Name(), err)
		}

		ctx.Observer.Printf("[%s] completed in %v", name, time.Since(phaseStart).Round(time.Millisecond))
	}

	ctx.Observer.Printf("Provisioning completed in %v", time.Since(start).Round(time.Millisecond))
	return nil
}

type funcPhase struct {
	name string
	fn   func(*Context) error
}

// NewPhase creates a Phase from a function.
func NewPhase(name string, fn func(*Context) error) Phase {
	return &funcPhase{name: name, fn: fn}
}

func (p *funcPhase) Name() string                 { return p.name }
func (p *funcPhase) Provision(ctx *Context) error { return p.fn(ctx) }

type peripheral struct {
	name string
	fn   func(*Context) bool
}

// Peripheral creates a phase for a step that reports its own failures and
// only returns whether it succeeded. The result is recorded in
// State.Peripherals and the run always continues.
func Peripheral(name string, fn func(*Context) bool) Phase {
	return &peripheral{name: name, fn: fn}
}

func (p *peripheral) Name() string { return p.name }

func (p *peripheral) Provision(ctx *Context) error {
	ctx.State.Peripherals[p.name] = p.fn(ctx)
	return nil
}
