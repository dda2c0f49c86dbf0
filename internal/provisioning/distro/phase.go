package distro

import (
	"errors"

	"github.com/imamik/wsldev/internal/provisioning"
)

// Phase adapts a Provisioner to the provisioning pipeline.
type Phase struct {
	provisioner *Provisioner
	request     *ProvisioningRequest

	// Outcome is set once Provision has run.
	Outcome ProvisioningOutcome
}

// NewPhase creates the distribution phase for req.
func NewPhase(p *Provisioner, req *ProvisioningRequest) *Phase {
	return &Phase{provisioner: p, request: req}
}

// Name implements provisioning.Phase.
func (ph *Phase) Name() string {
	return "distro"
}

// Provision implements provisioning.Phase. A failed outcome is an error.
// The request's password is destroyed when the phase returns; later phases
// never need it.
func (ph *Phase) Provision(ctx *provisioning.Context) error {
	if ph.request != nil {
		defer ph.request.Password.Destroy()
	}
	ph.Outcome = ph.provisioner.Provision(ctx, ph.request)
	if !ph.Outcome.Success {
		return errors.New(ph.Outcome.ErrorDetail)
	}
	return nil
}
