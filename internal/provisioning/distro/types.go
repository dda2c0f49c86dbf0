package distro

import (
	"errors"
	"fmt"

	"github.com/imamik/wsldev/internal/config"
	"github.com/imamik/wsldev/internal/platform/wsl"
	"github.com/imamik/wsldev/internal/secret"
)

// ProvisioningRequest is what a single run provisions. The password is only
// ever read through Password.Use.
type ProvisioningRequest struct {
	DistroName string         `validate:"required,max=64"`
	Username   string         `validate:"required,lowercase,alphanum,max=32,ne=root"`
	Password   *secret.Secret `validate:"required"`
}

// Validate checks the request with the shared validator.
func (r *ProvisioningRequest) Validate() error {
	if r == nil {
		return errors.New("provisioning request is nil")
	}
	if err := config.Validator().Struct(r); err != nil {
		return fmt.Errorf("invalid provisioning request: %w", config.FormatValidationError(err))
	}
	return nil
}

// ProvisioningOutcome is the result of a run. DistroName is the registered
// name the run acted on, which may be longer than the requested one.
type ProvisioningOutcome struct {
	Success     bool   `json:"success"`
	DistroName  string `json:"distro"`
	Username    string `json:"username"`
	ErrorDetail string `json:"error,omitempty"`
}

func succeeded(distro, user string) ProvisioningOutcome {
	return ProvisioningOutcome{Success: true, DistroName: distro, Username: user}
}

func failed(distro, user string, err error) ProvisioningOutcome {
	return ProvisioningOutcome{DistroName: distro, Username: user, ErrorDetail: detailOf(err)}
}

// detailOf prefers the translated subsystem message over the retry wrapping around it.
func detailOf(err error) string {
	var cmdErr *wsl.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Error()
	}
	return err.Error()
}
