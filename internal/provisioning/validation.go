package provisioning

import (
	"fmt"
	"strings"

	"github.com/imamik/wsldev/internal/util/prerequisites"
)

// ValidationError represents a pre-flight validation error or warning.
type ValidationError struct {
	Field    string // Check that failed
	Message  string // Human-readable error message
	Severity string // "error" or "warning"
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", ve.Severity, ve.Field, ve.Message)
}

// IsError returns true if this is an error (not a warning).
func (ve ValidationError) IsError() bool {
	return ve.Severity == "error"
}

// ValidationPhase implements the Phase interface for pre-flight validation
// of the configuration and the host.
type ValidationPhase struct {
	checkTools func(wslBinary string) *prerequisites.CheckResults
	checkHost  func(minBuild int) (prerequisites.HostInfo, error)
}

// NewValidationPhase creates a new validation phase.
func NewValidationPhase() *ValidationPhase {
	return &ValidationPhase{
		checkTools: prerequisites.CheckAll,
		checkHost:  prerequisites.CheckHost,
	}
}

// Name implements the Phase interface.
func (vp *ValidationPhase) Name() string {
	return "validation"
}

// Provision implements the Phase interface.
func (vp *ValidationPhase) Provision(ctx *Context) error {
	ctx.Observer.Printf("[Validation] Running pre-flight validation...")

	allErrors := vp.validate(ctx)

	var errors []ValidationError
	for _, ve := range allErrors {
		if ve.IsError() {
			errors = append(errors, ve)
		} else {
			ctx.Observer.Warnf("[Validation] %s", ve.Message)
		}
	}

	if len(errors) > 0 {
		var errMsgs []string
		for _, e := range errors {
			errMsgs = append(errMsgs, e.Error())
		}
		return fmt.Errorf("pre-flight validation failed:\n  %s", strings.Join(errMsgs, "\n  "))
	}

	ctx.Observer.Printf("[Validation] Validation passed")
	return nil
}

// validate runs all validation checks and returns any errors or warnings.
func (vp *ValidationPhase) validate(ctx *Context) []ValidationError {
	var errs []ValidationError
	cfg := ctx.Config

	if err := cfg.Validate(); err != nil {
		errs = append(errs, ValidationError{
			Field:    "Config",
			Message:  err.Error(),
			Severity: "error",
		})
	}

	info, err := vp.checkHost(cfg.MinWindowsBuild)
	if err != nil {
		errs = append(errs, ValidationError{
			Field:    "Host",
			Message:  err.Error(),
			Severity: "error",
		})
	} else {
		ctx.Observer.Printf("[Validation] Windows build %d, elevated", info.Build)
	}

	tools := vp.checkTools(cfg.WSLBinary)
	for _, tool := range tools.Missing {
		severity := "warning"
		if tool.Required {
			severity = "error"
		}
		errs = append(errs, ValidationError{
			Field:    "Tools",
			Message:  fmt.Sprintf("%s not found in PATH: %s (%s)", tool.Name, tool.Description, tool.InstallURL),
			Severity: severity,
		})
	}

	return errs
}
