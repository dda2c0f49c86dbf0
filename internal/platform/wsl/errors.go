package wsl

import (
	"errors"
	"fmt"
	"strings"
)

// Cause is the classified reason behind a failed subsystem command.
type Cause int

const (
	CauseUnknown Cause = iota
	CauseOperationInProgress
	CauseVirtualizationDisabled
	CauseKernelOutdated
	CauseFeatureDisabled
	CauseServiceDisabled
	CauseDownloadFailed
	CauseAccessDenied
	CauseAlreadyExists
	CauseDistroNotFound
	CauseNoDistributions
)

func (c Cause) String() string {
	switch c {
	case CauseOperationInProgress:
		return "operation-in-progress"
	case CauseVirtualizationDisabled:
		return "virtualization-disabled"
	case CauseKernelOutdated:
		return "kernel-outdated"
	case CauseFeatureDisabled:
		return "feature-disabled"
	case CauseServiceDisabled:
		return "service-disabled"
	case CauseDownloadFailed:
		return "download-failed"
	case CauseAccessDenied:
		return "access-denied"
	case CauseAlreadyExists:
		return "already-exists"
	case CauseDistroNotFound:
		return "distro-not-found"
	case CauseNoDistributions:
		return "no-distributions"
	default:
		return "unknown"
	}
}

type translation struct {
	cause   Cause
	markers []string // matched case-insensitively against captured output
	message string
}

// translations is the only place subsystem error strings may appear.
// Order matters: the first entry with a matching marker wins.
var translations = []translation{
	{
		cause:   CauseOperationInProgress,
		markers: []string{"0x8000000d", "E_ILLEGAL_STATE_CHANGE"},
		message: "Another WSL operation is already in progress for this distribution. Wait for it to finish, then run wsldev again.",
	},
	{
		cause:   CauseVirtualizationDisabled,
		markers: []string{"0x80370102", "HCS_E_HYPERV_NOT_INSTALLED"},
		message: "Hardware virtualization is disabled. Enable virtualization (VT-x/AMD-V) in the BIOS/UEFI and the 'Virtual Machine Platform' Windows feature, then reboot.",
	},
	{
		cause:   CauseKernelOutdated,
		markers: []string{"0x800701bc"},
		message: "The WSL 2 kernel component is outdated. Run 'wsl --update' and try again.",
	},
	{
		cause:   CauseFeatureDisabled,
		markers: []string{"0x8007019e", "WSL_E_WSL_OPTIONAL_COMPONENT_REQUIRED"},
		message: "The 'Windows Subsystem for Linux' feature is not enabled. Run 'wsl --install --no-distribution' as administrator and reboot.",
	},
	{
		cause:   CauseServiceDisabled,
		markers: []string{"0x80070422"},
		message: "The WSL service (or a service it depends on) is disabled. Re-enable it in services.msc and try again.",
	},
	{
		cause:   CauseDownloadFailed,
		markers: []string{"0x80072ee7", "0x80072efd", "0x80072f8f"},
		message: "The distribution could not be downloaded. Check the network connection or retry with web download enabled.",
	},
	{
		cause:   CauseAccessDenied,
		markers: []string{"0x80070005", "E_ACCESSDENIED"},
		message: "Access was denied. Run wsldev from an elevated (administrator) terminal.",
	},
	{
		cause:   CauseAlreadyExists,
		markers: []string{"0x800700b7", "ERROR_ALREADY_EXISTS"},
		message: "A distribution with this name is already registered.",
	},
	{
		cause:   CauseNoDistributions,
		markers: []string{"WSL_E_DEFAULT_DISTRO_NOT_FOUND", "has no installed distributions"},
		message: "No distributions are installed.",
	},
	{
		cause:   CauseDistroNotFound,
		markers: []string{"WSL_E_DISTRO_NOT_FOUND", "0x8007018b"},
		message: "The requested distribution is not registered.",
	},
}

func lookup(captured string) (translation, bool) {
	lower := strings.ToLower(captured)
	for _, t := range translations {
		for _, marker := range t.markers {
			if strings.Contains(lower, strings.ToLower(marker)) {
				return t, true
			}
		}
	}
	return translation{}, false
}

// Classify returns the cause of the first known error code found in captured.
func Classify(captured string) Cause {
	if t, ok := lookup(captured); ok {
		return t.cause
	}
	return CauseUnknown
}

// Translate maps an exit code and captured output to an actionable message.
// Output without a known error code yields a generic message carrying the exit code.
func Translate(exitCode int, captured string) string {
	if t, ok := lookup(captured); ok {
		return t.message
	}
	return fmt.Sprintf("operation failed with exit code %d", exitCode)
}

// CommandError reports a subsystem command that exited non-zero.
type CommandError struct {
	Op       string
	ExitCode int
	Output   string
}

// Error returns the translated message.
func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, Translate(e.ExitCode, e.Output))
}

// Cause classifies the captured output.
func (e *CommandError) Cause() Cause {
	return Classify(e.Output)
}

func newCommandError(op string, res Result) *CommandError {
	return &CommandError{Op: op, ExitCode: res.ExitCode, Output: res.Output()}
}

// CauseOf returns the Cause of a *CommandError anywhere in err's chain.
func CauseOf(err error) Cause {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Cause()
	}
	return CauseUnknown
}

// IsOperationInProgress checks if an error indicates a concurrent subsystem operation.
// These errors are retryable once the other operation has finished.
func IsOperationInProgress(err error) bool {
	return CauseOf(err) == CauseOperationInProgress
}
