package prerequisites

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-version"
)

// HostInfo describes the machine wsldev runs on.
type HostInfo struct {
	Windows  bool
	Elevated bool

	// Build is the Windows build number (e.g. 22631), 0 when unknown.
	Build uint32
}

// BuildVersion renders the build as a comparable 10.0.<build> version.
func (h HostInfo) BuildVersion() string {
	return fmt.Sprintf("10.0.%d", h.Build)
}

// currentHost is swapped in tests.
var currentHost = hostInfo

// CheckHost inspects the running host and evaluates it against the minimum
// Windows build. The returned HostInfo is valid even when err is non-nil.
func CheckHost(minBuild int) (HostInfo, error) {
	info, err := currentHost()
	if err != nil {
		return info, fmt.Errorf("failed to inspect host: %w", err)
	}
	return info, evaluateHost(info, minBuild)
}

func evaluateHost(info HostInfo, minBuild int) error {
	if !info.Windows {
		return errors.New("wsldev must run on a Windows host")
	}

	var problems []string
	if !info.Elevated {
		problems = append(problems, "administrator rights are required; run wsldev from an elevated terminal")
	}

	if minBuild > 0 {
		constraint, err := version.NewConstraint(fmt.Sprintf(">= 10.0.%d", minBuild))
		if err != nil {
			return fmt.Errorf("invalid minimum build %d: %w", minBuild, err)
		}
		current, err := version.NewVersion(info.BuildVersion())
		if err != nil {
			return fmt.Errorf("invalid host build %d: %w", info.Build, err)
		}
		if info.Build == 0 || !constraint.Check(current) {
			problems = append(problems, fmt.Sprintf("Windows build %d or newer is required (found %d)", minBuild, info.Build))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("host requirements not met: %s", strings.Join(problems, "; "))
}
