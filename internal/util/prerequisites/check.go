// Package prerequisites checks the host before a provisioning run: the
// executables wsldev drives and the Windows host requirements.
package prerequisites

import (
	"fmt"
	"os/exec"
	"strings"
)

// Tool represents a host executable that may be required.
type Tool struct {
	// Name is the binary name to look for in PATH.
	Name string

	// Required indicates if this tool is mandatory.
	Required bool

	// Description explains what the tool is used for.
	Description string

	// InstallURL provides a URL for installation instructions.
	InstallURL string
}

// DefaultTools returns the tools every run needs. The WSL entry point name is
// configurable, so it is passed in.
func DefaultTools(wslBinary string) []Tool {
	return []Tool{
		{
			Name:        wslBinary,
			Required:    true,
			Description: "Required to install and manage WSL distributions",
			InstallURL:  "https://learn.microsoft.com/windows/wsl/install",
		},
	}
}

// OptionalTools returns tools whose settings wsldev patches when present.
func OptionalTools() []Tool {
	return []Tool{
		{
			Name:        "wt.exe",
			Required:    false,
			Description: "Windows Terminal, whose font settings are patched",
			InstallURL:  "https://aka.ms/terminal",
		},
		{
			Name:        "code",
			Required:    false,
			Description: "VS Code, whose font settings are patched",
			InstallURL:  "https://code.visualstudio.com/download",
		},
	}
}

// CheckResult contains the result of checking a single tool.
type CheckResult struct {
	Tool  Tool
	Found bool
	Path  string
}

// CheckResults contains the results of checking multiple tools.
type CheckResults struct {
	Results []CheckResult
	Missing []Tool
}

// HasErrors returns true if any required tools are missing.
func (r *CheckResults) HasErrors() bool {
	for _, tool := range r.Missing {
		if tool.Required {
			return true
		}
	}
	return false
}

// Error returns an error if any required tools are missing.
func (r *CheckResults) Error() error {
	var missing []string
	for _, tool := range r.Missing {
		if tool.Required {
			missing = append(missing, fmt.Sprintf("%s (%s)", tool.Name, tool.InstallURL))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// Check verifies that the specified tools are available.
func Check(tools []Tool) *CheckResults {
	results := &CheckResults{}

	for _, tool := range tools {
		result := CheckResult{Tool: tool}

		path, err := lookPath(tool.Name)
		if err == nil {
			result.Found = true
			result.Path = path
		} else {
			results.Missing = append(results.Missing, tool)
		}

		results.Results = append(results.Results, result)
	}

	return results
}

// CheckAll checks the default tools followed by the optional ones.
func CheckAll(wslBinary string) *CheckResults {
	defaults := DefaultTools(wslBinary)
	optional := OptionalTools()
	all := make([]Tool, 0, len(defaults)+len(optional))
	all = append(all, defaults...)
	all = append(all, optional...)
	return Check(all)
}
