// Package wsl wraps the Windows Subsystem for Linux command-line entry point.
//
// The subsystem has no structured API, so every observation is made by running
// wsl.exe and reading its exit code and text output.
//
// # Architecture
//
// The package is organized into focused modules:
//
//   - runner.go: Process execution (go-cmd) and output decoding
//   - client.go: Client construction and the mutating commands (install, unregister, exec)
//   - probe.go: Subsystem presence, enablement and version classification
//   - inspector.go: Distribution listing, the single text parser, name matching
//   - errors.go: Error code table and translation to actionable messages
//   - payload.go: Base64 transport of shell payloads into an image
//
// # Output Encoding
//
// wsl.exe writes UTF-16LE unless WSL_UTF8=1 is set. The runner sets the variable
// and still decodes UTF-16LE output so older builds parse the same way.
//
// # Name Matching
//
// [FindDistribution] prefers an exact match and otherwise accepts the first
// registered name that contains the requested one, so a request for "Ubuntu"
// finds "Ubuntu-22.04". This loose policy is intentional.
package wsl
