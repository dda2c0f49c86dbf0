// Package main is the entry point for the wsldev CLI.
//
// wsldev provisions a WSL distribution for development: it installs the
// image, creates the default user, runs a first-boot payload, and sets up a
// prompt, a Nerd Font, and the terminal and editor font settings.
//
// Commands: provision, status, version, completion.
//
// For detailed usage information, run:
//
//	wsldev --help
package main

import (
	"fmt"
	"os"

	"github.com/imamik/wsldev/cmd/wsldev/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// A run is never cancelled from outside: Execute hands every command a
// background context and the process runs to completion or failure.
func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
