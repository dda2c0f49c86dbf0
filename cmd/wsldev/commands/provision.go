package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/wsldev/cmd/wsldev/handlers"
)

// runProvision is swapped in tests.
var runProvision = handlers.Provision

// Provision returns the command that provisions a distribution.
//
// Flags:
//
//	--distro, -d: Distribution to install (default: Ubuntu)
//	--username, -u: Default user to create
//	--password-stdin: Read the password from the first line of stdin
//	--skip-font, --skip-prompt, --skip-terminal, --skip-editor: Skip a peripheral step
//	--log-file: Append the log to this file
//	--config, -c: Path to configuration file (default: wsldev.yaml if present)
func Provision() *cobra.Command {
	var opts handlers.ProvisionOptions

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Install a distribution and provision its default user",
		Long: `Install a WSL distribution and provision it for development.

The run installs the distribution if needed, creates the default user with
sudo rights, runs a first-boot payload, and then installs the prompt and the
Nerd Font and patches Windows Terminal and VS Code. Prompt, font, and
settings steps only warn on failure.

The password is never accepted as a flag. Pass it on stdin with
--password-stdin or in the WSLDEV_PASSWORD environment variable.

Examples:
  # Provision Ubuntu for alice
  Get-Content pw.txt | wsldev provision -u alice --password-stdin

  # Provision a specific release without touching editor settings
  wsldev provision -d Ubuntu-24.04 -u alice --skip-editor`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.DistroSet = cmd.Flags().Changed("distro")
			return runProvision(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: wsldev.yaml)")
	f.StringVarP(&opts.Distro, "distro", "d", "Ubuntu", "Distribution to install")
	f.StringVarP(&opts.Username, "username", "u", "", "Default user to create")
	f.BoolVar(&opts.PasswordStdin, "password-stdin", false, "Read the password from stdin")
	f.BoolVar(&opts.SkipFont, "skip-font", false, "Skip the Nerd Font installation")
	f.BoolVar(&opts.SkipPrompt, "skip-prompt", false, "Skip the prompt installation")
	f.BoolVar(&opts.SkipTerminal, "skip-terminal", false, "Skip patching Windows Terminal settings")
	f.BoolVar(&opts.SkipEditor, "skip-editor", false, "Skip patching VS Code settings")
	f.StringVar(&opts.LogFile, "log-file", "", "Append the log to this file")

	return cmd
}
