package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/wsldev/cmd/wsldev/handlers"
)

// Status returns the command that reports the subsystem and its distributions.
func Status() *cobra.Command {
	var configPath string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show WSL status and installed distributions",
		Long: `Show whether WSL is installed and enabled, its version, the registered
distributions with their state, and the host tools wsldev uses.

Examples:
  wsldev status
  wsldev status --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Status(cmd.Context(), cmd.OutOrStdout(), configPath, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: wsldev.yaml)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}
