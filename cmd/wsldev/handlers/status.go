package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/imamik/wsldev/internal/config"
	"github.com/imamik/wsldev/internal/logging"
	"github.com/imamik/wsldev/internal/platform/wsl"
	"github.com/imamik/wsldev/internal/util/prerequisites"
)

// StatusClient is the part of the WSL client status needs.
type StatusClient interface {
	Probe(ctx context.Context) wsl.SubsystemStatus
	ListDistributions(ctx context.Context) ([]wsl.DistributionRecord, error)
}

// StatusReport is what the status command prints.
type StatusReport struct {
	WSL           SubsystemReport      `json:"wsl"`
	Distributions []DistributionReport `json:"distributions"`
	Tools         []ToolReport         `json:"tools"`
	Error         string               `json:"error,omitempty"`
}

// SubsystemReport describes the subsystem itself.
type SubsystemReport struct {
	Installed           bool   `json:"installed"`
	Enabled             bool   `json:"enabled"`
	Version             string `json:"version,omitempty"`
	NativeDefaultUser   bool   `json:"nativeDefaultUser"`
	DefaultDistribution string `json:"defaultDistribution,omitempty"`
}

// DistributionReport is one registered distribution.
type DistributionReport struct {
	Name    string `json:"name"`
	State   string `json:"state"`
	Version int    `json:"version,omitempty"`
	Default bool   `json:"default"`
}

// ToolReport is one host tool lookup.
type ToolReport struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
	Found    bool   `json:"found"`
	Path     string `json:"path,omitempty"`
}

var (
	// newStatusClient creates the client status queries.
	newStatusClient = func(cfg *config.Config) StatusClient {
		return wsl.NewClient(cfg.WSLBinary, wsl.NewCmdRunner(), logging.Nop())
	}

	// checkTools looks up the host tools.
	checkTools = prerequisites.CheckAll
)

// Status prints the subsystem status, the registered distributions, and
// the host tools.
func Status(ctx context.Context, out io.Writer, configPath string, jsonOutput bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	report := buildStatus(ctx, newStatusClient(cfg), checkTools(cfg.WSLBinary))

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printStatus(out, report)
	return nil
}

func buildStatus(ctx context.Context, client StatusClient, tools *prerequisites.CheckResults) *StatusReport {
	status := client.Probe(ctx)
	report := &StatusReport{
		WSL: SubsystemReport{
			Installed:         status.Installed,
			Enabled:           status.Enabled,
			Version:           status.Version,
			NativeDefaultUser: status.SupportsSetDefaultUser(),
		},
		Distributions: []DistributionReport{},
	}

	if status.Installed && status.Enabled {
		records, err := client.ListDistributions(ctx)
		if err != nil {
			report.Error = err.Error()
		}
		for _, rec := range records {
			report.Distributions = append(report.Distributions, DistributionReport{
				Name:    rec.Name,
				State:   string(rec.State),
				Version: rec.Version,
				Default: rec.IsDefault,
			})
			if rec.IsDefault {
				report.WSL.DefaultDistribution = rec.Name
			}
		}
	}

	for _, r := range tools.Results {
		report.Tools = append(report.Tools, ToolReport{
			Name:     r.Tool.Name,
			Required: r.Tool.Required,
			Found:    r.Found,
			Path:     r.Path,
		})
	}
	return report
}

func printStatus(out io.Writer, report *StatusReport) {
	w := report.WSL
	state := wsl.SubsystemStatus{Installed: w.Installed, Enabled: w.Enabled, Version: w.Version}
	fmt.Fprintf(out, "WSL: %s\n", state)
	if w.Installed && w.Enabled {
		fmt.Fprintf(out, "Native default-user binding: %s\n", yesNo(w.NativeDefaultUser))
	}
	if report.Error != "" {
		fmt.Fprintf(out, "Error: %s\n", report.Error)
	}

	fmt.Fprintln(out)
	if len(report.Distributions) == 0 {
		fmt.Fprintln(out, "No distributions registered.")
	} else {
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  NAME\tSTATE\tVERSION")
		for _, d := range report.Distributions {
			marker := " "
			if d.Default {
				marker = "*"
			}
			fmt.Fprintf(tw, "%s %s\t%s\t%d\n", marker, d.Name, d.State, d.Version)
		}
		_ = tw.Flush()
	}

	fmt.Fprintln(out)
	for _, t := range report.Tools {
		switch {
		case t.Found:
			fmt.Fprintf(out, "[ok]      %s (%s)\n", t.Name, t.Path)
		case t.Required:
			fmt.Fprintf(out, "[missing] %s (required)\n", t.Name)
		default:
			fmt.Fprintf(out, "[missing] %s\n", t.Name)
		}
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
