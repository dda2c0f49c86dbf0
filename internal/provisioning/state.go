package provisioning

import "github.com/imamik/wsldev/internal/platform/wsl"

// State holds the shared results of provisioning phases.
// It is progressively populated as each phase completes and is passed
// to subsequent phases that need earlier results.
type State struct {
	// Populated by the distribution phase
	Subsystem   wsl.SubsystemStatus
	Distro      string // registered name, may differ from the requested one
	Username    string
	Provisioned bool

	// Peripheral results keyed by phase name
	Peripherals map[string]bool
}

// NewState creates an empty provisioning state.
func NewState() *State {
	return &State{
		Peripherals: make(map[string]bool),
	}
}
