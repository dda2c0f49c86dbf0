package distro

import (
	"context"
	"io"

	"github.com/imamik/wsldev/internal/platform/wsl"
)

// Subsystem is the slice of the WSL client the provisioner drives.
// Implemented by *wsl.Client.
type Subsystem interface {
	Probe(ctx context.Context) wsl.SubsystemStatus
	Find(ctx context.Context, name string) (wsl.DistributionRecord, bool, error)
	Install(ctx context.Context, name string, webDownload bool) error
	RegisterWithLauncher(ctx context.Context, launcher string) error
	Unregister(ctx context.Context, name string) error
	Terminate(ctx context.Context, name string) error
	SetDefaultUser(ctx context.Context, name, user string) error
	Exec(ctx context.Context, distro, user string, stdin io.Reader, argv ...string) (wsl.Result, error)
}

var _ Subsystem = (*wsl.Client)(nil)
