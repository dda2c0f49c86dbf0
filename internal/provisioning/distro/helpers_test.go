package distro

import (
	"context"
	"testing"
	"time"

	"github.com/imamik/wsldev/internal/config"
	"github.com/imamik/wsldev/internal/provisioning"
	"github.com/imamik/wsldev/internal/secret"
	testutil "github.com/imamik/wsldev/internal/testing"
)

// One time unit of the resolver's schedule.
const unit = time.Second

func testTimeouts() *config.Timeouts {
	return &config.Timeouts{
		PollInterval:  5 * unit,
		PollCeiling:   60 * unit,
		SettleDelay:   3 * unit,
		ReadyInterval: 2 * unit,
		ReadyCeiling:  120 * unit,
	}
}

func newTestContext(t *testing.T, cfg *config.Config) (*provisioning.Context, *testutil.RecordingObserver) {
	t.Helper()
	if cfg == nil {
		cfg = testutil.MinimalConfig()
	}
	observer := testutil.NewRecordingObserver()
	ctx := provisioning.NewContext(context.Background(), cfg, observer)
	ctx.Timeouts = testTimeouts()
	return ctx, observer
}

func newRequest(t *testing.T, distro, user, password string) *ProvisioningRequest {
	t.Helper()
	pw := secret.New([]byte(password))
	t.Cleanup(pw.Destroy)
	return &ProvisioningRequest{DistroName: distro, Username: user, Password: pw}
}

// countingResolver counts Resolve calls and delegates.
type countingResolver struct {
	inner StateResolver
	calls int
}

func (c *countingResolver) Resolve(ctx *provisioning.Context, name string) bool {
	c.calls++
	return c.inner.Resolve(ctx, name)
}
