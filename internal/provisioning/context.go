package provisioning

import (
	"context"

	"github.com/imamik/wsldev/internal/config"
)

// Context wraps all dependencies and state needed for a provisioning phase.
type Context struct {
	context.Context
	Config   *config.Config
	State    *State
	Observer Observer
	Timeouts *config.Timeouts
}

// NewContext creates a new provisioning context. A nil observer discards output.
func NewContext(ctx context.Context, cfg *config.Config, observer Observer) *Context {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Context{
		Context:  ctx,
		Config:   cfg,
		State:    NewState(),
		Observer: observer,
		Timeouts: config.LoadTimeouts(),
	}
}
