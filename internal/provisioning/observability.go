package provisioning

// Logger is the minimal logging surface used by phases.
type Logger interface {
	Printf(format string, v ...any)
}

// Observer receives everything a run reports. Warnings mark best-effort
// failures that do not change the outcome.
type Observer interface {
	Logger

	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
	Successf(format string, v ...any)
}

// NopObserver discards all output.
type NopObserver struct{}

func (NopObserver) Printf(string, ...any)   {}
func (NopObserver) Warnf(string, ...any)    {}
func (NopObserver) Errorf(string, ...any)   {}
func (NopObserver) Successf(string, ...any) {}
