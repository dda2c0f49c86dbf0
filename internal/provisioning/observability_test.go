package provisioning

import (
	"fmt"
	"strings"
)

// recordingObserver is a test implementation of Observer that records messages.
type recordingObserver struct {
	infos    []string
	warnings []string
	errors   []string
	success  []string
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{}
}

func (r *recordingObserver) Printf(format string, v ...any) {
	r.infos = append(r.infos, fmt.Sprintf(format, v...))
}

func (r *recordingObserver) Warnf(format string, v ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, v...))
}

func (r *recordingObserver) Errorf(format string, v ...any) {
	r.errors = append(r.errors, fmt.Sprintf(format, v...))
}

func (r *recordingObserver) Successf(format string, v ...any) {
	r.success = append(r.success, fmt.Sprintf(format, v...))
}

func (r *recordingObserver) contains(messages []string, substr string) bool {
	for _, m := range messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

var _ Observer = (*recordingObserver)(nil)
var _ Observer = NopObserver{}
