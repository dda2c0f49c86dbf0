package testing

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

// TestContext returns a context with a reasonable timeout for tests.
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// RecordingObserver records every message by level.
type RecordingObserver struct {
	mu       sync.Mutex
	Infos    []string
	Warnings []string
	Errors   []string
	Success  []string
}

// NewRecordingObserver creates an empty RecordingObserver.
func NewRecordingObserver() *RecordingObserver {
	return &RecordingObserver{}
}

func (r *RecordingObserver) add(dst *[]string, format string, v []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*dst = append(*dst, fmt.Sprintf(format, v...))
}

// Printf records an informational message.
func (r *RecordingObserver) Printf(format string, v ...any) { r.add(&r.Infos, format, v) }

// Warnf records a warning.
func (r *RecordingObserver) Warnf(format string, v ...any) { r.add(&r.Warnings, format, v) }

// Errorf records an error.
func (r *RecordingObserver) Errorf(format string, v ...any) { r.add(&r.Errors, format, v) }

// Successf records a success message.
func (r *RecordingObserver) Successf(format string, v ...any) { r.add(&r.Success, format, v) }

// All returns every recorded message in level order.
func (r *RecordingObserver) All() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]string, 0, len(r.Infos)+len(r.Warnings)+len(r.Errors)+len(r.Success))
	all = append(all, r.Infos...)
	all = append(all, r.Warnings...)
	all = append(all, r.Errors...)
	all = append(all, r.Success...)
	return all
}

// HasWarning reports whether any warning contains substr.
func (r *RecordingObserver) HasWarning(substr string) bool {
	return containsAny(r.Warnings, substr)
}

// HasInfo reports whether any informational message contains substr.
func (r *RecordingObserver) HasInfo(substr string) bool {
	return containsAny(r.Infos, substr)
}

// Logged reports whether any message at any level contains substr.
func (r *RecordingObserver) Logged(substr string) bool {
	return containsAny(r.All(), substr)
}

func containsAny(messages []string, substr string) bool {
	for _, m := range messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

// FakeSleeper records requested sleeps without waiting.
type FakeSleeper struct {
	mu    sync.Mutex
	Slept []time.Duration
}

// Sleep implements retry.Sleeper.
func (f *FakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	f.mu.Lock()
	f.Slept = append(f.Slept, d)
	f.mu.Unlock()
	return ctx.Err()
}

// Total returns the sum of all recorded sleeps.
func (f *FakeSleeper) Total() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum time.Duration
	for _, d := range f.Slept {
		sum += d
	}
	return sum
}
