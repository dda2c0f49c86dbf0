package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sleeper pauses for d or until ctx ends.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the real-time Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Config holds retry configuration.
type Config struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Sleep        Sleeper
}

// Option is a functional option for retry configuration.
type Option func(*Config)

// WithExponentialBackoff executes the operation with exponential backoff retry.
// It retries the operation up to MaxRetries times, with exponentially increasing
// delays between attempts. Context cancellation is respected throughout.
//
// Errors wrapped with Fatal() are not retried.
func WithExponentialBackoff(ctx context.Context, operation func() error, opts ...Option) error {
	cfg := &Config{
		MaxRetries:   5,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Sleep:        Sleep,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	err := run(ctx, cfg, func(int) error { return operation() })
	if err != nil && !IsFatal(err) && ctx.Err() == nil {
		return fmt.Errorf("operation failed after %d retries: %w", cfg.MaxRetries+1, err)
	}
	return err
}

// Attempts runs op at most maxAttempts times, passing the 1-based attempt
// number. There is no delay between attempts unless WithInitialDelay is given;
// callers that need to wait for the subsystem do so inside op.
func Attempts(ctx context.Context, maxAttempts int, op func(attempt int) error, opts ...Option) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	cfg := &Config{
		MaxRetries: maxAttempts - 1,
		Multiplier: 1,
		Sleep:      Sleep,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	err := run(ctx, cfg, op)
	if err != nil && !IsFatal(err) && ctx.Err() == nil {
		return fmt.Errorf("operation failed after %d attempts: %w", cfg.MaxRetries+1, err)
	}
	return err
}

func run(ctx context.Context, cfg *Config, op func(attempt int) error) error {
	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		err := op(attempt + 1)
		if err == nil {
			return nil
		}
		lastErr = err

		if IsFatal(err) {
			return fmt.Errorf("fatal error (not retrying): %w", err)
		}

		if attempt < cfg.MaxRetries {
			if err := cfg.Sleep(ctx, delay); err != nil {
				return fmt.Errorf("context cancelled after %d attempts: %w", attempt+1, err)
			}
			delay = time.Duration(float64(delay) * cfg.Multiplier)
			if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		}
	}

	return lastErr
}

// Poll sleeps interval and then evaluates cond, repeating until cond reports
// true or the accumulated sleep time reaches ceiling. Callers make their own
// first observation before polling. Elapsed time is the sum of the intervals
// slept, so it is deterministic under a fake Sleeper.
//
// It returns whether cond was satisfied and the elapsed time. An error from
// cond or from the Sleeper ends the loop.
func Poll(ctx context.Context, interval, ceiling time.Duration, cond func() (bool, error), opts ...Option) (bool, time.Duration, error) {
	cfg := &Config{Sleep: Sleep}
	for _, opt := range opts {
		opt(cfg)
	}
	if interval <= 0 {
		return false, 0, fmt.Errorf("poll interval must be positive, got %v", interval)
	}

	var elapsed time.Duration
	for elapsed < ceiling {
		if err := cfg.Sleep(ctx, interval); err != nil {
			return false, elapsed, err
		}
		elapsed += interval

		ok, err := cond()
		if err != nil {
			return false, elapsed, err
		}
		if ok {
			return true, elapsed, nil
		}
	}
	return false, elapsed, nil
}

// WithMaxRetries sets the maximum number of retries.
func WithMaxRetries(n int) Option {
	return func(c *Config) {
		c.MaxRetries = n
	}
}

// WithInitialDelay sets the initial delay between retries.
func WithInitialDelay(d time.Duration) Option {
	return func(c *Config) {
		c.InitialDelay = d
	}
}

// WithMaxDelay sets the maximum delay between retries.
func WithMaxDelay(d time.Duration) Option {
	return func(c *Config) {
		c.MaxDelay = d
	}
}

// WithSleeper replaces the real-time sleep between attempts.
func WithSleeper(s Sleeper) Option {
	return func(c *Config) {
		if s != nil {
			c.Sleep = s
		}
	}
}

// FatalError wraps an error to mark it as fatal (non-retryable).
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Fatal marks an error as fatal (non-retryable).
// Operations that encounter fatal errors will not be retried.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// IsFatal checks if an error is fatal (non-retryable).
func IsFatal(err error) bool {
	var fatalErr *FatalError
	return errors.As(err, &fatalErr)
}
