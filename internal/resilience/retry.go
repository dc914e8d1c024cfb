package resilience

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
)

// Strategy selects how the backoff delay grows between attempts.
type Strategy int

const (
	// Linear scales the delay by the attempt number: base, 2*base, 3*base.
	Linear Strategy = iota
	// Exponential doubles the delay after each attempt: base, 2*base, 4*base.
	Exponential
)

// RetryConfig controls retry behavior for a single operation.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first
	// try. A value of 1 means no retries. Default: 3.
	MaxAttempts int

	// BaseDelay is the backoff unit before the first retry. Default: 1s.
	BaseDelay time.Duration

	// MaxDelay caps the backoff duration. Default: 30s.
	MaxDelay time.Duration

	// Strategy selects linear or exponential growth. Default: Linear.
	Strategy Strategy

	// ShouldRetry optionally overrides the default transient-error check.
	// If nil, IsTransient is used.
	ShouldRetry func(err error) bool

	// OnRetry is called before each retry sleep with the attempt number
	// just failed, the upcoming backoff delay, and the error.
	OnRetry func(attempt int, delay time.Duration, err error)
}

func applyDefaults(cfg RetryConfig) RetryConfig {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 30 * time.Second
	}
	return cfg
}

// Do executes fn with retry according to cfg. Only errors classified as
// transient (via ShouldRetry or the default IsTransient check) are
// retried; context cancellation stops retries immediately.
func Do(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	cfg = applyDefaults(cfg)

	shouldRetry := cfg.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = IsTransient
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if ctx.Err() != nil {
			return lastErr
		}

		if !shouldRetry(lastErr) {
			return lastErr
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		delay := backoffDelay(attempt, cfg)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, delay, lastErr)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}
	}

	return lastErr
}

// backoffDelay computes the sleep before the retry following attempt
// (1-based).
func backoffDelay(attempt int, cfg RetryConfig) time.Duration {
	var d float64
	switch cfg.Strategy {
	case Exponential:
		d = float64(cfg.BaseDelay) * math.Pow(2, float64(attempt-1))
	default:
		d = float64(cfg.BaseDelay) * float64(attempt)
	}
	if d > float64(cfg.MaxDelay) {
		d = float64(cfg.MaxDelay)
	}
	return time.Duration(d)
}

// RetryLogger returns an OnRetry callback that logs each retry attempt
// with its backoff duration.
func RetryLogger(source, operation string) func(int, time.Duration, error) {
	return func(attempt int, delay time.Duration, err error) {
		zap.L().Warn("retrying operation",
			zap.String("source", source),
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
	}
}
