package resilience

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"
)

type RetryConfig struct {
	// MaxAttempts counts the first call. Default 3.
	MaxAttempts int
	// InitialDelay doubles after every failed attempt up to MaxDelay.
	InitialDelay time.Duration
	MaxDelay     time.Duration
	// Retryable reports whether an error is transient. Nil retries every
	// error.
	Retryable func(error) bool
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = 100 * time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 5 * time.Second
	}
	return c
}

// backoff returns the delay after the given failed attempt (1-based):
// the doubled base delay, capped, with up to 10% jitter either way.
func (c RetryConfig) backoff(attempt int) time.Duration {
	d := c.InitialDelay << (attempt - 1)
	if d <= 0 || d > c.MaxDelay {
		d = c.MaxDelay
	}
	jitter := time.Duration((rand.Float64()*2 - 1) * 0.1 * float64(d))
	return d + jitter
}

// Retry calls fn until it succeeds, returns a permanent error, ctx is
// done or MaxAttempts calls failed.
func Retry(ctx context.Context, name string, cfg RetryConfig, fn func() error) error {
	cfg = cfg.withDefaults()
	log := slog.Default().With("component", "retry", "operation", name)

	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil {
			if attempt > 1 {
				log.Info("succeeded after retry", "attempt", attempt)
			}
			return nil
		}
		if cfg.Retryable != nil && !cfg.Retryable(err) {
			return fmt.Errorf("%s: permanent error: %w", name, err)
		}
		if attempt == cfg.MaxAttempts {
			return fmt.Errorf("%s: giving up after %d attempts: %w", name, attempt, err)
		}

		delay := cfg.backoff(attempt)
		log.Warn("attempt failed, retrying", "attempt", attempt, "error", err, "delay", delay)
		t := time.NewTimer(delay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("%s: retry aborted: %w", name, ctx.Err())
		}
	}
}
