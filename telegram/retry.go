package telegram

import (
	"context"
	"time"
)

const (
	defaultMaxAttempts = 3
	baseBackoff        = 500 * time.Millisecond
	maxBackoff         = 8 * time.Second
)

// WithRetry retries op on transient errors with capped exponential backoff.
// Rate limits and every other error pass through untouched so callers can
// apply their own policy.
func WithRetry(ctx context.Context, maxAttempts int, op func() error) error {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	backoff := baseBackoff
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if !IsTransient(err) || attempt == maxAttempts {
			return err
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		if backoff *= 2; backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
	return err
}
