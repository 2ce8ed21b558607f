package telegram

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithRetryRecoversFromTransient(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), 3, func() error {
		calls++
		if calls < 3 {
			return &TransientError{Err: errors.New("connection reset")}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithRetry: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	transient := &TransientError{Err: errors.New("timeout")}
	err := WithRetry(context.Background(), 3, func() error {
		calls++
		return transient
	})
	if !IsTransient(err) {
		t.Fatalf("err = %v, want transient", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestWithRetryPassesRateLimitThrough(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), 3, func() error {
		calls++
		return &RateLimitedError{RetryAfter: 10 * time.Second}
	})
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if _, ok := IsRateLimited(err); !ok {
		t.Fatalf("err = %v, want rate limited", err)
	}
}

func TestWithRetryPassesFatalThrough(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), 3, func() error {
		calls++
		return ErrUnauthorized
	})
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestWithRetryHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, 3, func() error {
		return &TransientError{Err: errors.New("flaky")}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
