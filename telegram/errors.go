package telegram

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnauthorized the session material was rejected or revoked
	ErrUnauthorized = errors.New("telegram session is not authorized")

	// ErrNotConnected a call was made before Connect
	ErrNotConnected = errors.New("telegram client is not connected")
)

// EntityNotFoundError the handle resolved to nothing
type EntityNotFoundError struct {
	Handle string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("entity not found: %s", e.Handle)
}

// EntityForbiddenError the account cannot access the entity
type EntityForbiddenError struct {
	Handle string
}

func (e *EntityForbiddenError) Error() string {
	return fmt.Sprintf("entity forbidden: %s", e.Handle)
}

// RateLimitedError server-side flood wait; RetryAfter is authoritative
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// TransientError a retryable transport-level failure
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient telegram error: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err should be retried by the caller
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

// IsRateLimited extracts a flood-wait duration when err is a rate limit
func IsRateLimited(err error) (time.Duration, bool) {
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return rl.RetryAfter, true
	}
	return 0, false
}
