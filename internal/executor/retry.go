package executor

import (
	"context"
	"math"
	"time"
)

// Default retry configuration shared by the execution engine and the API
// client. One canonical backoff multiplier is used everywhere.
const (
	DefaultMaxAttempts  = 3
	DefaultInitialDelay = 250 * time.Millisecond
	DefaultMultiplier   = 1.5
)

// RetryPolicy encapsulates backoff scheduling: how many attempts an item
// gets, how long to wait between them, and which failures are worth
// retrying. The policy is stateless and pure, so a single value can be
// shared across workers without synchronization.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts per item, including the
	// first. Must be >= 1.
	MaxAttempts int

	// InitialDelay is the wait before the second attempt.
	InitialDelay time.Duration

	// Multiplier is the geometric growth factor applied per attempt.
	Multiplier float64

	// RetryIf decides whether a given failure is retryable. Nil retries
	// every error.
	RetryIf func(error) bool
}

// DefaultPolicy returns the standard policy: 3 attempts, 250ms initial
// delay, 1.5x growth, retry on any error.
func DefaultPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  DefaultMaxAttempts,
		InitialDelay: DefaultInitialDelay,
		Multiplier:   DefaultMultiplier,
	}
}

// Delay returns the wait before attempt k+1 for a 0-indexed attempt number:
// InitialDelay * Multiplier^k.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	return time.Duration(float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(attempt)))
}

// ShouldRetry reports whether a failed 0-indexed attempt should be retried.
// The final attempt is never retried, and the caller-supplied predicate can
// veto retries for terminal failures.
func (p RetryPolicy) ShouldRetry(attempt int, err error) bool {
	if err == nil || attempt >= p.MaxAttempts-1 {
		return false
	}
	if p.RetryIf != nil {
		return p.RetryIf(err)
	}
	return true
}

// Wait blocks for d or until ctx is cancelled, whichever comes first. It is
// the wait step shared by the execution engine and remote callers applying
// the policy themselves.
func Wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
