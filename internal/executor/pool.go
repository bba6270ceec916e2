// Package executor runs a caller-supplied operation over many items in
// parallel on a bounded worker pool, applying a retry policy with
// exponential backoff independently to each item. One item's exhausted
// retries never affect its siblings, and results come back in input order.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// DefaultMaxWorkers caps parallelism when the caller does not.
const DefaultMaxWorkers = 8

// Config holds execution engine options.
type Config struct {
	// MaxWorkers caps concurrent operation invocations. Pool size is
	// configuration, not tied to item count. Zero means DefaultMaxWorkers.
	MaxWorkers int

	// Policy is the per-item retry policy. A zero policy gets defaults.
	Policy RetryPolicy

	// Logger receives per-attempt failure logs. Nil uses slog.Default().
	Logger *slog.Logger
}

// ItemError records the terminal failure of one item after its retries were
// exhausted.
type ItemError struct {
	Index    int
	Attempts int
	Err      error
}

// Error implements the error interface.
func (e ItemError) Error() string {
	return fmt.Sprintf("item %d failed after %d attempt(s): %v", e.Index, e.Attempts, e.Err)
}

// Unwrap returns the final attempt's error.
func (e ItemError) Unwrap() error {
	return e.Err
}

// result is one item's pre-allocated slot. Each slot is written only by the
// worker handling that item, so slots need no locking.
type result[R any] struct {
	value  R
	failed bool
}

// Execute applies op to every item on a bounded worker pool and returns the
// successful results in input order. Failed items are elided from the
// returned slice and reported in the second return value, so callers that
// zip results back to item identities must use the failure indexes.
//
// The pool is strictly scoped to this call: every worker is joined before
// Execute returns, on the success and the all-failed path alike. When ctx is
// cancelled, in-flight attempts are allowed to finish (a half-applied remote
// update is worse than a slightly delayed exit) but no further retries are
// scheduled and undispatched items fail immediately.
func Execute[T, R any](ctx context.Context, op func(context.Context, T) (R, error), items []T, cfg Config) ([]R, []ItemError) {
	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}
	policy := cfg.Policy
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = DefaultMaxAttempts
	}
	if policy.InitialDelay <= 0 {
		policy.InitialDelay = DefaultInitialDelay
	}
	if policy.Multiplier <= 1 {
		policy.Multiplier = DefaultMultiplier
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	slots := make([]result[R], len(items))
	failures := make([]ItemError, len(items))

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxWorkers)

	for i := range items {
		if ctx.Err() != nil {
			failures[i] = ItemError{Index: i, Attempts: 0, Err: ctx.Err()}
			slots[i].failed = true
			continue
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(idx int, item T) {
			defer wg.Done()
			defer func() { <-sem }()
			runItem(ctx, op, item, idx, policy, logger, &slots[idx], &failures[idx])
		}(i, items[i])
	}

	wg.Wait()

	ordered := make([]R, 0, len(items))
	var failed []ItemError
	for i := range slots {
		if slots[i].failed {
			failed = append(failed, failures[i])
			continue
		}
		ordered = append(ordered, slots[i].value)
	}
	return ordered, failed
}

// runItem drives one item's retry loop. Every attempt's outcome is a value
// inspected here; failures never propagate past the slot.
func runItem[T, R any](ctx context.Context, op func(context.Context, T) (R, error), item T, idx int, policy RetryPolicy, logger *slog.Logger, slot *result[R], failure *ItemError) {
	fail := func(attempts int, err error) {
		failure.Index = idx
		failure.Attempts = attempts
		failure.Err = err
		slot.failed = true
	}

	for attempt := 0; ; attempt++ {
		value, err := op(ctx, item)
		if err == nil {
			slot.value = value
			return
		}

		logger.Debug("operation attempt failed",
			"item", idx,
			"attempt", attempt+1,
			"max_attempts", policy.MaxAttempts,
			"error", err,
		)

		if !policy.ShouldRetry(attempt, err) {
			fail(attempt+1, err)
			return
		}

		// Cancellation ends the retry loop without starting a new attempt;
		// the attempt that just ran was allowed to finish.
		if serr := Wait(ctx, policy.Delay(attempt)); serr != nil {
			fail(attempt+1, err)
			return
		}
	}
}
