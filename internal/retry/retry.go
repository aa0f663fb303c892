// Package retry runs an operation with a bounded number of attempts and a
// fixed delay, retrying only errors the caller classifies as retryable.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExhausted marks an error returned after every attempt failed with a
// retryable error.
var ErrExhausted = errors.New("retry attempts exhausted")

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Policy configures Do.
type Policy struct {
	// Attempts is the maximum number of calls to the operation (minimum 1).
	Attempts int
	// Delay is waited between attempts.
	Delay time.Duration
	// Retryable decides whether an error warrants another attempt. A nil
	// predicate retries every error.
	Retryable func(error) bool
	// OnRetry is called after a retryable failure, before the delay.
	OnRetry func(attempt int, err error)
	// Sleep overrides the wait between attempts (tests).
	Sleep Sleeper
}

// Result reports how Do finished.
type Result struct {
	Attempts int
	Err      error
}

// Do calls op until it succeeds, returns a non-retryable error, or the attempt
// budget is spent. op receives the 1-based attempt number. After exhaustion
// the returned error wraps both ErrExhausted and the last failure.
func Do(ctx context.Context, policy Policy, op func(ctx context.Context, attempt int) error) Result {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := policy.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Result{Attempts: attempt - 1, Err: err}
		}
		lastErr = op(ctx, attempt)
		if lastErr == nil {
			return Result{Attempts: attempt}
		}
		if policy.Retryable != nil && !policy.Retryable(lastErr) {
			return Result{Attempts: attempt, Err: lastErr}
		}
		if attempt == attempts {
			break
		}
		if policy.OnRetry != nil {
			policy.OnRetry(attempt, lastErr)
		}
		if policy.Delay > 0 {
			if err := sleep(ctx, policy.Delay); err != nil {
				return Result{Attempts: attempt, Err: err}
			}
		}
	}
	return Result{Attempts: attempts, Err: fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempts, lastErr)}
}

// SleepContext waits for d, returning early with ctx.Err() on cancellation.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
