// Package retry implements a small bounded-retry policy used by write paths
// that have to ride out store-level eventual consistency (for example the
// profile insert racing the identity row right after sign-up).
package retry

import (
	"context"
	"time"
)

// Policy describes how an operation is retried. The zero value never retries.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first one.
	MaxAttempts int
	// Backoff returns the delay before the given attempt (1-based, the first
	// retry is attempt 1). Nil means no delay.
	Backoff func(attempt int) time.Duration
	// Retryable reports whether the error is worth retrying. Nil means no
	// error is retryable.
	Retryable func(err error) bool

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// FixedDelay returns a backoff function with a constant delay between
// attempts.
func FixedDelay(d time.Duration) func(int) time.Duration {
	return func(int) time.Duration { return d }
}

// Do invokes fn until it succeeds, the error is not retryable, or the policy
// runs out of attempts. The last error is returned unwrapped so callers can
// keep matching on it with errors.Is.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if p.Retryable == nil || !p.Retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		if p.Backoff != nil {
			if sleepErr := sleep(ctx, p.Backoff(attempt)); sleepErr != nil {
				return sleepErr
			}
		}
	}
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
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
