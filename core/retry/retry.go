// Package retry provides a small attempts+backoff runner used for
// read-after-write confirmation polling.
package retry

import (
	"context"
	"time"
)

// Backoff returns the delay to wait before attempt n (zero-based).
type Backoff func(attempt int) time.Duration

// Fibonacci yields base*1, base*1, base*2, base*3, base*5, base*8, ...
func Fibonacci(base time.Duration) Backoff {
	return func(attempt int) time.Duration {
		a, b := 1, 1
		for i := 0; i < attempt; i++ {
			a, b = b, a+b
		}
		return time.Duration(a) * base
	}
}

// Constant yields the same delay for every attempt.
func Constant(d time.Duration) Backoff {
	return func(int) time.Duration { return d }
}

// Do waits backoff(n) and then calls fn, up to attempts times, until fn
// reports done or ctx is canceled. An error from fn does not stop the
// polling; the last error is returned when the attempt budget runs out.
func Do(ctx context.Context, attempts int, backoff Backoff, fn func(ctx context.Context) (bool, error)) (bool, error) {
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if delay := backoff(attempt); delay > 0 {
			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case <-time.After(delay):
			}
		} else if err := ctx.Err(); err != nil {
			return false, err
		}

		done, err := fn(ctx)
		if err != nil {
			lastErr = err
			continue
		}
		if done {
			return true, nil
		}
	}
	return false, lastErr
}
