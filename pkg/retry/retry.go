// Package retry provides a small bounded-retry combinator for remote calls
// whose failures may be transient.
package retry

import (
	"context"
	"time"
)

// Do runs op up to attempts times, sleeping between tries. It stops early
// when op succeeds, when retriable reports the error as permanent, or when
// the context is cancelled. The last error is returned.
func Do(ctx context.Context, attempts int, retriable func(error) bool, op func(ctx context.Context) error) error {
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, time.Duration(attempt)*300*time.Millisecond); err != nil {
				return err
			}
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if retriable != nil && !retriable(lastErr) {
			return lastErr
		}
	}

	return lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
