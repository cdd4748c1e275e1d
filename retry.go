package phonecrawler

import (
	"context"
	"errors"
	"time"
)

// WithRetry runs op up to maxAttempts times, sleeping baseDelay*attempt
// between attempts (linear backoff). On rate-limit/forbidden-class errors the
// channel is rotated to a fresh proxy or credential before the next attempt.
// ErrCredentialsExhausted passes through untouched: once every credential is
// burned there is nothing left to retry with. Any other exhaustion comes back
// wrapped in RetryExhaustedError.
func WithRetry[T any](ctx context.Context, ch *Channel, maxAttempts int, baseDelay time.Duration, op func() (T, error)) (T, error) {
	var zero T
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := op()
		if err == nil {
			return result, nil
		}
		if errors.Is(err, ErrCredentialsExhausted) {
			return zero, err
		}
		lastErr = err

		if attempt < maxAttempts {
			if isBlocked(err) && ch != nil {
				ch.Rotate()
			}
			if err := sleepCtx(ctx, baseDelay*time.Duration(attempt)); err != nil {
				return zero, err
			}
		}
	}

	return zero, &RetryExhaustedError{Attempts: maxAttempts, Last: lastErr}
}

// sleepCtx sleeps for d unless the context is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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
