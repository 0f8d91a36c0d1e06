package provider

import (
	"context"
	"errors"
	"time"
)

const maxRetryDelay = 10 * time.Second

// withRetry calls fn until it succeeds, the attempts run out or ctx ends.
// The delay doubles after each failure, capped at maxRetryDelay. Errors
// caused by the caller's own cancellation are not retried.
func withRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	delay := baseDelay
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries || ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}
}
