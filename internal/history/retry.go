package history

import (
	"context"
	"time"
)

// withRetry calls fn until it succeeds or maxRetries retries have failed.
// The delay doubles after each failure and is capped at maxDelay when set.
func withRetry(ctx context.Context, maxRetries int, baseDelay, maxDelay time.Duration, fn func(context.Context) error) error {
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
		if attempt >= maxRetries {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay = nextDelay(delay, maxDelay)
	}
}

func nextDelay(delay, maxDelay time.Duration) time.Duration {
	delay *= 2
	if maxDelay > 0 && delay > maxDelay {
		return maxDelay
	}
	return delay
}
