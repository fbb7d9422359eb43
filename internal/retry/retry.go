package retry

import (
	"context"
	"fmt"
	"time"
)

type Config struct {
	MaxAttempts int
	Delay       time.Duration
	MaxDelay    time.Duration // cap for the exponential backoff, 0 = uncapped
}

// WithRetry runs fn up to MaxAttempts times with exponential backoff between
// attempts. The retryable predicate decides whether an error is worth another
// attempt; a non-retryable error is returned immediately.
func WithRetry(ctx context.Context, config Config, retryable func(error) bool, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		if err := fn(); err != nil {
			lastErr = err

			if retryable != nil && !retryable(err) {
				return err
			}

			if attempt == config.MaxAttempts {
				return fmt.Errorf("failed after %d attempts: %w", config.MaxAttempts, err)
			}

			delay := config.Delay << (attempt - 1)
			if config.MaxDelay > 0 && delay > config.MaxDelay {
				delay = config.MaxDelay
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				continue
			}
		}
		return nil
	}

	return lastErr
}
