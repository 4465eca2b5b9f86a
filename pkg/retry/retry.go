package retry

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/wealthpulse/wealthpulse_service/pkg/errors"
)

// Do runs fn until it succeeds, returns a non-retryable error, or the policy
// runs out of attempts. Errors are returned wrapped so errors.As still finds
// the original cause.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) error) error {
	if err := p.Validate(); err != nil {
		return err
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = apperrors.IsRetryable
	}
	backoff := NewBackoff(p)

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(err) {
			return err
		}
		if attempt == p.MaxAttempts {
			break
		}

		delay := backoff.Calculate(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry cancelled by context: %w", ctx.Err())
		case <-timer.C:
		}
	}

	return fmt.Errorf("max retry attempts (%d) exceeded: %w", p.MaxAttempts, lastErr)
}
