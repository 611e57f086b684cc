package skyapi

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"
)

// RetryConfig configures retry behavior with exponential backoff.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts (default: 2)
	MaxRetries int

	// InitialDelay is the initial backoff delay (default: 1 second)
	InitialDelay time.Duration

	// MaxDelay is the maximum backoff delay (default: 30 seconds)
	MaxDelay time.Duration

	// Multiplier is the backoff multiplier (default: 2.0 for exponential)
	Multiplier float64
}

// DefaultRetryConfig returns sensible defaults for retry behavior.
// The periodic fetchers retry again on their next tick anyway, so the
// number of in-call attempts stays low.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   2,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// Retryable reports whether an error is worth retrying. Client-side errors
// other than 429 indicate a bad request and will not improve on retry.
func Retryable(err error) bool {
	se, ok := err.(*StatusError)
	if !ok {
		return true
	}
	if se.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return se.StatusCode < 400 || se.StatusCode >= 500
}

// RetryWithBackoff executes a function with exponential backoff retry logic.
//
// Example usage:
//
//	snapshots, err := RetryWithBackoff(ctx, DefaultRetryConfig(), func() ([]Snapshot, error) {
//	    return client.AreaStates(ctx, bounds)
//	})
func RetryWithBackoff[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var result T
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			// delay = min(InitialDelay * Multiplier^(attempt-1), MaxDelay)
			delay := time.Duration(float64(cfg.InitialDelay) * math.Pow(cfg.Multiplier, float64(attempt-1)))
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}

			select {
			case <-ctx.Done():
				return result, fmt.Errorf("retry cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
		}

		res, err := fn()
		if err == nil {
			return res, nil
		}
		lastErr = err

		if !Retryable(err) {
			return result, err
		}
	}

	return result, fmt.Errorf("max retries (%d) exceeded: %w", cfg.MaxRetries, lastErr)
}
