package connector

import (
	"context"

	"github.com/cenkalti/backoff/v4"
)

// withRetry runs op once, or up to MaxRetries more times with exponential
// backoff when cfg enables retries.
func withRetry[T any](ctx context.Context, cfg *RetryConfig, op func() (T, error)) (T, error) {
	if cfg == nil || cfg.MaxRetries <= 0 {
		return op()
	}

	b := backoff.NewExponentialBackOff()
	if cfg.BaseDelay > 0 {
		b.InitialInterval = cfg.BaseDelay
	}
	if cfg.MaxDelay > 0 {
		b.MaxInterval = cfg.MaxDelay
	}
	if cfg.Backoff > 1 {
		b.Multiplier = cfg.Backoff
	}
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(cfg.MaxRetries)), ctx)
	return backoff.RetryWithData(backoff.OperationWithData[T](op), policy)
}
