package database

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	readRetryBase     = 50 * time.Millisecond
	readRetryAttempts = 2
)

// RetryRead runs an idempotent read, retrying a bounded number of times when
// the failure is transient. It must never wrap writes: a failed compound write
// is rolled back and reported, not replayed.
func RetryRead(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(readRetryAttempts, retry.NewExponential(readRetryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if IsTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}
