package objectstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v5"

	"h3routeserv/pkg/apperror"
	"h3routeserv/pkg/logger"
)

// maxRetryAttempts bounds transient-error retries on Get/Put (spec.md §7:
// object-store retry with exponential backoff), surfaced to the caller as
// apperror.CodeStoreUnavailable once exhausted.
const maxRetryAttempts = 5

// backoffPermanent marks err as non-transient so withRetry returns
// immediately instead of spending the retry budget on it (e.g. a definitive
// "key does not exist").
func backoffPermanent(err error) error {
	return backoff.Permanent(err)
}

// withRetry runs fn up to maxRetryAttempts times with exponential backoff,
// stopping early on ctx cancellation or a permanent error. ErrNotFound is
// always returned as-is, never wrapped as store-unavailable.
func withRetry(ctx context.Context, op string, key string, fn func() error) error {
	b := backoff.NewExponentialBackOff()

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		if err := fn(); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(b), backoff.WithMaxTries(maxRetryAttempts))

	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}

	logger.Log.Warn("objectstore operation failed after retries",
		"op", op, "key", key, "attempts", attempt, "error", err)
	return apperror.Wrap(err, apperror.CodeStoreUnavailable, fmt.Sprintf("%s %s failed after %d attempts", op, key, attempt))
}
