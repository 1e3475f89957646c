package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks an error as transient. [Retry] only re-attempts
// operations whose failures are wrapped in this type; everything else is
// treated as permanent and returned immediately.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err so [Retry] will re-attempt after it.
func Retryable(err error) error { return &RetryableError{Err: err} }

// Retry runs fn up to attempts times, sleeping delay between tries and
// doubling it after each failure. Permanent errors (not wrapped with
// [RetryableError]) abort at once. Returns the last error when every
// attempt fails, or ctx.Err() when the context ends mid-backoff.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !errors.As(err, new(*RetryableError)) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
