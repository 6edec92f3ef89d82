package cache

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for caching operations.
var (
	// ErrNetwork is returned for transport failures talking to a remote cache.
	ErrNetwork = errors.New("network error")

	// ErrCacheMiss is returned by backends that signal a miss as an error.
	// Cache.Get converts it into (nil, false, nil).
	ErrCacheMiss = errors.New("cache miss")
)

// RetryableError marks a failure as transient.
type RetryableError struct{ Err error }

// Retryable wraps err so Backoff.Retry tries again. Nil stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err, or anything it wraps, is a RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Backoff is an exponential retry schedule.
type Backoff struct {
	// Attempts is the total number of calls, including the first.
	Attempts int
	// Initial is the delay after the first failure; it doubles each time.
	Initial time.Duration
	// Max caps a single delay. Zero means no cap.
	Max time.Duration
}

// DefaultBackoff suits a cache round trip: a slow cache is worth less than
// recomputing, so it gives up within a second.
var DefaultBackoff = Backoff{Attempts: 3, Initial: 100 * time.Millisecond, Max: 500 * time.Millisecond}

// Retry calls fn until it succeeds, returns a non-retryable error, the
// attempts run out or ctx is done. It returns the last error.
func (b Backoff) Retry(ctx context.Context, fn func() error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Initial

	var err error
	for i := range attempts {
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if b.Max > 0 && delay > b.Max {
			delay = b.Max
		}
	}
	return err
}
