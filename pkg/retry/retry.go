// Package retry expresses retry-with-backoff as an explicit policy applied at
// a call site: a maximum number of attempts, exponential backoff bounded by a
// minimum and a maximum wait, and a predicate selecting retryable errors.
package retry

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// Policy configures Do. The zero value performs a single attempt.
type Policy struct {
	// MaxAttempts is the total number of attempts including the first one.
	MaxAttempts int
	// MinBackoff is the wait before the second attempt. Later waits double.
	MinBackoff time.Duration
	// MaxBackoff caps every wait.
	MaxBackoff time.Duration
	// Retryable selects errors worth another attempt. A nil predicate retries
	// nothing.
	Retryable func(err error) bool
	// OnRetry, when set, is called before sleeping with the failed attempt
	// number (starting at 1) and its error.
	OnRetry func(attempt int, err error)
}

// Default returns the policy used for remote calls: 3 attempts waiting
// between 2s and 10s.
func Default(retryable func(error) bool) Policy {
	return Policy{
		MaxAttempts: 3,
		MinBackoff:  2 * time.Second,
		MaxBackoff:  10 * time.Second,
		Retryable:   retryable,
	}
}

func (p Policy) backoff() retry.Backoff {
	minBackoff := p.MinBackoff
	if minBackoff <= 0 {
		minBackoff = time.Millisecond
	}
	b := retry.NewExponential(minBackoff)
	if p.MaxBackoff > 0 {
		b = retry.WithCappedDuration(p.MaxBackoff, b)
	}
	retries := uint64(0)
	if p.MaxAttempts > 1 {
		retries = uint64(p.MaxAttempts - 1) //nolint: gosec
	}

	return retry.WithMaxRetries(retries, b)
}

// Do calls fn until it succeeds, returns a non-retryable error, the attempts
// are exhausted or ctx is done. The last error returned by fn is returned
// unchanged, except when ctx ends first, in which case ctx.Err() is returned.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	attempt := 0

	return retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if p.Retryable == nil || !p.Retryable(err) {
			return err
		}
		if p.OnRetry != nil && attempt < p.MaxAttempts {
			p.OnRetry(attempt, err)
		}

		return retry.RetryableError(err)
	})
}
