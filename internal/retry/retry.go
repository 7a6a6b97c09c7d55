// Package retry runs an operation a bounded number of times with a constant pause between attempts.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/desertthunder/ytfetch/internal/shared"
)

// Policy is the number of attempts and the pause between them.
type Policy struct {
	Attempts int
	Backoff  time.Duration
}

// Once is a single attempt.
var Once = Policy{Attempts: 1}

// FromConfig converts a [shared.RetryConfig].
func FromConfig(c shared.RetryConfig) Policy {
	return Policy{Attempts: c.Attempts, Backoff: c.Backoff.Duration}
}

// Classifier reports whether an error is worth another attempt.
type Classifier func(error) bool

// Notify is called before each pause with the 1-based attempt that failed.
type Notify func(attempt int, err error, next time.Duration)

// IsRetryable retries everything except permanent errors and deadline expiry of the caller.
func IsRetryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return !shared.IsPermanent(err)
}

// Do calls fn until it succeeds, returns a non-retryable error, runs out of attempts or ctx ends.
//
// The last error is returned as is.
func Do(ctx context.Context, p Policy, classify Classifier, notify Notify, fn func(context.Context) error) error {
	if classify == nil {
		classify = IsRetryable
	}
	attempts := max(p.Attempts, 1)

	var b backoff.BackOff = backoff.NewConstantBackOff(p.Backoff)
	b = backoff.WithMaxRetries(b, uint64(attempts-1))
	b = backoff.WithContext(b, ctx)

	attempt := 0
	op := func() error {
		attempt++
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		err := fn(ctx)
		if err != nil && !classify(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	var onRetry backoff.Notify
	if notify != nil {
		onRetry = func(err error, next time.Duration) { notify(attempt, err, next) }
	}

	return backoff.RetryNotify(op, b, onRetry)
}
