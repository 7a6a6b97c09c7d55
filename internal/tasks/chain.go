package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/ytfetch/internal/retry"
	"github.com/desertthunder/ytfetch/internal/services"
	"github.com/desertthunder/ytfetch/internal/shared"
)

// RunChain tries strategies in order, each under policy, and returns the first success along
// with the name of the strategy that produced it.
//
// When every strategy fails the error wraps [shared.ErrAllStrategiesFailed] and each strategy's
// error. Cancellation of ctx stops the chain immediately.
func RunChain[T any](ctx context.Context, policy retry.Policy, input string, strategies []services.Strategy[T], emit func(ProgressUpdate)) (T, string, error) {
	var zero T
	if emit == nil {
		emit = func(ProgressUpdate) {}
	}
	if len(strategies) == 0 {
		return zero, "", fmt.Errorf("%w: no strategies configured", shared.ErrAllStrategiesFailed)
	}

	total := len(strategies)
	errs := make([]error, 0, total)

	for i, s := range strategies {
		step, name := i+1, s.Name()
		emit(tryStrategyUpdate(step, total, name))

		var result T
		err := retry.Do(ctx, policy, nil,
			func(attempt int, err error, next time.Duration) {
				emit(retryStrategyUpdate(step, total, name, attempt, err, next))
			},
			func(ctx context.Context) error {
				r, err := s.Fetch(ctx, input)
				if err != nil {
					return err
				}
				result = r
				return nil
			})
		if err == nil {
			return result, name, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, "", ctxErr
		}
		if errors.Is(err, context.Canceled) {
			return zero, "", err
		}

		emit(strategyFailedUpdate(step, total, name, err))
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
	}

	return zero, "", errors.Join(append([]error{shared.ErrAllStrategiesFailed}, errs...)...)
}
