// Package retry runs fallible operations with a bounded number of retries and
// a fixed delay between attempts.
package retry

import (
	"context"
	"errors"
	"time"
)

const (
	DefaultRetries = 3
	DefaultDelay   = time.Second
)

type Policy struct {
	// Retries is the number of extra attempts after the first one.
	Retries int
	// Delay is slept between attempts. There is no backoff or jitter.
	Delay time.Duration
	// OnRetry is called before sleeping, with the 1-based attempt that failed.
	OnRetry func(attempt int, err error)
}

func DefaultPolicy() Policy {
	return Policy{Retries: DefaultRetries, Delay: DefaultDelay}
}

// Do invokes op up to Retries+1 times. The error of the last attempt is
// returned unchanged. If ctx ends while waiting, the last error is joined with
// the context error.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	retries := max(p.Retries, 0)

	var (
		result  T
		lastErr error
	)
	for attempt := 1; attempt <= retries+1; attempt++ {
		result, lastErr = op(ctx)
		if lastErr == nil {
			return result, nil
		}
		if attempt > retries {
			break
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, lastErr)
		}

		if err := sleep(ctx, p.Delay); err != nil {
			var zero T
			return zero, errors.Join(lastErr, err)
		}
	}

	var zero T
	return zero, lastErr
}

// Run is Do for operations that only return an error.
func Run(ctx context.Context, p Policy, op func(context.Context) error) error {
	_, err := Do(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
