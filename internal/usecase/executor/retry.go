package executor

import (
	"context"
	"errors"
	"time"

	"heyq/internal/application/port/output"
)

// RetryPolicy is the explicit retry parameter passed into the executor: a
// bounded attempt ceiling with exponential backoff. It absorbs transient
// "not yet ready" conditions only; logical failures (element genuinely
// absent after the page settled) are never retried.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Retryable   func(error) bool
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    4 * time.Second,
		Retryable: func(err error) bool {
			return errors.Is(err, output.ErrNotReady)
		},
	}
}

// delay returns the backoff wait before the given 1-based attempt.
func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	return d
}

// sleep blocks for the attempt's backoff or until the context dies. Retries
// block only the current request's progress, never other sessions.
func (p RetryPolicy) sleep(ctx context.Context, attempt int) error {
	t := time.NewTimer(p.delay(attempt))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
