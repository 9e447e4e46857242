package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/uhppoted/db-sync-sheets/errs"
)

// ErrRetryExhausted is matched (errors.Is) by the error returned when every
// attempt at a retryable operation failed.
var ErrRetryExhausted = errors.New("retry attempts exhausted")

// Policy defines the retry behaviour for a single table sync.
type Policy struct {
	Attempts  int
	Base      time.Duration
	Cap       time.Duration
	Retryable func(error) bool

	// Notify, if set, is invoked before each wait with the failed attempt's error.
	Notify func(attempt int, err error, wait time.Duration)

	timer backoff.Timer
}

// DefaultPolicy returns the standard policy: 3 attempts in total, waiting 1s
// then 2s (doubling, capped at 30s), retrying only transient errors.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:  3,
		Base:      1 * time.Second,
		Cap:       30 * time.Second,
		Retryable: errs.IsTransient,
	}
}

func (p Policy) backoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.Base
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = p.Cap
	b.MaxElapsedTime = 0
	b.Reset()

	retries := 0
	if p.Attempts > 1 {
		retries = p.Attempts - 1
	}

	return backoff.WithMaxRetries(b, uint64(retries))
}

// Retry invokes op until it succeeds, fails with a non-retryable error or the
// policy's attempts are used up. A non-retryable error is returned unchanged.
// Running out of attempts returns an error wrapping both ErrRetryExhausted and
// the last failure.
func Retry(ctx context.Context, policy Policy, op func() error) error {
	retryable := policy.Retryable
	if retryable == nil {
		retryable = errs.IsTransient
	}

	attempts := 0
	last := error(nil)

	operation := func() error {
		attempts++

		err := op()
		switch {
		case err == nil:
			return nil

		case !retryable(err):
			return backoff.Permanent(err)

		default:
			last = err
			return err
		}
	}

	notify := func(err error, wait time.Duration) {
		if policy.Notify != nil {
			policy.Notify(attempts, err, wait)
		}
	}

	err := backoff.RetryNotifyWithTimer(operation, backoff.WithContext(policy.backoff(), ctx), notify, policy.timer)

	switch {
	case err == nil:
		return nil

	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		return err

	case last != nil && errors.Is(err, last) && retryable(err):
		return fmt.Errorf("%w after %d attempts (%w)", ErrRetryExhausted, attempts, err)

	default:
		return err
	}
}
