package callService

import (
	"context"
	"errors"
	"time"

	"ScamSOS/internal/api/call"

	"github.com/cenkalti/backoff/v4"
)

// PollConfig bounds one polling loop. The loop stops at whichever of
// MaxAttempts or MaxWait is reached first.
type PollConfig struct {
	InitialInterval time.Duration
	Multiplier      float64
	MaxInterval     time.Duration
	Jitter          float64
	MaxAttempts     int
	MaxWait         time.Duration
}

// errNotYet marks a poll that succeeded but has not reached its goal.
var errNotYet = errors.New("not yet")

// pollStep checks once. It returns done=true when the goal is reached, a
// permanent error to stop polling, or a plain error to count the attempt as
// failed and keep going.
type pollStep func(ctx context.Context) (done bool, err error)

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func stopPolling(err error) error {
	return &permanentError{err: err}
}

func (p PollConfig) newBackOff(ctx context.Context) backoff.BackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     p.InitialInterval,
		RandomizationFactor: p.Jitter,
		Multiplier:          p.Multiplier,
		MaxInterval:         p.MaxInterval,
		MaxElapsedTime:      p.MaxWait,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	b.Reset()

	var bo backoff.BackOff = b
	if p.MaxAttempts > 0 {
		bo = backoff.WithMaxRetries(bo, uint64(p.MaxAttempts-1))
	}

	return backoff.WithContext(bo, ctx)
}

// poll runs step until it reports done. The first check happens immediately.
// Exhausting the bounds yields call.ErrCallTimedOut, a cancelled ctx yields
// ctx.Err(), and a step's permanent error is returned as is.
func poll(ctx context.Context, cfg PollConfig, step pollStep, notify func(attempt int, err error)) error {
	attempt := 0
	var stopErr error

	op := func() error {
		attempt++
		done, err := step(ctx)
		if err != nil {
			var perm *permanentError
			if errors.As(err, &perm) {
				stopErr = perm.err
				return backoff.Permanent(perm.err)
			}
			return err
		}
		if !done {
			return errNotYet
		}
		return nil
	}

	err := backoff.RetryNotify(op, cfg.newBackOff(ctx), func(err error, _ time.Duration) {
		if notify != nil {
			notify(attempt, err)
		}
	})

	switch {
	case err == nil:
		return nil
	case stopErr != nil:
		return stopErr
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return call.ErrCallTimedOut
	}
}
