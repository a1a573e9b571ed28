// Package retry implements a bounded retry loop driven by a fixed delay
// schedule. The distributor fetch and the InFakt status poll both run on
// top of it; they differ only in schedule and in whether the first
// attempt is delayed.
package retry

import (
	"context"
	"errors"
	"time"
)

// ErrExhausted is returned when every scheduled attempt ran without the
// callback reporting completion.
var ErrExhausted = errors.New("retry_exhausted")

type Policy struct {
	// Delays holds one entry per scheduled attempt.
	Delays []time.Duration

	// DelayFirst sleeps Delays[0] before the first attempt. Pollers that
	// follow an initial submission want this; plain fetch retries do not
	// (they get one immediate attempt plus one retry per delay).
	DelayFirst bool
}

// Do runs fn until it reports done, a non-nil error, or the schedule is
// exhausted. The context is honored during every sleep.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) (done bool, err error)) error {
	if !p.DelayFirst {
		done, err := fn(ctx, 0)
		if err != nil || done {
			return err
		}
	}

	for i, delay := range p.Delays {
		if err := sleep(ctx, delay); err != nil {
			return err
		}
		attempt := i
		if !p.DelayFirst {
			attempt = i + 1
		}
		done, err := fn(ctx, attempt)
		if err != nil || done {
			return err
		}
	}
	return ErrExhausted
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
