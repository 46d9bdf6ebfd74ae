// Package retry runs an operation a bounded number of times, pausing between
// attempts.
//
// The same Policy drives both transient-failure retries (stop on the first
// success) and convergence polling (stop once a predicate holds):
//
//	p := retry.Policy{Attempts: 4, Delay: 20 * time.Millisecond}
//	err := p.Do(func(int) (bool, error) {
//		err := write()
//		return err == nil, err
//	})
package retry

import (
	"errors"
	"fmt"
	"time"

	"github.com/jpillora/backoff"
)

// ErrExhausted is returned by Do when every attempt ran without success.
var ErrExhausted = errors.New("retry: attempts exhausted")

// Policy bounds an operation.
type Policy struct {
	Attempts int           // Total number of attempts (values below 1 mean 1)
	Delay    time.Duration // Pause between attempts (0 disables pausing)
	MaxDelay time.Duration // Upper bound when Factor grows the delay (0: Delay)
	Factor   float64       // Delay growth per attempt (0 or 1: fixed delay)

	// SleepFirst pauses before the first attempt as well, for loops that
	// must give the device time before looking at it.
	SleepFirst bool

	// Sleep replaces time.Sleep, mostly for tests.
	Sleep func(time.Duration)
}

// Do calls fn until it reports done or the attempt budget is spent. fn gets
// the zero-based attempt index.
//
// An error from fn marks that attempt failed but does not stop the loop.
// When the budget is spent Do returns ErrExhausted, wrapping the last error
// returned by fn if there was one.
func (p Policy) Do(fn func(attempt int) (done bool, err error)) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	b := p.backoff()
	var last error
	for i := 0; i < attempts; i++ {
		if i > 0 || p.SleepFirst {
			p.pause(b)
		}
		done, err := fn(i)
		if done {
			return nil
		}
		if err != nil {
			last = err
		}
	}
	if last != nil {
		return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempts, last)
	}
	return fmt.Errorf("%w after %d attempts", ErrExhausted, attempts)
}

// backoff returns nil when the policy never pauses.
func (p Policy) backoff() *backoff.Backoff {
	if p.Delay <= 0 {
		return nil
	}
	maxDelay := p.MaxDelay
	if maxDelay < p.Delay {
		maxDelay = p.Delay
	}
	factor := p.Factor
	if factor < 1 {
		factor = 1
	}
	return &backoff.Backoff{Min: p.Delay, Max: maxDelay, Factor: factor}
}

func (p Policy) pause(b *backoff.Backoff) {
	if b == nil {
		return
	}
	d := b.Duration()
	if p.Sleep != nil {
		p.Sleep(d)
		return
	}
	time.Sleep(d)
}
