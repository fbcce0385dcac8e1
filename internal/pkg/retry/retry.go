package retry

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Policy describes a bounded retry loop: one initial attempt plus up to MaxRetries retries.
// The wait before retry n (1-based) is InitialDelay * Multiplier^(n-1), capped at MaxDelay.
type Policy struct {
	MaxRetries   int
	InitialDelay time.Duration
	// Multiplier defaults to 2. Use 1 for a constant delay.
	Multiplier float64
	// MaxDelay of 0 means uncapped.
	MaxDelay time.Duration

	// Retryable decides whether an error is worth another attempt. nil retries everything.
	Retryable func(error) bool
	// OnRetry runs just before sleeping ahead of retry n.
	OnRetry func(n int, delay time.Duration, err error)
}

// Delay returns the wait before retry n (n >= 1). Attempts are not jittered.
func (p Policy) Delay(n int) time.Duration {
	if n < 1 {
		return 0
	}
	mult := p.Multiplier
	if mult <= 0 {
		mult = 2
	}
	d := time.Duration(float64(p.InitialDelay) * math.Pow(mult, float64(n-1)))
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// TimerSleep is the production Sleeper.
func TimerSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do runs fn until it succeeds, returns a non-retryable error, or the retry budget is spent.
// attempt passed to fn is 0 for the first call.
func Do(ctx context.Context, p Policy, sleep Sleeper, fn func(ctx context.Context, attempt int) error) error {
	if sleep == nil {
		sleep = TimerSleep
	}
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := p.Delay(attempt)
			if p.OnRetry != nil {
				p.OnRetry(attempt, delay, lastErr)
			}
			if err := sleep(ctx, delay); err != nil {
				return err
			}
		}

		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		lastErr = err

		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
