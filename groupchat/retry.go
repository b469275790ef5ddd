package groupchat

import (
	"context"
	"math"
	"time"

	"github.com/hupe1980/agentchat/core"
)

// RetryPolicy bounds the retries of transient provider failures.
type RetryPolicy struct {
	MaxAttempts  int           // Total attempts including the first call
	InitialDelay time.Duration // Delay after the first failure
	MaxDelay     time.Duration // Cap for exponential growth and server hints
	Multiplier   float64       // Backoff factor between attempts
}

// DefaultRetryPolicy returns 3 attempts with exponential backoff starting at
// one second and capped at 30 seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.InitialDelay < 0 {
		p.InitialDelay = 0
	}
	if p.Multiplier < 1.0 {
		p.Multiplier = 1.0
	}
	return p
}

// Delay returns the wait before the next attempt once failures attempts have
// failed with err. A RetryAfter hint carried by err wins when it is longer.
// Both are capped at MaxDelay when set.
func (p RetryPolicy) Delay(failures int, err error) time.Duration {
	p = p.normalized()
	if failures < 1 {
		failures = 1
	}
	delay := time.Duration(float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(failures-1)))
	if hint := core.RetryAfter(err); hint > delay {
		delay = hint
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
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
