package middleware

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/agentchat/core"
)

// Limiter lets at most max replies through; later calls short-circuit with a
// terminate message attributed to the wrapped agent. max == 0 means
// unlimited. It is safe for concurrent use and counts across runs.
type Limiter struct {
	max   int
	count int
	mu    sync.Mutex
}

var _ Middleware = (*Limiter)(nil)

// CallLimit creates a Limiter allowing max delegated replies.
func CallLimit(max int) *Limiter {
	return &Limiter{max: max}
}

// Name implements Middleware.
func (l *Limiter) Name() string { return "call_limit" }

// Invoke implements Middleware.
func (l *Limiter) Invoke(ctx context.Context, history []core.Message, opts *core.GenerateOptions, next core.Agent) (core.Message, error) {
	if !l.increment() {
		return core.NewTerminateMessage(next.Name(), fmt.Sprintf("reply limit of %d reached", l.max)), nil
	}
	return next.GenerateReply(ctx, history, opts)
}

func (l *Limiter) increment() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.max > 0 && l.count >= l.max {
		return false
	}
	l.count++
	return true
}

// Count returns the number of replies let through.
func (l *Limiter) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.count
}

// Remaining returns how many replies are left, -1 when unlimited.
func (l *Limiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.max == 0 {
		return -1
	}

	return l.max - l.count
}

// Reset clears the counter.
func (l *Limiter) Reset() {
	l.mu.Lock()
	l.count = 0
	l.mu.Unlock()
}
