package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/agentchat/core"
)

// LoopAgent lets a child agent refine its own answer: the child is asked
// repeatedly, seeing its previous attempts, until it produces a terminal reply,
// the predicate accepts a reply or the iteration limit is reached. The final
// reply is returned attributed to the LoopAgent.
type LoopAgent struct {
	BaseAgent
	child     core.Agent
	maxIters  int
	interval  time.Duration
	predicate func(core.Message) bool
}

// LoopOption defines a configuration function for customizing LoopAgent behavior.
type LoopOption func(*LoopAgent)

// NewLoopAgent constructs a looping coordinator around a child agent.
// Defaults: 3 iterations, no interval, no predicate.
func NewLoopAgent(name string, child core.Agent, opts ...LoopOption) *LoopAgent {
	la := &LoopAgent{
		BaseAgent: NewBaseAgent(name),
		child:     child,
		maxIters:  3,
	}

	for _, o := range opts {
		o(la)
	}

	return la
}

// WithMaxIters sets the maximum number of iterations for the loop.
func WithMaxIters(n int) LoopOption {
	return func(l *LoopAgent) { l.maxIters = n }
}

// WithInterval sets the time delay between loop iterations.
func WithInterval(d time.Duration) LoopOption {
	return func(l *LoopAgent) { l.interval = d }
}

// WithPredicate stops the loop as soon as pred accepts a reply.
//
// Example:
//
//	WithPredicate(func(m core.Message) bool {
//	    return strings.Contains(m.Text(), "LGTM")
//	})
func WithPredicate(pred func(core.Message) bool) LoopOption {
	return func(l *LoopAgent) { l.predicate = pred }
}

// GenerateReply implements core.Agent.
func (l *LoopAgent) GenerateReply(ctx context.Context, history []core.Message, opts *core.GenerateOptions) (core.Message, error) {
	if l.maxIters < 1 {
		return core.Message{}, fmt.Errorf("loop agent %s: max iterations must be positive, got %d", l.Name(), l.maxIters)
	}

	working := make([]core.Message, len(history), len(history)+l.maxIters)
	copy(working, history)

	var last core.Message
	for i := 0; i < l.maxIters; i++ {
		if err := ctx.Err(); err != nil {
			return core.Message{}, err
		}

		reply, err := l.child.GenerateReply(ctx, working, opts)
		if err != nil {
			return core.Message{}, fmt.Errorf("loop iteration %d failed for agent %s: %w", i+1, l.child.Name(), err)
		}
		last = reply
		if reply.IsTerminal() || (l.predicate != nil && l.predicate(reply)) {
			break
		}
		working = append(working, reply)

		if l.interval > 0 && i < l.maxIters-1 {
			select {
			case <-ctx.Done():
				return core.Message{}, ctx.Err()
			case <-time.After(l.interval):
			}
		}
	}

	return last.WithFrom(l.Name()), nil
}
