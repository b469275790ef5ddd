package groupchat

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/agentchat/core"
)

type event struct {
	kind    string
	round   int
	speaker string
	reason  Reason
}

// recorder captures observer notifications in order.
type recorder struct {
	BaseObserver

	mu     sync.Mutex
	events []event
}

func (r *recorder) OnRoundStart(_ context.Context, round int, speaker string) {
	r.add(event{kind: "round", round: round, speaker: speaker})
}

func (r *recorder) OnMessage(_ context.Context, round int, msg core.Message, _ time.Duration) {
	r.add(event{kind: "message", round: round, speaker: msg.From})
}

func (r *recorder) OnRetry(_ context.Context, round int, speaker string, _ int, _ time.Duration, _ error) {
	r.add(event{kind: "retry", round: round, speaker: speaker})
}

func (r *recorder) OnTerminate(_ context.Context, reason Reason, _ []core.Message) {
	r.add(event{kind: "terminate", reason: reason})
}

func (r *recorder) add(e event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) count(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.kind == kind {
			n++
		}
	}
	return n
}

func (r *recorder) reason() Reason {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].kind == "terminate" {
			return r.events[i].reason
		}
	}
	return ""
}

func fastRetry(o *Options) {
	o.RetryPolicy = RetryPolicy{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}
}

func senders(history []core.Message) []string {
	out := make([]string, len(history))
	for i, m := range history {
		out[i] = m.From
	}
	return out
}
