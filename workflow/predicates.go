package workflow

import (
	"context"
	"strings"

	"github.com/hupe1980/agentchat/core"
)

// Always is the always-true predicate.
func Always() Predicate {
	return func(context.Context, core.Agent, core.Agent, []core.Message) (bool, error) {
		return true, nil
	}
}

// LastMessageContains holds when the last message's text contains marker.
func LastMessageContains(marker string) Predicate {
	return func(_ context.Context, _, _ core.Agent, history []core.Message) (bool, error) {
		if len(history) == 0 {
			return false, nil
		}
		return strings.Contains(history[len(history)-1].Text(), marker), nil
	}
}

// LastMessageNotContains holds when there is no last message or its text does
// not contain marker.
func LastMessageNotContains(marker string) Predicate {
	return Not(LastMessageContains(marker))
}

// LastSenderIs holds when the last message was sent by name.
func LastSenderIs(name string) Predicate {
	return func(_ context.Context, _, _ core.Agent, history []core.Message) (bool, error) {
		if len(history) == 0 {
			return false, nil
		}
		return history[len(history)-1].From == name, nil
	}
}

// MaxMessages holds while the history has fewer than n messages.
func MaxMessages(n int) Predicate {
	return func(_ context.Context, _, _ core.Agent, history []core.Message) (bool, error) {
		return len(history) < n, nil
	}
}

// All holds when every predicate holds. It stops at the first false or error;
// an empty list holds.
func All(preds ...Predicate) Predicate {
	return func(ctx context.Context, from, to core.Agent, history []core.Message) (bool, error) {
		for _, p := range preds {
			ok, err := eval(ctx, p, from, to, history)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}

// Any holds when at least one predicate holds. It stops at the first true or
// error; an empty list does not hold.
func Any(preds ...Predicate) Predicate {
	return func(ctx context.Context, from, to core.Agent, history []core.Message) (bool, error) {
		for _, p := range preds {
			ok, err := eval(ctx, p, from, to, history)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}
}

// Not negates p.
func Not(p Predicate) Predicate {
	return func(ctx context.Context, from, to core.Agent, history []core.Message) (bool, error) {
		ok, err := eval(ctx, p, from, to, history)
		if err != nil {
			return false, err
		}
		return !ok, nil
	}
}

func eval(ctx context.Context, p Predicate, from, to core.Agent, history []core.Message) (bool, error) {
	if p == nil {
		return true, nil
	}
	return p(ctx, from, to, history)
}
