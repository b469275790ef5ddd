package workflow

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentchat/core"
)

// Predicate guards a Transition. It must be free of side effects; the graph
// may evaluate it several times for the same round.
type Predicate func(ctx context.Context, from, to core.Agent, history []core.Message) (bool, error)

// Transition is a directed, predicate-guarded edge between two agents.
type Transition struct {
	from      core.Agent
	to        core.Agent
	predicate Predicate
}

// NewTransition creates an edge from -> to. A nil predicate always holds.
func NewTransition(from, to core.Agent, predicate Predicate) Transition {
	return Transition{from: from, to: to, predicate: predicate}
}

// From returns the source agent.
func (t Transition) From() core.Agent { return t.from }

// To returns the destination agent.
func (t Transition) To() core.Agent { return t.to }

// CanTransit reports whether the edge may be taken given history.
func (t Transition) CanTransit(ctx context.Context, history []core.Message) (bool, error) {
	if t.predicate == nil {
		return true, nil
	}
	return t.predicate(ctx, t.from, t.to, history)
}

// String renders the edge as "from -> to".
func (t Transition) String() string {
	return fmt.Sprintf("%s -> %s", agentName(t.from), agentName(t.to))
}

func agentName(a core.Agent) string {
	if a == nil {
		return "<nil>"
	}
	return a.Name()
}
