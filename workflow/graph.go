package workflow

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentchat/core"
)

// Graph is the ordered set of transitions of a group chat. It is not safe for
// concurrent mutation; build it fully before handing it to a group chat.
type Graph struct {
	transitions []Transition
}

// NewGraph creates a graph from transitions, keeping their declaration order.
func NewGraph(transitions ...Transition) *Graph {
	g := &Graph{}
	g.AddTransition(transitions...)
	return g
}

// AddTransition appends transitions to the graph.
func (g *Graph) AddTransition(transitions ...Transition) {
	g.transitions = append(g.transitions, transitions...)
}

// Transitions returns a copy of the graph's transitions in declaration order.
func (g *Graph) Transitions() []Transition {
	out := make([]Transition, len(g.transitions))
	copy(out, g.transitions)
	return out
}

// Candidates returns the agents that may speak after from. Transitions leaving
// from are evaluated one after another in declaration order and the result is
// deduplicated by name, keeping the first occurrence. An empty result yields
// core.ErrWorkflowExhausted; a failing predicate aborts evaluation.
func (g *Graph) Candidates(ctx context.Context, from core.Agent, history []core.Message) ([]core.Agent, error) {
	var (
		out  []core.Agent
		seen = map[string]struct{}{}
	)
	for _, t := range g.transitions {
		if t.from == nil || t.to == nil || t.from.Name() != from.Name() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ok, err := t.CanTransit(ctx, history)
		if err != nil {
			return nil, fmt.Errorf("evaluating transition %s: %w", t, err)
		}
		if !ok {
			continue
		}
		if _, dup := seen[t.to.Name()]; dup {
			continue
		}
		seen[t.to.Name()] = struct{}{}
		out = append(out, t.to)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("from %s: %w", from.Name(), core.ErrWorkflowExhausted)
	}
	return out, nil
}
