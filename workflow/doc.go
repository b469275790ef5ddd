// Package workflow models the directed transition graph that constrains which
// agent may speak after which in a group chat.
//
// A Graph is an ordered list of Transitions. Each Transition connects two
// agents and is guarded by a Predicate evaluated over the current speaker, the
// candidate and the conversation so far. Candidates evaluates the transitions
// leaving the current speaker sequentially in declaration order and returns the
// deduplicated set of agents whose predicate held.
//
// Predicates are plain functions; the constructors in this package
// (LastMessageContains, LastSenderIs, MaxMessages, ...) take their
// configuration as arguments and capture nothing mutable, so a predicate can
// be evaluated any number of times.
//
// Usage:
//
//	g := workflow.NewGraph(
//	    workflow.NewTransition(coder, reviewer, nil),
//	    workflow.NewTransition(reviewer, coder, workflow.LastMessageContains("REJECTED")),
//	    workflow.NewTransition(reviewer, user, workflow.LastMessageContains("APPROVED")),
//	)
package workflow
