package config

import (
	"fmt"

	"github.com/hupe1980/agentchat/core"
	"github.com/hupe1980/agentchat/groupchat"
	"github.com/hupe1980/agentchat/workflow"
)

// AgentFactory creates the agent described by cfg.
type AgentFactory func(cfg AgentConfig) (core.Agent, error)

// Build validates the configuration, creates every agent with factory and
// assembles the group chat. optFns are applied after the configured options.
func (c *Config) Build(factory AgentFactory, optFns ...func(o *groupchat.Options)) (*groupchat.GroupChat, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	members := make([]core.Agent, 0, len(c.Agents))
	byName := make(map[string]core.Agent, len(c.Agents))
	for _, ac := range c.Agents {
		a, err := factory(ac)
		if err != nil {
			return nil, fmt.Errorf("create agent %s: %w", ac.Name, err)
		}
		members = append(members, a)
		byName[ac.Name] = a
	}

	var admin core.Agent
	if c.Admin != nil {
		a, err := factory(*c.Admin)
		if err != nil {
			return nil, fmt.Errorf("create admin %s: %w", c.Admin.Name, err)
		}
		admin = a
	}

	var graph *workflow.Graph
	if len(c.Transitions) > 0 {
		graph = workflow.NewGraph()
		for _, t := range c.Transitions {
			graph.AddTransition(workflow.NewTransition(byName[t.From], byName[t.To], t.When.Predicate()))
		}
	}

	opts := []func(o *groupchat.Options){func(o *groupchat.Options) {
		o.Admin = admin
		o.Graph = graph
		o.InitializeMessages = c.InitializeMessages()
		if c.Retry != nil {
			o.RetryPolicy = groupchat.RetryPolicy{
				MaxAttempts:  c.Retry.MaxAttempts,
				InitialDelay: c.Retry.InitialDelay,
				MaxDelay:     c.Retry.MaxDelay,
				Multiplier:   c.Retry.Multiplier,
			}
		}
	}}

	return groupchat.New(members, append(opts, optFns...)...)
}

// Predicate converts the condition into a workflow.Predicate. A nil
// condition always holds.
func (c *ConditionConfig) Predicate() workflow.Predicate {
	if c == nil {
		return nil
	}

	var preds []workflow.Predicate
	if c.Contains != "" {
		preds = append(preds, workflow.LastMessageContains(c.Contains))
	}
	if c.NotContains != "" {
		preds = append(preds, workflow.LastMessageNotContains(c.NotContains))
	}
	if c.SenderIs != "" {
		preds = append(preds, workflow.LastSenderIs(c.SenderIs))
	}
	if c.MaxMessages > 0 {
		preds = append(preds, workflow.MaxMessages(c.MaxMessages))
	}
	if len(c.All) > 0 {
		preds = append(preds, workflow.All(predicates(c.All)...))
	}
	if len(c.Any) > 0 {
		preds = append(preds, workflow.Any(predicates(c.Any)...))
	}
	if c.Not != nil {
		preds = append(preds, workflow.Not(c.Not.Predicate()))
	}

	if len(preds) == 1 {
		return preds[0]
	}
	return workflow.All(preds...)
}

func predicates(cs []ConditionConfig) []workflow.Predicate {
	out := make([]workflow.Predicate, len(cs))
	for i := range cs {
		out[i] = cs[i].Predicate()
	}
	return out
}
