package core

import "context"

// Agent is the capability every conversation participant implements: given an
// ordered conversation and optional generation options, produce one reply.
//
// Implementations must:
//   - Respect context cancellation
//   - Never mutate the supplied history slice or its messages
//   - Return *ProviderError for provider failures, flagging transient ones
//
// Identity is by Name; names must be unique within a group chat.
type Agent interface {
	Name() string
	GenerateReply(ctx context.Context, history []Message, opts *GenerateOptions) (Message, error)
}

// ReplyFunc is the function form of Agent.GenerateReply.
type ReplyFunc func(ctx context.Context, history []Message, opts *GenerateOptions) (Message, error)

// AgentFunc adapts an ordinary function into a named Agent.
type AgentFunc struct {
	name string
	fn   ReplyFunc
}

// NewAgentFunc creates an Agent backed by fn.
func NewAgentFunc(name string, fn ReplyFunc) *AgentFunc {
	return &AgentFunc{name: name, fn: fn}
}

// Name implements Agent.
func (a *AgentFunc) Name() string { return a.name }

// GenerateReply implements Agent.
func (a *AgentFunc) GenerateReply(ctx context.Context, history []Message, opts *GenerateOptions) (Message, error) {
	return a.fn(ctx, history, opts)
}

// AgentInfo carries identifying details about an agent used in logs & listings.
type AgentInfo struct{ Name, Description string }

// Describer is implemented by agents that expose a human readable description.
type Describer interface {
	Description() string
}

// Describe returns the AgentInfo for a, using its Description when available.
func Describe(a Agent) AgentInfo {
	info := AgentInfo{Name: a.Name()}
	if d, ok := a.(Describer); ok {
		info.Description = d.Description()
	}
	return info
}
