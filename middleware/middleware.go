package middleware

import (
	"context"

	"github.com/hupe1980/agentchat/core"
)

// Middleware is one link in an agent's reply pipeline. next is the rest of the
// chain (ultimately the wrapped agent).
type Middleware interface {
	Name() string
	Invoke(ctx context.Context, history []core.Message, opts *core.GenerateOptions, next core.Agent) (core.Message, error)
}

// InvokeFunc is the function form of Middleware.Invoke.
type InvokeFunc func(ctx context.Context, history []core.Message, opts *core.GenerateOptions, next core.Agent) (core.Message, error)

// Func adapts an ordinary function into a named Middleware.
type Func struct {
	name string
	fn   InvokeFunc
}

// NewFunc creates a Middleware backed by fn.
func NewFunc(name string, fn InvokeFunc) *Func {
	return &Func{name: name, fn: fn}
}

// Name implements Middleware.
func (f *Func) Name() string { return f.name }

// Invoke implements Middleware.
func (f *Func) Invoke(ctx context.Context, history []core.Message, opts *core.GenerateOptions, next core.Agent) (core.Message, error) {
	return f.fn(ctx, history, opts, next)
}

// Agent is a core.Agent whose replies flow through a middleware chain. It
// keeps the wrapped agent's name. An Agent is immutable; Use returns a new
// one.
type Agent struct {
	inner core.Agent
	chain []Middleware
}

var _ core.Agent = (*Agent)(nil)

// Wrap returns agent wrapped in mws, mws[0] outermost.
func Wrap(agent core.Agent, mws ...Middleware) *Agent {
	chain := make([]Middleware, 0, len(mws))
	for _, mw := range mws {
		if mw != nil {
			chain = append(chain, mw)
		}
	}
	return &Agent{inner: agent, chain: chain}
}

// Use returns a copy of a with mws registered inside the existing chain, i.e.
// closer to the wrapped agent.
func (a *Agent) Use(mws ...Middleware) *Agent {
	chain := make([]Middleware, 0, len(a.chain)+len(mws))
	chain = append(chain, a.chain...)
	for _, mw := range mws {
		if mw != nil {
			chain = append(chain, mw)
		}
	}
	return &Agent{inner: a.inner, chain: chain}
}

// Name implements core.Agent.
func (a *Agent) Name() string { return a.inner.Name() }

// Description forwards the wrapped agent's description.
func (a *Agent) Description() string { return core.Describe(a.inner).Description }

// Unwrap returns the wrapped agent.
func (a *Agent) Unwrap() core.Agent { return a.inner }

// Middlewares returns the chain, outermost first.
func (a *Agent) Middlewares() []Middleware {
	out := make([]Middleware, len(a.chain))
	copy(out, a.chain)
	return out
}

// GenerateReply implements core.Agent by entering the chain at its outermost link.
func (a *Agent) GenerateReply(ctx context.Context, history []core.Message, opts *core.GenerateOptions) (core.Message, error) {
	return link{agent: a, index: 0}.GenerateReply(ctx, history, opts)
}

// link is the view of the chain starting at index.
type link struct {
	agent *Agent
	index int
}

func (l link) Name() string { return l.agent.inner.Name() }

func (l link) GenerateReply(ctx context.Context, history []core.Message, opts *core.GenerateOptions) (core.Message, error) {
	if l.index >= len(l.agent.chain) {
		return l.agent.inner.GenerateReply(ctx, history, opts)
	}
	return l.agent.chain[l.index].Invoke(ctx, history, opts, link{agent: l.agent, index: l.index + 1})
}
