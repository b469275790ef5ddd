package testutil

import (
	"context"
	"sync"

	"github.com/hupe1980/agentchat/core"
)

// Step is one scripted outcome of a ScriptedAgent call.
type Step struct {
	Text string
	Err  error
}

// Reply is a Step producing text.
func Reply(text string) Step { return Step{Text: text} }

// Fail is a Step producing err.
func Fail(err error) Step { return Step{Err: err} }

// Call records the arguments of one GenerateReply invocation.
type Call struct {
	History []core.Message
	Options *core.GenerateOptions
}

// ScriptedAgent replays a fixed sequence of steps. Once the script is used up
// the last step repeats; with no steps it answers "<name> says hi". It is safe
// for concurrent use.
type ScriptedAgent struct {
	name string

	mu    sync.Mutex
	steps []Step
	calls []Call
}

// NewScriptedAgent creates an agent named name replaying steps.
func NewScriptedAgent(name string, steps ...Step) *ScriptedAgent {
	return &ScriptedAgent{name: name, steps: steps}
}

// Name implements core.Agent.
func (a *ScriptedAgent) Name() string { return a.name }

// GenerateReply implements core.Agent. It honours cancellation before
// consuming a step.
func (a *ScriptedAgent) GenerateReply(ctx context.Context, history []core.Message, opts *core.GenerateOptions) (core.Message, error) {
	if err := ctx.Err(); err != nil {
		return core.Message{}, err
	}

	a.mu.Lock()
	cp := make([]core.Message, len(history))
	copy(cp, history)
	a.calls = append(a.calls, Call{History: cp, Options: opts})
	idx := len(a.calls) - 1
	var step Step
	switch {
	case len(a.steps) == 0:
		step = Reply(a.name + " says hi")
	case idx < len(a.steps):
		step = a.steps[idx]
	default:
		step = a.steps[len(a.steps)-1]
	}
	a.mu.Unlock()

	if step.Err != nil {
		return core.Message{}, step.Err
	}
	return core.NewTextMessage(core.RoleAssistant, step.Text, a.name), nil
}

// Calls returns a copy of the recorded invocations.
func (a *ScriptedAgent) Calls() []Call {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Call, len(a.calls))
	copy(out, a.calls)
	return out
}

// CallCount returns the number of GenerateReply invocations so far.
func (a *ScriptedAgent) CallCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.calls)
}
