package agent

import (
	"context"

	"github.com/hupe1980/agentchat/core"
	"github.com/hupe1980/agentchat/internal/util"
)

// Provider supplies dynamic instruction text at reply time.
// Implementations can derive instructions from the conversation, environment, etc.
type Provider interface {
	Instruction(ctx context.Context, history []core.Message) (string, error)
}

// Func is a functional adapter to allow ordinary functions to be used as Providers.
type Func func(ctx context.Context, history []core.Message) (string, error)

// Instruction implements Provider.
func (f Func) Instruction(ctx context.Context, history []core.Message) (string, error) {
	return f(ctx, history)
}

// Instruction represents either a static instruction string or a dynamic provider.
// Static text may contain text/template markers rendered against Vars.
type Instruction struct {
	text     string
	vars     map[string]any
	provider Provider
}

// NewInstructionFromText creates an Instruction from a static string.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromTemplate creates an Instruction rendered with vars on
// every resolve, e.g. "You are {{.role}}. Answer in {{.language}}.".
func NewInstructionFromTemplate(tpl string, vars map[string]any) Instruction {
	return Instruction{text: tpl, vars: vars}
}

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p Provider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(ctx context.Context, history []core.Message) (string, error)) Instruction {
	return Instruction{provider: Func(f)}
}

// IsStatic returns true if the instruction is backed by a static string.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// Resolve returns the instruction text, invoking the provider if needed.
func (i Instruction) Resolve(ctx context.Context, history []core.Message) (string, error) {
	if i.provider != nil {
		return i.provider.Instruction(ctx, history)
	}
	if i.vars == nil {
		return i.text, nil
	}
	return util.RenderTemplate(i.text, i.vars)
}
