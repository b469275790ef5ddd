package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/agentchat/core"
	"github.com/hupe1980/agentchat/logging"
	"github.com/hupe1980/agentchat/model"
)

// ModelAgentOptions configures a ModelAgent instance.
//
// Use functional options with NewModelAgent to override defaults.
type ModelAgentOptions struct {
	Description        string
	Instruction        Instruction
	EnableStreaming    bool
	MaxHistoryMessages int                   // 0 keeps the whole conversation
	DefaultOptions     *core.GenerateOptions // Per-call options are layered on top
	PrefixSenders      bool                  // Render other participants' text as "From <name>:\n<text>"
	Logger             logging.Logger
}

// ModelAgent answers by prompting a model.Model with the conversation seen
// from its own perspective: its own messages become assistant turns, everybody
// else's become user turns.
//
// ModelAgent embeds BaseAgent to inherit identity helpers.
type ModelAgent struct {
	BaseAgent
	llm                model.Model
	instruction        Instruction
	enableStreaming    bool
	maxHistoryMessages int
	defaults           *core.GenerateOptions
	prefixSenders      bool
	logger             logging.Logger
}

// NewModelAgent creates a new model-based agent with sensible defaults.
//
// The agent is initialized with:
//   - A generic "You are <name>, a helpful AI assistant." instruction
//   - Streaming disabled
//   - 20-message conversation history limit
//   - Sender prefixes on foreign messages
func NewModelAgent(name string, llm model.Model, optFns ...func(o *ModelAgentOptions)) *ModelAgent {
	opts := ModelAgentOptions{
		Instruction:        NewInstructionFromText(fmt.Sprintf("You are %s, a helpful AI assistant.", name)),
		MaxHistoryMessages: 20,
		PrefixSenders:      true,
		Logger:             logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	a := &ModelAgent{
		BaseAgent:          NewBaseAgent(name),
		llm:                llm,
		instruction:        opts.Instruction,
		enableStreaming:    opts.EnableStreaming,
		maxHistoryMessages: opts.MaxHistoryMessages,
		defaults:           opts.DefaultOptions,
		prefixSenders:      opts.PrefixSenders,
		logger:             opts.Logger,
	}
	if opts.Description != "" {
		a.SetDescription(opts.Description)
	}
	return a
}

// LLM returns the language model instance.
func (a *ModelAgent) LLM() model.Model { return a.llm }

// MaxHistoryMessages returns the size of the conversation window sent to the model.
func (a *ModelAgent) MaxHistoryMessages() int { return a.maxHistoryMessages }

// GenerateReply implements core.Agent.
func (a *ModelAgent) GenerateReply(ctx context.Context, history []core.Message, opts *core.GenerateOptions) (core.Message, error) {
	start := time.Now()

	req, err := a.BuildRequest(ctx, history, opts)
	if err != nil {
		return core.Message{}, err
	}

	a.logger.Debug(
		"agent.model.request",
		"agent", a.Name(),
		"model", a.llm.Info().Name,
		"messages", len(req.Messages),
		"tools", len(req.Tools),
	)

	respCh, errCh := a.llm.Generate(ctx, req)
	resp, err := model.Collect(ctx, respCh, errCh)
	if err != nil {
		a.logger.Warn("agent.model.error", "agent", a.Name(), "error", err.Error())
		return core.Message{}, fmt.Errorf("agent %s: %w", a.Name(), err)
	}

	reply := toMessage(a.Name(), resp.Parts)

	a.logger.Debug(
		"agent.model.response",
		"agent", a.Name(),
		"kind", reply.Kind,
		"finish_reason", resp.FinishReason,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return reply, nil
}

// BuildRequest resolves the instruction, shapes the history window and
// merges generation options into a model.Request.
func (a *ModelAgent) BuildRequest(ctx context.Context, history []core.Message, opts *core.GenerateOptions) (model.Request, error) {
	instructions, err := a.instruction.Resolve(ctx, history)
	if err != nil {
		return model.Request{}, fmt.Errorf("failed to resolve instruction: %w", err)
	}

	window := a.window(history)

	eff := a.defaults.Merge(opts)

	return model.Request{
		Instructions: instructions,
		Messages:     a.shape(window),
		Tools:        eff.Tools,
		Temperature:  eff.Temperature,
		MaxTokens:    eff.MaxTokens,
		Stop:         eff.StopSequences,
		Stream:       a.enableStreaming,
	}, nil
}

// window keeps the last maxHistoryMessages messages. Leading system messages
// are always kept and do not count against the limit.
func (a *ModelAgent) window(history []core.Message) []core.Message {
	lead := 0
	for lead < len(history) && history[lead].Role == core.RoleSystem {
		lead++
	}
	rest := history[lead:]
	if a.maxHistoryMessages <= 0 || len(rest) <= a.maxHistoryMessages {
		return history
	}

	out := make([]core.Message, 0, lead+a.maxHistoryMessages)
	out = append(out, history[:lead]...)
	return append(out, rest[len(rest)-a.maxHistoryMessages:]...)
}

// shape rewrites the conversation from this agent's perspective. The input
// messages are never modified.
func (a *ModelAgent) shape(history []core.Message) []core.Message {
	out := make([]core.Message, 0, len(history))
	for _, msg := range history {
		switch {
		case msg.Role == core.RoleSystem:
			out = append(out, msg)
		case msg.From == a.Name():
			c := msg.Clone()
			if c.Role != core.RoleTool {
				c.Role = core.RoleAssistant
			}
			out = append(out, c)
		case msg.Kind == core.KindMultiModal:
			c := msg.Clone()
			c.Role = core.RoleUser
			out = append(out, c)
		default:
			text := msg.Text()
			if a.prefixSenders && msg.From != "" {
				text = fmt.Sprintf("From %s:\n%s", msg.From, text)
			}
			m := core.NewTextMessage(core.RoleUser, text, msg.From)
			m.ID, m.Timestamp = msg.ID, msg.Timestamp
			out = append(out, m)
		}
	}
	return out
}

// toMessage converts model output parts into an assistant message from name.
func toMessage(name string, parts []core.Part) core.Message {
	var calls []core.FunctionCall
	for _, p := range parts {
		if fc, ok := p.(core.FunctionCallPart); ok {
			calls = append(calls, fc.FunctionCall)
		}
	}
	if len(calls) > 0 {
		msg := core.NewToolCallMessage(name, calls...)
		msg.Parts = append([]core.Part(nil), parts...)
		return msg
	}
	text := ""
	for _, p := range parts {
		if tp, ok := p.(core.TextPart); ok {
			text += tp.Text
		}
	}
	return core.NewTextMessage(core.RoleAssistant, text, name)
}
