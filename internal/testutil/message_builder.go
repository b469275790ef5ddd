package testutil

import (
	"github.com/hupe1980/agentchat/core"
)

// MessageBuilder provides a fluent helper for constructing messages in tests.
// Example:
//
//	msg := NewMessageBuilder().From("coder").AssistantText("hello").Build()
//
// Chain only the parts you need; sensible defaults are applied.
type MessageBuilder struct {
	from          string
	id            string
	role          core.Role
	kind          core.Kind
	textParts     []string
	funcCalls     []core.FunctionCall
	funcResponses []core.FunctionResponse
	customParts   []core.Part
}

// NewMessageBuilder creates a builder with default sender "agent".
func NewMessageBuilder() *MessageBuilder { return &MessageBuilder{from: "agent"} }

// From sets the sender name (chainable).
func (b *MessageBuilder) From(name string) *MessageBuilder { b.from = name; return b }

// ID overrides the auto-generated message ID (chainable).
func (b *MessageBuilder) ID(id string) *MessageBuilder { b.id = id; return b }

// UserText appends a text part and sets role to user (chainable).
func (b *MessageBuilder) UserText(t string) *MessageBuilder {
	b.role = core.RoleUser
	b.textParts = append(b.textParts, t)
	return b
}

// AssistantText appends a text part and sets role to assistant (chainable).
func (b *MessageBuilder) AssistantText(t string) *MessageBuilder {
	b.role = core.RoleAssistant
	b.textParts = append(b.textParts, t)
	return b
}

// SystemText appends a text part and sets role to system (chainable).
func (b *MessageBuilder) SystemText(t string) *MessageBuilder {
	b.role = core.RoleSystem
	b.textParts = append(b.textParts, t)
	return b
}

// AddPart appends a custom content part and marks the message multi-modal (chainable).
func (b *MessageBuilder) AddPart(p core.Part) *MessageBuilder {
	b.customParts = append(b.customParts, p)
	return b
}

// FunctionCall adds a function call part with the provided id, name and JSON arguments (chainable).
func (b *MessageBuilder) FunctionCall(id, name, args string) *MessageBuilder {
	b.funcCalls = append(b.funcCalls, core.FunctionCall{ID: id, Name: name, Arguments: args})
	return b
}

// FunctionResponse adds a function response part (chainable).
func (b *MessageBuilder) FunctionResponse(id, name string, result any, err error) *MessageBuilder {
	fr := core.FunctionResponse{ID: id, Name: name, Response: result}
	if err != nil {
		fr.Error = err.Error()
	}
	b.funcResponses = append(b.funcResponses, fr)
	return b
}

// Terminate appends the termination token as a text part (chainable).
func (b *MessageBuilder) Terminate() *MessageBuilder {
	b.textParts = append(b.textParts, core.TerminateToken)
	return b
}

// Build constructs the core.Message value. The kind is derived from the parts
// that were added.
func (b *MessageBuilder) Build() core.Message {
	parts := make([]core.Part, 0, len(b.textParts)+len(b.funcCalls)+len(b.funcResponses)+len(b.customParts))
	for _, t := range b.textParts {
		parts = append(parts, core.TextPart{Text: t})
	}
	for _, fc := range b.funcCalls {
		parts = append(parts, core.FunctionCallPart{FunctionCall: fc})
	}
	for _, fr := range b.funcResponses {
		parts = append(parts, core.FunctionResponsePart{FunctionResponse: fr})
	}
	parts = append(parts, b.customParts...)

	role := b.role
	kind := core.KindText
	switch {
	case len(b.customParts) > 0:
		kind = core.KindMultiModal
	case len(b.funcCalls) > 0 && len(b.funcResponses) > 0:
		kind = core.KindAggregate
	case len(b.funcCalls) > 0:
		kind = core.KindToolCall
	case len(b.funcResponses) > 0:
		kind = core.KindToolCallResult
		if role == "" {
			role = core.RoleTool
		}
	}
	if role == "" {
		role = core.RoleAssistant
	}

	msg := core.NewMultiModalMessage(role, b.from, parts...)
	msg.Kind = kind
	if b.id != "" {
		msg.ID = b.id
	}
	return msg
}
