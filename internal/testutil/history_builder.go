package testutil

import (
	"github.com/hupe1980/agentchat/core"
)

// HistoryBuilder helps construct conversations with fluent chaining for tests.
// Example:
//
//	h := NewHistoryBuilder().Say("user", "hi").Say("coder", "hello").Build()
type HistoryBuilder struct {
	messages []core.Message
}

// NewHistoryBuilder creates an empty conversation builder.
func NewHistoryBuilder() *HistoryBuilder { return &HistoryBuilder{} }

// Say appends an assistant text message sent by from (chainable).
func (b *HistoryBuilder) Say(from, text string) *HistoryBuilder {
	b.messages = append(b.messages, core.NewTextMessage(core.RoleAssistant, text, from))
	return b
}

// Ask appends a user text message sent by from (chainable).
func (b *HistoryBuilder) Ask(from, text string) *HistoryBuilder {
	b.messages = append(b.messages, core.NewTextMessage(core.RoleUser, text, from))
	return b
}

// Message appends prebuilt messages (chainable).
func (b *HistoryBuilder) Message(msgs ...core.Message) *HistoryBuilder {
	b.messages = append(b.messages, msgs...)
	return b
}

// Build returns a copy of the accumulated conversation.
func (b *HistoryBuilder) Build() []core.Message {
	out := make([]core.Message, len(b.messages))
	copy(out, b.messages)
	return out
}
