package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TerminateToken is the sentinel marking the end of a conversation. Any message
// whose text payload contains it (anywhere, with any decoration) is terminal.
const TerminateToken = "TERMINATE"

// Role tags the conversational role of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
	RoleTool      Role = "tool"
)

// Kind discriminates the payload variant carried by a Message.
type Kind string

const (
	// KindText is a plain text message.
	KindText Kind = "text"
	// KindToolCall carries one or more function call requests.
	KindToolCall Kind = "tool_call"
	// KindToolCallResult carries the results of previously requested calls.
	KindToolCallResult Kind = "tool_call_result"
	// KindAggregate bundles tool calls together with their results.
	KindAggregate Kind = "aggregate"
	// KindMultiModal mixes text with image or file parts.
	KindMultiModal Kind = "multi_modal"
)

// Message is the unit of conversation exchanged between agents and the
// orchestrator. After construction it should be treated as immutable; use the
// With* helpers to derive modified copies.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	From      string    `json:"from,omitempty"` // Sender agent name (optional)
	Kind      Kind      `json:"kind"`
	Parts     []Part    `json:"parts"`
	Timestamp time.Time `json:"timestamp"`
}

// NewID generates a new unique identifier for messages.
func NewID() string { return uuid.NewString() }

func newMessage(role Role, from string, kind Kind, parts []Part) Message {
	return Message{
		ID:        NewID(),
		Role:      role,
		From:      from,
		Kind:      kind,
		Parts:     parts,
		Timestamp: time.Now().UTC(),
	}
}

// NewTextMessage creates a single text part message.
func NewTextMessage(role Role, text, from string) Message {
	return newMessage(role, from, KindText, []Part{TextPart{Text: text}})
}

// NewToolCallMessage represents an agent requesting execution of functions.
func NewToolCallMessage(from string, calls ...FunctionCall) Message {
	parts := make([]Part, 0, len(calls))
	for _, c := range calls {
		parts = append(parts, FunctionCallPart{FunctionCall: c})
	}
	return newMessage(RoleAssistant, from, KindToolCall, parts)
}

// NewToolCallResultMessage records the results (or errors) of function calls.
func NewToolCallResultMessage(from string, results ...FunctionResponse) Message {
	parts := make([]Part, 0, len(results))
	for _, r := range results {
		parts = append(parts, FunctionResponsePart{FunctionResponse: r})
	}
	return newMessage(RoleTool, from, KindToolCallResult, parts)
}

// NewAggregateMessage bundles a tool call message and its result message into
// one assistant message, as produced by function-calling middleware.
func NewAggregateMessage(from string, call, result Message) Message {
	parts := make([]Part, 0, len(call.Parts)+len(result.Parts))
	parts = append(parts, call.Parts...)
	parts = append(parts, result.Parts...)
	return newMessage(RoleAssistant, from, KindAggregate, parts)
}

// NewMultiModalMessage creates a message mixing text, image and file parts.
func NewMultiModalMessage(role Role, from string, parts ...Part) Message {
	cp := make([]Part, len(parts))
	copy(cp, parts)
	return newMessage(role, from, KindMultiModal, cp)
}

// NewTerminateMessage creates an assistant message carrying the sentinel. A
// non-empty reason is placed before the token.
func NewTerminateMessage(from, reason string) Message {
	text := TerminateToken
	if reason != "" {
		text = reason + "\n" + TerminateToken
	}
	return NewTextMessage(RoleAssistant, text, from)
}

// Text returns the text payload: all text parts followed by the textual form
// of any function results, newline separated.
func (m Message) Text() string {
	var b strings.Builder
	b.WriteString(joinText(m.Parts))
	for _, r := range m.FunctionResponses() {
		t := r.Text()
		if t == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(t)
	}
	return b.String()
}

// FunctionCalls returns the function call parts preserving their order.
func (m Message) FunctionCalls() []FunctionCall {
	var calls []FunctionCall
	for _, p := range m.Parts {
		if fc, ok := p.(FunctionCallPart); ok {
			calls = append(calls, fc.FunctionCall)
		}
	}
	return calls
}

// FunctionResponses returns the function response parts preserving their order.
func (m Message) FunctionResponses() []FunctionResponse {
	var responses []FunctionResponse
	for _, p := range m.Parts {
		if fr, ok := p.(FunctionResponsePart); ok {
			responses = append(responses, fr.FunctionResponse)
		}
	}
	return responses
}

// IsTerminal reports whether the message text contains TerminateToken.
func (m Message) IsTerminal() bool { return IsTerminal(m) }

// WithFrom returns a copy of the message attributed to another sender.
func (m Message) WithFrom(from string) Message {
	c := m.Clone()
	c.From = from
	return c
}

// Clone returns a copy whose Parts slice is not shared with m.
func (m Message) Clone() Message {
	c := m
	if m.Parts != nil {
		c.Parts = make([]Part, len(m.Parts))
		copy(c.Parts, m.Parts)
	}
	return c
}

// IsTerminal reports whether msg is a terminal message (substring check on
// the text payload, position and decoration are irrelevant).
func IsTerminal(msg Message) bool {
	return strings.Contains(msg.Text(), TerminateToken)
}

// LastIsTerminal reports whether the last message of history is terminal.
func LastIsTerminal(history []Message) bool {
	if len(history) == 0 {
		return false
	}
	return IsTerminal(history[len(history)-1])
}
