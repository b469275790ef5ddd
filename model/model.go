package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/agentchat/core"
)

// Request captures the normalized model input produced by agents. Messages
// carry their final roles; system prompts may be given as Instructions or as
// system role messages.
type Request struct {
	Instructions string                  `json:"instructions,omitempty"`
	Messages     []core.Message          `json:"messages"`
	Tools        []core.FunctionContract `json:"tools,omitempty"`
	Temperature  *float64                `json:"temperature,omitempty"`
	MaxTokens    *int                    `json:"max_tokens,omitempty"`
	Stop         []string                `json:"stop,omitempty"`
	Stream       bool                    `json:"stream,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a model.
type Response struct {
	ID           string      `json:"id"`
	Partial      bool        `json:"partial"` // Indicates if this is a partial response
	Parts        []core.Part `json:"parts"`
	FinishReason string      `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "openai-compatible", ...
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required by agents to drive generation.
// Implementations close both channels when done; at most one error is sent.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// ErrNoResponse is returned by Collect when the model closed its stream
// without a final response.
var ErrNoResponse = errors.New("model returned no final response")

// Collect drains a Generate call and returns the final (non-partial)
// response. Partial chunks are discarded.
func Collect(ctx context.Context, respCh <-chan Response, errCh <-chan error) (Response, error) {
	var (
		final Response
		found bool
	)
	for respCh != nil || errCh != nil {
		select {
		case <-ctx.Done():
			return Response{}, ctx.Err()
		case r, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			if !r.Partial {
				final, found = r, true
			}
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return Response{}, err
			}
		}
	}
	if !found {
		return Response{}, ErrNoResponse
	}
	return final, nil
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Replies are looked up by the text of the last request message; unknown
// prompts get "Mock response to: <prompt>". It records every request.
type MockModel struct {
	info Info

	mu        sync.Mutex
	responses map[string]string
	errs      []error
	requests  []Request
}

// NewMockModel constructs a MockModel with basic tool support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      provider,
			SupportsTools: true,
		},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	m.responses[prompt] = response
	m.mu.Unlock()
}

// FailNext queues errors returned by the next Generate calls, one per call.
func (m *MockModel) FailNext(errs ...error) {
	m.mu.Lock()
	m.errs = append(m.errs, errs...)
	m.mu.Unlock()
}

// Requests returns the requests received so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Generate implements Model; emits optional streaming char chunks then final response.
// The completion is cut before the first stop sequence it contains.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	m.mu.Lock()
	m.requests = append(m.requests, req)
	var queued error
	if len(m.errs) > 0 {
		queued, m.errs = m.errs[0], m.errs[1:]
	}
	var inputText string
	if n := len(req.Messages); n > 0 {
		inputText = req.Messages[n-1].Text()
	}
	full, ok := m.responses[inputText]
	m.mu.Unlock()

	go func() {
		defer close(respCh)
		defer close(errCh)
		if queued != nil {
			errCh <- queued
			return
		}
		if len(req.Messages) == 0 {
			errCh <- fmt.Errorf("no messages provided")
			return
		}
		if !ok {
			full = fmt.Sprintf("Mock response to: %s", inputText)
		}
		for _, stop := range req.Stop {
			if idx := strings.Index(full, stop); stop != "" && idx >= 0 {
				full = full[:idx]
			}
		}
		if req.Stream {
			for _, r := range full {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{Partial: true, Parts: []core.Part{core.TextPart{Text: string(r)}}}:
				}
			}
		}
		respCh <- Response{
			Partial:      false,
			Parts:        []core.Part{core.TextPart{Text: full}},
			FinishReason: "stop",
		}
	}()
	return respCh, errCh
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }

// Effective returns v when set, otherwise def.
func Effective[T any](v *T, def T) T {
	if v != nil {
		return *v
	}
	return def
}
