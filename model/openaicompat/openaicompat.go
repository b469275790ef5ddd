// Package openaicompat implements model.Model for OpenAI-compatible chat
// completion endpoints (local inference servers, gateways, proxies) using
// github.com/sashabaranov/go-openai, which accepts arbitrary base URLs and
// model names.
package openaicompat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hupe1980/agentchat/core"
	"github.com/hupe1980/agentchat/model"
)

// ProviderName identifies this adapter in errors and model.Info.
const ProviderName = "openai-compatible"

// Options configure the adapter.
type Options struct {
	Model       string
	BaseURL     string
	APIKey      string
	Temperature float32
	MaxTokens   int
}

// Model talks to an OpenAI-compatible endpoint.
type Model struct {
	client *openai.Client
	opts   Options
}

// NewModel builds a client for opts.BaseURL (the OpenAI API when empty).
func NewModel(optFns ...func(o *Options)) *Model {
	opts := Options{Temperature: 0.7, MaxTokens: 1024}
	for _, fn := range optFns {
		fn(&opts)
	}
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	return &Model{client: openai.NewClientWithConfig(cfg), opts: opts}
}

// NewModelFromClient wraps an existing client.
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{Temperature: 0.7, MaxTokens: 1024}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Generate implements model.Model.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errCh)
		creq := m.buildRequest(req)
		if req.Stream {
			m.stream(ctx, creq, out, errCh)
			return
		}
		resp, err := m.client.CreateChatCompletion(ctx, creq)
		if err != nil {
			errCh <- classify(err)
			return
		}
		if len(resp.Choices) == 0 {
			errCh <- core.NewProviderError(ProviderName, 0, errors.New("no choices returned"))
			return
		}
		choice := resp.Choices[0]
		out <- model.Response{
			ID:           resp.ID,
			Parts:        toParts(choice.Message.Content, choice.Message.ToolCalls),
			FinishReason: string(choice.FinishReason),
			Usage: &model.TokenUsage{
				PromptTokens:     resp.Usage.PromptTokens,
				CompletionTokens: resp.Usage.CompletionTokens,
				TotalTokens:      resp.Usage.TotalTokens,
			},
		}
	}()
	return out, errCh
}

func (m *Model) stream(ctx context.Context, creq openai.ChatCompletionRequest, out chan<- model.Response, errCh chan<- error) {
	creq.Stream = true
	s, err := m.client.CreateChatCompletionStream(ctx, creq)
	if err != nil {
		errCh <- classify(err)
		return
	}
	defer s.Close()

	var (
		text   strings.Builder
		calls  []openai.ToolCall
		finish string
	)
	for {
		chunk, err := s.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			errCh <- classify(err)
			return
		}
		for _, ch := range chunk.Choices {
			if ch.Delta.Content != "" {
				text.WriteString(ch.Delta.Content)
				out <- model.Response{Partial: true, Parts: []core.Part{core.TextPart{Text: ch.Delta.Content}}}
			}
			for _, tc := range ch.Delta.ToolCalls {
				idx := len(calls)
				if tc.Index != nil {
					idx = *tc.Index
				}
				for len(calls) <= idx {
					calls = append(calls, openai.ToolCall{Type: openai.ToolTypeFunction})
				}
				if tc.ID != "" {
					calls[idx].ID = tc.ID
				}
				if tc.Function.Name != "" {
					calls[idx].Function.Name = tc.Function.Name
				}
				calls[idx].Function.Arguments += tc.Function.Arguments
			}
			if ch.FinishReason != "" {
				finish = string(ch.FinishReason)
			}
		}
	}
	out <- model.Response{Parts: toParts(text.String(), calls), FinishReason: finish}
}

func (m *Model) buildRequest(req model.Request) openai.ChatCompletionRequest {
	creq := openai.ChatCompletionRequest{
		Model:       m.opts.Model,
		Messages:    buildMessages(req),
		Temperature: m.opts.Temperature,
		MaxTokens:   m.opts.MaxTokens,
		Stop:        req.Stop,
	}
	if req.Temperature != nil {
		creq.Temperature = float32(*req.Temperature)
	}
	if req.MaxTokens != nil {
		creq.MaxTokens = *req.MaxTokens
	}
	for _, t := range req.Tools {
		creq.Tools = append(creq.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return creq
}

func buildMessages(req model.Request) []openai.ChatCompletionMessage {
	var out []openai.ChatCompletionMessage
	if req.Instructions != "" {
		out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.Instructions})
	}
	for _, msg := range req.Messages {
		text := joinText(msg)
		switch msg.Role {
		case core.RoleSystem:
			out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: text})
		case core.RoleAssistant:
			am := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: text}
			for _, fc := range msg.FunctionCalls() {
				am.ToolCalls = append(am.ToolCalls, openai.ToolCall{
					ID:       fc.ID,
					Type:     openai.ToolTypeFunction,
					Function: openai.FunctionCall{Name: fc.Name, Arguments: fc.Arguments},
				})
			}
			out = append(out, am)
			out = append(out, toolMessages(msg)...)
		case core.RoleTool:
			out = append(out, toolMessages(msg)...)
		default:
			out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: text})
		}
	}
	return out
}

func toolMessages(msg core.Message) []openai.ChatCompletionMessage {
	var out []openai.ChatCompletionMessage
	for _, fr := range msg.FunctionResponses() {
		out = append(out, openai.ChatCompletionMessage{
			Role:       openai.ChatMessageRoleTool,
			Content:    fr.Text(),
			Name:       fr.Name,
			ToolCallID: fr.ID,
		})
	}
	return out
}

func joinText(msg core.Message) string {
	var texts []string
	for _, p := range msg.Parts {
		if tp, ok := p.(core.TextPart); ok && tp.Text != "" {
			texts = append(texts, tp.Text)
		}
	}
	return strings.Join(texts, "\n")
}

func toParts(text string, calls []openai.ToolCall) []core.Part {
	parts := make([]core.Part, 0, len(calls)+1)
	if text != "" {
		parts = append(parts, core.TextPart{Text: text})
	}
	for _, tc := range calls {
		parts = append(parts, core.FunctionCallPart{FunctionCall: core.FunctionCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		}})
	}
	return parts
}

// classify maps go-openai errors onto *core.ProviderError using the HTTP
// status carried by APIError and RequestError.
func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return core.NewProviderError(ProviderName, apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return core.NewProviderError(ProviderName, reqErr.HTTPStatusCode, err)
	}
	return core.NewProviderError(ProviderName, 0, fmt.Errorf("chat completion: %w", err))
}

// Info implements model.Model.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: ProviderName, SupportsTools: true}
}
