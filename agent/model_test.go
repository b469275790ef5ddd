package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentchat/core"
	"github.com/hupe1980/agentchat/internal/testutil"
	"github.com/hupe1980/agentchat/model"
)

// MockModelImpl for testing LLM functionality
type MockModelImpl struct{ mock.Mock }

func (m *MockModelImpl) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	args := m.Called(ctx, req)

	respCh := make(chan model.Response, 1)
	errCh := make(chan error, 1)
	if err := args.Error(1); err != nil {
		errCh <- err
	} else {
		respCh <- args.Get(0).(model.Response)
	}
	close(respCh)
	close(errCh)

	return respCh, errCh
}

func (m *MockModelImpl) Info() model.Info {
	return model.Info{Name: "mock", Provider: "mock"}
}

func textResponse(text string) model.Response {
	return model.Response{Parts: []core.Part{core.TextPart{Text: text}}, FinishReason: "stop"}
}

func TestModelAgent_Defaults(t *testing.T) {
	llm := &MockModelImpl{}
	a := NewModelAgent("coder", llm)

	assert.Equal(t, "coder", a.Name())
	assert.Equal(t, "Agent coder", a.Description())
	assert.Equal(t, 20, a.MaxHistoryMessages())
	assert.Equal(t, llm, a.LLM())
}

func TestModelAgent_GenerateReply(t *testing.T) {
	llm := &MockModelImpl{}
	llm.On("Generate", mock.Anything, mock.AnythingOfType("model.Request")).Return(textResponse("sure"), nil)

	a := NewModelAgent("coder", llm)
	history := testutil.NewHistoryBuilder().Ask("user", "write code").Build()

	reply, err := a.GenerateReply(context.Background(), history, nil)
	require.NoError(t, err)

	assert.Equal(t, "coder", reply.From)
	assert.Equal(t, core.RoleAssistant, reply.Role)
	assert.Equal(t, "sure", reply.Text())
	llm.AssertExpectations(t)
}

func TestModelAgent_ToolCallReply(t *testing.T) {
	llm := &MockModelImpl{}
	llm.On("Generate", mock.Anything, mock.Anything).Return(model.Response{Parts: []core.Part{
		core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: "1", Name: "lookup", Arguments: "{}"}},
	}}, nil)

	reply, err := NewModelAgent("coder", llm).GenerateReply(context.Background(), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, core.KindToolCall, reply.Kind)
	require.Len(t, reply.FunctionCalls(), 1)
	assert.Equal(t, "lookup", reply.FunctionCalls()[0].Name)
}

func TestModelAgent_BuildRequest(t *testing.T) {
	a := NewModelAgent("coder", &MockModelImpl{}, func(o *ModelAgentOptions) {
		o.Instruction = NewInstructionFromTemplate("You are {{.role}}.", map[string]any{"role": "a reviewer"})
		o.MaxHistoryMessages = 2
		o.DefaultOptions = &core.GenerateOptions{Temperature: core.Float(0.7), MaxTokens: core.Int(512)}
	})

	history := testutil.NewHistoryBuilder().
		Ask("user", "old").
		Say("coder", "my draft").
		Say("reviewer", "looks good").
		Build()

	req, err := a.BuildRequest(context.Background(), history, &core.GenerateOptions{
		Temperature:   core.Float(0),
		StopSequences: []string{":"},
	})
	require.NoError(t, err)

	assert.Equal(t, "You are a reviewer.", req.Instructions)
	require.Len(t, req.Messages, 2)

	assert.Equal(t, core.RoleAssistant, req.Messages[0].Role)
	assert.Equal(t, "my draft", req.Messages[0].Text())
	assert.Equal(t, core.RoleUser, req.Messages[1].Role)
	assert.Equal(t, "From reviewer:\nlooks good", req.Messages[1].Text())

	assert.Equal(t, 0.0, *req.Temperature)
	assert.Equal(t, 512, *req.MaxTokens)
	assert.Equal(t, []string{":"}, req.Stop)

	// shaping never touches the caller's messages
	assert.Equal(t, core.RoleAssistant, history[2].Role)
	assert.Equal(t, "looks good", history[2].Text())
}

func TestModelAgent_BuildRequest_NoPrefix(t *testing.T) {
	a := NewModelAgent("coder", &MockModelImpl{}, func(o *ModelAgentOptions) {
		o.PrefixSenders = false
	})
	history := testutil.NewHistoryBuilder().
		Message(core.NewTextMessage(core.RoleSystem, "be brief", "")).
		Say("reviewer", "hi").
		Build()

	req, err := a.BuildRequest(context.Background(), history, nil)
	require.NoError(t, err)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, core.RoleSystem, req.Messages[0].Role)
	assert.Equal(t, "hi", req.Messages[1].Text())
	assert.Nil(t, req.Temperature)
}

func TestModelAgent_BuildRequest_WindowKeepsSystemMessages(t *testing.T) {
	a := NewModelAgent("coder", &MockModelImpl{})

	b := testutil.NewHistoryBuilder().Message(core.NewTextMessage(core.RoleSystem, "be brief", ""))
	for i := 0; i < 25; i++ {
		b.Ask("user", fmt.Sprintf("line %d", i))
	}

	req, err := a.BuildRequest(context.Background(), b.Build(), nil)
	require.NoError(t, err)
	require.Len(t, req.Messages, 21)
	assert.Equal(t, core.RoleSystem, req.Messages[0].Role)
	assert.Equal(t, "be brief", req.Messages[0].Text())
	assert.Equal(t, "From user:\nline 5", req.Messages[1].Text())
	assert.Equal(t, "From user:\nline 24", req.Messages[20].Text())
}

func TestModelAgent_ErrorsKeepClassification(t *testing.T) {
	provErr := core.NewProviderError("mock", 529, errors.New("overloaded"))
	llm := &MockModelImpl{}
	llm.On("Generate", mock.Anything, mock.Anything).Return(model.Response{}, provErr)

	_, err := NewModelAgent("coder", llm).GenerateReply(context.Background(), nil, nil)
	require.Error(t, err)

	var pe *core.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.True(t, core.IsTransient(err))
}

func TestModelAgent_InstructionError(t *testing.T) {
	boom := errors.New("boom")
	a := NewModelAgent("coder", &MockModelImpl{}, func(o *ModelAgentOptions) {
		o.Instruction = NewInstructionFromFunc(func(context.Context, []core.Message) (string, error) { return "", boom })
	})

	_, err := a.GenerateReply(context.Background(), nil, nil)
	assert.ErrorIs(t, err, boom)
}

func TestModelAgent_WithMockModel(t *testing.T) {
	llm := model.NewMockModel("mock", "mock")
	llm.AddResponse("From user:\nping", "pong")

	a := NewModelAgent("bot", llm, func(o *ModelAgentOptions) { o.EnableStreaming = true })
	reply, err := a.GenerateReply(context.Background(), testutil.NewHistoryBuilder().Ask("user", "ping").Build(), nil)
	require.NoError(t, err)
	assert.Equal(t, "pong", reply.Text())
	require.Len(t, llm.Requests(), 1)
	assert.True(t, llm.Requests()[0].Stream)
}
