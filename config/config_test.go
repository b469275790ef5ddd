package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentchat/core"
	"github.com/hupe1980/agentchat/internal/testutil"
)

const reviewYAML = `
name: review
max_round: 6
admin:
  name: admin
  provider: mock
agents:
  - name: coder
    provider: openai
    model: gpt-4o-mini
    api_key_env: TEST_AGENTCHAT_KEY
    temperature: 0.2
    max_tokens: 256
  - name: reviewer
    provider: openai-compatible
    base_url: ${TEST_AGENTCHAT_URL}
    model: llama3
transitions:
  - from: coder
    to: reviewer
  - from: reviewer
    to: coder
    when:
      not_contains: APPROVED
initialize:
  - role: system
    text: Keep answers short.
seed:
  - from: coder
    text: Here is my patch.
retry:
  max_attempts: 5
  initial_delay: 250ms
  max_delay: 2s
`

func TestParse(t *testing.T) {
	t.Setenv("TEST_AGENTCHAT_URL", "http://localhost:11434/v1")
	t.Setenv("TEST_AGENTCHAT_KEY", "sk-test")

	cfg, err := Parse([]byte(reviewYAML))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "review", cfg.Name)
	assert.Equal(t, 6, cfg.MaxRound)
	require.Len(t, cfg.Agents, 2)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Agents[1].BaseURL)
	assert.Equal(t, "sk-test", cfg.Agents[0].APIKey())
	assert.Equal(t, 0.2, *cfg.Agents[0].GenerateOptions().Temperature)
	assert.Equal(t, 256, *cfg.Agents[0].GenerateOptions().MaxTokens)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.InitialDelay)
	assert.Equal(t, 2*time.Second, cfg.Retry.MaxDelay)

	seed := cfg.SeedMessages()
	require.Len(t, seed, 1)
	assert.Equal(t, "coder", seed[0].From)
	assert.Equal(t, core.RoleUser, seed[0].Role)

	init := cfg.InitializeMessages()
	require.Len(t, init, 1)
	assert.Equal(t, core.RoleSystem, init[0].Role)
}

func TestParse_DefaultsAndUnknownKeys(t *testing.T) {
	cfg, err := Parse([]byte("agents: []\n"))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.MaxRound)
	assert.Nil(t, cfg.SeedMessages())

	_, err = Parse([]byte("agents: []\nmax_rounds: 3\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: x\nagents:\n  - name: a\n    provider: mock\nadmin:\n  name: admin\n  provider: mock\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "x", cfg.Name)
	assert.NoError(t, cfg.Validate())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := &Config{
		MaxRound: -1,
		Admin:    &AgentConfig{Name: "a", Provider: ProviderMock},
		Agents: []AgentConfig{
			{Name: "a", Provider: ProviderOpenAI},
			{Name: "a", Provider: "cohere", Model: "x"},
			{Provider: ProviderOpenAICompatible, Model: "x"},
		},
		Transitions: []TransitionConfig{{From: "a", To: "ghost"}},
		Seed:        []MessageConfig{{From: "user", Role: "robot", Text: "hi"}},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrValidation)

	var fields []string
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var ve *core.ValidationError
		require.True(t, errors.As(e, &ve))
		fields = append(fields, ve.Field)
	}
	assert.ElementsMatch(t, []string{
		"max_round",
		"agents[0].model",
		"agents[1].provider",
		"agents[1].name",
		"agents[2].name",
		"agents[2].base_url",
		"admin.name",
		"transitions[0].to",
		"seed[0].role",
		"seed[0].from",
	}, fields)
}

func TestValidate_RequiresAdminOrTransitions(t *testing.T) {
	cfg := &Config{Agents: []AgentConfig{{Name: "a", Provider: ProviderMock}}}
	assert.ErrorIs(t, cfg.Validate(), core.ErrValidation)
}

func TestBuild(t *testing.T) {
	t.Setenv("TEST_AGENTCHAT_URL", "http://localhost:11434/v1")
	cfg, err := Parse([]byte(reviewYAML))
	require.NoError(t, err)

	agents := map[string]*testutil.ScriptedAgent{
		"coder":    testutil.NewScriptedAgent("coder", testutil.Reply("fixed")),
		"reviewer": testutil.NewScriptedAgent("reviewer", testutil.Reply("needs work"), testutil.Reply("APPROVED TERMINATE")),
		"admin":    testutil.NewScriptedAgent("admin"),
	}
	chat, err := cfg.Build(func(ac AgentConfig) (core.Agent, error) {
		return agents[ac.Name], nil
	})
	require.NoError(t, err)

	assert.Len(t, chat.Members(), 2)
	assert.NotNil(t, chat.Admin())
	assert.Len(t, chat.InitializeMessages(), 1)

	history, err := chat.Run(context.Background(), cfg.SeedMessages(), cfg.MaxRound)
	require.NoError(t, err)

	var texts []string
	for _, m := range history {
		texts = append(texts, m.Text())
	}
	assert.Equal(t, []string{"Here is my patch.", "needs work", "fixed", "APPROVED TERMINATE"}, texts)
	assert.Zero(t, agents["admin"].CallCount())
}

func TestBuild_FactoryError(t *testing.T) {
	cfg := &Config{
		Admin:  &AgentConfig{Name: "admin", Provider: ProviderMock},
		Agents: []AgentConfig{{Name: "a", Provider: ProviderMock}},
	}
	boom := errors.New("boom")
	_, err := cfg.Build(func(AgentConfig) (core.Agent, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}

func TestConditionConfig_Predicate(t *testing.T) {
	ctx := context.Background()
	history := testutil.NewHistoryBuilder().Say("reviewer", "APPROVED, ship it").Build()

	tests := []struct {
		name string
		cond *ConditionConfig
		want bool
	}{
		{"nil", nil, true},
		{"empty", &ConditionConfig{}, true},
		{"contains", &ConditionConfig{Contains: "APPROVED"}, true},
		{"not contains", &ConditionConfig{NotContains: "APPROVED"}, false},
		{"sender", &ConditionConfig{SenderIs: "reviewer"}, true},
		{"max messages", &ConditionConfig{MaxMessages: 1}, false},
		{"and", &ConditionConfig{Contains: "APPROVED", SenderIs: "coder"}, false},
		{"any", &ConditionConfig{Any: []ConditionConfig{{SenderIs: "coder"}, {Contains: "ship"}}}, true},
		{"all", &ConditionConfig{All: []ConditionConfig{{SenderIs: "reviewer"}, {Contains: "ship"}}}, true},
		{"not", &ConditionConfig{Not: &ConditionConfig{Contains: "APPROVED"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.cond.Predicate()
			if p == nil {
				assert.True(t, tt.want)
				return
			}
			got, err := p(ctx, nil, nil, history)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
