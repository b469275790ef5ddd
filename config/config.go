// Package config loads declarative group chat definitions from YAML.
//
//	name: review
//	max_round: 8
//	admin:
//	  name: admin
//	  provider: openai
//	  model: gpt-4o-mini
//	agents:
//	  - name: coder
//	    provider: anthropic
//	    model: claude-3-5-sonnet-latest
//	    instruction: You write Go code.
//	  - name: reviewer
//	    provider: openai-compatible
//	    base_url: http://localhost:11434/v1
//	    model: llama3
//	transitions:
//	  - from: coder
//	    to: reviewer
//	  - from: reviewer
//	    to: coder
//	    when:
//	      not_contains: APPROVED
//	seed:
//	  - from: coder
//	    text: Implement a ring buffer.
//
// ${VAR} references anywhere in the file are expanded from the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/agentchat/core"
)

// Provider names understood by Validate.
const (
	ProviderOpenAI           = "openai"
	ProviderAnthropic        = "anthropic"
	ProviderOpenAICompatible = "openai-compatible"
	ProviderMock             = "mock"
)

// Config is a complete group chat definition.
type Config struct {
	Name        string             `yaml:"name"`
	MaxRound    int                `yaml:"max_round"`
	Admin       *AgentConfig       `yaml:"admin,omitempty"`
	Agents      []AgentConfig      `yaml:"agents"`
	Transitions []TransitionConfig `yaml:"transitions,omitempty"`
	Initialize  []MessageConfig    `yaml:"initialize,omitempty"`
	Seed        []MessageConfig    `yaml:"seed,omitempty"`
	Retry       *RetryConfig       `yaml:"retry,omitempty"`
}

// AgentConfig describes one model backed agent.
type AgentConfig struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Provider    string            `yaml:"provider"`
	Model       string            `yaml:"model,omitempty"`
	BaseURL     string            `yaml:"base_url,omitempty"`
	APIKeyEnv   string            `yaml:"api_key_env,omitempty"`
	Instruction string            `yaml:"instruction,omitempty"`
	Vars        map[string]any    `yaml:"vars,omitempty"`
	Temperature *float64          `yaml:"temperature,omitempty"`
	MaxTokens   *int              `yaml:"max_tokens,omitempty"`
	MaxHistory  int               `yaml:"max_history,omitempty"`
	RateLimit   float64           `yaml:"rate_limit,omitempty"` // Replies per second, 0 = unlimited
	Burst       int               `yaml:"burst,omitempty"`
	MaxReplies  int               `yaml:"max_replies,omitempty"` // 0 = unlimited
	Responses   map[string]string `yaml:"responses,omitempty"`   // Canned replies for the mock provider
}

// APIKey resolves the API key from the configured environment variable.
func (a AgentConfig) APIKey() string {
	if a.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(a.APIKeyEnv)
}

// GenerateOptions returns the agent's default generation options.
func (a AgentConfig) GenerateOptions() *core.GenerateOptions {
	return &core.GenerateOptions{Temperature: a.Temperature, MaxTokens: a.MaxTokens}
}

// TransitionConfig is a guarded edge between two agents.
type TransitionConfig struct {
	From string           `yaml:"from"`
	To   string           `yaml:"to"`
	When *ConditionConfig `yaml:"when,omitempty"`
}

// ConditionConfig is a declarative transition predicate. Set fields are
// combined with AND.
type ConditionConfig struct {
	Contains    string            `yaml:"contains,omitempty"`
	NotContains string            `yaml:"not_contains,omitempty"`
	SenderIs    string            `yaml:"sender_is,omitempty"`
	MaxMessages int               `yaml:"max_messages,omitempty"`
	All         []ConditionConfig `yaml:"all,omitempty"`
	Any         []ConditionConfig `yaml:"any,omitempty"`
	Not         *ConditionConfig  `yaml:"not,omitempty"`
}

// MessageConfig is a seed or initialize message.
type MessageConfig struct {
	From string `yaml:"from,omitempty"`
	Role string `yaml:"role,omitempty"` // user (default), assistant or system
	Text string `yaml:"text"`
}

// Message converts the entry into a core.Message.
func (m MessageConfig) Message() core.Message {
	role := core.Role(m.Role)
	if role == "" {
		role = core.RoleUser
	}
	return core.NewTextMessage(role, m.Text, m.From)
}

// RetryConfig overrides the transient error retry policy.
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts,omitempty"`
	InitialDelay time.Duration `yaml:"initial_delay,omitempty"`
	MaxDelay     time.Duration `yaml:"max_delay,omitempty"`
	Multiplier   float64       `yaml:"multiplier,omitempty"`
}

// Load reads, expands and parses the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse expands ${VAR} references and decodes data. Unknown keys are an error.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)

	cfg := &Config{MaxRound: 10}
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate reports every problem found, joined into one error. Each problem
// is a *core.ValidationError.
func (c *Config) Validate() error {
	var errs []error
	add := func(field string, value any, format string, args ...any) {
		errs = append(errs, core.NewValidationError(field, value, format, args...))
	}

	if c.MaxRound < 0 {
		add("max_round", c.MaxRound, "must not be negative")
	}
	if len(c.Agents) == 0 {
		add("agents", nil, "at least one agent is required")
	}

	names := make(map[string]bool, len(c.Agents))
	for i, a := range c.Agents {
		field := fmt.Sprintf("agents[%d]", i)
		validateAgent(field, a, add)
		if a.Name == "" {
			continue
		}
		if names[a.Name] {
			add(field+".name", a.Name, "duplicate agent name %q", a.Name)
		}
		names[a.Name] = true
	}

	if c.Admin == nil && len(c.Transitions) == 0 {
		add("admin", nil, "either an admin or transitions are required")
	}
	if c.Admin != nil {
		validateAgent("admin", *c.Admin, add)
		if names[c.Admin.Name] {
			add("admin.name", c.Admin.Name, "admin name %q collides with an agent", c.Admin.Name)
		}
	}

	for i, t := range c.Transitions {
		field := fmt.Sprintf("transitions[%d]", i)
		if !names[t.From] {
			add(field+".from", t.From, "unknown agent %q", t.From)
		}
		if !names[t.To] {
			add(field+".to", t.To, "unknown agent %q", t.To)
		}
	}

	for i, m := range c.Seed {
		validateMessage(fmt.Sprintf("seed[%d]", i), m, add)
	}
	if n := len(c.Seed); n > 0 && c.Seed[n-1].From != "" && !names[c.Seed[n-1].From] {
		add(fmt.Sprintf("seed[%d].from", n-1), c.Seed[n-1].From, "last seed message must come from an agent")
	}
	for i, m := range c.Initialize {
		validateMessage(fmt.Sprintf("initialize[%d]", i), m, add)
	}

	return errors.Join(errs...)
}

func validateAgent(field string, a AgentConfig, add func(string, any, string, ...any)) {
	if a.Name == "" {
		add(field+".name", a.Name, "name is required")
	}
	switch a.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderMock:
	case ProviderOpenAICompatible:
		if a.BaseURL == "" {
			add(field+".base_url", a.BaseURL, "base_url is required for provider %q", a.Provider)
		}
	default:
		add(field+".provider", a.Provider, "unknown provider %q", a.Provider)
	}
	if a.Provider != ProviderMock && a.Model == "" {
		add(field+".model", a.Model, "model is required")
	}
	if a.RateLimit < 0 {
		add(field+".rate_limit", a.RateLimit, "must not be negative")
	}
	if a.MaxReplies < 0 {
		add(field+".max_replies", a.MaxReplies, "must not be negative")
	}
}

func validateMessage(field string, m MessageConfig, add func(string, any, string, ...any)) {
	switch core.Role(m.Role) {
	case "", core.RoleUser, core.RoleAssistant, core.RoleSystem:
	default:
		add(field+".role", m.Role, "unsupported role %q", m.Role)
	}
}

// SeedMessages converts the seed entries.
func (c *Config) SeedMessages() []core.Message {
	return convert(c.Seed)
}

// InitializeMessages converts the initialize entries.
func (c *Config) InitializeMessages() []core.Message {
	return convert(c.Initialize)
}

func convert(ms []MessageConfig) []core.Message {
	if len(ms) == 0 {
		return nil
	}
	out := make([]core.Message, len(ms))
	for i, m := range ms {
		out[i] = m.Message()
	}
	return out
}
