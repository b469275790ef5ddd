// Package agentchat provides a high-level façade over the group chat
// orchestrator. Most applications interact with this package by:
//  1. Creating a Mesh via New() with the ambient logger, observers and tracer
//  2. Building agents from configuration (NewAgent) or by hand
//  3. Assembling a group chat (NewGroupChat or Load) and calling Run
//
// Every chat created through a Mesh shares its logger, observers and retry
// policy. Defaults are safe for local development: a NoOp logger, no
// observers and groupchat.DefaultRetryPolicy.
package agentchat

import (
	"context"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/agentchat/agent"
	"github.com/hupe1980/agentchat/config"
	"github.com/hupe1980/agentchat/core"
	"github.com/hupe1980/agentchat/groupchat"
	"github.com/hupe1980/agentchat/logging"
	"github.com/hupe1980/agentchat/middleware"
	"github.com/hupe1980/agentchat/model"
	"github.com/hupe1980/agentchat/model/anthropic"
	"github.com/hupe1980/agentchat/model/openai"
	"github.com/hupe1980/agentchat/model/openaicompat"
)

// Options configures the Mesh instance.
type Options struct {
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger

	// Observers are attached to every group chat created by the Mesh.
	Observers []groupchat.Observer

	// RetryPolicy applies to chats whose configuration has no retry section.
	RetryPolicy groupchat.RetryPolicy

	// Tracer enables one span per agent reply when set.
	Tracer trace.Tracer

	// Middlewares wrap every agent built by NewAgent, inside the logging,
	// tracing and limit middlewares.
	Middlewares []middleware.Middleware

	// ModelFactory overrides how NewAgent obtains a model. Returning a nil
	// model falls back to the built-in providers.
	ModelFactory func(cfg config.AgentConfig) (model.Model, error)
}

// Mesh is the high-level façade aggregating ambient services for group chats.
type Mesh struct {
	opts Options
}

// New creates a new Mesh instance with optional overrides.
func New(optFns ...func(o *Options)) *Mesh {
	opts := Options{
		Logger:      logging.NoOpLogger{},
		RetryPolicy: groupchat.DefaultRetryPolicy(),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Mesh{opts: opts}
}

// Logger returns the ambient logger.
func (m *Mesh) Logger() logging.Logger { return m.opts.Logger }

// chatDefaults applies the ambient services to a group chat. Observers are
// appended so that chat specific ones are kept.
func (m *Mesh) chatDefaults(o *groupchat.Options) {
	o.Logger = m.opts.Logger
	o.RetryPolicy = m.opts.RetryPolicy
	o.Observers = append(o.Observers, groupchat.NewLogObserver(m.opts.Logger))
	o.Observers = append(o.Observers, m.opts.Observers...)
}

// NewGroupChat validates and creates a group chat carrying the Mesh's
// ambient services. optFns run after the defaults and may override them.
func (m *Mesh) NewGroupChat(members []core.Agent, optFns ...func(o *groupchat.Options)) (*groupchat.GroupChat, error) {
	return groupchat.New(members, append([]func(o *groupchat.Options){m.chatDefaults}, optFns...)...)
}

// FromConfig builds the group chat described by cfg using NewAgent for every
// participant. A retry section in cfg wins over the Mesh's retry policy.
func (m *Mesh) FromConfig(cfg *config.Config, optFns ...func(o *groupchat.Options)) (*groupchat.GroupChat, error) {
	defaults := func(o *groupchat.Options) {
		retry := o.RetryPolicy
		m.chatDefaults(o)
		if cfg.Retry != nil {
			o.RetryPolicy = retry
		}
	}
	return cfg.Build(m.NewAgent, append([]func(o *groupchat.Options){defaults}, optFns...)...)
}

// Load reads a YAML definition and builds its group chat.
func (m *Mesh) Load(path string, optFns ...func(o *groupchat.Options)) (*groupchat.GroupChat, *config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	chat, err := m.FromConfig(cfg, optFns...)
	if err != nil {
		return nil, nil, err
	}

	return chat, cfg, nil
}

// Run drives chat for at most maxRound rounds starting from seed.
func (m *Mesh) Run(ctx context.Context, chat *groupchat.GroupChat, seed []core.Message, maxRound int) ([]core.Message, error) {
	ctx = logging.NewContext(ctx, m.opts.Logger)
	return chat.Run(ctx, seed, maxRound)
}

// LastIsTerminal reports whether a finished conversation ended on the
// termination token.
func LastIsTerminal(history []core.Message) bool { return core.LastIsTerminal(history) }

// NewAgent creates the model backed agent described by cfg and wraps it in
// the ambient middleware chain: logging, tracing (when a tracer is set), rate
// limiting and reply limits.
func (m *Mesh) NewAgent(cfg config.AgentConfig) (core.Agent, error) {
	llm, err := m.newModel(cfg)
	if err != nil {
		return nil, err
	}

	ma := agent.NewModelAgent(cfg.Name, llm, func(o *agent.ModelAgentOptions) {
		if cfg.Description != "" {
			o.Description = cfg.Description
		}
		switch {
		case cfg.Instruction == "":
		case len(cfg.Vars) > 0:
			o.Instruction = agent.NewInstructionFromTemplate(cfg.Instruction, cfg.Vars)
		default:
			o.Instruction = agent.NewInstructionFromText(cfg.Instruction)
		}
		if cfg.MaxHistory > 0 {
			o.MaxHistoryMessages = cfg.MaxHistory
		}
		o.DefaultOptions = cfg.GenerateOptions()
		// Canned replies are keyed by the raw text of the last message.
		o.PrefixSenders = cfg.Provider != config.ProviderMock
		o.Logger = m.opts.Logger
	})

	mws := []middleware.Middleware{middleware.Logging(m.opts.Logger)}
	if m.opts.Tracer != nil {
		mws = append(mws, middleware.Tracing(m.opts.Tracer))
	}
	if cfg.RateLimit > 0 {
		mws = append(mws, middleware.RateLimit(middleware.NewLimiter(cfg.RateLimit, cfg.Burst)))
	}
	if cfg.MaxReplies > 0 {
		mws = append(mws, middleware.CallLimit(cfg.MaxReplies))
	}
	mws = append(mws, m.opts.Middlewares...)

	return middleware.Wrap(ma, mws...), nil
}

func (m *Mesh) newModel(cfg config.AgentConfig) (model.Model, error) {
	if m.opts.ModelFactory != nil {
		llm, err := m.opts.ModelFactory(cfg)
		if err != nil {
			return nil, fmt.Errorf("model for agent %s: %w", cfg.Name, err)
		}
		if llm != nil {
			return llm, nil
		}
	}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		return openai.NewModel(func(o *openai.Options) {
			o.Model = cfg.Model
			o.APIKey = cfg.APIKey()
			o.BaseURL = cfg.BaseURL
			if cfg.Temperature != nil {
				o.Temperature = *cfg.Temperature
			}
			if cfg.MaxTokens != nil {
				o.MaxCompletionTokens = int64(*cfg.MaxTokens)
			}
		}), nil
	case config.ProviderAnthropic:
		return anthropic.NewModel(func(o *anthropic.Options) {
			o.Model = anthropicsdk.Model(cfg.Model)
			o.APIKey = cfg.APIKey()
			o.BaseURL = cfg.BaseURL
			if cfg.Temperature != nil {
				o.Temperature = *cfg.Temperature
			}
			if cfg.MaxTokens != nil {
				o.MaxTokens = int64(*cfg.MaxTokens)
			}
		}), nil
	case config.ProviderOpenAICompatible:
		return openaicompat.NewModel(func(o *openaicompat.Options) {
			o.Model = cfg.Model
			o.APIKey = cfg.APIKey()
			o.BaseURL = cfg.BaseURL
			if cfg.Temperature != nil {
				o.Temperature = float32(*cfg.Temperature)
			}
			if cfg.MaxTokens != nil {
				o.MaxTokens = *cfg.MaxTokens
			}
		}), nil
	case config.ProviderMock:
		mock := model.NewMockModel(cfg.Name, config.ProviderMock)
		for prompt, reply := range cfg.Responses {
			mock.AddResponse(prompt, reply)
		}
		return mock, nil
	default:
		return nil, core.NewValidationError("provider", cfg.Provider, "unknown provider for agent %s", cfg.Name)
	}
}
