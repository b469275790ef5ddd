package groupchat

import (
	"fmt"

	"github.com/hupe1980/agentchat/core"
	"github.com/hupe1980/agentchat/logging"
	"github.com/hupe1980/agentchat/workflow"
)

// Options configure a GroupChat.
type Options struct {
	// Admin arbitrates between several eligible speakers.
	Admin core.Agent
	// Graph constrains which member may follow which.
	Graph *workflow.Graph
	// InitializeMessages are prepended to the history of every reply and
	// arbitration context but never returned by Run.
	InitializeMessages []core.Message
	Logger             logging.Logger
	Observers          []Observer
	RetryPolicy        RetryPolicy
	// MaxSelectAttempts bounds the arbitration retries when the admin names
	// an ineligible speaker.
	MaxSelectAttempts int
}

// GroupChat is an immutable, validated conversation setup. It can serve any
// number of concurrent Run calls.
type GroupChat struct {
	members           []core.Agent
	byName            map[string]core.Agent
	admin             core.Agent
	graph             *workflow.Graph
	initMessages      []core.Message
	logger            logging.Logger
	observers         observers
	retry             RetryPolicy
	maxSelectAttempts int
}

// New validates the setup and creates a GroupChat. Every problem is reported
// as a *core.ValidationError.
func New(members []core.Agent, optFns ...func(o *Options)) (*GroupChat, error) {
	opts := Options{
		Logger:            logging.NoOpLogger{},
		RetryPolicy:       DefaultRetryPolicy(),
		MaxSelectAttempts: 3,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.MaxSelectAttempts < 1 {
		opts.MaxSelectAttempts = 1
	}

	// Later changes to the caller's graph must not reach the chat.
	if opts.Graph != nil {
		opts.Graph = workflow.NewGraph(opts.Graph.Transitions()...)
	}

	byName, err := validate(members, opts)
	if err != nil {
		return nil, err
	}

	var obs observers
	for _, o := range opts.Observers {
		if o != nil {
			obs = append(obs, o)
		}
	}

	return &GroupChat{
		members:           append([]core.Agent(nil), members...),
		byName:            byName,
		admin:             opts.Admin,
		graph:             opts.Graph,
		initMessages:      append([]core.Message(nil), opts.InitializeMessages...),
		logger:            opts.Logger,
		observers:         obs,
		retry:             opts.RetryPolicy.normalized(),
		maxSelectAttempts: opts.MaxSelectAttempts,
	}, nil
}

func validate(members []core.Agent, opts Options) (map[string]core.Agent, error) {
	if len(members) == 0 {
		return nil, core.NewValidationError("members", nil, "at least one member is required")
	}

	byName := make(map[string]core.Agent, len(members))
	for i, m := range members {
		field := fmt.Sprintf("members[%d]", i)
		if m == nil {
			return nil, core.NewValidationError(field, nil, "member is nil")
		}
		name := m.Name()
		if name == "" {
			return nil, core.NewValidationError(field, name, "member name is empty")
		}
		if _, dup := byName[name]; dup {
			return nil, core.NewValidationError(field, name, "duplicate member name %q", name)
		}
		byName[name] = m
	}

	if opts.Admin == nil && opts.Graph == nil {
		return nil, core.NewValidationError("admin", nil, "either an admin or a workflow graph is required")
	}

	if opts.Admin != nil {
		name := opts.Admin.Name()
		if name == "" {
			return nil, core.NewValidationError("admin", name, "admin name is empty")
		}
		if _, clash := byName[name]; clash {
			return nil, core.NewValidationError("admin", name, "admin name %q collides with a member", name)
		}
	}

	if opts.Graph != nil {
		for i, t := range opts.Graph.Transitions() {
			for _, end := range []core.Agent{t.From(), t.To()} {
				if end == nil {
					return nil, core.NewValidationError(fmt.Sprintf("graph.transitions[%d]", i), t.String(), "transition endpoint is nil")
				}
				if _, ok := byName[end.Name()]; !ok {
					return nil, core.NewValidationError(fmt.Sprintf("graph.transitions[%d]", i), t.String(),
						"agent %q is not a member of the group chat", end.Name())
				}
			}
		}
	}

	return byName, nil
}

// Members returns the members in declaration order.
func (g *GroupChat) Members() []core.Agent {
	return append([]core.Agent(nil), g.members...)
}

// Member looks up a member by name.
func (g *GroupChat) Member(name string) (core.Agent, bool) {
	a, ok := g.byName[name]
	return a, ok
}

// Admin returns the arbitrating agent, or nil.
func (g *GroupChat) Admin() core.Agent { return g.admin }

// Graph returns a copy of the workflow graph, or nil.
func (g *GroupChat) Graph() *workflow.Graph {
	if g.graph == nil {
		return nil
	}
	return workflow.NewGraph(g.graph.Transitions()...)
}

// InitializeMessages returns a copy of the messages prepended to every context.
func (g *GroupChat) InitializeMessages() []core.Message {
	return append([]core.Message(nil), g.initMessages...)
}

func (g *GroupChat) adminName() string {
	if g.admin == nil {
		return ""
	}
	return g.admin.Name()
}
