package groupchat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentchat/core"
	"github.com/hupe1980/agentchat/internal/testutil"
	"github.com/hupe1980/agentchat/workflow"
)

func TestNew_Validation(t *testing.T) {
	a := testutil.NewScriptedAgent("a")
	b := testutil.NewScriptedAgent("b")
	admin := testutil.NewScriptedAgent("admin")
	outsider := testutil.NewScriptedAgent("outsider")

	tests := []struct {
		name    string
		members []core.Agent
		opts    func(o *Options)
		field   string
	}{
		{
			name:    "no members",
			members: nil,
			opts:    func(o *Options) { o.Admin = admin },
			field:   "members",
		},
		{
			name:    "nil member",
			members: []core.Agent{a, nil},
			opts:    func(o *Options) { o.Admin = admin },
			field:   "members[1]",
		},
		{
			name:    "empty name",
			members: []core.Agent{a, testutil.NewScriptedAgent("")},
			opts:    func(o *Options) { o.Admin = admin },
			field:   "members[1]",
		},
		{
			name:    "duplicate names",
			members: []core.Agent{testutil.NewScriptedAgent("worker"), testutil.NewScriptedAgent("worker")},
			opts:    func(o *Options) { o.Admin = admin },
			field:   "members[1]",
		},
		{
			name:    "transition to non member",
			members: []core.Agent{a, b},
			opts: func(o *Options) {
				o.Graph = workflow.NewGraph(workflow.NewTransition(a, outsider, nil))
			},
			field: "graph.transitions[0]",
		},
		{
			name:    "transition from non member",
			members: []core.Agent{a, b},
			opts: func(o *Options) {
				o.Graph = workflow.NewGraph(
					workflow.NewTransition(a, b, nil),
					workflow.NewTransition(outsider, a, nil),
				)
			},
			field: "graph.transitions[1]",
		},
		{
			name:    "neither admin nor graph",
			members: []core.Agent{a, b},
			opts:    func(*Options) {},
			field:   "admin",
		},
		{
			name:    "admin name clash",
			members: []core.Agent{a, b},
			opts:    func(o *Options) { o.Admin = testutil.NewScriptedAgent("a") },
			field:   "admin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat, err := New(tt.members, tt.opts)
			require.Error(t, err)
			assert.Nil(t, chat)
			assert.ErrorIs(t, err, core.ErrValidation)

			var ve *core.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestNew_Valid(t *testing.T) {
	a := testutil.NewScriptedAgent("a")
	b := testutil.NewScriptedAgent("b")
	admin := testutil.NewScriptedAgent("admin")
	graph := workflow.NewGraph(workflow.NewTransition(a, b, nil))
	init := core.NewTextMessage(core.RoleSystem, "be nice", "")

	chat, err := New([]core.Agent{a, b}, func(o *Options) {
		o.Admin = admin
		o.Graph = graph
		o.InitializeMessages = []core.Message{init}
		o.Observers = []Observer{nil}
	})
	require.NoError(t, err)

	assert.Len(t, chat.Members(), 2)
	assert.Equal(t, admin, chat.Admin())
	assert.Equal(t, graph, chat.Graph())
	assert.Len(t, chat.InitializeMessages(), 1)
	assert.Empty(t, chat.observers)

	got, ok := chat.Member("b")
	assert.True(t, ok)
	assert.Equal(t, b, got)
	_, ok = chat.Member("admin")
	assert.False(t, ok)

	// graph only and admin only are both fine
	_, err = New([]core.Agent{a, b}, func(o *Options) { o.Graph = graph })
	assert.NoError(t, err)
	_, err = New([]core.Agent{a, b}, func(o *Options) { o.Admin = admin })
	assert.NoError(t, err)
}

func TestNew_MembersAreCopied(t *testing.T) {
	a := testutil.NewScriptedAgent("a")
	members := []core.Agent{a, testutil.NewScriptedAgent("b")}
	chat, err := New(members, func(o *Options) { o.Admin = testutil.NewScriptedAgent("admin") })
	require.NoError(t, err)

	members[0] = testutil.NewScriptedAgent("z")
	assert.Equal(t, "a", chat.Members()[0].Name())
}
