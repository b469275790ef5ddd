package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentchat/core"
	"github.com/hupe1980/agentchat/internal/testutil"
)

func TestSequentialAgent_ChainsChildren(t *testing.T) {
	writer := testutil.NewScriptedAgent("writer", testutil.Reply("draft"))
	editor := testutil.NewScriptedAgent("editor", testutil.Reply("final"))
	seq := NewSequentialAgent("team", writer, editor)

	history := testutil.NewHistoryBuilder().Ask("user", "write").Build()
	reply, err := seq.GenerateReply(context.Background(), history, nil)
	require.NoError(t, err)

	assert.Equal(t, "team", reply.From)
	assert.Equal(t, "final", reply.Text())

	calls := editor.Calls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0].History, 2)
	assert.Equal(t, "draft", calls[0].History[1].Text())
	assert.Len(t, history, 1)
}

func TestSequentialAgent_StopsOnTerminal(t *testing.T) {
	writer := testutil.NewScriptedAgent("writer", testutil.Reply("nothing to do TERMINATE"))
	editor := testutil.NewScriptedAgent("editor")
	reply, err := NewSequentialAgent("team", writer, editor).GenerateReply(context.Background(), nil, nil)
	require.NoError(t, err)

	assert.True(t, reply.IsTerminal())
	assert.Zero(t, editor.CallCount())
}

func TestSequentialAgent_Errors(t *testing.T) {
	boom := errors.New("boom")
	seq := NewSequentialAgent("team", testutil.NewScriptedAgent("writer", testutil.Fail(boom)))
	_, err := seq.GenerateReply(context.Background(), nil, nil)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "writer")

	_, err = NewSequentialAgent("empty").GenerateReply(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestLoopAgent_StopsOnPredicate(t *testing.T) {
	child := testutil.NewScriptedAgent("critic",
		testutil.Reply("needs work"),
		testutil.Reply("LGTM"),
		testutil.Reply("never"),
	)
	loop := NewLoopAgent("review", child, WithMaxIters(5), WithPredicate(func(m core.Message) bool {
		return strings.Contains(m.Text(), "LGTM")
	}))

	reply, err := loop.GenerateReply(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "LGTM", reply.Text())
	assert.Equal(t, "review", reply.From)
	assert.Equal(t, 2, child.CallCount())
	assert.Len(t, child.Calls()[1].History, 1)
}

func TestLoopAgent_MaxIters(t *testing.T) {
	child := testutil.NewScriptedAgent("critic", testutil.Reply("again"))
	reply, err := NewLoopAgent("review", child, WithMaxIters(3)).GenerateReply(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "again", reply.Text())
	assert.Equal(t, 3, child.CallCount())
}

func TestLoopAgent_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLoopAgent("review", testutil.NewScriptedAgent("critic")).GenerateReply(ctx, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewLoopAgent("review", testutil.NewScriptedAgent("critic"), WithMaxIters(0)).GenerateReply(context.Background(), nil, nil)
	assert.Error(t, err)
}
