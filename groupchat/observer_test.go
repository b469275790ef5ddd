package groupchat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hupe1980/agentchat/core"
	"github.com/hupe1980/agentchat/internal/testutil"
	"github.com/hupe1980/agentchat/logging"
)

func TestObservers_EventOrder(t *testing.T) {
	a := testutil.NewScriptedAgent("a", testutil.Reply("hi"))
	b := testutil.NewScriptedAgent("b", testutil.Reply("bye TERMINATE"))
	rec := &recorder{}
	chat := pingPong(t, a, b, func(o *Options) { o.Observers = []Observer{rec} })

	_, err := chat.Run(context.Background(), nil, 5)
	require.NoError(t, err)

	assert.Equal(t, []event{
		{kind: "round", round: 1, speaker: "a"},
		{kind: "message", round: 1, speaker: "a"},
		{kind: "round", round: 2, speaker: "b"},
		{kind: "message", round: 2, speaker: "b"},
		{kind: "terminate", reason: ReasonTerminateMessage},
	}, rec.events)
}

func TestLogObserver(t *testing.T) {
	zcore, logs := observer.New(zapcore.DebugLevel)
	logger := logging.NewZapAdapter(zap.New(zcore))

	throttled := core.NewProviderError("openai", 429, errors.New("slow down"))
	a := testutil.NewScriptedAgent("a", testutil.Fail(throttled), testutil.Reply("done TERMINATE"))
	b := testutil.NewScriptedAgent("b")
	chat := pingPong(t, a, b, fastRetry, func(o *Options) {
		o.Logger = logger
		o.Observers = []Observer{NewLogObserver(logger)}
	})

	_, err := chat.Run(context.Background(), nil, 3)
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("groupchat.round.start").Len())
	assert.Equal(t, 1, logs.FilterMessage("groupchat.reply.retry").Len())
	assert.Equal(t, 1, logs.FilterMessage("groupchat.reply.completed").Len())

	term := logs.FilterMessage("groupchat.run.terminated").All()
	require.Len(t, term, 1)
	assert.Equal(t, "terminate_message", term[0].ContextMap()["reason"])
}

func TestNewLogObserver_NilLogger(t *testing.T) {
	o := NewLogObserver(nil)
	assert.NotPanics(t, func() {
		o.OnRoundStart(context.Background(), 1, "a")
		o.OnTerminate(context.Background(), ReasonMaxRound, nil)
	})
}
