package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/time/rate"

	"github.com/hupe1980/agentchat/core"
	"github.com/hupe1980/agentchat/internal/testutil"
	"github.com/hupe1980/agentchat/logging"
)

func TestLogging(t *testing.T) {
	obsCore, logs := observer.New(zapcore.DebugLevel)
	logger := logging.NewZapAdapter(zap.New(obsCore))

	agent := Wrap(testutil.NewScriptedAgent("coder", testutil.Reply("patch"), testutil.Fail(errors.New("boom"))), Logging(logger))

	_, err := agent.GenerateReply(context.Background(), nil, nil)
	require.NoError(t, err)
	_, err = agent.GenerateReply(context.Background(), nil, nil)
	require.Error(t, err)

	completed := logs.FilterMessage("agent.reply.completed").All()
	require.Len(t, completed, 1)
	assert.Equal(t, "coder", completed[0].ContextMap()["agent"])
	assert.Equal(t, false, completed[0].ContextMap()["terminal"])
	assert.Equal(t, 1, logs.FilterMessage("agent.reply.error").Len())
	assert.Equal(t, 2, logs.FilterMessage("agent.reply.start").Len())
}

func TestRateLimit(t *testing.T) {
	inner := testutil.NewScriptedAgent("coder")
	agent := Wrap(inner, RateLimit(NewLimiter(0, 0)))
	for i := 0; i < 5; i++ {
		_, err := agent.GenerateReply(context.Background(), nil, nil)
		require.NoError(t, err)
	}
	assert.Equal(t, 5, inner.CallCount())
}

func TestRateLimit_CancelledWhileWaiting(t *testing.T) {
	inner := testutil.NewScriptedAgent("coder")
	limiter := rate.NewLimiter(rate.Every(1e12), 1) // one token, effectively never refilled
	agent := Wrap(inner, RateLimit(limiter))

	_, err := agent.GenerateReply(context.Background(), nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = agent.GenerateReply(ctx, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, inner.CallCount())
}

func TestRateLimit_WaitWouldExceedDeadline(t *testing.T) {
	limiter := rate.NewLimiter(rate.Every(1e12), 0)
	agent := Wrap(testutil.NewScriptedAgent("coder"), RateLimit(limiter))

	_, err := agent.GenerateReply(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit for coder")
}

func TestTracing(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	throttled := core.NewProviderError("openai", 429, errors.New("slow down"))
	agent := Wrap(testutil.NewScriptedAgent("coder", testutil.Reply("TERMINATE"), testutil.Fail(throttled)), Tracing(tp.Tracer("test")))

	_, err := agent.GenerateReply(context.Background(), testutil.NewHistoryBuilder().Ask("user", "go").Build(), nil)
	require.NoError(t, err)
	_, err = agent.GenerateReply(context.Background(), nil, nil)
	require.Error(t, err)

	spans := exp.GetSpans()
	require.Len(t, spans, 2)

	ok := spans[0]
	assert.Equal(t, "agent.generate_reply", ok.Name)
	assert.Equal(t, codes.Ok, ok.Status.Code)
	assert.Contains(t, ok.Attributes, attribute.String("agent.name", "coder"))
	assert.Contains(t, ok.Attributes, attribute.Int("history.length", 1))
	assert.Contains(t, ok.Attributes, attribute.Bool("reply.terminal", true))

	failed := spans[1]
	assert.Equal(t, codes.Error, failed.Status.Code)
	assert.Contains(t, failed.Attributes, attribute.Bool("error.transient", true))
	require.NotEmpty(t, failed.Events)
	assert.Equal(t, "exception", failed.Events[0].Name)
}
