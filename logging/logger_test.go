package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestChatLogger_ContextAndArgs(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(&LoggerConfig{Level: LogLevelDebug, Output: &buf})
	l := base.WithComponent("groupchat").WithRun("run-1").WithContext("chat", "review")

	LogRound(l, 2, "coder")
	l.Debug("selector.arbitrate", "attempt", 1)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "groupchat.round.start", lines[0]["msg"])
	assert.Equal(t, "groupchat", lines[0]["component"])
	assert.Equal(t, "run-1", lines[0]["run_id"])
	assert.Equal(t, "review", lines[0]["chat"])
	assert.Equal(t, "coder", lines[0]["speaker"])
	assert.EqualValues(t, 2, lines[0]["round"])
	assert.EqualValues(t, 1, lines[1]["attempt"])

	// clones do not leak context back into the parent
	base.Info("plain")
	lines = decodeLines(t, &buf)
	_, hasChat := lines[2]["chat"]
	assert.False(t, hasChat)
}

func TestChatLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelWarn, Output: &buf})

	l.Debug("hidden")
	l.Info("hidden")
	LogReply(l, "coder", time.Millisecond, false, nil)
	LogRetry(l, "coder", 1, time.Second, errors.New("throttled"))
	LogReply(l, "coder", time.Millisecond, false, errors.New("boom"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "groupchat.reply.retry", lines[0]["msg"])
	assert.Equal(t, "groupchat.reply.failed", lines[1]["msg"])
	assert.Equal(t, "boom", lines[1]["error"])
}

func TestChatLogger_OddArgs(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelInfo, Output: &buf})
	l.Info("odd", "dangling")
	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "dangling", lines[0]["!BADKEY"])
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, nil)))
	l.Info("hello", "k", "v")
	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "v", lines[0]["k"])
}

func TestZapAdapter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapAdapter(zap.New(core))

	l.Debug("groupchat.round.start", "round", 1)
	l.Error("groupchat.reply.failed", "speaker", "coder")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "groupchat.round.start", entries[0].Message)
	assert.EqualValues(t, 1, entries[0].ContextMap()["round"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "coder", entries[1].ContextMap()["speaker"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLevel("debug"))
	assert.Equal(t, LogLevelWarn, ParseLevel("warning"))
	assert.Equal(t, LogLevelError, ParseLevel("error"))
	assert.Equal(t, LogLevelInfo, ParseLevel("nonsense"))
	assert.Equal(t, "WARN", LogLevelWarn.String())
}

func TestNoOpLogger(t *testing.T) {
	var l Logger = NoOpLogger{}
	assert.NotPanics(t, func() { l.Error("x", "k", 1) })
}

func TestErrorWithStack(t *testing.T) {
	var buf bytes.Buffer
	chat := NewLogger(&LoggerConfig{Level: LogLevelInfo, Output: &buf})
	ErrorWithStack(chat, errors.New("boom"), "groupchat.reply.panic", "speaker", "coder")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "groupchat.reply.panic", lines[0]["msg"])
	assert.Equal(t, "boom", lines[0]["error"])
	assert.Equal(t, "coder", lines[0]["speaker"])
	assert.Contains(t, lines[0]["stack_trace"], "TestErrorWithStack")

	core, logs := observer.New(zapcore.DebugLevel)
	ErrorWithStack(NewZapAdapter(zap.New(core)), errors.New("boom"), "groupchat.reply.panic")
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "boom", fields["error"])
	assert.Contains(t, fields["stack_trace"], "TestErrorWithStack")
}
