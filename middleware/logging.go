package middleware

import (
	"context"
	"time"

	"github.com/hupe1980/agentchat/core"
	"github.com/hupe1980/agentchat/logging"
)

// Logging logs every reply with its latency, kind and outcome.
func Logging(logger logging.Logger) Middleware {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return NewFunc("logging", func(ctx context.Context, history []core.Message, opts *core.GenerateOptions, next core.Agent) (core.Message, error) {
		start := time.Now()
		logger.Debug("agent.reply.start", "agent", next.Name(), "history_len", len(history))

		reply, err := next.GenerateReply(ctx, history, opts)
		dur := time.Since(start)
		if err != nil {
			logger.Error("agent.reply.error", "agent", next.Name(), "duration_ms", dur.Milliseconds(), "error", err.Error())
			return reply, err
		}

		logger.Info(
			"agent.reply.completed",
			"agent", next.Name(),
			"duration_ms", dur.Milliseconds(),
			"kind", string(reply.Kind),
			"terminal", reply.IsTerminal(),
		)
		return reply, nil
	})
}
