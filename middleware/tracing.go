package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/agentchat/core"
)

// TracerName is the instrumentation name used when Tracing gets a nil tracer.
const TracerName = "github.com/hupe1980/agentchat/middleware"

// Tracing records one span per reply. A nil tracer uses the global provider.
func Tracing(tracer trace.Tracer) Middleware {
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	return NewFunc("tracing", func(ctx context.Context, history []core.Message, opts *core.GenerateOptions, next core.Agent) (core.Message, error) {
		ctx, span := tracer.Start(ctx, "agent.generate_reply",
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(
				attribute.String("agent.name", next.Name()),
				attribute.Int("history.length", len(history)),
			),
		)
		defer span.End()

		if opts != nil && len(opts.Tools) > 0 {
			span.SetAttributes(attribute.Int("options.tools", len(opts.Tools)))
		}

		reply, err := next.GenerateReply(ctx, history, opts)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.SetAttributes(attribute.Bool("error.transient", core.IsTransient(err)))
			return reply, err
		}

		span.SetAttributes(
			attribute.String("reply.kind", string(reply.Kind)),
			attribute.Bool("reply.terminal", reply.IsTerminal()),
		)
		span.SetStatus(codes.Ok, "")
		return reply, nil
	})
}
