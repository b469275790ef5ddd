package middleware

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/hupe1980/agentchat/core"
)

// RateLimit blocks each reply until limiter grants a token. Waiting honours
// ctx; a cancelled wait is returned as the context's error.
func RateLimit(limiter *rate.Limiter) Middleware {
	return NewFunc("rate_limit", func(ctx context.Context, history []core.Message, opts *core.GenerateOptions, next core.Agent) (core.Message, error) {
		if err := limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return core.Message{}, ctxErr
			}
			return core.Message{}, fmt.Errorf("rate limit for %s: %w", next.Name(), err)
		}
		return next.GenerateReply(ctx, history, opts)
	})
}

// NewLimiter builds a limiter allowing rps replies per second with the given
// burst. A non-positive rps means unlimited.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
