// Package middleware wraps agents with composable behaviour while keeping the
// core.Agent contract.
//
// A Middleware receives the outgoing conversation, the generation options and
// the next link of the chain. It may rewrite the history before delegating,
// replace or post-process the reply, or short-circuit and never delegate.
// Wrap composes middlewares in registration order: the first middleware is the
// outermost one, the one a group chat calls.
//
//	coder := middleware.Wrap(modelAgent,
//	    middleware.Logging(logger),
//	    middleware.RateLimit(rate.NewLimiter(2, 1)),
//	    middleware.FunctionCall([]tool.Tool{searchTool}),
//	)
//
// Built-ins: Logging, RateLimit, Tracing, FunctionCall, CallLimit.
package middleware
