package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/hupe1980/agentchat/core"
	"github.com/hupe1980/agentchat/logging"
	"github.com/hupe1980/agentchat/tool"
)

// FunctionCallOptions configure the function-call middleware.
type FunctionCallOptions struct {
	// Logger receives one line per executed call. It is also placed on the
	// context handed to tools.
	Logger logging.Logger

	// ExecuteIncoming makes the middleware act as an executor: when the last
	// message of the history is a tool call whose functions are all
	// registered, the calls are executed and their results returned without
	// consulting the wrapped agent.
	ExecuteIncoming bool
}

// FunctionCaller advertises a tool registry to the wrapped agent and executes
// the function calls found in its replies. Calls run one after another in
// the order the reply lists them; every call yields exactly one response, and
// panics are recovered into error responses.
type FunctionCaller struct {
	tools map[string]tool.Tool
	order []tool.Tool
	opts  FunctionCallOptions
}

var _ Middleware = (*FunctionCaller)(nil)

// FunctionCall creates the middleware for tools. Later tools replace earlier
// ones with the same name.
func FunctionCall(tools []tool.Tool, optFns ...func(o *FunctionCallOptions)) *FunctionCaller {
	opts := FunctionCallOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	fc := &FunctionCaller{tools: make(map[string]tool.Tool, len(tools)), opts: opts}
	for _, t := range tools {
		if _, exists := fc.tools[t.Name()]; !exists {
			fc.order = append(fc.order, t)
		} else {
			for i := range fc.order {
				if fc.order[i].Name() == t.Name() {
					fc.order[i] = t
				}
			}
		}
		fc.tools[t.Name()] = t
	}
	return fc
}

// Name implements Middleware.
func (f *FunctionCaller) Name() string { return "function_call" }

// Contracts returns the advertised function contracts in registration order.
func (f *FunctionCaller) Contracts() []core.FunctionContract { return tool.Contracts(f.order...) }

// Invoke implements Middleware.
func (f *FunctionCaller) Invoke(ctx context.Context, history []core.Message, opts *core.GenerateOptions, next core.Agent) (core.Message, error) {
	if f.opts.ExecuteIncoming && len(history) > 0 {
		last := history[len(history)-1]
		if calls := last.FunctionCalls(); last.Kind == core.KindToolCall && f.handlesAll(calls) {
			responses := f.execute(ctx, next.Name(), calls)
			if err := ctx.Err(); err != nil {
				return core.Message{}, err
			}
			return core.NewToolCallResultMessage(next.Name(), responses...), nil
		}
	}

	opts = opts.Merge(&core.GenerateOptions{Tools: f.Contracts()})
	reply, err := next.GenerateReply(ctx, history, opts)
	if err != nil {
		return reply, err
	}

	calls := reply.FunctionCalls()
	if len(calls) == 0 || !f.handlesAll(calls) {
		return reply, nil
	}

	responses := f.execute(ctx, next.Name(), calls)
	if err := ctx.Err(); err != nil {
		return core.Message{}, err
	}

	from := reply.From
	if from == "" {
		from = next.Name()
	}
	result := core.NewToolCallResultMessage(from, responses...)
	return core.NewAggregateMessage(from, reply, result), nil
}

func (f *FunctionCaller) handlesAll(calls []core.FunctionCall) bool {
	if len(calls) == 0 {
		return false
	}
	for _, c := range calls {
		if _, ok := f.tools[c.Name]; !ok {
			return false
		}
	}
	return true
}

func (f *FunctionCaller) execute(ctx context.Context, agent string, calls []core.FunctionCall) []core.FunctionResponse {
	ctx = logging.NewContext(ctx, f.opts.Logger)
	batchStart := time.Now()

	responses := make([]core.FunctionResponse, 0, len(calls))
	for _, fc := range calls {
		if ctx.Err() != nil {
			break
		}

		start := time.Now()
		result, err := f.executeSingle(ctx, fc)
		f.opts.Logger.Info(
			"agent.function.executed",
			"agent", agent,
			"function", fc.Name,
			"function_call_id", fc.ID,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err != nil,
		)

		resp := core.FunctionResponse{ID: fc.ID, Name: fc.Name, Response: result}
		if err != nil {
			resp.Response = nil
			resp.Error = err.Error()
		}
		responses = append(responses, resp)
	}

	f.opts.Logger.Debug(
		"agent.functions.batch.complete",
		"agent", agent,
		"count", len(responses),
		"duration_ms", time.Since(batchStart).Milliseconds(),
	)
	return responses
}

// executeSingle looks up and runs one call, converting panics into errors.
func (f *FunctionCaller) executeSingle(ctx context.Context, fc core.FunctionCall) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			f.opts.Logger.Error("agent.function.panic", "function", fc.Name, "recover", fmt.Sprint(r), "stack", string(debug.Stack()))
			result, err = nil, &tool.ToolError{Tool: fc.Name, Message: fmt.Sprintf("panic: %v", r), Code: tool.CodePanic}
		}
	}()

	impl, ok := f.tools[fc.Name]
	if !ok {
		return nil, tool.NewToolError(fc.Name, "tool not found", tool.CodeNotFound)
	}

	argMap := map[string]any{}
	if fc.Arguments != "" {
		if err := json.Unmarshal([]byte(fc.Arguments), &argMap); err != nil {
			return nil, &tool.ToolError{Tool: fc.Name, Message: fmt.Sprintf("failed to unmarshal args: %v", err), Code: tool.CodeArguments}
		}
	}

	return impl.Call(ctx, argMap)
}
