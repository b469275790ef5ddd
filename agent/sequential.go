package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/agentchat/core"
)

// SequentialAgent chains child agents into a single participant. Each child
// sees the conversation plus the replies of the children before it; the last
// reply is returned attributed to the SequentialAgent. A terminal reply ends
// the chain early.
//
// SequentialAgent is ideal for draft-then-review pipelines that should count
// as one turn in a group chat.
type SequentialAgent struct {
	BaseAgent
	children []core.Agent
}

// NewSequentialAgent creates a new sequential execution coordinator.
func NewSequentialAgent(name string, children ...core.Agent) *SequentialAgent {
	return &SequentialAgent{
		BaseAgent: NewBaseAgent(name),
		children:  children,
	}
}

// GenerateReply implements core.Agent. Errors stop further processing immediately.
func (s *SequentialAgent) GenerateReply(ctx context.Context, history []core.Message, opts *core.GenerateOptions) (core.Message, error) {
	if len(s.children) == 0 {
		return core.Message{}, errors.New("sequential agent has no children")
	}

	working := make([]core.Message, len(history), len(history)+len(s.children))
	copy(working, history)

	var last core.Message
	for _, child := range s.children {
		if err := ctx.Err(); err != nil {
			return core.Message{}, err
		}
		reply, err := child.GenerateReply(ctx, working, opts)
		if err != nil {
			return core.Message{}, fmt.Errorf("sequential execution failed at agent %s: %w", child.Name(), err)
		}
		working = append(working, reply)
		last = reply
		if reply.IsTerminal() {
			break
		}
	}

	return last.WithFrom(s.Name()), nil
}
