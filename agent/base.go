package agent

import (
	"fmt"
	"sync"
)

// BaseAgent bundles the identity shared by concrete agents. Embed it and
// supply GenerateReply to satisfy core.Agent. All exported methods are
// goroutine-safe.
type BaseAgent struct {
	name string

	mu          sync.RWMutex
	description string
}

// NewBaseAgent constructs a BaseAgent with generated description (customizable via SetDescription).
func NewBaseAgent(name string) BaseAgent {
	return BaseAgent{
		name:        name,
		description: fmt.Sprintf("Agent %s", name),
	}
}

// Name returns the name the agent is addressed by in a group chat.
func (b *BaseAgent) Name() string { return b.name }

// Description returns a detailed description of this agent's purpose.
func (b *BaseAgent) Description() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.description
}

// SetDescription updates the agent's description.
func (b *BaseAgent) SetDescription(desc string) {
	b.mu.Lock()
	b.description = desc
	b.mu.Unlock()
}
