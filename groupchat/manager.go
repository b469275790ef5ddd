package groupchat

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/agentchat/core"
)

// Manager exposes a GroupChat as a single core.Agent so whole chats can take
// part in other chats.
type Manager struct {
	name     string
	chat     *GroupChat
	maxRound int
}

// NewManager wraps chat. Each reply runs at most maxRound rounds.
func NewManager(name string, chat *GroupChat, maxRound int) *Manager {
	if maxRound < 0 {
		maxRound = 0
	}
	return &Manager{name: name, chat: chat, maxRound: maxRound}
}

// Name implements core.Agent.
func (m *Manager) Name() string { return m.name }

// Description lists the members of the wrapped chat.
func (m *Manager) Description() string {
	return fmt.Sprintf("Group chat of %s", strings.Join(names(m.chat.members), ", "))
}

// GenerateReply implements core.Agent. The history seeds the inner chat; when
// its last sender is not an inner member the first member opens. The last
// message the inner chat appended is returned attributed to the manager.
func (m *Manager) GenerateReply(ctx context.Context, history []core.Message, _ *core.GenerateOptions) (core.Message, error) {
	first, direct := m.chat.members[0], true
	if n := len(history); n > 0 {
		if a, ok := m.chat.byName[history[n-1].From]; ok {
			first, direct = a, false
		}
	}

	out, err := m.chat.run(ctx, history, first, direct, m.maxRound)
	if err != nil {
		return core.Message{}, err
	}
	if len(out) == len(history) {
		return core.NewTerminateMessage(m.name, "group chat produced no reply"), nil
	}
	return out[len(out)-1].WithFrom(m.name), nil
}
