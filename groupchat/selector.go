package groupchat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/agentchat/core"
	"github.com/hupe1980/agentchat/internal/util"
)

const rolePlayPrompt = `You are in a role play game. Carefully read the conversation history and carry on the conversation.
The available roles are:
{{.roles}}
Each message will start with 'From name:', e.g:
From {{.first}}:
//your message//.`

const speakerPrefix = "From "

// arbitrationOptions force short, deterministic admin output that stops
// right after the chosen name.
func arbitrationOptions() *core.GenerateOptions {
	return &core.GenerateOptions{
		Temperature:   core.Float(0),
		MaxTokens:     core.Int(128),
		StopSequences: []string{":"},
	}
}

// Candidates returns the members eligible to speak after from: the graph's
// candidates when a graph is configured, all members otherwise.
func (g *GroupChat) Candidates(ctx context.Context, from core.Agent, history []core.Message) ([]core.Agent, error) {
	if g.graph == nil || from == nil {
		return g.Members(), nil
	}
	candidates, err := g.graph.Candidates(ctx, from, history)
	if err != nil {
		return nil, err
	}
	// Transitions may reference the bare agent of a wrapped member; the
	// registered member is the one that speaks.
	for i, c := range candidates {
		if m, ok := g.byName[c.Name()]; ok {
			candidates[i] = m
		}
	}
	return candidates, nil
}

// SelectNextSpeaker picks who speaks after from. A single candidate is
// returned without consulting the admin. Failures wrap
// core.ErrWorkflowExhausted or core.ErrNoNextSpeaker; history is never
// modified.
func (g *GroupChat) SelectNextSpeaker(ctx context.Context, from core.Agent, history []core.Message) (core.Agent, error) {
	candidates, err := g.Candidates(ctx, from, history)
	if err != nil {
		return nil, err
	}

	switch {
	case len(candidates) == 1:
		return candidates[0], nil
	case len(candidates) == 0:
		return nil, fmt.Errorf("%w: no candidates", core.ErrNoNextSpeaker)
	case g.admin == nil:
		return nil, fmt.Errorf("%w: %d candidates [%s] and no admin to choose between them",
			core.ErrNoNextSpeaker, len(candidates), strings.Join(names(candidates), ", "))
	}

	return g.arbitrate(ctx, candidates, history)
}

// arbitrate asks the admin to pick one of candidates, retrying with the same
// candidate set when the reply names nobody eligible.
func (g *GroupChat) arbitrate(ctx context.Context, candidates []core.Agent, history []core.Message) (core.Agent, error) {
	prompt, err := g.arbitrationContext(candidates, history)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= g.maxSelectAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		reply, err := g.admin.GenerateReply(ctx, prompt, arbitrationOptions())
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: admin %s failed: %w", core.ErrNoNextSpeaker, g.admin.Name(), err)
		}

		if reply.IsTerminal() {
			return nil, fmt.Errorf("%w: admin %s ended the conversation", core.ErrNoNextSpeaker, g.admin.Name())
		}

		if next := resolveSpeaker(reply.Text(), candidates); next != nil {
			g.logger.Debug("groupchat.select.resolved", "speaker", next.Name(), "attempt", attempt)
			return next, nil
		}

		lastErr = &core.SpeakerResolutionError{
			Reply:      reply.Text(),
			Name:       parseSpeakerName(reply.Text()),
			Candidates: names(candidates),
		}
		g.logger.Warn("groupchat.select.unresolved", "attempt", attempt, "error", lastErr.Error())
	}

	return nil, fmt.Errorf("%w after %d attempts: %w", core.ErrNoNextSpeaker, g.maxSelectAttempts, lastErr)
}

// arbitrationContext renders the role-play system instruction followed by
// the initialize messages and history as a numbered transcript.
func (g *GroupChat) arbitrationContext(candidates []core.Agent, history []core.Message) ([]core.Message, error) {
	roles := names(candidates)
	system, err := util.RenderTemplate(rolePlayPrompt, map[string]any{
		"roles": strings.Join(roles, ","),
		"first": roles[0],
	})
	if err != nil {
		return nil, fmt.Errorf("render role play prompt: %w", err)
	}

	msgs := make([]core.Message, 0, 1+len(g.initMessages)+len(history))
	msgs = append(msgs, core.NewTextMessage(core.RoleSystem, system, ""))

	transcript := make([]core.Message, 0, len(g.initMessages)+len(history))
	transcript = append(transcript, g.initMessages...)
	transcript = append(transcript, history...)
	for i, m := range transcript {
		text := fmt.Sprintf("From %s:\n%s\n<eof_msg>\nround # %d", m.From, m.Text(), i)
		msgs = append(msgs, core.NewTextMessage(core.RoleUser, text, ""))
	}
	return msgs, nil
}

// parseSpeakerName extracts the name from a "From <name>:" reply. It returns
// "" when the reply does not follow the convention.
func parseSpeakerName(reply string) string {
	s := strings.TrimSpace(reply)
	if len(s) < len(speakerPrefix) || !strings.EqualFold(s[:len(speakerPrefix)], speakerPrefix) {
		return ""
	}
	s = s[len(speakerPrefix):]
	if i := strings.IndexAny(s, ":\n"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// resolveSpeaker matches the reply's name case-insensitively against candidates.
func resolveSpeaker(reply string, candidates []core.Agent) core.Agent {
	name := parseSpeakerName(reply)
	if name == "" {
		return nil
	}
	for _, c := range candidates {
		if strings.EqualFold(c.Name(), name) {
			return c
		}
	}
	return nil
}

func names(agents []core.Agent) []string {
	out := make([]string, len(agents))
	for i, a := range agents {
		out[i] = a.Name()
	}
	return out
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
