package groupchat

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/agentchat/core"
	"github.com/hupe1980/agentchat/logging"
)

// Run drives the conversation for at most maxRound rounds, starting from
// seed, and returns seed followed by every appended message.
//
// The run starts from the sender of the last seed message, which must be a
// member, and selects who answers it. Without a seed, or when the last seed
// message has no sender, the first member takes the first round directly. Every failure inside
// the loop ends the conversation with a terminal message instead of an
// error. The returned error is non-nil only for invalid arguments and for
// cancellation, in which case the history accumulated so far is returned
// alongside ctx.Err().
func (g *GroupChat) Run(ctx context.Context, seed []core.Message, maxRound int) ([]core.Message, error) {
	if maxRound < 0 {
		return nil, core.NewValidationError("maxRound", maxRound, "must not be negative")
	}

	first, direct, err := g.initialSpeaker(seed)
	if err != nil {
		return nil, err
	}
	return g.run(ctx, seed, first, direct, maxRound)
}

// initialSpeaker resolves the speaker the run starts from and whether that
// speaker takes the first round itself.
func (g *GroupChat) initialSpeaker(seed []core.Message) (core.Agent, bool, error) {
	if len(seed) == 0 {
		return g.members[0], true, nil
	}
	from := seed[len(seed)-1].From
	if from == "" {
		return g.members[0], true, nil
	}
	speaker, ok := g.byName[from]
	if !ok {
		return nil, false, fmt.Errorf("%w: %q", core.ErrUnknownSender, from)
	}
	return speaker, false, nil
}

// run executes the round loop. When direct is set first takes the first round
// without selection; otherwise the next speaker is selected after first.
func (g *GroupChat) run(ctx context.Context, seed []core.Message, first core.Agent, direct bool, maxRound int) ([]core.Message, error) {
	history := append(make([]core.Message, 0, len(seed)+1), seed...)

	runID := core.NewID()
	g.logger.Debug("groupchat.run.start", "run", runID, "members", len(g.members), "seed", len(seed), "max_round", maxRound)

	last := first
	for round := 0; round < maxRound; round++ {
		if err := ctx.Err(); err != nil {
			return g.cancelled(ctx, history, err)
		}

		speaker := first
		if round > 0 || !direct {
			next, err := g.SelectNextSpeaker(ctx, last, history)
			if err != nil {
				if isContextErr(err) && ctx.Err() != nil {
					return g.cancelled(ctx, history, ctx.Err())
				}
				g.logger.Info("groupchat.select.none", "run", runID, "round", round+1, "error", err.Error())
				msg := core.NewTerminateMessage(g.adminName(), err.Error())
				history = append(history, msg)
				g.observers.message(ctx, round+1, msg, 0)
				g.observers.terminate(ctx, ReasonNoNextSpeaker, history)
				return history, nil
			}
			speaker = next
		}

		g.observers.roundStart(ctx, round+1, speaker.Name())

		start := time.Now()
		reply, err := g.invoke(ctx, round+1, speaker, g.context(history))
		elapsed := time.Since(start)
		if err != nil {
			if ctx.Err() != nil {
				return g.cancelled(ctx, history, ctx.Err())
			}
			g.logger.Error("groupchat.reply.failed", "run", runID, "round", round+1, "speaker", speaker.Name(), "error", err.Error())
			msg := core.NewTerminateMessage(speaker.Name(), err.Error())
			history = append(history, msg)
			g.observers.message(ctx, round+1, msg, elapsed)
			g.observers.terminate(ctx, ReasonAgentError, history)
			return history, nil
		}

		if reply.From == "" {
			reply.From = speaker.Name()
		}
		if reply.ID == "" {
			reply.ID = core.NewID()
		}
		if reply.Timestamp.IsZero() {
			reply.Timestamp = time.Now().UTC()
		}

		history = append(history, reply)
		last = speaker
		g.observers.message(ctx, round+1, reply, elapsed)

		if reply.IsTerminal() {
			g.observers.terminate(ctx, ReasonTerminateMessage, history)
			return history, nil
		}
	}

	g.observers.terminate(ctx, ReasonMaxRound, history)
	return history, nil
}

// context prepends the initialize messages to history in a fresh slice.
func (g *GroupChat) context(history []core.Message) []core.Message {
	if len(g.initMessages) == 0 {
		return append([]core.Message(nil), history...)
	}
	out := make([]core.Message, 0, len(g.initMessages)+len(history))
	out = append(out, g.initMessages...)
	return append(out, history...)
}

// invoke asks speaker for a reply, retrying transient failures per the
// retry policy. Exhausted or permanent failures are returned.
func (g *GroupChat) invoke(ctx context.Context, round int, speaker core.Agent, msgs []core.Message) (core.Message, error) {
	for attempt := 1; ; attempt++ {
		reply, err := g.generate(ctx, speaker, msgs)
		if err == nil {
			return reply, nil
		}
		if ctx.Err() != nil {
			return core.Message{}, ctx.Err()
		}
		if !core.IsTransient(err) {
			return core.Message{}, err
		}
		if attempt >= g.retry.MaxAttempts {
			return core.Message{}, fmt.Errorf("giving up after %d attempts: %w", attempt, err)
		}

		delay := g.retry.Delay(attempt, err)
		g.observers.retry(ctx, round, speaker.Name(), attempt, delay, err)
		if err := sleep(ctx, delay); err != nil {
			return core.Message{}, err
		}
	}
}

// generate calls speaker once. A panic becomes a *core.FatalAgentError so it
// is never retried and ends the run like any other agent failure.
func (g *GroupChat) generate(ctx context.Context, speaker core.Agent, msgs []core.Message) (reply core.Message, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &core.FatalAgentError{Agent: speaker.Name(), Err: fmt.Errorf("panic: %v", r)}
			logging.ErrorWithStack(g.logger, err, "groupchat.reply.panic", "speaker", speaker.Name())
		}
	}()
	return speaker.GenerateReply(ctx, msgs, nil)
}

func (g *GroupChat) cancelled(ctx context.Context, history []core.Message, err error) ([]core.Message, error) {
	g.observers.terminate(ctx, ReasonCancelled, history)
	return history, err
}
