package groupchat

import (
	"context"
	"time"

	"github.com/hupe1980/agentchat/core"
	"github.com/hupe1980/agentchat/logging"
)

// Reason explains why a run stopped.
type Reason string

const (
	ReasonTerminateMessage Reason = "terminate_message" // A reply carried the sentinel
	ReasonNoNextSpeaker    Reason = "no_next_speaker"   // Selection produced nobody
	ReasonAgentError       Reason = "agent_error"       // A speaker failed for good
	ReasonMaxRound         Reason = "max_round"         // Round budget used up
	ReasonCancelled        Reason = "cancelled"         // ctx was cancelled
)

// Observer is notified of run progress. Callbacks run synchronously on the
// run's goroutine and must not retain or modify the history slice.
type Observer interface {
	OnRoundStart(ctx context.Context, round int, speaker string)
	OnMessage(ctx context.Context, round int, msg core.Message, elapsed time.Duration)
	OnRetry(ctx context.Context, round int, speaker string, attempt int, delay time.Duration, err error)
	OnTerminate(ctx context.Context, reason Reason, history []core.Message)
}

// BaseObserver implements Observer with no-ops. Embed it to override only
// the callbacks you need.
type BaseObserver struct{}

func (BaseObserver) OnRoundStart(context.Context, int, string)                       {}
func (BaseObserver) OnMessage(context.Context, int, core.Message, time.Duration)     {}
func (BaseObserver) OnRetry(context.Context, int, string, int, time.Duration, error) {}
func (BaseObserver) OnTerminate(context.Context, Reason, []core.Message)             {}

// LogObserver writes run progress to a logging.Logger.
type LogObserver struct {
	logger logging.Logger
}

// NewLogObserver creates a LogObserver.
func NewLogObserver(logger logging.Logger) *LogObserver {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &LogObserver{logger: logger}
}

// OnRoundStart implements Observer.
func (o *LogObserver) OnRoundStart(_ context.Context, round int, speaker string) {
	logging.LogRound(o.logger, round, speaker)
}

// OnMessage implements Observer.
func (o *LogObserver) OnMessage(_ context.Context, _ int, msg core.Message, elapsed time.Duration) {
	logging.LogReply(o.logger, msg.From, elapsed, msg.IsTerminal(), nil)
}

// OnRetry implements Observer.
func (o *LogObserver) OnRetry(_ context.Context, _ int, speaker string, attempt int, delay time.Duration, err error) {
	logging.LogRetry(o.logger, speaker, attempt, delay, err)
}

// OnTerminate implements Observer.
func (o *LogObserver) OnTerminate(_ context.Context, reason Reason, history []core.Message) {
	o.logger.Info("groupchat.run.terminated", "reason", string(reason), "messages", len(history))
}

// observers fans a notification out to every registered Observer.
type observers []Observer

func (os observers) roundStart(ctx context.Context, round int, speaker string) {
	for _, o := range os {
		o.OnRoundStart(ctx, round, speaker)
	}
}

func (os observers) message(ctx context.Context, round int, msg core.Message, elapsed time.Duration) {
	for _, o := range os {
		o.OnMessage(ctx, round, msg, elapsed)
	}
}

func (os observers) retry(ctx context.Context, round int, speaker string, attempt int, delay time.Duration, err error) {
	for _, o := range os {
		o.OnRetry(ctx, round, speaker, attempt, delay, err)
	}
}

func (os observers) terminate(ctx context.Context, reason Reason, history []core.Message) {
	for _, o := range os {
		o.OnTerminate(ctx, reason, history)
	}
}
