// Package metrics exports group chat activity as Prometheus metrics through
// a groupchat.Observer.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/agentchat/core"
	"github.com/hupe1980/agentchat/groupchat"
)

const namespace = "agentchat"

// Observer counts rounds, messages, retries and terminations.
type Observer struct {
	groupchat.BaseObserver

	rounds       *prometheus.CounterVec
	messages     *prometheus.CounterVec
	replySeconds *prometheus.HistogramVec
	retries      *prometheus.CounterVec
	terminations *prometheus.CounterVec
	runLength    prometheus.Histogram
}

// NewObserver creates an Observer and registers its collectors with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewObserver(reg prometheus.Registerer) (*Observer, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	o := &Observer{
		rounds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rounds_total",
				Help:      "Total number of rounds started, by speaker",
			},
			[]string{"speaker"},
		),
		messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_total",
				Help:      "Total number of messages appended to conversations",
			},
			[]string{"sender", "kind"},
		),
		replySeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "reply_duration_seconds",
				Help:      "Time taken by a speaker to produce a reply, retries included",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"sender"},
		),
		retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "retries_total",
				Help:      "Total number of retried replies after transient provider errors",
			},
			[]string{"speaker"},
		),
		terminations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "terminations_total",
				Help:      "Total number of finished runs, by reason",
			},
			[]string{"reason"}, // terminate_message, no_next_speaker, agent_error, max_round, cancelled
		),
		runLength: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_messages",
				Help:      "Number of messages in the history returned by a run",
				Buckets:   prometheus.LinearBuckets(0, 5, 10),
			},
		),
	}

	for _, c := range []prometheus.Collector{o.rounds, o.messages, o.replySeconds, o.retries, o.terminations, o.runLength} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// OnRoundStart implements groupchat.Observer.
func (o *Observer) OnRoundStart(_ context.Context, _ int, speaker string) {
	o.rounds.WithLabelValues(speaker).Inc()
}

// OnMessage implements groupchat.Observer.
func (o *Observer) OnMessage(_ context.Context, _ int, msg core.Message, elapsed time.Duration) {
	o.messages.WithLabelValues(msg.From, string(msg.Kind)).Inc()
	if elapsed > 0 {
		o.replySeconds.WithLabelValues(msg.From).Observe(elapsed.Seconds())
	}
}

// OnRetry implements groupchat.Observer.
func (o *Observer) OnRetry(_ context.Context, _ int, speaker string, _ int, _ time.Duration, _ error) {
	o.retries.WithLabelValues(speaker).Inc()
}

// OnTerminate implements groupchat.Observer.
func (o *Observer) OnTerminate(_ context.Context, reason groupchat.Reason, history []core.Message) {
	o.terminations.WithLabelValues(string(reason)).Inc()
	o.runLength.Observe(float64(len(history)))
}

// Handler returns an HTTP handler exposing the metrics gathered by g.
// A nil g uses prometheus.DefaultGatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
