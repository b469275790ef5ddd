package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hupe1980/agentchat"
	"github.com/hupe1980/agentchat/core"
	"github.com/hupe1980/agentchat/groupchat"
	"github.com/hupe1980/agentchat/logging"
	"github.com/hupe1980/agentchat/metrics"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a group chat and print the transcript",
	Long: `Loads a group chat definition, runs it and prints every message.

The seed comes from the definition; --message appends an unattributed user
message, which makes the first agent open the conversation.

Examples:
  agentchat run --config review.yaml
  agentchat run --config review.yaml --message "Refactor the parser" --max-round 8
  agentchat run --config review.yaml --logger zap --metrics-addr :9090`,
	RunE: runChat,
}

var (
	runConfig      string
	runMessage     string
	runMaxRound    int
	runLogger      string
	runLogLevel    string
	runMetricsAddr string
	runTimeout     time.Duration
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runConfig, "config", "c", "", "Group chat definition (YAML)")
	runCmd.Flags().StringVarP(&runMessage, "message", "m", "", "Opening user message appended to the seed")
	runCmd.Flags().IntVar(&runMaxRound, "max-round", -1, "Round budget, overrides max_round when >= 0")
	runCmd.Flags().StringVar(&runLogger, "logger", "slog", "Logger backend: slog, zap or none")
	runCmd.Flags().StringVar(&runLogLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	runCmd.Flags().StringVar(&runMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "Abort the run after this duration (0 = no limit)")
	_ = runCmd.MarkFlagRequired("config")
}

func runChat(cmd *cobra.Command, _ []string) error {
	logger, closeLogger, err := newLogger(runLogger, logging.ParseLevel(runLogLevel))
	if err != nil {
		return err
	}
	defer closeLogger()

	var observers []groupchat.Observer
	if runMetricsAddr != "" {
		reg := prometheus.NewRegistry()
		obs, err := metrics.NewObserver(reg)
		if err != nil {
			return err
		}
		observers = append(observers, obs)

		stop := serveMetrics(runMetricsAddr, reg, logger)
		defer stop()
	}

	mesh := agentchat.New(func(o *agentchat.Options) {
		o.Logger = logger
		o.Observers = observers
	})

	chat, cfg, err := mesh.Load(runConfig)
	if err != nil {
		return err
	}

	seed := cfg.SeedMessages()
	if runMessage != "" {
		seed = append(seed, core.NewTextMessage(core.RoleUser, runMessage, ""))
	}
	maxRound := cfg.MaxRound
	if runMaxRound >= 0 {
		maxRound = runMaxRound
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()
	if runTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, runTimeout)
		defer cancel()
	}

	history, err := mesh.Run(ctx, chat, seed, maxRound)
	printTranscript(cmd.OutOrStdout(), history)
	if err != nil {
		return fmt.Errorf("run %s: %w", cfg.Name, err)
	}
	return nil
}

func newLogger(backend string, level logging.LogLevel) (logging.Logger, func(), error) {
	switch backend {
	case "slog", "":
		return logging.NewSlogLogger(level, "text", false), func() {}, nil
	case "zap":
		z, err := logging.NewZapLogger(level)
		if err != nil {
			return nil, nil, err
		}
		return z, func() { _ = z.Sync() }, nil
	case "none":
		return logging.NoOpLogger{}, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown logger %q (want slog, zap or none)", backend)
	}
}

// serveMetrics exposes reg on addr/metrics until the returned func is called.
func serveMetrics(addr string, reg *prometheus.Registry, logger logging.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics.server.error", "addr", addr, "error", err.Error())
		}
	}()
	logger.Info("metrics.server.started", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func printTranscript(w io.Writer, history []core.Message) {
	for _, msg := range history {
		from := msg.From
		if from == "" {
			from = string(msg.Role)
		}
		fmt.Fprintf(w, "[%s]\n%s\n\n", from, strings.TrimSpace(msg.Text()))
	}
}
