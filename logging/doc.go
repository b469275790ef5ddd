// Package logging provides a minimal logging interface and adapters for agentchat.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that group chats, middleware and agents use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - ZapAdapter wrapping a *zap.Logger
//   - ChatLogger with run / component context and round helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	chat, err := groupchat.New(members, groupchat.WithLogger(logger), groupchat.WithAdmin(admin))
//
// The interface stays minimal to avoid vendor lock-in while supporting
// structured logging where available.
package logging
