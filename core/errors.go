package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrValidation is matched (errors.Is) by every *ValidationError.
	ErrValidation = errors.New("validation error")

	// ErrWorkflowExhausted is returned when no transition leaves the current speaker.
	ErrWorkflowExhausted = errors.New("no next available agents found in the current workflow")

	// ErrNoNextSpeaker signals that speaker selection produced no speaker.
	ErrNoNextSpeaker = errors.New("no next speaker")

	// ErrUnknownSender is returned when a seed message names a sender outside the chat.
	ErrUnknownSender = errors.New("sender is not a member of the group chat")
)

// ValidationError reports a malformed group chat or workflow construction.
type ValidationError struct {
	Field   string `json:"field"`   // Offending field or element
	Value   any    `json:"value"`   // Value that was provided
	Message string `json:"message"` // Human-readable reason
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Message
	}
	return fmt.Sprintf("validation error for '%s': %s", e.Field, e.Message)
}

// Is makes errors.Is(err, ErrValidation) true for every ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError creates a ValidationError.
func NewValidationError(field string, value any, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)}
}

// SpeakerResolutionError reports an arbitration reply that named no candidate.
type SpeakerResolutionError struct {
	Reply      string   // Raw arbitration reply text
	Name       string   // Parsed name ("" when the convention was not followed)
	Candidates []string // Names that were acceptable
}

func (e *SpeakerResolutionError) Error() string {
	return fmt.Sprintf("speaker %q not found among candidates [%s]", e.Name, strings.Join(e.Candidates, ", "))
}

// ProviderError wraps a failure reported by a model provider. Transient is
// decided by the collaborator (e.g. from the HTTP status) and drives retries.
type ProviderError struct {
	Provider   string        // e.g. "openai", "anthropic"
	StatusCode int           // HTTP status if known, 0 otherwise
	Transient  bool          // Safe to retry (throttling, overload, timeouts)
	RetryAfter time.Duration // Server supplied backoff hint, 0 if absent
	Err        error
}

func (e *ProviderError) Error() string {
	msg := "provider error"
	if e.Provider != "" {
		msg = e.Provider + " error"
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsTransient implements the transient classification contract.
func (e *ProviderError) IsTransient() bool { return e.Transient }

// NewProviderError builds a ProviderError classifying the status code with
// TransientStatus.
func NewProviderError(provider string, statusCode int, err error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		StatusCode: statusCode,
		Transient:  TransientStatus(statusCode),
		Err:        err,
	}
}

// TransientStatus reports whether an HTTP status denotes a retryable condition:
// throttling, timeouts, conflicts and server side failures (including the 529
// "overloaded" status some providers use).
func TransientStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout, http.StatusConflict, http.StatusTooManyRequests:
		return true
	}
	return code >= 500
}

// FatalAgentError marks a non-retryable agent failure.
type FatalAgentError struct {
	Agent string
	Err   error
}

func (e *FatalAgentError) Error() string {
	if e.Agent == "" {
		return fmt.Sprintf("fatal agent error: %v", e.Err)
	}
	return fmt.Sprintf("agent %s failed: %v", e.Agent, e.Err)
}

func (e *FatalAgentError) Unwrap() error { return e.Err }

// IsTransient is always false; a fatal error is never retried even when it
// wraps a transient cause.
func (e *FatalAgentError) IsTransient() bool { return false }

// IsTransient reports whether err (or anything it wraps) declares itself
// transient through an IsTransient() bool method.
func IsTransient(err error) bool {
	var t interface{ IsTransient() bool }
	if errors.As(err, &t) {
		return t.IsTransient()
	}
	return false
}

// RetryAfter extracts a server supplied retry hint from err, if any.
func RetryAfter(err error) time.Duration {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.RetryAfter
	}
	return 0
}
