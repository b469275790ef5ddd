// Package model defines the provider-agnostic abstractions and concrete
// helpers for talking to language models from agentchat agents.
//
// Core goals:
//   - Unify streaming + non-streaming generation behind a single interface
//   - Carry per-call generation settings (temperature, max tokens, stop
//     sequences, tools) from the group chat down to the provider
//   - Classify provider failures as core.ProviderError so the orchestrator can
//     retry transient ones
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (openai, anthropic, openaicompat) implement the Model interface so
// agents remain decoupled from vendor SDKs.
package model
