// Package core provides the foundational domain types and contracts shared by
// every agentchat package:
//
//   - Messages (immutable conversation units with a sender and role)
//   - The Agent contract (one reply from an ordered conversation)
//   - GenerateOptions and FunctionContract (per-call generation settings)
//   - The error taxonomy used by the orchestrator (validation, workflow
//     exhaustion, speaker resolution, provider and fatal agent errors)
//   - The TerminateToken sentinel that ends a conversation
//
// The package keeps implementation concerns (model providers, middleware,
// orchestration) out of scope and exposes small interfaces so concrete agents can
// live anywhere.
package core
