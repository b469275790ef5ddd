// Package agent contains concrete reply-generating agents that plug into a
// group chat through the core.Agent contract:
//
//  1. Identity plumbing (BaseAgent)
//  2. Model-centric conversational agent (ModelAgent)
//  3. Composition helpers that count as one participant (SequentialAgent, LoopAgent)
//
// A ModelAgent prompts a model.Model with an instruction (static, templated or
// computed per call), a bounded window of the conversation and the merged
// generation options. Tool calling is layered on with middleware.FunctionCall
// rather than built into the agent.
package agent
