// Package llm defines the provider-agnostic language model capability: the
// [ModelExecutor] primitive that every vendor adapter implements, the
// normalized [Inputs]/[Options] pair, and orchestration helpers (Summarize,
// Keywords, Process, ChatCompletions) implemented exactly once on top of the
// primitive. Each adapter's conversion layer maps these types to its own wire
// format, keeping callers decoupled from provider-specific details.
//
// Adapters self-register via [Register]; resolve one by name with [Create]
// or pass an instance through [Resolve]. Unknown names yield nil rather than
// an error.
package llm
