// Package aikit is a provider-agnostic facade over third-party AI services
// for content platforms: image generation and background removal, LLM chat
// and structured extraction, and audio transcription.
//
// Each capability lives in its own package under providers/ with a stable
// normalized contract; vendor adapters register themselves on import, so
// importing this root package makes every bundled adapter resolvable by
// name:
//
//	exec := aikit.LLM("openai")
//	text, err := exec.ExecuteModel(ctx, "Say hello", llm.Inputs{}, llm.Options{})
//
// Callers that want only a subset of vendors can blank-import individual
// adapter packages instead.
package aikit
