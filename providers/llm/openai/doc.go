// Package openai implements the language model capability against OpenAI's
// Responses API, including inline vision input.
package openai
