// Package gemini implements the language model capability against Google's
// Gemini generateContent API, including inline vision input. All text parts
// of the first candidate are concatenated into the normalized output.
package gemini
