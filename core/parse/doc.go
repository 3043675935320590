// Package parse turns language model text output into typed Go values.
// Strict JSON unmarshaling is attempted first; when it fails the content is
// repaired with jsonrepair and retried once, which recovers the near-JSON
// that models commonly emit without weakening the caller's type requirements.
package parse
