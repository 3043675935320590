// Package jsonschema defines the JSON Schema subset passed to language model
// adapters when callers request schema-constrained output. Enforcement is
// prompt-level only: the schema is pretty-printed into strict formatting
// instructions ahead of the caller's prompt.
package jsonschema
