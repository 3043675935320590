package jsonschema

import (
	"encoding/json"
)

// Schema represents the subset of JSON Schema used when asking a model for
// schema-constrained output. It is embedded pretty-printed into the prompt;
// no provider-native structured-output mode is assumed.
type Schema struct {
	// Type specifies the data type (e.g. "object", "array", "string", "number")
	Type        string   `json:"type,omitempty"`
	Description string   `json:"description,omitempty"`
	Required    []string `json:"required,omitempty"`
	// Properties of the object, each with its own schema
	Properties map[string]*Schema `json:"properties,omitempty"`
	// For array types, defines the schema of items in the array
	Items *Schema `json:"items,omitempty"`
	// Enum contains the list of allowed values
	Enum []any `json:"enum,omitempty"`
	// Default value
	Default any `json:"default,omitempty"`
	// Minimum/Maximum bound numeric values when set
	Minimum *float64 `json:"minimum,omitempty"`
	Maximum *float64 `json:"maximum,omitempty"`
	// MaxItems bounds array lengths when set
	MaxItems *int `json:"maxItems,omitempty"`
}

// Pretty returns the schema as indented JSON for embedding into prompts.
// Marshalling a Schema cannot fail; the error path is kept for safety and
// returns "{}".
func (s *Schema) Pretty() string {
	if s == nil {
		return "{}"
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}
