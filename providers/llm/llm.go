package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/contentplane/aikit/internal/jsonschema"
)

// Response format hints recognized by all adapters. Enforcement is
// prompt-level only; see [FormatPrompt].
const (
	FormatJSON       = "json"
	FormatJSONSchema = "json_schema"
)

// ErrInvalidResponse is returned when a model was required to produce a JSON
// object and did not.
var ErrInvalidResponse = errors.New("model did not return valid JSON")

// Inputs is the normalized multimodal input bag passed to ExecuteModel.
// Text and Images are supported today; the remaining slices are reserved for
// providers that grow those modalities.
type Inputs struct {
	Text   string
	Images [][]byte
	PDFs   [][]byte
	Audio  [][]byte
	Video  [][]byte
}

// Options configures a single model invocation. The zero value is usable;
// adapters apply their own defaults for unset fields.
type Options struct {
	Model       string
	Temperature *float64 // nil means the adapter default (0.5)
	MaxTokens   int      // 0 means the adapter default (3000)
	Timeout     time.Duration

	// ResponseFormat is [FormatJSON] or [FormatJSONSchema]; empty means free
	// text. Schema is only consulted for FormatJSONSchema.
	ResponseFormat string
	Schema         *jsonschema.Schema
}

// TemperatureOrDefault returns the configured temperature or def when unset.
func (o Options) TemperatureOrDefault(def float64) float64 {
	if o.Temperature != nil {
		return *o.Temperature
	}
	return def
}

// MaxTokensOrDefault returns the configured token limit or def when unset.
func (o Options) MaxTokensOrDefault(def int) int {
	if o.MaxTokens > 0 {
		return o.MaxTokens
	}
	return def
}

// TimeoutOrDefault returns the configured timeout or def when unset.
func (o Options) TimeoutOrDefault(def time.Duration) time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return def
}

// Temp is a convenience for building Options with a literal temperature.
func Temp(t float64) *float64 { return &t }

// ModelExecutor is the single primitive every language model adapter must
// implement. One call performs exactly one outbound request; it must not
// batch, retry, or stream. All orchestration (summaries, keyword expansion,
// observation extraction) is built on top of this interface and never
// reimplemented per adapter.
type ModelExecutor interface {
	ExecuteModel(ctx context.Context, prompt string, inputs Inputs, opts Options) (string, error)
}

// ChatMessage is one entry of the legacy chat-completions message list.
type ChatMessage struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// ChatChoice wraps a message in the legacy envelope shape.
type ChatChoice struct {
	Message ChatMessage `json:"message"`
}

// ChatEnvelope is the legacy chat-completions response shape, kept for
// callers that predate ExecuteModel.
type ChatEnvelope struct {
	Choices []ChatChoice `json:"choices"`
}

// Text returns the content of the first choice, or "".
func (e *ChatEnvelope) Text() string {
	if e == nil || len(e.Choices) == 0 {
		return ""
	}
	return e.Choices[0].Message.Content
}

// ChatCompletions is the backward-compatible wrapper over ExecuteModel.
// Messages are flattened into a (prompt, inputs) pair: system messages form
// the prompt, everything else becomes the input text in order. Exactly one
// ExecuteModel call is made; this function never performs its own I/O.
func ChatCompletions(ctx context.Context, exec ModelExecutor, messages []ChatMessage, opts Options) (*ChatEnvelope, error) {
	var system, rest []string
	for _, m := range messages {
		if m.Role == "system" {
			system = append(system, m.Content)
		} else if m.Content != "" {
			rest = append(rest, m.Content)
		}
	}

	text, err := exec.ExecuteModel(ctx, strings.Join(system, "\n\n"), Inputs{Text: strings.Join(rest, "\n\n")}, opts)
	if err != nil {
		return nil, err
	}

	return &ChatEnvelope{Choices: []ChatChoice{{
		Message: ChatMessage{Role: "assistant", Content: text},
	}}}, nil
}
