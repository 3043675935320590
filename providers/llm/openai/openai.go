package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/contentplane/aikit/config"
	"github.com/contentplane/aikit/internal/imaging"
	"github.com/contentplane/aikit/internal/utils"
	"github.com/contentplane/aikit/providers/llm"
)

const (
	defaultBaseURL   = "https://api.openai.com/v1"
	responsesPath    = "/responses"
	defaultModel     = "gpt-4.1-mini"
	defaultTimeout   = 300 * time.Second
	defaultMaxTokens = 3000
)

func init() {
	llm.Register("openai", func() llm.ModelExecutor { return New() })
}

// Executor implements the llm.ModelExecutor interface against OpenAI's
// Responses API.
type Executor struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New creates an OpenAI executor configured from the environment.
// Environment variables:
//   - OPENAI_API_KEY: API key for authentication
//   - OPENAI_API_BASE_URL: base URL override (optional)
func New() *Executor {
	return &Executor{
		apiKey:  config.Get("OPENAI_API_KEY", ""),
		baseURL: config.Get("OPENAI_API_BASE_URL", defaultBaseURL),
		client:  &http.Client{},
	}
}

// WithAPIKey sets the API key for the executor.
func (e *Executor) WithAPIKey(apiKey string) *Executor {
	e.apiKey = apiKey
	return e
}

// WithBaseURL overrides the default base URL for API requests.
func (e *Executor) WithBaseURL(baseURL string) *Executor {
	e.baseURL = baseURL
	return e
}

// WithHTTPClient sets the HTTP client used for outbound requests.
func (e *Executor) WithHTTPClient(client *http.Client) *Executor {
	e.client = client
	return e
}

// ExecuteModel performs exactly one Responses API call. Inline images are
// re-encoded per the shared upload policy (PNG when transparent, JPEG at
// quality 85 otherwise, never WebP); undecodable images are skipped.
func (e *Executor) ExecuteModel(ctx context.Context, prompt string, inputs llm.Inputs, opts llm.Options) (string, error) {
	if e.apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY is not set")
	}

	content := []contentPart{{Type: "input_text", Text: llm.FormatPrompt(prompt, opts)}}

	if inputs.Text != "" {
		content = append(content, contentPart{Type: "input_text", Text: inputs.Text})
	}

	for _, img := range inputs.Images {
		encoded, err := imaging.EncodeForUpload(img, false)
		if err != nil {
			continue
		}
		content = append(content, contentPart{
			Type:     "input_image",
			ImageURL: "data:" + encoded.Mime + ";base64," + base64.StdEncoding.EncodeToString(encoded.Data),
		})
	}

	model := opts.Model
	if model == "" {
		model = defaultModel
	}

	payload := responsesRequest{
		Model:           model,
		Input:           []inputItem{{Role: "user", Content: content}},
		MaxOutputTokens: opts.MaxTokensOrDefault(defaultMaxTokens),
		Temperature:     opts.TemperatureOrDefault(0.5),
	}

	ctx, cancel := context.WithTimeout(ctx, opts.TimeoutOrDefault(defaultTimeout))
	defer cancel()

	httpResponse, resp, err := utils.DoPostSync[responsesResponse](ctx, e.client, e.baseURL+responsesPath, e.apiKey, payload)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", fmt.Errorf("empty response from OpenAI API: %s", httpResponse.Status)
	}

	return resp.text(), nil
}
