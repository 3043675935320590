package gemini

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
	defaultBaseURL   = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel     = "gemini-2.0-flash"
	defaultTimeout   = 300 * time.Second
	defaultMaxTokens = 3000
)

func init() {
	llm.Register("gemini", func() llm.ModelExecutor { return New() })
}

// Executor implements the llm.ModelExecutor interface for Google's Gemini
// API.
type Executor struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New creates a Gemini executor configured from the environment.
// Environment variables:
//   - GEMINI_API_KEY: API key for authentication
//   - GEMINI_API_BASE_URL: base URL override (optional)
func New() *Executor {
	return &Executor{
		apiKey:  config.Get("GEMINI_API_KEY", ""),
		baseURL: config.Get("GEMINI_API_BASE_URL", defaultBaseURL),
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

// ExecuteModel performs exactly one generateContent call. Inline images
// follow the shared upload policy (PNG if transparent, JPEG at quality 85
// otherwise); undecodable images are skipped.
func (e *Executor) ExecuteModel(ctx context.Context, prompt string, inputs llm.Inputs, opts llm.Options) (string, error) {
	if e.apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY is not set")
	}

	parts := []part{{Text: llm.FormatPrompt(prompt, opts)}}

	if inputs.Text != "" {
		parts = append(parts, part{Text: inputs.Text})
	}

	for _, img := range inputs.Images {
		encoded, err := imaging.EncodeForUpload(img, false)
		if err != nil {
			continue
		}
		parts = append(parts, part{InlineData: &inlineData{
			MimeType: encoded.Mime,
			Data:     base64.StdEncoding.EncodeToString(encoded.Data),
		}})
	}

	model := opts.Model
	if model == "" {
		model = defaultModel
	}

	payload := generateContentRequest{
		Contents: []content{{Role: "user", Parts: parts}},
		GenerationConfig: &generationConfig{
			Temperature:     opts.TemperatureOrDefault(0.5),
			MaxOutputTokens: opts.MaxTokensOrDefault(defaultMaxTokens),
		},
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", e.baseURL, model)

	ctx, cancel := context.WithTimeout(ctx, opts.TimeoutOrDefault(defaultTimeout))
	defer cancel()

	// Gemini authenticates with its own header instead of a Bearer token.
	httpResponse, resp, err := utils.DoPostSync[generateContentResponse](
		ctx, e.client, url, "", payload,
		utils.HeaderOption{Key: "x-goog-api-key", Value: e.apiKey},
	)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", fmt.Errorf("empty response from Gemini API: %s", httpResponse.Status)
	}

	return resp.text(), nil
}
