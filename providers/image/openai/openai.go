package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/contentplane/aikit/config"
	"github.com/contentplane/aikit/internal/imaging"
	"github.com/contentplane/aikit/internal/utils"
	"github.com/contentplane/aikit/providers/image"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-image-1.5"
	defaultTimeout = 60 * time.Second
)

func init() {
	image.Register("openai", func() image.Provider { return New() })
}

// Provider implements the image capability against the OpenAI Images API:
// the generations endpoint for text-only prompts and the edits endpoint
// when reference images are supplied.
type Provider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New creates an OpenAI image provider configured from the environment.
// Environment variables:
//   - OPENAI_API_KEY: API key
//   - OPENAI_API_BASE_URL: base URL override
func New() *Provider {
	return &Provider{
		apiKey:  config.Get("OPENAI_API_KEY", ""),
		baseURL: config.Get("OPENAI_API_BASE_URL", defaultBaseURL),
		client:  http.DefaultClient,
	}
}

func (p *Provider) WithAPIKey(apiKey string) *Provider {
	p.apiKey = apiKey
	return p
}

func (p *Provider) WithBaseURL(baseURL string) *Provider {
	p.baseURL = strings.TrimSuffix(baseURL, "/")
	return p
}

func (p *Provider) WithHTTPClient(client *http.Client) *Provider {
	p.client = client
	return p
}

// qualityAliases maps legacy quality names onto the values the current
// Images API accepts.
var qualityAliases = map[string]string{
	"standard": "auto",
	"hd":       "high",
}

// Generate produces one image. The API always returns PNG as base64;
// the payload is converted to the requested format before returning, with
// alpha flattened onto white when the target has no transparency.
func (p *Provider) Generate(ctx context.Context, prompt string, opts image.Options) (*image.Result, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is not set")
	}

	format := strings.ToLower(opts.Format)
	if format == "" {
		format = "png"
	}

	model := opts.Model
	if model == "" {
		model = defaultModel
	}

	ctx, cancel := context.WithTimeout(ctx, opts.TimeoutOrDefault(defaultTimeout))
	defer cancel()

	var b64 string
	var err error
	if len(opts.Images) == 0 {
		b64, err = p.generate(ctx, prompt, model, opts)
	} else {
		b64, err = p.edit(ctx, prompt, model, opts)
	}
	if err != nil {
		return nil, err
	}

	pngData, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decoding image payload: %w", err)
	}

	data, err := imaging.ConvertFromPNG(pngData, format)
	if err != nil {
		return nil, err
	}
	if format == "jpeg" {
		format = "jpg"
	}
	return &image.Result{Data: data, Format: format}, nil
}

func (p *Provider) generate(ctx context.Context, prompt, model string, opts image.Options) (string, error) {
	quality := opts.Quality
	if quality == "" {
		quality = "auto"
	}
	if alias, ok := qualityAliases[quality]; ok {
		quality = alias
	}

	body := generationsRequest{
		Model:   model,
		Prompt:  prompt,
		Size:    opts.Resolution(),
		Quality: quality,
		N:       1,
	}

	_, resp, err := utils.DoPostSync[imagesResponse](ctx, p.client, p.baseURL+"/images/generations", p.apiKey, body)
	if err != nil {
		return "", fmt.Errorf("calling OpenAI image generation: %w", err)
	}
	return resp.first()
}

// edit submits the first reference image to the edits endpoint as a
// multipart upload, re-encoded per the alpha policy.
func (p *Provider) edit(ctx context.Context, prompt, model string, opts image.Options) (string, error) {
	encoded, err := imaging.EncodeForUpload(opts.Images[0], false)
	if err != nil {
		return "", err
	}

	fields := map[string]string{
		"model":  model,
		"prompt": prompt,
		"size":   opts.Resolution(),
		"n":      "1",
	}
	files := []utils.MultipartFile{{
		Field:    "image",
		Filename: encoded.Filename,
		Mime:     encoded.Mime,
		Data:     encoded.Data,
	}}

	body, contentType, err := utils.BuildMultipart(fields, files)
	if err != nil {
		return "", err
	}

	res, respBody, err := utils.DoPostRaw(ctx, p.client, p.baseURL+"/images/edits", p.apiKey, contentType, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("calling OpenAI image edits: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", &image.ProviderError{
			Provider: "openai",
			Status:   res.StatusCode,
			Message:  utils.TruncateString(string(respBody), utils.DefaultMaxStringLength),
		}
	}

	var resp imagesResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("invalid JSON returned by OpenAI: %w", err)
	}
	return resp.first()
}

// RemoveBackground is expressed as an edit with a background-removal prompt.
func (p *Provider) RemoveBackground(ctx context.Context, img []byte, opts image.Options) (*image.Result, error) {
	prompt := opts.Prompt
	if prompt == "" {
		prompt = "remove background"
	}
	opts.Images = [][]byte{img}
	return p.Generate(ctx, prompt, opts)
}
