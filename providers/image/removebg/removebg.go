package removebg

import (
	"bytes"
	"context"
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
	defaultBaseURL = "https://api.remove.bg/v1.0"
	defaultTimeout = 60 * time.Second
)

func init() {
	image.Register("removebg", func() image.Provider { return New() })
}

// Provider implements background removal against the Remove.bg API.
// Remove.bg is a single-purpose service; Generate is not supported.
type Provider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New creates a Remove.bg provider configured from the environment.
// Environment variables:
//   - REMOVEBG_API_KEY: API key
//   - REMOVEBG_API_BASE_URL: base URL override
func New() *Provider {
	return &Provider{
		apiKey:  config.Get("REMOVEBG_API_KEY", ""),
		baseURL: config.Get("REMOVEBG_API_BASE_URL", defaultBaseURL),
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

// Generate is not offered by Remove.bg.
func (p *Provider) Generate(ctx context.Context, prompt string, opts image.Options) (*image.Result, error) {
	return nil, image.ErrUnsupported
}

// RemoveBackground uploads the image as multipart form data and returns the
// cut-out. The upload format follows the alpha policy, except that a
// requested (or defaulted) PNG output forces a PNG upload so transparency
// survives the round trip. The response body is either raw image bytes or a
// JSON envelope with an errors array.
func (p *Provider) RemoveBackground(ctx context.Context, img []byte, opts image.Options) (*image.Result, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("Remove.bg API key is not set")
	}

	requested := strings.ToLower(opts.Format)
	if requested == "" {
		requested = "auto"
	}

	forcePNG := requested == "png" || requested == "auto"
	encoded, err := imaging.EncodeForUpload(img, forcePNG)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{
		"size":   extraOr(opts, "size", "auto"),
		"type":   extraOr(opts, "type", "auto"),
		"format": encoded.Format,
	}
	if v := opts.Extra["bg_color"]; v != "" {
		fields["bg_color"] = v
	}
	if v := opts.Extra["bg_image_url"]; v != "" {
		fields["bg_image_url"] = v
	}

	files := []utils.MultipartFile{{
		Field:    "image_file",
		Filename: encoded.Filename,
		Mime:     encoded.Mime,
		Data:     encoded.Data,
	}}

	body, contentType, err := utils.BuildMultipart(fields, files)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, opts.TimeoutOrDefault(defaultTimeout))
	defer cancel()

	res, respBody, err := utils.DoPostRaw(ctx, p.client, p.baseURL+"/removebg", "", contentType, bytes.NewReader(body),
		utils.HeaderOption{Key: "X-Api-Key", Value: p.apiKey})
	if err != nil {
		return nil, fmt.Errorf("calling Remove.bg: %w", err)
	}

	if imaging.IsImage(respBody) {
		return &image.Result{Data: respBody, Format: encoded.Format}, nil
	}

	return nil, &image.ProviderError{
		Provider: "removebg",
		Status:   res.StatusCode,
		Message:  errorMessage(respBody),
	}
}

// errorMessage flattens the Remove.bg errors array into one message.
func errorMessage(body []byte) string {
	var envelope struct {
		Errors []struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Errors) == 0 {
		return "unknown error"
	}
	messages := make([]string, 0, len(envelope.Errors))
	for _, e := range envelope.Errors {
		title := e.Title
		if title == "" {
			title = "Unknown"
		}
		messages = append(messages, fmt.Sprintf("%s: %s", title, e.Detail))
	}
	return strings.Join(messages, ",\n")
}

func extraOr(opts image.Options, key, fallback string) string {
	if v := opts.Extra[key]; v != "" {
		return v
	}
	return fallback
}
