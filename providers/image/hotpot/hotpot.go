package hotpot

import (
	"bytes"
	"context"
	"encoding/base64"
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
	defaultBaseURL = "https://api.hotpot.ai"
	defaultTimeout = 60 * time.Second
)

func init() {
	image.Register("hotpot", func() image.Provider { return New() })
}

// Provider implements the image capability against the Hotpot AI API:
// make-art for generation and remove-background for cut-outs. Both
// endpoints take multipart form data and answer with raw image bytes.
type Provider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New creates a Hotpot provider configured from the environment.
// Environment variables:
//   - HOTPOT_API_KEY: API key
//   - HOTPOT_API_BASE_URL: base URL override
func New() *Provider {
	return &Provider{
		apiKey:  config.Get("HOTPOT_API_KEY", ""),
		baseURL: config.Get("HOTPOT_API_BASE_URL", defaultBaseURL),
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

// Generate produces an image from a text prompt via make-art. Hotpot always
// returns PNG. Vendor knobs (styleId, seedImage, negativePrompt,
// promptStrength, isRandom, isTile) pass through Extra.
func (p *Provider) Generate(ctx context.Context, prompt string, opts image.Options) (*image.Result, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("Hotpot API key is not set")
	}

	fields := map[string]string{
		"inputText": prompt,
		"styleId":   "default",
	}
	for _, key := range []string{"styleId", "seedImage", "negativePrompt", "promptStrength", "isRandom", "isTile"} {
		if v := opts.Extra[key]; v != "" {
			fields[key] = v
		}
	}

	data, err := p.post(ctx, "/make-art", fields, nil, opts)
	if err != nil {
		return nil, err
	}
	return &image.Result{Data: data, Format: "png"}, nil
}

// RemoveBackground uploads the image to remove-background, re-encoded per
// the alpha policy (a requested PNG output forces a PNG upload). A
// background image in Extra is attached as a file part when it is base64,
// or passed as backgroundUrl when it is a URL.
func (p *Provider) RemoveBackground(ctx context.Context, img []byte, opts image.Options) (*image.Result, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("Hotpot API key is not set")
	}

	format := strings.ToLower(opts.Format)
	if format == "" {
		format = "png"
	}

	encoded, err := imaging.EncodeForUpload(img, format == "png")
	if err != nil {
		return nil, err
	}

	fields := make(map[string]string)
	for _, key := range []string{"backgroundColor", "compressionFactor", "returnAlpha"} {
		if v := opts.Extra[key]; v != "" {
			fields[key] = v
		}
	}

	files := []utils.MultipartFile{{
		Field:    "image",
		Filename: "input." + encoded.Format,
		Mime:     encoded.Mime,
		Data:     encoded.Data,
	}}

	if bg := opts.Extra["backgroundImage"]; bg != "" {
		if raw, err := base64.StdEncoding.DecodeString(bg); err == nil {
			files = append(files, utils.MultipartFile{
				Field:    "backgroundImage",
				Filename: "bg.png",
				Mime:     "image/png",
				Data:     raw,
			})
		} else {
			fields["backgroundUrl"] = bg
		}
	}

	data, err := p.post(ctx, "/remove-background", fields, files, opts)
	if err != nil {
		return nil, err
	}
	return &image.Result{Data: data, Format: encoded.Format}, nil
}

// post sends a multipart request and returns the binary image response.
// Hotpot authenticates with the bare key in the Authorization header.
func (p *Provider) post(ctx context.Context, path string, fields map[string]string, files []utils.MultipartFile, opts image.Options) ([]byte, error) {
	body, contentType, err := utils.BuildMultipart(fields, files)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, opts.TimeoutOrDefault(defaultTimeout))
	defer cancel()

	res, respBody, err := utils.DoPostRaw(ctx, p.client, p.baseURL+path, "", contentType, bytes.NewReader(body),
		utils.HeaderOption{Key: "Authorization", Value: p.apiKey})
	if err != nil {
		return nil, fmt.Errorf("calling Hotpot: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 || !imaging.IsImage(respBody) {
		return nil, &image.ProviderError{
			Provider: "hotpot",
			Status:   res.StatusCode,
			Message:  utils.TruncateString(string(respBody), utils.DefaultMaxStringLength),
		}
	}
	return respBody, nil
}
