package ideogram

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
	defaultBaseURL = "https://api.ideogram.ai"
	defaultTimeout = 60 * time.Second
)

func init() {
	image.Register("ideogram", func() image.Provider { return New() })
}

// Provider implements image generation and editing against the Ideogram v3
// API. Requests are multipart; responses carry a URL the result must be
// fetched from in a second request.
type Provider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New creates an Ideogram provider configured from the environment.
// Environment variables:
//   - IDEOGRAM_API_KEY: API key
//   - IDEOGRAM_API_BASE_URL: base URL override
func New() *Provider {
	return &Provider{
		apiKey:  config.Get("IDEOGRAM_API_KEY", ""),
		baseURL: config.Get("IDEOGRAM_API_BASE_URL", defaultBaseURL),
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

// Generate produces an image. A transparent background selects the
// generate-transparent endpoint; everything else goes through generate.
// Character reference images attach per the alpha policy, capped at
// image.MaxReferenceImages, each with an optional always-PNG mask keyed
// "mask0", "mask1", ... in Extra.
func (p *Provider) Generate(ctx context.Context, prompt string, opts image.Options) (*image.Result, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("Ideogram API key is not set")
	}

	endpoint := "/v1/ideogram-v3/generate"
	if opts.Background == "transparent" {
		endpoint = "/v1/ideogram-v3/generate-transparent"
	}

	fields := p.baseFields(prompt, opts)
	fields["resolution"] = opts.Resolution()
	if v := opts.Extra["negative_prompt"]; v != "" {
		fields["negative_prompt"] = v
	}

	var files []utils.MultipartFile
	refs := opts.Images
	if len(refs) > image.MaxReferenceImages {
		refs = refs[:image.MaxReferenceImages]
	}
	for i, ref := range refs {
		encoded, err := imaging.EncodeForUpload(ref, false)
		if err != nil {
			continue
		}
		files = append(files, utils.MultipartFile{
			Field:    fmt.Sprintf("character_reference_images[%d]", i),
			Filename: encoded.Filename,
			Mime:     encoded.Mime,
			Data:     encoded.Data,
		})

		if maskInput := opts.Extra[fmt.Sprintf("mask%d", i)]; maskInput != "" {
			mask, err := imaging.EncodeForUpload([]byte(maskInput), true)
			if err != nil {
				continue
			}
			files = append(files, utils.MultipartFile{
				Field:    fmt.Sprintf("character_reference_images_mask[%d]", i),
				Filename: "mask.png",
				Mime:     "image/png",
				Data:     mask.Data,
			})
		}
	}

	return p.post(ctx, endpoint, fields, files, opts)
}

// Edit regenerates the masked region of an image. The main image uploads as
// PNG whenever a mask is present so its alpha survives; the mask itself is
// always PNG. A nil mask edits the whole image.
func (p *Provider) Edit(ctx context.Context, img, mask []byte, prompt string, opts image.Options) (*image.Result, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("Ideogram API key is not set")
	}

	fields := p.baseFields(prompt, opts)

	main, err := imaging.EncodeForUpload(img, len(mask) > 0)
	if err != nil {
		return nil, err
	}
	files := []utils.MultipartFile{{
		Field:    "image",
		Filename: main.Filename,
		Mime:     main.Mime,
		Data:     main.Data,
	}}

	if len(mask) > 0 {
		encodedMask, err := imaging.EncodeForUpload(mask, true)
		if err != nil {
			return nil, err
		}
		files = append(files, utils.MultipartFile{
			Field:    "mask",
			Filename: "mask.png",
			Mime:     "image/png",
			Data:     encodedMask.Data,
		})
	}

	return p.post(ctx, "/v1/ideogram-v3/edit", fields, files, opts)
}

// RemoveBackground is not offered by the Ideogram API; transparent output
// comes from Generate with Background set to "transparent".
func (p *Provider) RemoveBackground(ctx context.Context, img []byte, opts image.Options) (*image.Result, error) {
	return nil, image.ErrUnsupported
}

func (p *Provider) baseFields(prompt string, opts image.Options) map[string]string {
	fields := map[string]string{
		"prompt":          prompt,
		"num_images":      extraOr(opts, "num_images", "1"),
		"rendering_speed": extraOr(opts, "rendering_speed", "DEFAULT"),
		"magic_prompt":    extraOr(opts, "magic_prompt", "OFF"),
	}
	if v := opts.Extra["style_type"]; v != "" {
		fields["style_type"] = v
	}
	return fields
}

// post sends the multipart request and fetches the image the response URL
// points at.
func (p *Provider) post(ctx context.Context, endpoint string, fields map[string]string, files []utils.MultipartFile, opts image.Options) (*image.Result, error) {
	body, contentType, err := utils.BuildMultipart(fields, files)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, opts.TimeoutOrDefault(defaultTimeout))
	defer cancel()

	res, respBody, err := utils.DoPostRaw(ctx, p.client, p.baseURL+endpoint, "", contentType, bytes.NewReader(body),
		utils.HeaderOption{Key: "Api-Key", Value: p.apiKey})
	if err != nil {
		return nil, fmt.Errorf("calling Ideogram: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &image.ProviderError{
			Provider: "ideogram",
			Status:   res.StatusCode,
			Message:  utils.TruncateString(string(respBody), utils.DefaultMaxStringLength),
		}
	}

	var envelope struct {
		Data []struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("invalid JSON returned by Ideogram: %w", err)
	}
	if len(envelope.Data) == 0 || envelope.Data[0].URL == "" {
		return nil, &image.ProviderError{
			Provider: "ideogram",
			Message:  "response contains no image URL",
		}
	}

	_, data, err := utils.DoGetRaw(ctx, p.client, envelope.Data[0].URL)
	if err != nil {
		return nil, fmt.Errorf("fetching Ideogram result: %w", err)
	}

	return &image.Result{Data: data, Format: "png"}, nil
}

func extraOr(opts image.Options, key, fallback string) string {
	if v := opts.Extra[key]; v != "" {
		return v
	}
	return fallback
}
