package googleproxy

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/contentplane/aikit/config"
	"github.com/contentplane/aikit/internal/imaging"
	"github.com/contentplane/aikit/internal/utils"
	"github.com/contentplane/aikit/providers/image"
)

const defaultTimeout = 60 * time.Second

func init() {
	image.Register("googleproxy", func() image.Provider { return New() })
}

// Provider implements the image capability against a proxy service fronting
// Google Vertex image models. Requests are authenticated with an HMAC-SHA256
// signature over the client id and a unix timestamp, which the proxy
// recomputes and compares.
type Provider struct {
	proxyURL string
	clientID string
	secret   string
	client   *http.Client

	// now is stubbed in tests to pin the signature timestamp.
	now func() time.Time
}

// New creates a proxy provider configured from the environment.
// Environment variables:
//   - GOOGLE_PROXY_URL: base URL of the proxy
//   - GOOGLE_PROXY_CLIENT_ID: client identifier
//   - GOOGLE_PROXY_SECRET: shared HMAC secret
func New() *Provider {
	return &Provider{
		proxyURL: strings.TrimSuffix(config.Get("GOOGLE_PROXY_URL", ""), "/"),
		clientID: config.Get("GOOGLE_PROXY_CLIENT_ID", ""),
		secret:   config.Get("GOOGLE_PROXY_SECRET", ""),
		client:   http.DefaultClient,
		now:      time.Now,
	}
}

func (p *Provider) WithProxyURL(url string) *Provider {
	p.proxyURL = strings.TrimSuffix(url, "/")
	return p
}

func (p *Provider) WithCredentials(clientID, secret string) *Provider {
	p.clientID = clientID
	p.secret = secret
	return p
}

func (p *Provider) WithHTTPClient(client *http.Client) *Provider {
	p.client = client
	return p
}

// sign produces the request signature headers. The signed message is the
// client id immediately followed by the timestamp, nothing else; the proxy
// must recompute the exact same concatenation.
func (p *Provider) sign() []utils.HeaderOption {
	timestamp := strconv.FormatInt(p.now().Unix(), 10)

	mac := hmac.New(sha256.New, []byte(p.secret))
	mac.Write([]byte(p.clientID + timestamp))

	return []utils.HeaderOption{
		{Key: "X-Client-ID", Value: p.clientID},
		{Key: "X-Timestamp", Value: timestamp},
		{Key: "X-Signature", Value: hex.EncodeToString(mac.Sum(nil))},
	}
}

// Generate submits the prompt and up to image.MaxReferenceImages photos as
// multipart form data. The proxy answers with raw image bytes on success or
// a JSON envelope on failure; the body is sniffed to tell them apart.
func (p *Provider) Generate(ctx context.Context, prompt string, opts image.Options) (*image.Result, error) {
	if p.proxyURL == "" || p.clientID == "" || p.secret == "" {
		return nil, fmt.Errorf("Google proxy credentials are not set")
	}

	format := strings.ToLower(opts.Format)
	if format == "" {
		format = "png"
	}
	background := opts.Background
	if background == "" {
		background = "none"
	}

	fields := map[string]string{
		"prompt":     prompt,
		"format":     format,
		"background": background,
	}
	if opts.Width > 0 {
		fields["width"] = strconv.Itoa(opts.Width)
	}
	if opts.Height > 0 {
		fields["height"] = strconv.Itoa(opts.Height)
	}
	if opts.Feather > 0 {
		fields["feather"] = strconv.Itoa(opts.Feather)
	}

	var files []utils.MultipartFile
	photos := opts.Images
	if len(photos) > image.MaxReferenceImages {
		photos = photos[:image.MaxReferenceImages]
	}
	for i, photo := range photos {
		raw, err := imaging.ToRawBinary(photo)
		if err != nil {
			continue
		}
		files = append(files, utils.MultipartFile{
			Field:    fmt.Sprintf("photo%d", i+1),
			Filename: fmt.Sprintf("photo%d.png", i+1),
			Mime:     "image/png",
			Data:     raw,
		})
	}

	body, contentType, err := utils.BuildMultipart(fields, files)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, opts.TimeoutOrDefault(defaultTimeout))
	defer cancel()

	res, respBody, err := utils.DoPostRaw(ctx, p.client, p.proxyURL+"/generate", "", contentType, bytes.NewReader(body), p.sign()...)
	if err != nil {
		return nil, fmt.Errorf("calling Google proxy: %w", err)
	}

	if res.StatusCode >= 200 && res.StatusCode < 300 && imaging.IsImage(respBody) {
		return &image.Result{Data: respBody, Format: format}, nil
	}

	return nil, &image.ProviderError{
		Provider: "googleproxy",
		Status:   res.StatusCode,
		Message:  utils.TruncateString(string(respBody), utils.DefaultMaxStringLength),
	}
}

// RemoveBackground is a Generate call with the input as the only photo and
// a transparent background.
func (p *Provider) RemoveBackground(ctx context.Context, img []byte, opts image.Options) (*image.Result, error) {
	prompt := opts.Prompt
	if prompt == "" {
		prompt = "remove background"
	}
	opts.Images = [][]byte{img}
	opts.Background = "transparent"
	return p.Generate(ctx, prompt, opts)
}
