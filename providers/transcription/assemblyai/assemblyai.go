package assemblyai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/contentplane/aikit/config"
	"github.com/contentplane/aikit/internal/utils"
	"github.com/contentplane/aikit/providers/transcription"
)

const (
	defaultBaseURL = "https://api.assemblyai.com"
	defaultTimeout = 60 * time.Second
)

func init() {
	transcription.Register("assemblyai", func() transcription.Provider { return New() })
}

// Provider implements the transcription capability against the AssemblyAI
// v2 API. AssemblyAI is natively asynchronous: Transcribe submits the job,
// Fetch polls it, and an optional webhook pushes completion.
type Provider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New creates an AssemblyAI provider configured from the environment.
// Environment variables:
//   - ASSEMBLYAI_API_KEY: API key
//   - ASSEMBLYAI_API_BASE_URL: base URL override
func New() *Provider {
	return &Provider{
		apiKey:  config.Get("ASSEMBLYAI_API_KEY", ""),
		baseURL: config.Get("ASSEMBLYAI_API_BASE_URL", defaultBaseURL),
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

// Transcribe submits sourceURL for transcription. Diarization maps onto
// speaker_labels and speakers_expected, a webhook onto webhook_url with an
// X-Webhook-Secret auth header. Vendor flags not covered by Options pass
// through Extra verbatim.
func (p *Provider) Transcribe(ctx context.Context, sourceURL string, opts transcription.Options) (*transcription.Job, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("AssemblyAI API key is not set")
	}

	payload := map[string]any{
		"audio_url": sourceURL,
	}
	if opts.Language != "" {
		payload["language_code"] = opts.Language
	}
	if opts.Diarization != nil {
		payload["speaker_labels"] = true
		if opts.Diarization.Max > 0 {
			payload["speakers_expected"] = opts.Diarization.Max
		}
	}
	if opts.Webhook != nil && opts.Webhook.URL != "" {
		payload["webhook_url"] = opts.Webhook.URL
		if opts.Webhook.Secret != "" {
			payload["webhook_auth_header_name"] = "X-Webhook-Secret"
			payload["webhook_auth_header_value"] = opts.Webhook.Secret
		}
	}
	for key, value := range opts.Extra {
		payload[key] = value
	}

	ctx, cancel := context.WithTimeout(ctx, opts.TimeoutOrDefault(defaultTimeout))
	defer cancel()

	_, resp, err := utils.DoPostSync[transcriptEnvelope](ctx, p.client, p.baseURL+"/v2/transcript", "", payload,
		utils.HeaderOption{Key: "Authorization", Value: p.apiKey})
	if err != nil {
		return nil, fmt.Errorf("submitting AssemblyAI transcription: %w", err)
	}

	return &transcription.Job{
		ID:       resp.ID,
		Status:   mapStatus(resp.Status),
		Platform: "AssemblyAI",
		Error:    resp.Error,
	}, nil
}

// Fetch retrieves the transcript by job id.
func (p *Provider) Fetch(ctx context.Context, id string) (*transcription.Transcript, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("AssemblyAI API key is not set")
	}

	_, resp, err := utils.DoGet[transcriptEnvelope](ctx, p.client, p.baseURL+"/v2/transcript/"+id, "",
		utils.HeaderOption{Key: "Authorization", Value: p.apiKey})
	if err != nil {
		return nil, fmt.Errorf("fetching AssemblyAI transcript: %w", err)
	}

	return resp.transcript(), nil
}
