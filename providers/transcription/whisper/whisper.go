package whisper

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/contentplane/aikit/config"
	"github.com/contentplane/aikit/internal/utils"
	"github.com/contentplane/aikit/providers/transcription"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "whisper-1"
	defaultTimeout = 300 * time.Second

	// maxConcurrentChunks bounds the fan-out when a chunked source is
	// transcribed in parallel.
	maxConcurrentChunks = 4
)

func init() {
	transcription.Register("whisper", func() transcription.Provider { return New() })
}

// jobs keeps finished transcripts addressable by id for the lifetime of the
// process. Whisper itself is synchronous; the store exists so Fetch has the
// same two-phase shape as the asynchronous vendors.
var (
	jobsMu sync.Mutex
	jobs   = make(map[string]*transcription.Transcript)
)

// Provider implements the transcription capability against the OpenAI audio
// transcription API (Whisper). The API is synchronous and takes file
// uploads, so Transcribe downloads the source, optionally splits it into
// segments with ffmpeg, transcribes, and records the finished transcript
// under a generated job id.
type Provider struct {
	apiKey  string
	baseURL string
	ffmpeg  string
	client  *http.Client
}

// New creates a Whisper provider configured from the environment.
// Environment variables:
//   - OPENAI_API_KEY: API key
//   - OPENAI_API_BASE_URL: base URL override
//   - FFMPEG_PATH: ffmpeg binary used for chunking (default "ffmpeg")
func New() *Provider {
	return &Provider{
		apiKey:  config.Get("OPENAI_API_KEY", ""),
		baseURL: config.Get("OPENAI_API_BASE_URL", defaultBaseURL),
		ffmpeg:  config.Get("FFMPEG_PATH", "ffmpeg"),
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

// Transcribe downloads sourceURL, transcribes it, and returns a job already
// in a terminal state. When opts.Chunks is set the audio is split into
// fixed-duration segments, transcribed concurrently, and stitched back
// together with overlap elision.
func (p *Provider) Transcribe(ctx context.Context, sourceURL string, opts transcription.Options) (*transcription.Job, error) {
	jobID := "whisper_" + uuid.NewString()

	if p.apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is not set")
	}

	ctx, cancel := context.WithTimeout(ctx, opts.TimeoutOrDefault(defaultTimeout))
	defer cancel()

	audio, err := p.download(ctx, sourceURL)
	if err != nil {
		return p.finish(jobID, sourceURL, "", fmt.Errorf("fetching audio source: %w", err)), nil
	}

	var text string
	if opts.Chunks != nil && opts.Chunks.Duration > 0 {
		text, err = p.transcribeChunked(ctx, audio, opts)
	} else {
		text, err = p.transcribeUpload(ctx, audio, filenameFromURL(sourceURL), opts)
	}

	return p.finish(jobID, sourceURL, text, err), nil
}

// Fetch returns the stored transcript for id, or a NOT_FOUND transcript for
// ids this process never produced.
func (p *Provider) Fetch(ctx context.Context, id string) (*transcription.Transcript, error) {
	jobsMu.Lock()
	defer jobsMu.Unlock()

	if t, ok := jobs[id]; ok {
		return t, nil
	}
	return &transcription.Transcript{ID: id, Status: transcription.StatusNotFound}, nil
}

// finish records the terminal transcript and builds the matching job.
func (p *Provider) finish(jobID, sourceURL, text string, err error) *transcription.Job {
	t := &transcription.Transcript{
		ID:       jobID,
		Status:   transcription.StatusCompleted,
		Text:     text,
		AudioURL: sourceURL,
	}
	job := &transcription.Job{ID: jobID, Status: transcription.StatusCompleted, Platform: "OpenAI"}

	if err != nil {
		t.Status = transcription.StatusFailed
		t.Error = err.Error()
		job.Status = transcription.StatusFailed
		job.Error = err.Error()
	}

	jobsMu.Lock()
	jobs[jobID] = t
	jobsMu.Unlock()

	return job
}

func (p *Provider) download(ctx context.Context, sourceURL string) ([]byte, error) {
	_, body, err := utils.DoGetRaw(ctx, p.client, sourceURL)
	return body, err
}

// transcribeChunked splits the audio with ffmpeg and transcribes the
// segments with a bounded fan-out, preserving order for stitching.
func (p *Provider) transcribeChunked(ctx context.Context, audio []byte, opts transcription.Options) (string, error) {
	chunks, err := p.splitAudio(ctx, audio, opts.Chunks.Duration)
	if err != nil {
		return "", err
	}
	if len(chunks) == 0 {
		return "", fmt.Errorf("ffmpeg produced no segments")
	}

	results := make([]string, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentChunks)

	for i, chunk := range chunks {
		g.Go(func() error {
			text, err := p.transcribeUpload(gctx, chunk, fmt.Sprintf("chunk_%03d.mp3", i), opts)
			if err != nil {
				return fmt.Errorf("transcribing segment %d: %w", i, err)
			}
			results[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	return transcription.MergeChunks(results), nil
}

// transcribeUpload performs one multipart upload to the transcription
// endpoint and returns the recognized text.
func (p *Provider) transcribeUpload(ctx context.Context, audio []byte, filename string, opts transcription.Options) (string, error) {
	model := opts.Model
	if model == "" {
		model = defaultModel
	}

	fields := map[string]string{
		"model":           model,
		"response_format": "json",
	}
	if opts.Language != "" {
		fields["language"] = opts.Language
	}
	if opts.Prompt != "" {
		fields["prompt"] = opts.Prompt
	}
	for key, value := range opts.Extra {
		fields[key] = value
	}

	files := []utils.MultipartFile{{
		Field:    "file",
		Filename: filename,
		Mime:     "application/octet-stream",
		Data:     audio,
	}}

	body, contentType, err := utils.BuildMultipart(fields, files)
	if err != nil {
		return "", err
	}

	res, respBody, err := utils.DoPostRaw(ctx, p.client, p.baseURL+"/audio/transcriptions", p.apiKey, contentType, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("calling Whisper: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", fmt.Errorf("Whisper returned status %d: %s", res.StatusCode, utils.TruncateString(string(respBody), utils.DefaultMaxStringLength))
	}

	return parseText(respBody)
}

func filenameFromURL(sourceURL string) string {
	if u, err := url.Parse(sourceURL); err == nil {
		if name := path.Base(u.Path); name != "" && name != "." && name != "/" {
			return name
		}
	}
	return "audio.mp3"
}
