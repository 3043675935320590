package awstranscribe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/transcribe"
	"github.com/aws/aws-sdk-go-v2/service/transcribe/types"
	"github.com/google/uuid"

	"github.com/contentplane/aikit/config"
	"github.com/contentplane/aikit/internal/utils"
	"github.com/contentplane/aikit/providers/transcription"
)

const (
	defaultRegion   = "us-east-1"
	defaultLanguage = "en-US"
)

func init() {
	transcription.Register("awstranscribe", func() transcription.Provider { return New() })
}

type transcribeClient interface {
	StartTranscriptionJob(ctx context.Context, params *transcribe.StartTranscriptionJobInput, optFns ...func(*transcribe.Options)) (*transcribe.StartTranscriptionJobOutput, error)
	GetTranscriptionJob(ctx context.Context, params *transcribe.GetTranscriptionJobInput, optFns ...func(*transcribe.Options)) (*transcribe.GetTranscriptionJobOutput, error)
}

// Provider implements the transcription capability against AWS Transcribe.
// The service follows the same two-phase model as AssemblyAI: submit a job,
// poll it, then download the transcript JSON from the URI the job reports.
type Provider struct {
	region     string
	httpClient *http.Client

	clientOnce sync.Once
	client     transcribeClient
	clientErr  error
}

// New creates an AWS Transcribe provider configured from the environment.
// Environment variables:
//   - AWS_TRANSCRIBE_REGION: region override (default us-east-1)
//
// AWS credentials come from the default SDK credential chain.
func New() *Provider {
	return &Provider{
		region:     config.Get("AWS_TRANSCRIBE_REGION", defaultRegion),
		httpClient: http.DefaultClient,
	}
}

// WithClient injects a Transcribe client, bypassing the default SDK
// configuration. Used in tests.
func (p *Provider) WithClient(client transcribeClient) *Provider {
	p.clientOnce.Do(func() {})
	p.client = client
	return p
}

// WithHTTPClient sets the client used to download finished transcripts.
func (p *Provider) WithHTTPClient(client *http.Client) *Provider {
	p.httpClient = client
	return p
}

func (p *Provider) getClient(ctx context.Context) (transcribeClient, error) {
	p.clientOnce.Do(func() {
		cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(p.region))
		if err != nil {
			p.clientErr = fmt.Errorf("loading AWS configuration: %w", err)
			return
		}
		p.client = transcribe.NewFromConfig(cfg)
	})
	if p.clientErr != nil {
		return nil, p.clientErr
	}
	return p.client, nil
}

// Transcribe starts a transcription job for sourceURL and returns its name
// as the job id. The media format is inferred from the URL's file extension.
func (p *Provider) Transcribe(ctx context.Context, sourceURL string, opts transcription.Options) (*transcription.Job, error) {
	client, err := p.getClient(ctx)
	if err != nil {
		return nil, err
	}

	language := opts.Language
	if language == "" {
		language = defaultLanguage
	}

	jobName := "job_" + uuid.NewString()
	input := &transcribe.StartTranscriptionJobInput{
		TranscriptionJobName: aws.String(jobName),
		Media:                &types.Media{MediaFileUri: aws.String(sourceURL)},
		MediaFormat:          types.MediaFormat(mediaFormat(sourceURL)),
		LanguageCode:         types.LanguageCode(language),
	}
	if opts.Diarization != nil {
		settings := &types.Settings{ShowSpeakerLabels: aws.Bool(true)}
		if opts.Diarization.Max > 0 {
			settings.MaxSpeakerLabels = aws.Int32(int32(opts.Diarization.Max))
		}
		input.Settings = settings
	}

	if _, err := client.StartTranscriptionJob(ctx, input); err != nil {
		return nil, fmt.Errorf("starting transcription job: %w", err)
	}

	return &transcription.Job{
		ID:       jobName,
		Status:   transcription.StatusSubmitted,
		Platform: "AWS Transcribe",
	}, nil
}

// Fetch polls the job. A completed job's transcript JSON is downloaded from
// the reported URI and normalized.
func (p *Provider) Fetch(ctx context.Context, id string) (*transcription.Transcript, error) {
	client, err := p.getClient(ctx)
	if err != nil {
		return nil, err
	}

	out, err := client.GetTranscriptionJob(ctx, &transcribe.GetTranscriptionJobInput{
		TranscriptionJobName: aws.String(id),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching transcription job: %w", err)
	}

	job := out.TranscriptionJob
	status := mapStatus(job.TranscriptionJobStatus)
	t := &transcription.Transcript{ID: id, Status: status}

	if status == transcription.StatusFailed {
		t.Error = aws.ToString(job.FailureReason)
		return t, nil
	}
	if status != transcription.StatusCompleted {
		return t, nil
	}

	uri := ""
	if job.Transcript != nil {
		uri = aws.ToString(job.Transcript.TranscriptFileUri)
	}
	if uri == "" {
		return nil, fmt.Errorf("completed job %s has no transcript URI", id)
	}

	_, body, err := utils.DoGetRaw(ctx, p.httpClient, uri)
	if err != nil {
		return nil, fmt.Errorf("downloading transcript file: %w", err)
	}
	if err := decodeTranscript(body, t); err != nil {
		return nil, err
	}
	return t, nil
}

func mapStatus(s types.TranscriptionJobStatus) transcription.Status {
	switch s {
	case types.TranscriptionJobStatusQueued:
		return transcription.StatusSubmitted
	case types.TranscriptionJobStatusInProgress:
		return transcription.StatusProcessing
	case types.TranscriptionJobStatusCompleted:
		return transcription.StatusCompleted
	case types.TranscriptionJobStatusFailed:
		return transcription.StatusFailed
	default:
		return transcription.Status(s)
	}
}

func mediaFormat(sourceURL string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(sourceURL)), ".")
	if ext == "" {
		return "mp3"
	}
	return ext
}

// decodeTranscript maps the transcript file layout onto the normalized
// shape. Word timings arrive as fractional seconds and convert to
// milliseconds.
func decodeTranscript(body []byte, t *transcription.Transcript) error {
	var file struct {
		Results struct {
			Transcripts []struct {
				Transcript string `json:"transcript"`
			} `json:"transcripts"`
			Items []struct {
				Type         string `json:"type"`
				StartTime    string `json:"start_time"`
				EndTime      string `json:"end_time"`
				SpeakerLabel string `json:"speaker_label"`
				Alternatives []struct {
					Content    string `json:"content"`
					Confidence string `json:"confidence"`
				} `json:"alternatives"`
			} `json:"items"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &file); err != nil {
		return fmt.Errorf("invalid transcript file: %w", err)
	}

	if len(file.Results.Transcripts) > 0 {
		t.Text = file.Results.Transcripts[0].Transcript
	}
	for _, item := range file.Results.Items {
		if item.Type != "pronunciation" || len(item.Alternatives) == 0 {
			continue
		}
		word := transcription.Word{
			Text:    item.Alternatives[0].Content,
			Start:   secondsToMillis(item.StartTime),
			End:     secondsToMillis(item.EndTime),
			Speaker: item.SpeakerLabel,
		}
		if c, err := strconv.ParseFloat(item.Alternatives[0].Confidence, 64); err == nil {
			word.Confidence = c
		}
		if word.Speaker != "" {
			t.SpeakerLabels = true
		}
		t.Words = append(t.Words, word)
	}
	return nil
}

func secondsToMillis(s string) int {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(f * 1000)
}
