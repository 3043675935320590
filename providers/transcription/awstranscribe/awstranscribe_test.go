package awstranscribe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/transcribe"
	"github.com/aws/aws-sdk-go-v2/service/transcribe/types"

	"github.com/contentplane/aikit/providers/transcription"
)

type fakeClient struct {
	startInput *transcribe.StartTranscriptionJobInput
	getOutput  *transcribe.GetTranscriptionJobOutput
	getErr     error
}

func (f *fakeClient) StartTranscriptionJob(ctx context.Context, params *transcribe.StartTranscriptionJobInput, optFns ...func(*transcribe.Options)) (*transcribe.StartTranscriptionJobOutput, error) {
	f.startInput = params
	return &transcribe.StartTranscriptionJobOutput{}, nil
}

func (f *fakeClient) GetTranscriptionJob(ctx context.Context, params *transcribe.GetTranscriptionJobInput, optFns ...func(*transcribe.Options)) (*transcribe.GetTranscriptionJobOutput, error) {
	return f.getOutput, f.getErr
}

func TestTranscribeStartsJob(t *testing.T) {
	fake := &fakeClient{}
	p := New().WithClient(fake)

	job, err := p.Transcribe(context.Background(), "https://example.com/show.wav", transcription.Options{
		Diarization: &transcription.Diarization{Max: 3},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if job.Status != transcription.StatusSubmitted {
		t.Errorf("expected SUBMITTED, got %s", job.Status)
	}
	if job.Platform != "AWS Transcribe" {
		t.Errorf("unexpected platform: %s", job.Platform)
	}
	if !strings.HasPrefix(job.ID, "job_") {
		t.Errorf("unexpected job id: %s", job.ID)
	}

	in := fake.startInput
	if aws.ToString(in.Media.MediaFileUri) != "https://example.com/show.wav" {
		t.Errorf("unexpected media uri: %s", aws.ToString(in.Media.MediaFileUri))
	}
	if in.MediaFormat != types.MediaFormat("wav") {
		t.Errorf("expected wav media format, got %s", in.MediaFormat)
	}
	if in.LanguageCode != types.LanguageCode("en-US") {
		t.Errorf("expected default language, got %s", in.LanguageCode)
	}
	if in.Settings == nil || !aws.ToBool(in.Settings.ShowSpeakerLabels) {
		t.Error("expected speaker labels enabled")
	}
	if aws.ToInt32(in.Settings.MaxSpeakerLabels) != 3 {
		t.Errorf("expected max 3 speakers, got %d", aws.ToInt32(in.Settings.MaxSpeakerLabels))
	}
}

func TestFetchInProgress(t *testing.T) {
	fake := &fakeClient{getOutput: &transcribe.GetTranscriptionJobOutput{
		TranscriptionJob: &types.TranscriptionJob{
			TranscriptionJobStatus: types.TranscriptionJobStatusInProgress,
		},
	}}
	p := New().WithClient(fake)

	tr, err := p.Fetch(context.Background(), "job_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Status != transcription.StatusProcessing {
		t.Errorf("expected PROCESSING, got %s", tr.Status)
	}
}

func TestFetchFailed(t *testing.T) {
	fake := &fakeClient{getOutput: &transcribe.GetTranscriptionJobOutput{
		TranscriptionJob: &types.TranscriptionJob{
			TranscriptionJobStatus: types.TranscriptionJobStatusFailed,
			FailureReason:          aws.String("unsupported codec"),
		},
	}}
	p := New().WithClient(fake)

	tr, err := p.Fetch(context.Background(), "job_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Status != transcription.StatusFailed {
		t.Errorf("expected FAILED, got %s", tr.Status)
	}
	if tr.Error != "unsupported codec" {
		t.Errorf("unexpected error message: %s", tr.Error)
	}
}

func TestFetchCompletedDownloadsTranscript(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"results": {
				"transcripts": [{"transcript": "hello world"}],
				"items": [
					{
						"type": "pronunciation",
						"start_time": "0.04",
						"end_time": "0.52",
						"speaker_label": "spk_0",
						"alternatives": [{"content": "hello", "confidence": "0.99"}]
					},
					{
						"type": "punctuation",
						"alternatives": [{"content": ","}]
					},
					{
						"type": "pronunciation",
						"start_time": "0.6",
						"end_time": "1.1",
						"speaker_label": "spk_1",
						"alternatives": [{"content": "world", "confidence": "0.97"}]
					}
				]
			}
		}`))
	}))
	defer server.Close()

	fake := &fakeClient{getOutput: &transcribe.GetTranscriptionJobOutput{
		TranscriptionJob: &types.TranscriptionJob{
			TranscriptionJobStatus: types.TranscriptionJobStatusCompleted,
			Transcript:             &types.Transcript{TranscriptFileUri: aws.String(server.URL + "/transcript.json")},
		},
	}}
	p := New().WithClient(fake)

	tr, err := p.Fetch(context.Background(), "job_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tr.Status != transcription.StatusCompleted {
		t.Errorf("expected COMPLETED, got %s", tr.Status)
	}
	if tr.Text != "hello world" {
		t.Errorf("unexpected text: %s", tr.Text)
	}
	if len(tr.Words) != 2 {
		t.Fatalf("expected 2 words (punctuation skipped), got %d", len(tr.Words))
	}
	if tr.Words[0].Start != 40 || tr.Words[0].End != 520 {
		t.Errorf("expected millisecond timings, got %d-%d", tr.Words[0].Start, tr.Words[0].End)
	}
	if tr.Words[0].Confidence != 0.99 {
		t.Errorf("unexpected confidence: %v", tr.Words[0].Confidence)
	}
	if !tr.SpeakerLabels {
		t.Error("expected speaker labels flag")
	}
	if tr.Words[1].Speaker != "spk_1" {
		t.Errorf("unexpected speaker: %s", tr.Words[1].Speaker)
	}
}

func TestMediaFormat(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://example.com/a.MP3", "mp3"},
		{"https://example.com/a.flac", "flac"},
		{"https://example.com/noext", "mp3"},
	}
	for _, tt := range tests {
		if got := mediaFormat(tt.url); got != tt.want {
			t.Errorf("mediaFormat(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
