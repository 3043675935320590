package transcription

import (
	"context"
	"time"
)

// Status is the normalized lifecycle state of a transcription job. Vendors
// report their own vocabularies ("queued", "IN_PROGRESS", "error", ...);
// adapters map them onto these values.
type Status string

const (
	StatusSubmitted  Status = "SUBMITTED"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusNotFound   Status = "NOT_FOUND"
)

// Job is the immediate response to a transcription submission. For
// asynchronous vendors the transcript arrives later through Fetch; for
// synchronous ones the job is already in a terminal state.
type Job struct {
	ID       string
	Status   Status
	Platform string
	Error    string
}

// Word is one recognized token with millisecond timings.
type Word struct {
	Text       string
	Start      int
	End        int
	Confidence float64
	Speaker    string
}

// Utterance is a contiguous span attributed to one speaker.
type Utterance struct {
	Speaker    string
	Text       string
	Start      int
	End        int
	Confidence float64
}

// Transcript is the normalized result of a finished (or still running)
// transcription job.
type Transcript struct {
	ID            string
	Status        Status
	Text          string
	Words         []Word
	Utterances    []Utterance
	SpeakerLabels bool
	AudioURL      string
	AudioDuration float64 // seconds
	Error         string
}

// Diarization requests speaker labels. Max caps the number of speakers the
// vendor should expect (up to 10 on most services); zero leaves it to the
// vendor.
type Diarization struct {
	Max int
}

// Webhook asks the vendor to notify url when the job finishes. Secret, when
// set, travels in an X-Webhook-Secret header so the receiving endpoint can
// authenticate the callback.
type Webhook struct {
	URL    string
	Secret string
}

// Chunks enables client-side audio segmentation for vendors with upload
// duration limits. Duration is the segment length in seconds.
type Chunks struct {
	Duration int
}

// Options carries the normalized transcription knobs. Vendor-specific flags
// with no normalized equivalent travel in Extra as string key/value pairs.
type Options struct {
	Language    string
	Model       string
	Prompt      string
	Diarization *Diarization
	Webhook     *Webhook
	Chunks      *Chunks
	Timeout     time.Duration
	Extra       map[string]string
}

// TimeoutOrDefault returns the configured timeout, or def when unset.
func (o Options) TimeoutOrDefault(def time.Duration) time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return def
}

// Provider is the transcription capability. Transcribe submits a publicly
// accessible media URL and returns job metadata; Fetch retrieves the job's
// current state and, once finished, the transcript.
type Provider interface {
	Transcribe(ctx context.Context, sourceURL string, opts Options) (*Job, error)
	Fetch(ctx context.Context, id string) (*Transcript, error)
}
