package assemblyai

import "github.com/contentplane/aikit/providers/transcription"

type wireWord struct {
	Text       string  `json:"text"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Confidence float64 `json:"confidence"`
	Speaker    string  `json:"speaker"`
}

type wireUtterance struct {
	Speaker    string  `json:"speaker"`
	Text       string  `json:"text"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Confidence float64 `json:"confidence"`
}

type transcriptEnvelope struct {
	ID            string          `json:"id"`
	Status        string          `json:"status"`
	Text          string          `json:"text"`
	Words         []wireWord      `json:"words"`
	Utterances    []wireUtterance `json:"utterances"`
	SpeakerLabels bool            `json:"speaker_labels"`
	AudioURL      string          `json:"audio_url"`
	AudioDuration float64         `json:"audio_duration"`
	Error         string          `json:"error"`
}

// mapStatus folds AssemblyAI's status vocabulary onto the normalized one.
func mapStatus(s string) transcription.Status {
	switch s {
	case "queued":
		return transcription.StatusSubmitted
	case "processing":
		return transcription.StatusProcessing
	case "completed":
		return transcription.StatusCompleted
	case "error":
		return transcription.StatusFailed
	default:
		return transcription.Status(s)
	}
}

func (e *transcriptEnvelope) transcript() *transcription.Transcript {
	t := &transcription.Transcript{
		ID:            e.ID,
		Status:        mapStatus(e.Status),
		Text:          e.Text,
		SpeakerLabels: e.SpeakerLabels,
		AudioURL:      e.AudioURL,
		AudioDuration: e.AudioDuration,
		Error:         e.Error,
	}
	for _, w := range e.Words {
		t.Words = append(t.Words, transcription.Word{
			Text:       w.Text,
			Start:      w.Start,
			End:        w.End,
			Confidence: w.Confidence,
			Speaker:    w.Speaker,
		})
	}
	for _, u := range e.Utterances {
		t.Utterances = append(t.Utterances, transcription.Utterance{
			Speaker:    u.Speaker,
			Text:       u.Text,
			Start:      u.Start,
			End:        u.End,
			Confidence: u.Confidence,
		})
	}
	return t
}
