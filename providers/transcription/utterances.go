package transcription

import (
	"fmt"
	"strings"
)

// FormatUtterances renders a transcript's utterances as one line per
// utterance, each prefixed with the start timestamp:
//
//	0:01:23 | A: Hello there.
//
// Speaker prefixes appear only when the transcript carries speaker labels.
func FormatUtterances(t *Transcript) string {
	var b strings.Builder
	for _, u := range t.Utterances {
		line := u.Text
		if t.SpeakerLabels && u.Speaker != "" {
			line = u.Speaker + ": " + u.Text
		}
		b.WriteString(secondsToHMS(u.Start / 1000))
		b.WriteString(" | ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// secondsToHMS formats a duration in whole seconds as H:MM:SS.
func secondsToHMS(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}
