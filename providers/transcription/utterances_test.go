package transcription

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatUtterancesWithSpeakerLabels(t *testing.T) {
	tr := &Transcript{
		SpeakerLabels: true,
		Utterances: []Utterance{
			{Speaker: "A", Text: "Hello there.", Start: 1000},
			{Speaker: "B", Text: "Hi, welcome back.", Start: 83000},
			{Speaker: "A", Text: "Thanks.", Start: 3725000},
		},
	}

	expected := "0:00:01 | A: Hello there.\n" +
		"0:01:23 | B: Hi, welcome back.\n" +
		"1:02:05 | A: Thanks.\n"
	assert.Equal(t, expected, FormatUtterances(tr))
}

func TestFormatUtterancesWithoutSpeakerLabels(t *testing.T) {
	tr := &Transcript{
		Utterances: []Utterance{
			{Speaker: "A", Text: "No prefix here.", Start: 0},
		},
	}

	assert.Equal(t, "0:00:00 | No prefix here.\n", FormatUtterances(tr))
}

func TestFormatUtterancesEmpty(t *testing.T) {
	assert.Equal(t, "", FormatUtterances(&Transcript{}))
}
