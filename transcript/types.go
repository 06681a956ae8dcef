// Package transcript defines the provider-agnostic data model for a
// transcription result. Instances are produced once by a transcription
// provider and then read concurrently by every analysis task, so they are
// treated as immutable after construction.
package transcript

import (
	"fmt"
	"strings"
)

// Word is a single transcribed word with its timing in seconds.
type Word struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Utterance is a segment of speech from a single speaker. Start and End are
// seconds; Words, when present, covers a sub-range of [Start, End].
type Utterance struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Words   []Word  `json:"words,omitempty"`
}

// TranscriptionResult is the provider-agnostic result of a transcription.
// Utterances is empty when the provider returns no diarization.
type TranscriptionResult struct {
	FullText   string      `json:"full_text"`
	Utterances []Utterance `json:"utterances"`
}

// PromptText renders the transcript as speaker turns for a model prompt.
// With numbered=true each line carries the utterance index so tasks can
// reference specific lines:
//
//	Utterance 0: Speaker: A Hello there.
func (t *TranscriptionResult) PromptText(numbered bool) string {
	lines := make([]string, 0, len(t.Utterances))
	for i, u := range t.Utterances {
		if numbered {
			lines = append(lines, fmt.Sprintf("Utterance %d: Speaker: %s %s", i, u.Speaker, u.Text))
		} else {
			lines = append(lines, fmt.Sprintf("Speaker %s: %s", u.Speaker, u.Text))
		}
	}
	return strings.Join(lines, "\n")
}
