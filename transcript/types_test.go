package transcript

import "testing"

func sample() *TranscriptionResult {
	return &TranscriptionResult{
		FullText: "Hello there. Hi, how can I help?",
		Utterances: []Utterance{
			{Speaker: "A", Start: 0.0, End: 1.2, Text: "Hello there."},
			{Speaker: "B", Start: 1.4, End: 3.0, Text: "Hi, how can I help?"},
		},
	}
}

func TestPromptTextNumbered(t *testing.T) {
	got := sample().PromptText(true)
	want := "Utterance 0: Speaker: A Hello there.\nUtterance 1: Speaker: B Hi, how can I help?"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPromptTextPlain(t *testing.T) {
	got := sample().PromptText(false)
	want := "Speaker A: Hello there.\nSpeaker B: Hi, how can I help?"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPromptTextEmptyUtterances(t *testing.T) {
	tr := &TranscriptionResult{FullText: "no diarization"}
	if got := tr.PromptText(true); got != "" {
		t.Errorf("expected empty prompt text, got %q", got)
	}
}
