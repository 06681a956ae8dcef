// Package transcription defines the transcription provider interface for
// interacting with speech-to-text backends.
//
// # Backends
//
//   - transcription/assemblyai: AssemblyAI speech-to-text
package transcription

import (
	"context"

	"github.com/skillsenselab/callinsight/transcript"
)

// Request holds parameters for a transcription call.
type Request struct {
	// AudioSource is a path to a local audio file or a public http(s) URL.
	AudioSource string `json:"audio_source"`
	// SpeakerLabels enables speaker diarization.
	SpeakerLabels bool `json:"speaker_labels,omitempty"`
	// Language is the expected language of the audio (e.g. "en_us").
	Language string `json:"language,omitempty"`
}

// Provider is the interface that speech-to-text backends must implement.
// Transcribe blocks until the provider reaches a terminal status; callers
// bound the wait through ctx.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// IsAvailable checks if the backend is reachable.
	IsAvailable(ctx context.Context) bool

	// Transcribe sends audio for transcription and returns the result.
	Transcribe(ctx context.Context, req Request) (*transcript.TranscriptionResult, error)
}
