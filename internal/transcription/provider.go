// Package transcription turns recorded audio into timed transcripts. It is the
// upstream collaborator of the scoring engine; the engine never calls it.
package transcription

import (
	"context"
	"fmt"

	"github.com/jonathan/speech-coach/internal/types"
)

// Request identifies the audio to transcribe.
type Request struct {
	// AudioPath is read when Audio is empty.
	AudioPath string
	Audio     []byte
	Language  string
}

// Provider is a speech-to-text backend.
type Provider interface {
	Name() string
	Transcribe(ctx context.Context, req Request) (*types.Transcript, error)
}

// ProviderError reports a failed transcription. Callers substitute the
// fallback feedback record when they receive one.
type ProviderError struct {
	Provider string
	Message  string
	Cause    error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s transcription: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s transcription: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}
