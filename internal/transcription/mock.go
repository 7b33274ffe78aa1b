package transcription

import (
	"context"
	"strings"

	"github.com/jonathan/speech-coach/internal/types"
)

// MockProviderName identifies the canned provider
const MockProviderName = "mock"

// DefaultMockText is the placeholder answer returned when no audio backend is configured.
const DefaultMockText = "I believe my greatest strength is communication. For example, in my last role " +
	"I led a team of five people through a difficult product launch. First we agreed on clear goals, " +
	"then we met every morning to remove blockers. As a result we delivered two weeks early and " +
	"customer satisfaction improved by 20 percent."

// mockWordSeconds is the time given to each canned word, about 150 words per minute
const mockWordSeconds = 0.4

// MockProvider returns a canned transcript, or Err when set.
type MockProvider struct {
	Text string
	Err  error
}

// NewMockProvider returns a provider that always answers with text.
func NewMockProvider(text string) *MockProvider {
	if text == "" {
		text = DefaultMockText
	}
	return &MockProvider{Text: text}
}

// Name returns the provider name.
func (p *MockProvider) Name() string { return MockProviderName }

// Transcribe ignores the audio and returns the canned text with evenly spaced words.
func (p *MockProvider) Transcribe(ctx context.Context, _ Request) (*types.Transcript, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ProviderError{Provider: MockProviderName, Message: "cancelled", Cause: err}
	}
	if p.Err != nil {
		return nil, &ProviderError{Provider: MockProviderName, Message: "configured failure", Cause: p.Err}
	}

	tokens := strings.Fields(p.Text)
	words := make([]types.Word, len(tokens))
	for i, tok := range tokens {
		start := float64(i) * mockWordSeconds
		words[i] = types.Word{Word: tok, Start: start, End: start + mockWordSeconds - 0.05, Confidence: 0.95}
	}
	return &types.Transcript{
		Text:     p.Text,
		Words:    words,
		Duration: float64(len(tokens)) * mockWordSeconds,
	}, nil
}
