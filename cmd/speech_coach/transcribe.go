package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/speech-coach/internal/feedback"
	"github.com/jonathan/speech-coach/internal/transcription"
	"github.com/jonathan/speech-coach/internal/types"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe",
	Short: "Transcribe a recorded answer and score it",
	Long: `Send an audio recording to the speech-to-text provider, then score the resulting transcript.
If transcription fails, a neutral fallback feedback record is printed instead.`,
	RunE: runTranscribe,
}

var (
	transcribeAudioFile     string
	transcribeQuestion      string
	transcribeDuration      float64
	transcribeProvider      string
	transcribeWhisperURL    string
	transcribeLanguage      string
	transcribeTimeout       time.Duration
	transcribeMockText      string
	transcribeOutputFile    string
	transcribeTranscriptOut string
	transcribeVerbose       bool
)

func init() {
	transcribeCmd.Flags().StringVarP(&transcribeAudioFile, "audio", "a", "", "Path to the recorded audio file (required)")
	transcribeCmd.Flags().StringVarP(&transcribeQuestion, "question", "q", "", "Interview question the answer responds to")
	transcribeCmd.Flags().Float64VarP(&transcribeDuration, "duration", "d", 0, "Session duration in seconds (defaults to the transcript duration)")
	transcribeCmd.Flags().StringVar(&transcribeProvider, "provider", transcription.WhisperProviderName, "Transcription provider: whisper or mock")
	transcribeCmd.Flags().StringVar(&transcribeWhisperURL, "whisper-url", "", "faster-whisper sidecar URL (overrides WHISPER_URL)")
	transcribeCmd.Flags().StringVar(&transcribeLanguage, "language", "", "Spoken language hint, e.g. en")
	transcribeCmd.Flags().DurationVar(&transcribeTimeout, "timeout", 2*time.Minute, "Transcription timeout")
	transcribeCmd.Flags().StringVar(&transcribeMockText, "mock-text", "", "Transcript returned by the mock provider")
	transcribeCmd.Flags().StringVarP(&transcribeOutputFile, "out", "o", "", "Path to output JSON file (defaults to stdout)")
	transcribeCmd.Flags().StringVar(&transcribeTranscriptOut, "transcript-out", "", "Also write the transcript JSON to this path")
	transcribeCmd.Flags().BoolVarP(&transcribeVerbose, "verbose", "v", false, "Print metrics, signals and feedback boxes to stderr")

	_ = transcribeCmd.MarkFlagRequired("audio")

	rootCmd.AddCommand(transcribeCmd)
}

// newProvider builds the configured transcription provider.
func newProvider(name, whisperURL, language, mockText string, timeout time.Duration) (transcription.Provider, error) {
	switch name {
	case transcription.WhisperProviderName:
		return transcription.NewWhisperProvider(transcription.WhisperConfig{
			URL:      whisperURL,
			Language: language,
			Timeout:  timeout,
		}), nil
	case transcription.MockProviderName:
		return transcription.NewMockProvider(mockText), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (want %s or %s)", name, transcription.WhisperProviderName, transcription.MockProviderName)
	}
}

func runTranscribe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	whisperURL := transcribeWhisperURL
	if whisperURL == "" {
		whisperURL = cfg.WhisperURL
	}
	provider, err := newProvider(transcribeProvider, whisperURL, transcribeLanguage, transcribeMockText, transcribeTimeout)
	if err != nil {
		return err
	}

	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), transcribeTimeout)
	defer cancel()

	transcript, err := provider.Transcribe(ctx, transcription.Request{
		AudioPath: transcribeAudioFile,
		Language:  transcribeLanguage,
	})
	if err != nil {
		reason := "transcription failed"
		var providerErr *transcription.ProviderError
		if errors.As(err, &providerErr) {
			reason = providerErr.Message
		}
		logger.Warn().Err(err).Str("provider", provider.Name()).Msg("transcription failed, returning fallback feedback")

		rec := feedback.Fallback(reason)
		if transcribeVerbose || cfg.Verbose {
			printFallback(cmd, rec)
		}
		return emitRecord(cmd, rec, transcribeOutputFile)
	}

	if transcribeTranscriptOut != "" {
		if err := writeJSON(cmd, transcript, transcribeTranscriptOut); err != nil {
			return err
		}
	}

	req := types.ScoreRequest{
		Question:        transcribeQuestion,
		DurationSeconds: transcribeDuration,
		Transcript:      *transcript,
	}
	result := eng.Evaluate(req.Question, req.Transcript, req.EffectiveDuration())
	logger.Debug().
		Str("provider", provider.Name()).
		Int("words", result.Metrics.WordCount).
		Int("overall", result.Feedback.OverallScore).
		Msg("answer scored")

	if transcribeVerbose || cfg.Verbose {
		printResult(cmd.ErrOrStderr(), result)
	}

	return emitRecord(cmd, result.Feedback, transcribeOutputFile)
}
