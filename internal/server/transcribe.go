package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/speech-coach/internal/feedback"
	"github.com/jonathan/speech-coach/internal/observability"
	"github.com/jonathan/speech-coach/internal/transcription"
	"github.com/jonathan/speech-coach/internal/types"
)

// maxAudioBytes bounds uploaded recordings
const maxAudioBytes = 25 << 20

var errNoTranscriber = &ErrUnavailable{Feature: "transcription"}

// TranscribeResponse is the body of POST /transcribe. Fallback is set when
// transcription failed and Feedback holds the neutral fallback record.
type TranscribeResponse struct {
	ScoreResponse
	Transcript *types.Transcript `json:"transcript,omitempty"`
	Fallback   bool              `json:"fallback"`
}

// handleTranscribe transcribes an uploaded recording and scores it
func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if s.transcriber == nil {
		s.failure(w, errNoTranscriber)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes)
	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		s.failure(w, &ErrValidation{Field: "body", Message: "invalid multipart form: " + err.Error()})
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		s.failure(w, &ErrValidation{Field: "file", Message: "audio file is required"})
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		s.failure(w, &ErrValidation{Field: "file", Message: "failed to read audio: " + err.Error()})
		return
	}

	var duration float64
	if raw := r.FormValue("duration_seconds"); raw != "" {
		duration, err = strconv.ParseFloat(raw, 64)
		if err != nil || duration < 0 {
			s.failure(w, &ErrValidation{Field: "duration_seconds", Message: "must be a non-negative number"})
			return
		}
	}
	question := r.FormValue("question")

	ctx := r.Context()
	start := time.Now()
	transcript, err := s.transcriber.Transcribe(ctx, transcription.Request{
		Audio:    audio,
		Language: r.FormValue("language"),
	})
	s.metrics.RecordTranscription(ctx, s.transcriber.Name(), err)
	if err != nil {
		reason := "transcription failed"
		var providerErr *transcription.ProviderError
		if errors.As(err, &providerErr) {
			reason = providerErr.Message
		}
		s.logger.Warn().Err(err).Str("provider", s.transcriber.Name()).Msg("transcription failed, returning fallback feedback")

		rec := feedback.Fallback(reason)
		s.metrics.RecordFeedback(ctx, observability.SourceFallback, rec, time.Since(start))
		s.jsonResponse(w, http.StatusOK, TranscribeResponse{
			ScoreResponse: ScoreResponse{Feedback: rec},
			Fallback:      true,
		})
		return
	}

	req := types.ScoreRequest{Question: question, DurationSeconds: duration, Transcript: *transcript}
	result := s.engine.Evaluate(req.Question, req.Transcript, req.EffectiveDuration())
	s.metrics.RecordFeedback(ctx, observability.SourceSingle, result.Feedback, result.Elapsed)

	s.jsonResponse(w, http.StatusOK, TranscribeResponse{
		ScoreResponse: s.persist(r, req.Question, req.EffectiveDuration(), result),
		Transcript:    transcript,
	})
}
