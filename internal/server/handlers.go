package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/speech-coach/internal/db"
	"github.com/jonathan/speech-coach/internal/engine"
	"github.com/jonathan/speech-coach/internal/observability"
	"github.com/jonathan/speech-coach/internal/types"
)

var errNoStore = &ErrUnavailable{Feature: "feedback storage"}

// ScoreResponse is the body returned for every scored answer
type ScoreResponse struct {
	SessionID  string               `json:"session_id,omitempty"`
	FeedbackID string               `json:"feedback_id,omitempty"`
	Feedback   types.FeedbackRecord `json:"feedback"`
	Metrics    types.SpeechMetrics  `json:"metrics"`
}

// BatchScoreResponse holds batch results in request order
type BatchScoreResponse struct {
	Results []ScoreResponse `json:"results"`
}

// BatchResultEvent is the payload of each streamed "result" event
type BatchResultEvent struct {
	Index int `json:"index"`
	ScoreResponse
}

// FeedbackListResponse is the body of GET /feedback
type FeedbackListResponse struct {
	Items []db.StoredFeedback `json:"items"`
	Limit int                 `json:"limit"`
}

// decodeJSON reads the request body into v. An empty body is accepted when
// allowEmpty is set.
func decodeJSON(r *http.Request, v any, allowEmpty bool) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}

// handleScore scores a single answer
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req types.ScoreRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.failure(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.failure(w, validationError(err))
		return
	}

	result := s.engine.Evaluate(req.Question, req.Transcript, req.EffectiveDuration())
	s.metrics.RecordFeedback(r.Context(), observability.SourceSingle, result.Feedback, result.Elapsed)

	s.jsonResponse(w, http.StatusOK, s.persist(r, req.Question, req.EffectiveDuration(), result))
}

// handleScoreBatch scores several answers and returns them in request order
func (s *Server) handleScoreBatch(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeBatch(w, r)
	if !ok {
		return
	}

	results, err := s.engine.ScoreBatch(r.Context(), req.Items, s.batchLimit)
	if err != nil {
		s.failure(w, err)
		return
	}

	resp := BatchScoreResponse{Results: make([]ScoreResponse, len(results))}
	for i, result := range results {
		s.metrics.RecordFeedback(r.Context(), observability.SourceBatch, result.Feedback, result.Elapsed)
		item := req.Items[i]
		resp.Results[i] = s.persist(r, item.Question, item.EffectiveDuration(), result)
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// handleScoreBatchStream scores several answers and streams each result via
// SSE as soon as it is ready
func (s *Server) handleScoreBatchStream(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeBatch(w, r)
	if !ok {
		return
	}

	stream, err := newEventStream(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	sent := 0
	_, err = s.engine.ScoreBatchFunc(r.Context(), req.Items, s.batchLimit, func(i int, result engine.Result) {
		s.metrics.RecordFeedback(r.Context(), observability.SourceBatch, result.Feedback, result.Elapsed)
		item := req.Items[i]
		event := BatchResultEvent{Index: i, ScoreResponse: s.persist(r, item.Question, item.EffectiveDuration(), result)}
		if err := stream.send(eventResult, event); err != nil {
			s.logger.Warn().Err(err).Int("index", i).Msg("failed to stream batch result")
			return
		}
		sent++
	})
	if err != nil {
		stream.fail(err.Error())
		stream.finish(sent, streamCancelled)
		return
	}

	stream.finish(sent, streamCompleted)
}

func (s *Server) decodeBatch(w http.ResponseWriter, r *http.Request) (*types.BatchScoreRequest, bool) {
	var req types.BatchScoreRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.failure(w, err)
		return nil, false
	}
	if err := req.Validate(); err != nil {
		s.failure(w, validationError(err))
		return nil, false
	}
	return &req, true
}

// persist stores the result when a store is configured. Storage failures are
// logged and the response is returned without ids.
func (s *Server) persist(r *http.Request, question string, duration float64, result engine.Result) ScoreResponse {
	resp := ScoreResponse{Feedback: result.Feedback, Metrics: result.Metrics}
	if s.store == nil {
		return resp
	}

	ctx := r.Context()
	sessionID, err := s.store.CreatePracticeSession(ctx, question, duration)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to create practice session")
		return resp
	}
	feedbackID, err := s.store.SaveFeedback(ctx, sessionID, result.Feedback, &result.Metrics)
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID.String()).Msg("failed to save feedback")
		return resp
	}

	resp.SessionID = sessionID.String()
	resp.FeedbackID = feedbackID.String()
	return resp
}

// handleGetFeedback returns one stored feedback record
func (s *Server) handleGetFeedback(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.failure(w, errNoStore)
		return
	}

	idStr := r.PathValue("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		s.failure(w, &ErrValidation{Field: "id", Message: "invalid feedback ID format"})
		return
	}

	stored, err := s.store.GetFeedback(r.Context(), id)
	if err != nil {
		s.failure(w, err)
		return
	}
	if stored == nil {
		s.failure(w, &ErrNotFound{Resource: "feedback", ID: idStr})
		return
	}

	s.jsonResponse(w, http.StatusOK, stored)
}

// handleListFeedback returns the most recent stored feedback records
func (s *Server) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.failure(w, errNoStore)
		return
	}

	limit := db.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.failure(w, &ErrValidation{Field: "limit", Message: "must be a positive integer"})
			return
		}
		limit = db.ClampLimit(n)
	}

	items, err := s.store.ListFeedback(r.Context(), limit)
	if err != nil {
		s.failure(w, err)
		return
	}
	if items == nil {
		items = []db.StoredFeedback{}
	}

	s.jsonResponse(w, http.StatusOK, FeedbackListResponse{Items: items, Limit: limit})
}
