// Package server provides the HTTP REST API for the speech coach.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/jonathan/speech-coach/internal/db"
	"github.com/jonathan/speech-coach/internal/engine"
	"github.com/jonathan/speech-coach/internal/observability"
	"github.com/jonathan/speech-coach/internal/server/ratelimit"
	"github.com/jonathan/speech-coach/internal/transcription"
	"github.com/jonathan/speech-coach/internal/types"
)

// FeedbackStore persists scored answers. *db.DB satisfies it.
type FeedbackStore interface {
	CreatePracticeSession(ctx context.Context, question string, durationSeconds float64) (uuid.UUID, error)
	SaveFeedback(ctx context.Context, sessionID uuid.UUID, rec types.FeedbackRecord, metrics *types.SpeechMetrics) (uuid.UUID, error)
	GetFeedback(ctx context.Context, id uuid.UUID) (*db.StoredFeedback, error)
	ListFeedback(ctx context.Context, limit int) ([]db.StoredFeedback, error)
}

// Server serves the scoring API
type Server struct {
	httpServer  *http.Server
	engine      *engine.Engine
	store       FeedbackStore
	transcriber transcription.Provider
	logger      zerolog.Logger
	metrics     *observability.Metrics
	rateLimiter *ratelimit.Limiter
	batchLimit  int
	live        *liveRegistry
}

// Config wires a Server to its collaborators
type Config struct {
	Port        int
	Engine      *engine.Engine
	Store       FeedbackStore          // nil disables persistence
	Transcriber transcription.Provider // nil disables POST /transcribe
	Logger      zerolog.Logger
	Metrics     *observability.Metrics // nil records to a no-op provider
	RateLimit   *ratelimit.Config      // nil loads from the environment
	BatchLimit  int                    // max answers scored in parallel per batch
}

// New builds a Server. Only Engine is required.
func New(cfg Config) (*Server, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("server requires a scoring engine")
	}

	met := cfg.Metrics
	if met == nil {
		var err error
		met, err = observability.NewMetrics(noop.NewMeterProvider())
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics: %w", err)
		}
	}

	rlConfig := cfg.RateLimit
	if rlConfig == nil {
		rlConfig = ratelimit.LoadConfig()
	}

	s := &Server{
		engine:      cfg.Engine,
		store:       cfg.Store,
		transcriber: cfg.Transcriber,
		logger:      cfg.Logger,
		metrics:     met,
		rateLimiter: ratelimit.NewLimiter(rlConfig),
		batchLimit:  cfg.BatchLimit,
		live:        newLiveRegistry(),
	}

	s.httpServer = &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(cfg.Port)),
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute, // streamed batches
		IdleTimeout:       90 * time.Second,
	}

	return s, nil
}

// routes builds the mux and wraps it in the middleware chain. The metrics
// middleware is outermost so it sees the pattern the mux matched.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", observability.Handler())

	// Scoring endpoints
	mux.HandleFunc("POST /score", s.handleScore)
	mux.HandleFunc("POST /score/batch", s.handleScoreBatch)
	mux.HandleFunc("POST /score/batch/stream", s.handleScoreBatchStream)
	mux.HandleFunc("POST /transcribe", s.handleTranscribe)

	// Live session endpoints
	mux.HandleFunc("POST /live", s.handleStartLive)
	mux.HandleFunc("GET /live/{id}", s.handleLiveSnapshot)
	mux.HandleFunc("POST /live/{id}/fragments", s.handleLiveFragment)
	mux.HandleFunc("POST /live/{id}/finish", s.handleFinishLive)
	mux.HandleFunc("DELETE /live/{id}", s.handleDeleteLive)

	// Stored feedback endpoints
	mux.HandleFunc("GET /feedback", s.handleListFeedback)
	mux.HandleFunc("GET /feedback/{id}", s.handleGetFeedback)

	return observability.Middleware(s.metrics)(s.withRateLimit(s.withLogging(s.withCORS(mux))))
}

// Handler returns the fully wrapped request handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests and
// closes any open live sessions.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.httpServer.Addr).Msg("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	defer s.rateLimiter.Stop()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	s.logger.Info().Msg("shutting down server")

	drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.live.closeAll(drainCtx, s.metrics)

	s.logger.Info().Msg("server stopped")
	return nil
}

// corsHeaders are set on every response. Browser clients call the API from
// any origin; none of the endpoints use cookies.
var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET, POST, DELETE, OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type",
	"Access-Control-Max-Age":       "600",
}

// withCORS answers preflight requests itself and decorates everything else.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range corsHeaders {
			w.Header().Set(k, v)
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients that have spent their budget for the route's tier.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientIP(r), r.URL.Path, r.Method)
		writeQuotaHeaders(w.Header(), info)
		if allowed {
			next.ServeHTTP(w, r)
			return
		}
		s.tooManyRequests(w, r, info)
	})
}

// withLogging emits one line per request once the handler returns.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		began := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Dur("elapsed", time.Since(began)).
			Msg("request completed")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	storage, transcriber := "disabled", "disabled"
	if s.store != nil {
		storage = "enabled"
	}
	if s.transcriber != nil {
		transcriber = s.transcriber.Name()
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":        "ok",
		"storage":       storage,
		"transcription": transcriber,
	})
}

// jsonResponse encodes body as the response with the given status
func (s *Server) jsonResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error().Err(err).Int("status", status).Msg("failed to encode response")
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// failure writes err with the status HTTPStatus assigns it
func (s *Server) failure(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		s.logger.Error().Err(err).Msg("request failed")
	}
	s.errorResponse(w, status, err.Error())
}

// clientIP keys rate limiting by the peer address without its port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// writeQuotaHeaders reports the caller's remaining budget. Unlimited routes get none.
func writeQuotaHeaders(h http.Header, info ratelimit.Info) {
	if info.Limit <= 0 {
		return
	}
	h.Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	h.Set("X-RateLimit-Tier", info.Tier)
}

// RateLimitedResponse is the body of a 429
type RateLimitedResponse struct {
	Error      string `json:"error"`
	Tier       string `json:"tier,omitempty"`
	Limit      int    `json:"limit"`
	ResetAt    string `json:"reset_at,omitempty"`
	RetryAfter int    `json:"retry_after_seconds,omitempty"`
}

func (s *Server) tooManyRequests(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	body := RateLimitedResponse{
		Error: "rate limit exceeded",
		Tier:  info.Tier,
		Limit: info.Limit,
	}
	if !info.ResetTime.IsZero() {
		body.ResetAt = info.ResetTime.UTC().Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		body.RetryAfter = int(math.Ceil(info.RetryAfter.Seconds()))
		w.Header().Set("Retry-After", strconv.Itoa(body.RetryAfter))
	}

	s.logger.Warn().
		Str("client", clientIP(r)).
		Str("path", r.URL.Path).
		Str("tier", info.Tier).
		Dur("retry_after", info.RetryAfter).
		Msg("rate limit exceeded")

	s.jsonResponse(w, http.StatusTooManyRequests, body)
}
