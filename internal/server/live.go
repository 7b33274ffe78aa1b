package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/jonathan/speech-coach/internal/live"
	"github.com/jonathan/speech-coach/internal/observability"
	"github.com/jonathan/speech-coach/internal/types"
)

// StartLiveResponse is the body returned when a live session opens
type StartLiveResponse struct {
	SessionID string `json:"session_id"`
}

// liveEntry guards one session; live.Session itself is not concurrency safe.
type liveEntry struct {
	mu       sync.Mutex
	session  *live.Session
	question string
}

// liveRegistry tracks open live sessions by id.
type liveRegistry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*liveEntry
}

func newLiveRegistry() *liveRegistry {
	return &liveRegistry{sessions: make(map[uuid.UUID]*liveEntry)}
}

func (lr *liveRegistry) add(entry *liveEntry) uuid.UUID {
	id := uuid.New()
	lr.mu.Lock()
	lr.sessions[id] = entry
	lr.mu.Unlock()
	return id
}

func (lr *liveRegistry) get(id uuid.UUID) (*liveEntry, bool) {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	entry, ok := lr.sessions[id]
	return entry, ok
}

// remove detaches the session so no later request can find it.
func (lr *liveRegistry) remove(id uuid.UUID) (*liveEntry, bool) {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	entry, ok := lr.sessions[id]
	if ok {
		delete(lr.sessions, id)
	}
	return entry, ok
}

func (lr *liveRegistry) len() int {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	return len(lr.sessions)
}

// closeAll stops every open session.
func (lr *liveRegistry) closeAll(ctx context.Context, met *observability.Metrics) {
	lr.mu.Lock()
	entries := lr.sessions
	lr.sessions = make(map[uuid.UUID]*liveEntry)
	lr.mu.Unlock()

	for _, entry := range entries {
		entry.mu.Lock()
		wasOpen := !entry.session.Stopped()
		entry.session.Stop()
		entry.mu.Unlock()
		if wasOpen {
			met.LiveSessionClosed(ctx)
		}
	}
}

// lookupLive resolves the {id} path value to a registered session. With
// detach set the session is removed from the registry.
func (s *Server) lookupLive(w http.ResponseWriter, r *http.Request, detach bool) (*liveEntry, bool) {
	idStr := r.PathValue("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		s.failure(w, &ErrValidation{Field: "id", Message: "invalid session ID format"})
		return nil, false
	}

	var (
		entry *liveEntry
		ok    bool
	)
	if detach {
		entry, ok = s.live.remove(id)
	} else {
		entry, ok = s.live.get(id)
	}
	if !ok {
		s.failure(w, &ErrNotFound{Resource: "live session", ID: idStr})
		return nil, false
	}
	return entry, true
}

// handleStartLive opens a live session
func (s *Server) handleStartLive(w http.ResponseWriter, r *http.Request) {
	var req types.StartLiveRequest
	if err := decodeJSON(r, &req, true); err != nil {
		s.failure(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.failure(w, validationError(err))
		return
	}

	id := s.live.add(&liveEntry{
		session:  live.NewSession(s.engine.Extractor()),
		question: req.Question,
	})
	s.metrics.LiveSessionOpened(r.Context())

	s.jsonResponse(w, http.StatusCreated, StartLiveResponse{SessionID: id.String()})
}

// handleLiveFragment feeds one fragment and returns the running metrics
func (s *Server) handleLiveFragment(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookupLive(w, r, false)
	if !ok {
		return
	}

	var req types.FragmentRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.failure(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.failure(w, validationError(err))
		return
	}

	entry.mu.Lock()
	partial, err := entry.session.Feed(live.Fragment{Text: req.Text, IsFinal: req.IsFinal, Elapsed: req.Elapsed})
	entry.mu.Unlock()
	if err != nil {
		s.failure(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, partial)
}

// handleLiveSnapshot returns the running metrics without feeding anything
func (s *Server) handleLiveSnapshot(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookupLive(w, r, false)
	if !ok {
		return
	}

	entry.mu.Lock()
	partial, err := entry.session.Snapshot()
	entry.mu.Unlock()
	if err != nil {
		s.failure(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, partial)
}

// handleFinishLive scores everything fed so far and discards the session
func (s *Server) handleFinishLive(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookupLive(w, r, true)
	if !ok {
		return
	}

	entry.mu.Lock()
	transcript := entry.session.Transcript()
	entry.session.Stop()
	entry.mu.Unlock()
	s.metrics.LiveSessionClosed(r.Context())

	result := s.engine.Evaluate(entry.question, transcript, transcript.Duration)
	s.metrics.RecordFeedback(r.Context(), observability.SourceLive, result.Feedback, result.Elapsed)

	s.jsonResponse(w, http.StatusOK, s.persist(r, entry.question, transcript.Duration, result))
}

// handleDeleteLive stops and discards a session without scoring it
func (s *Server) handleDeleteLive(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookupLive(w, r, true)
	if !ok {
		return
	}

	entry.mu.Lock()
	entry.session.Stop()
	entry.mu.Unlock()
	s.metrics.LiveSessionClosed(r.Context())

	w.WriteHeader(http.StatusNoContent)
}
