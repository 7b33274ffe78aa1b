package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

// Event names on the batch score stream
const (
	eventResult   = "result"
	eventError    = "error"
	eventComplete = "complete"
)

// Stream statuses reported by the final complete event
const (
	streamCompleted = "completed"
	streamCancelled = "cancelled"
)

// StreamSummary is the payload of the final "complete" event
type StreamSummary struct {
	Total  int    `json:"total"`
	Status string `json:"status"`
}

// eventStream writes Server-Sent Events. Each event carries an increasing id
// so a client can tell whether it missed any.
type eventStream struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	nextID  int
}

// newEventStream sets the SSE headers on w. It fails when w cannot flush.
func newEventStream(w http.ResponseWriter) (*eventStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	return &eventStream{w: w, flusher: flusher}, nil
}

// send writes one event and flushes it.
func (s *eventStream) send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.nextID, event, payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// fail sends an error event. Write errors are dropped; the client is gone.
func (s *eventStream) fail(message string) {
	_ = s.send(eventError, map[string]string{"error": message})
}

// finish sends the terminating complete event.
func (s *eventStream) finish(total int, status string) {
	_ = s.send(eventComplete, StreamSummary{Total: total, Status: status})
}
