package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/speech-coach/internal/types"
)

// List limits for ListFeedback
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// StoredFeedback is a persisted feedback record joined with its practice session
type StoredFeedback struct {
	ID              uuid.UUID            `json:"id"`
	SessionID       uuid.UUID            `json:"session_id"`
	Question        string               `json:"question"`
	DurationSeconds float64              `json:"duration_seconds"`
	Feedback        types.FeedbackRecord `json:"feedback"`
	Metrics         *types.SpeechMetrics `json:"metrics,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
}
