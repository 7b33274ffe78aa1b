// Package db provides PostgreSQL storage for practice sessions and their feedback.
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/speech-coach/internal/types"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Migrate creates the tables if they do not exist
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// CreatePracticeSession records the context of one recorded answer and returns its ID
func (db *DB) CreatePracticeSession(ctx context.Context, question string, durationSeconds float64) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO practice_sessions (question, duration_seconds)
		 VALUES ($1, $2)
		 RETURNING id`,
		question, durationSeconds,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create practice session: %w", err)
	}
	return id, nil
}

// SaveFeedback stores a feedback record for a practice session. metrics may be nil.
func (db *DB) SaveFeedback(ctx context.Context, sessionID uuid.UUID, rec types.FeedbackRecord, metrics *types.SpeechMetrics) (uuid.UUID, error) {
	strengths, err := json.Marshal(nonNil(rec.Strengths))
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal strengths: %w", err)
	}
	improvements, err := json.Marshal(nonNil(rec.Improvements))
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal improvements: %w", err)
	}
	var metricsJSON []byte
	if metrics != nil {
		if metricsJSON, err = json.Marshal(metrics); err != nil {
			return uuid.Nil, fmt.Errorf("failed to marshal metrics: %w", err)
		}
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO feedback_records (
			session_id, overall_score, clarity_score, structure_score, pace_score, content_score,
			filler_word_count, feedback_text, strengths, improvements, metrics
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id`,
		sessionID, rec.OverallScore, rec.ClarityScore, rec.StructureScore, rec.PaceScore, rec.ContentScore,
		rec.FillerWordCount, rec.FeedbackText, strengths, improvements, metricsJSON,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save feedback: %w", err)
	}
	return id, nil
}

// GetFeedback retrieves a stored feedback record by ID. It returns nil, nil when not found.
func (db *DB) GetFeedback(ctx context.Context, id uuid.UUID) (*StoredFeedback, error) {
	row := db.pool.QueryRow(ctx, selectFeedbackSQL+` WHERE f.id = $1`, id)
	fb, err := scanFeedback(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}
	return fb, nil
}

// ListFeedback returns the most recent feedback records, newest first
func (db *DB) ListFeedback(ctx context.Context, limit int) ([]StoredFeedback, error) {
	rows, err := db.pool.Query(ctx, selectFeedbackSQL+` ORDER BY f.created_at DESC LIMIT $1`, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	out := []StoredFeedback{}
	for rows.Next() {
		fb, err := scanFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		out = append(out, *fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feedback: %w", err)
	}
	return out, nil
}

// ClampLimit bounds a list limit to [1, MaxListLimit], using DefaultListLimit when unset
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

const selectFeedbackSQL = `SELECT f.id, f.session_id, s.question, s.duration_seconds,
	f.overall_score, f.clarity_score, f.structure_score, f.pace_score, f.content_score,
	f.filler_word_count, f.feedback_text, f.strengths, f.improvements, f.metrics, f.created_at
	FROM feedback_records f
	JOIN practice_sessions s ON s.id = f.session_id`

func scanFeedback(row pgx.Row) (*StoredFeedback, error) {
	var fb StoredFeedback
	var strengths, improvements, metrics []byte
	err := row.Scan(
		&fb.ID, &fb.SessionID, &fb.Question, &fb.DurationSeconds,
		&fb.Feedback.OverallScore, &fb.Feedback.ClarityScore, &fb.Feedback.StructureScore,
		&fb.Feedback.PaceScore, &fb.Feedback.ContentScore,
		&fb.Feedback.FillerWordCount, &fb.Feedback.FeedbackText,
		&strengths, &improvements, &metrics, &fb.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(strengths, &fb.Feedback.Strengths); err != nil {
		return nil, fmt.Errorf("failed to unmarshal strengths: %w", err)
	}
	if err := json.Unmarshal(improvements, &fb.Feedback.Improvements); err != nil {
		return nil, fmt.Errorf("failed to unmarshal improvements: %w", err)
	}
	if len(metrics) > 0 {
		fb.Metrics = &types.SpeechMetrics{}
		if err := json.Unmarshal(metrics, fb.Metrics); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metrics: %w", err)
		}
	}
	return &fb, nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
