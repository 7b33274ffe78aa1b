// Package types provides type definitions for structured data used throughout the speech-coach system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"github.com/go-playground/validator/v10"
)

// ScoreRequest is one answer to be scored: the transcript plus its session context.
type ScoreRequest struct {
	Question        string     `json:"question"`
	DurationSeconds float64    `json:"duration_seconds" validate:"gte=0"`
	Transcript      Transcript `json:"transcript"`
}

// EffectiveDuration prefers the session duration and falls back to the transcript's own.
func (r ScoreRequest) EffectiveDuration() float64 {
	if r.DurationSeconds > 0 {
		return r.DurationSeconds
	}
	return r.Transcript.Duration
}

// BatchScoreRequest scores several independent answers in one call.
type BatchScoreRequest struct {
	Items []ScoreRequest `json:"items" validate:"required,min=1,max=100"`
}

// FragmentRequest carries one partial transcript fragment for a live session.
type FragmentRequest struct {
	Text    string  `json:"text"`
	IsFinal bool    `json:"is_final"`
	Elapsed float64 `json:"elapsed_seconds" validate:"gte=0"`
}

// StartLiveRequest opens a live session.
type StartLiveRequest struct {
	Question string `json:"question" validate:"max=2000"`
}

// validate caches struct metadata and is safe for concurrent use.
var validate = validator.New()

// Validate validates the ScoreRequest, including every word record.
func (r *ScoreRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	for i := range r.Transcript.Words {
		if err := validate.Struct(&r.Transcript.Words[i]); err != nil {
			return err
		}
	}
	return nil
}

// Validate validates the BatchScoreRequest using the validator.
func (r *BatchScoreRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	for i := range r.Items {
		if err := r.Items[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate validates the FragmentRequest using the validator.
func (r *FragmentRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the StartLiveRequest using the validator.
func (r *StartLiveRequest) Validate() error {
	return validate.Struct(r)
}
