// Package types provides type definitions for structured data used throughout the speech-coach system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Length verdicts for ContentSignals.LengthVerdict
const (
	LengthTooBrief    = "too_brief"
	LengthAppropriate = "appropriate"
	LengthTooVerbose  = "too_verbose"
)

// ContentSignals are the qualitative facts detected in the answer text
type ContentSignals struct {
	HasExamples          bool   `json:"has_examples"`
	HasStructureMarkers  bool   `json:"has_structure_markers"`
	HasConfidentLanguage bool   `json:"has_confident_language"`
	HasHedgingLanguage   bool   `json:"has_hedging_language"`
	HasQuantifiedResults bool   `json:"has_quantified_results"`
	IsAppropriateLength  bool   `json:"is_appropriate_length"`
	LengthVerdict        string `json:"length_verdict"`

	// QuestionOverlap is the share of question keywords found in the answer.
	// Nil when the question has no usable keywords.
	QuestionOverlap *float64 `json:"question_overlap,omitempty"`
}
