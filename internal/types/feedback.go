// Package types provides type definitions for structured data used throughout the speech-coach system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// FeedbackRecord is the scored result for one spoken answer. It is the entire
// output contract of the scoring engine.
type FeedbackRecord struct {
	OverallScore    int      `json:"overall_score"`
	ClarityScore    int      `json:"clarity_score"`
	StructureScore  int      `json:"structure_score"`
	PaceScore       int      `json:"pace_score"`
	ContentScore    int      `json:"content_score"`
	FillerWordCount int      `json:"filler_word_count"`
	FeedbackText    string   `json:"feedback_text"`
	Strengths       []string `json:"strengths"`
	Improvements    []string `json:"improvements"`
}

// SubScores groups the four independent dimension scores
type SubScores struct {
	Clarity   int `json:"clarity"`
	Structure int `json:"structure"`
	Pace      int `json:"pace"`
	Content   int `json:"content"`
}
