// Package feedback combines sub-scores, metrics and content candidates into the
// final FeedbackRecord.
package feedback

import (
	"github.com/jonathan/speech-coach/internal/scoring"
	"github.com/jonathan/speech-coach/internal/types"
)

// Overall score weights, in percent. They sum to 100.
const (
	ClarityWeight   = 30
	StructureWeight = 25
	PaceWeight      = 25
	ContentWeight   = 20
)

// List bounds for strengths and improvements
const (
	MinListItems = 3
	MaxListItems = 4
)

// Input is everything the synthesizer needs for one answer.
type Input struct {
	Scores              types.SubScores
	Metrics             types.SpeechMetrics
	ContentStrengths    []string
	ContentImprovements []string
}

// Synthesize builds the feedback record. It is deterministic: identical input
// always yields an identical record.
func Synthesize(in Input) types.FeedbackRecord {
	overall := OverallScore(in.Scores)

	metricStrengths, metricImprovements := MetricCandidates(in.Metrics)

	return types.FeedbackRecord{
		OverallScore:    overall,
		ClarityScore:    in.Scores.Clarity,
		StructureScore:  in.Scores.Structure,
		PaceScore:       in.Scores.Pace,
		ContentScore:    in.Scores.Content,
		FillerWordCount: in.Metrics.FillerWordCount,
		FeedbackText:    Narrative(overall, in.Metrics),
		Strengths:       BuildList(strengthPool, in.ContentStrengths, metricStrengths),
		Improvements:    BuildList(improvementPool, in.ContentImprovements, metricImprovements),
	}
}

// OverallScore is round(0.30*clarity + 0.25*structure + 0.25*pace + 0.20*content),
// computed in integer arithmetic so the weighting is exact.
func OverallScore(s types.SubScores) int {
	weighted := ClarityWeight*s.Clarity + StructureWeight*s.Structure + PaceWeight*s.Pace + ContentWeight*s.Content
	if weighted < 0 {
		return scoring.MinScore
	}
	return scoring.Clamp(float64((weighted + 50) / 100))
}

// BuildList concatenates candidate groups in order, drops exact duplicates,
// keeps at most MaxListItems and pads from pool up to MinListItems.
func BuildList(pool []string, groups ...[]string) []string {
	out := make([]string, 0, MaxListItems)
	seen := make(map[string]bool)

	add := func(item string) bool {
		if len(out) >= MaxListItems {
			return false
		}
		if item == "" || seen[item] {
			return true
		}
		seen[item] = true
		out = append(out, item)
		return true
	}

	for _, group := range groups {
		for _, item := range group {
			if !add(item) {
				return out
			}
		}
	}

	for _, item := range pool {
		if len(out) >= MinListItems {
			break
		}
		add(item)
	}
	return out
}
