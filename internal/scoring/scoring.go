// Package scoring computes the clarity, structure and pace sub-scores from speech metrics.
//
// Every calculator is a pure function: it starts from a baseline, applies
// ordered penalties and bonuses, rounds to the nearest integer and clamps the
// result to [0,100]. No calculator reads another's output.
package scoring

import (
	"fmt"
	"math"

	"github.com/jonathan/speech-coach/internal/types"
)

// Score bounds
const (
	MinScore = 0
	MaxScore = 100
)

// Clarity policy
const (
	clarityBaseline         = 100.0
	FillerRatioThreshold    = 0.033 // roughly one filler in thirty words
	fillerPenaltyPerRatio   = 500.0
	maxFillerPenalty        = 30.0
	confidenceThreshold     = 0.9
	confidencePenaltyFactor = 100.0
	longPausePenalty        = 5.0
	maxLongPausePenalty     = 15.0
)

// Structure policy
const (
	structureBaseline      = 100.0
	ChoppySentenceWords    = 10.0
	choppyPenalty          = 15.0
	RunOnSentenceWords     = 30.0
	runOnPenalty           = 20.0
	LowRichnessThreshold   = 0.4
	lowRichnessPenalty     = 15.0
	HighRichnessThreshold  = 0.7
	highRichnessBonus      = 10.0
	minStructuredSentences = 3
	thinAnswerPenalty      = 20.0
)

// Pace policy. The ideal window is 130-170 WPM; outside it the penalty grows
// linearly with the distance to the nearest edge, capped per side.
const (
	paceBaseline         = 100.0
	IdealMinWPM          = 130.0
	IdealMaxWPM          = 170.0
	pacePenaltyPerWPM    = 0.5
	maxSlowPenalty       = 25.0
	maxFastPenalty       = 30.0
	SlowPauseThreshold   = 1.5
	slowPausePenalty     = 15.0
	RushedPauseThreshold = 0.2
	rushedPausePenalty   = 10.0
)

// Clarity scores filler usage, transcription confidence and long pauses.
// confidences are the raw per-word recognition confidences; when empty the
// confidence penalty is skipped.
func Clarity(m types.SpeechMetrics, confidences []float64) int {
	mustBeValid(m)

	score := clarityBaseline

	ratio := m.FillerRatio()
	if ratio > FillerRatioThreshold {
		score -= math.Min(maxFillerPenalty, (ratio-FillerRatioThreshold)*fillerPenaltyPerRatio)
	}

	if avg, ok := meanConfidence(confidences); ok && avg < confidenceThreshold {
		score -= (confidenceThreshold - avg) * confidencePenaltyFactor
	}

	score -= math.Min(maxLongPausePenalty, longPausePenalty*float64(m.LongPauseCount))

	return Clamp(score)
}

// meanConfidence averages the finite values in [0,1]. ok is false when there
// are none.
func meanConfidence(confidences []float64) (avg float64, ok bool) {
	n := 0
	for _, c := range confidences {
		if !(c >= 0 && c <= 1) {
			continue
		}
		n++
		avg += (c - avg) / float64(n)
	}
	return avg, n > 0
}

// Structure scores sentence length, lexical variety and answer depth.
func Structure(m types.SpeechMetrics) int {
	mustBeValid(m)

	score := structureBaseline

	avgWords := 0.0
	if m.SentenceCount > 0 {
		avgWords = float64(m.WordCount) / float64(m.SentenceCount)
	}
	switch {
	case avgWords < ChoppySentenceWords:
		score -= choppyPenalty
	case avgWords > RunOnSentenceWords:
		score -= runOnPenalty
	}

	switch {
	case m.VocabularyRichness < LowRichnessThreshold:
		score -= lowRichnessPenalty
	case m.VocabularyRichness > HighRichnessThreshold:
		score += highRichnessBonus
	}

	if m.SentenceCount < minStructuredSentences {
		score -= thinAnswerPenalty
	}

	return Clamp(score)
}

// Pace scores speaking rate against the ideal window and pause rhythm.
func Pace(m types.SpeechMetrics) int {
	mustBeValid(m)

	score := paceBaseline
	score -= RatePenalty(m.WordsPerMinute)

	switch {
	case m.AveragePauseDuration > SlowPauseThreshold:
		score -= slowPausePenalty
	case len(m.PauseDurations) > 0 && m.AveragePauseDuration < RushedPauseThreshold:
		score -= rushedPausePenalty
	}

	return Clamp(score)
}

// RatePenalty is the pace deduction for a speaking rate, 0 inside the ideal window.
func RatePenalty(wpm float64) float64 {
	switch {
	case wpm < IdealMinWPM:
		return math.Min(maxSlowPenalty, pacePenaltyPerWPM*(IdealMinWPM-wpm))
	case wpm > IdealMaxWPM:
		return math.Min(maxFastPenalty, pacePenaltyPerWPM*(wpm-IdealMaxWPM))
	default:
		return 0
	}
}

// Clamp rounds score to the nearest integer and bounds it to [0,100].
func Clamp(score float64) int {
	rounded := int(math.Round(score))
	if rounded < MinScore {
		return MinScore
	}
	if rounded > MaxScore {
		return MaxScore
	}
	return rounded
}

// mustBeValid panics on metrics no extractor can produce. Such input is a
// programming error and must not turn into a silently clamped score.
func mustBeValid(m types.SpeechMetrics) {
	if m.WordCount < 0 || m.FillerWordCount < 0 || m.SentenceCount < 0 || m.LongPauseCount < 0 || m.UniqueWordCount < 0 {
		panic(fmt.Sprintf("scoring: negative count in metrics: %+v", m))
	}
	for name, v := range map[string]float64{
		"words_per_minute":       m.WordsPerMinute,
		"average_pause_duration": m.AveragePauseDuration,
		"vocabulary_richness":    m.VocabularyRichness,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			panic(fmt.Sprintf("scoring: invalid %s %v", name, v))
		}
	}
}
