package feedback

import (
	"fmt"
	"slices"

	"github.com/jonathan/speech-coach/internal/scoring"
	"github.com/jonathan/speech-coach/internal/types"
)

var strengthPool = []string{
	"Completed a full response to the question",
	"Showed willingness to practice and improve",
	"Engaged directly with the interview question",
	"Maintained focus throughout the answer",
}

var improvementPool = []string{
	"Practice answering out loud to build fluency",
	"Record yourself and review the playback",
	"Prepare two or three stories you can adapt to common questions",
	"Pause briefly before answering to organize your thoughts",
}

// StrengthPool returns the generic strengths that pad short lists, in order.
// The result is a copy.
func StrengthPool() []string {
	return slices.Clone(strengthPool)
}

// ImprovementPool returns the generic improvements that pad short lists, in
// order. The result is a copy.
func ImprovementPool() []string {
	return slices.Clone(improvementPool)
}

// Metric-derived advice
const (
	StrengthPace           = "Spoke at a comfortable, steady pace"
	ImprovementSlowPace    = "Pick up the pace slightly; aim for 130 to 170 words per minute"
	ImprovementFastPace    = "Slow down a little; aim for 130 to 170 words per minute"
	StrengthFewFillers     = "Kept filler words to a minimum"
	StrengthVocabulary     = "Used varied, precise vocabulary"
	ImprovementVocabulary  = "Vary your word choice to avoid repeating the same terms"
	ImprovementChoppy      = "Combine short, choppy sentences into fuller thoughts"
	ImprovementRunOn       = "Break long sentences into shorter, clearer ones"
	StrengthPauses         = "Used natural pauses to let key points land"
	ImprovementLongPauses  = "Keep pauses short; long silences can sound like uncertainty"
	ImprovementRushedPause = "Pause briefly between points instead of rushing from one to the next"
)

// MetricCandidates phrases the metric thresholds as advice. An answer with no
// words yields no candidates since nothing was measured.
func MetricCandidates(m types.SpeechMetrics) (strengths, improvements []string) {
	strengths = []string{}
	improvements = []string{}
	if m.WordCount == 0 {
		return strengths, improvements
	}

	if m.WordsPerMinute > 0 {
		switch {
		case m.WordsPerMinute < scoring.IdealMinWPM:
			improvements = append(improvements, ImprovementSlowPace)
		case m.WordsPerMinute > scoring.IdealMaxWPM:
			improvements = append(improvements, ImprovementFastPace)
		default:
			strengths = append(strengths, StrengthPace)
		}
	}

	if m.FillerRatio() <= scoring.FillerRatioThreshold {
		strengths = append(strengths, StrengthFewFillers)
	} else {
		improvements = append(improvements, fillerAdvice(m.FillerWords))
	}

	switch {
	case m.VocabularyRichness > scoring.HighRichnessThreshold:
		strengths = append(strengths, StrengthVocabulary)
	case m.VocabularyRichness < scoring.LowRichnessThreshold:
		improvements = append(improvements, ImprovementVocabulary)
	}

	switch {
	case m.AverageWordsPerSentence > 0 && m.AverageWordsPerSentence < scoring.ChoppySentenceWords:
		improvements = append(improvements, ImprovementChoppy)
	case m.AverageWordsPerSentence > scoring.RunOnSentenceWords:
		improvements = append(improvements, ImprovementRunOn)
	}

	switch {
	case m.AveragePauseDuration > scoring.SlowPauseThreshold || m.LongPauseCount > 0:
		improvements = append(improvements, ImprovementLongPauses)
	case len(m.PauseDurations) > 0 && m.AveragePauseDuration < scoring.RushedPauseThreshold:
		improvements = append(improvements, ImprovementRushedPause)
	case len(m.PauseDurations) > 0:
		strengths = append(strengths, StrengthPauses)
	}

	return strengths, improvements
}

func fillerAdvice(fillers []string) string {
	top := MostFrequent(fillers)
	if top == "" {
		return "Reduce filler words and replace them with a brief pause"
	}
	return fmt.Sprintf("Reduce filler words such as %q and replace them with a brief pause", top)
}

// MostFrequent returns the most common entry. On a tie the entry that reached
// the count first wins.
func MostFrequent(items []string) string {
	counts := make(map[string]int, len(items))
	best, bestCount := "", 0
	for _, item := range items {
		counts[item]++
		if counts[item] > bestCount {
			best, bestCount = item, counts[item]
		}
	}
	return best
}
