// Package metrics extracts quantitative speech metrics from a transcript.
package metrics

import (
	"math"
	"strings"

	"github.com/jonathan/speech-coach/internal/textmatch"
	"github.com/jonathan/speech-coach/internal/types"
	"github.com/jonathan/speech-coach/internal/vocabulary"
)

const (
	// minPauseSeconds is the smallest inter-word gap recorded as a pause
	minPauseSeconds = 0.1
	// LongPauseSeconds is the gap length above which a pause counts as long
	LongPauseSeconds = 2.0
	// minUniqueWordLength excludes short function words from vocabulary richness
	minUniqueWordLength = 2
)

// Extractor turns transcripts into SpeechMetrics. It holds only compiled,
// read-only matchers and is safe for concurrent use.
type Extractor struct {
	fillers *textmatch.PhraseMatcher
}

// NewExtractor builds an extractor for the filler list of vocab.
func NewExtractor(vocab vocabulary.Vocabulary) *Extractor {
	return &Extractor{fillers: textmatch.NewPhraseMatcher(vocab.Fillers)}
}

// Extract computes metrics for t. It never fails: empty text, no words or a
// non-positive duration produce zeroed fields. durationSeconds overrides
// t.Duration when positive. Every float in the result is finite.
func (e *Extractor) Extract(t types.Transcript, durationSeconds float64) types.SpeechMetrics {
	duration := validDuration(t.Duration)
	if d := validDuration(durationSeconds); d > 0 {
		duration = d
	}

	tokens := textmatch.Tokens(t.Text)
	wordCount := len(tokens)

	fillers := e.Fillers(t.Text)
	pauses := PauseDurations(t.Words)

	m := types.SpeechMetrics{
		WordCount:            wordCount,
		FillerWords:          fillers,
		FillerWordCount:      len(fillers),
		PauseDurations:       pauses,
		AveragePauseDuration: mean(pauses),
		LongPauseCount:       countAbove(pauses, LongPauseSeconds),
		SentenceCount:        CountSentences(t.Text),
		UniqueWordCount:      countUnique(tokens),
		AverageConfidence:    mean(t.Confidences()),
		DurationSeconds:      duration,
	}

	m.WordsPerMinute = WordsPerMinute(wordCount, duration)
	if wordCount > 0 {
		m.VocabularyRichness = float64(m.UniqueWordCount) / float64(wordCount)
	}
	if m.SentenceCount > 0 {
		m.AverageWordsPerSentence = float64(wordCount) / float64(m.SentenceCount)
	}

	return m
}

// Fillers returns every filler occurrence in text, in order of appearance.
func (e *Extractor) Fillers(text string) []string {
	found := e.fillers.FindAll(text)
	if found == nil {
		return []string{}
	}
	return found
}

// WordsPerMinute is words / (duration/60), or 0 when duration is not a
// positive finite number or the rate would overflow.
func WordsPerMinute(wordCount int, durationSeconds float64) float64 {
	if validDuration(durationSeconds) == 0 {
		return 0
	}
	return finiteOrZero(float64(wordCount) / (durationSeconds / 60))
}

// validDuration maps NaN, infinities and negatives to 0.
func validDuration(d float64) float64 {
	if !(d > 0) || math.IsInf(d, 1) {
		return 0
	}
	return d
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// PauseDurations returns the gaps between consecutive words that exceed 0.1s,
// in word order. Overlapping or out-of-order words yield negative gaps and are
// skipped, as are gaps that are not finite.
func PauseDurations(words []types.Word) []float64 {
	pauses := []float64{}
	for i := 1; i < len(words); i++ {
		gap := words[i].Start - words[i-1].End
		if gap > minPauseSeconds && !math.IsInf(gap, 1) {
			pauses = append(pauses, gap)
		}
	}
	return pauses
}

// CountSentences counts the non-empty segments between '.', '!' and '?'.
// Text without any terminator counts as one sentence.
func CountSentences(text string) int {
	segments := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	count := 0
	for _, s := range segments {
		if strings.TrimSpace(s) != "" {
			count++
		}
	}
	return count
}

func countUnique(tokens []string) int {
	seen := make(map[string]bool)
	for _, tok := range tokens {
		w := textmatch.CleanToken(tok)
		if len([]rune(w)) > minUniqueWordLength {
			seen[w] = true
		}
	}
	return len(seen)
}

func countAbove(values []float64, threshold float64) int {
	n := 0
	for _, v := range values {
		if v > threshold {
			n++
		}
	}
	return n
}

// mean is a running average so that large finite inputs cannot overflow a
// sum. Non-finite values are ignored.
func mean(values []float64) float64 {
	avg, n := 0.0, 0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		n++
		avg += (v - avg) / float64(n)
	}
	return finiteOrZero(avg)
}
