// Package types provides type definitions for structured data used throughout the speech-coach system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// SpeechMetrics holds the quantitative measurements extracted from a transcript.
// It is created once per transcript and never mutated afterwards.
type SpeechMetrics struct {
	WordsPerMinute          float64   `json:"words_per_minute"`
	FillerWordCount         int       `json:"filler_word_count"`
	FillerWords             []string  `json:"filler_words"`
	PauseDurations          []float64 `json:"pause_durations"`
	AveragePauseDuration    float64   `json:"average_pause_duration"`
	LongPauseCount          int       `json:"long_pause_count"`
	SentenceCount           int       `json:"sentence_count"`
	WordCount               int       `json:"word_count"`
	UniqueWordCount         int       `json:"unique_word_count"`
	VocabularyRichness      float64   `json:"vocabulary_richness"`
	AverageWordsPerSentence float64   `json:"average_words_per_sentence"`
	AverageConfidence       float64   `json:"average_confidence"`
	DurationSeconds         float64   `json:"duration_seconds"`
}

// FillerRatio returns fillers per word, or 0 when there are no words.
func (m SpeechMetrics) FillerRatio() float64 {
	if m.WordCount <= 0 {
		return 0
	}
	return float64(m.FillerWordCount) / float64(m.WordCount)
}
