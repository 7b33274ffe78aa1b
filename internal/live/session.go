// Package live accumulates partial transcript fragments during a recording and
// reports running speech metrics. It never scores; the finished transcript is
// handed to the batch engine.
package live

import (
	"errors"
	"strings"

	"github.com/jonathan/speech-coach/internal/metrics"
	"github.com/jonathan/speech-coach/internal/textmatch"
	"github.com/jonathan/speech-coach/internal/types"
)

// ErrSessionStopped is returned by Feed once Stop has been called.
var ErrSessionStopped = errors.New("live session stopped")

// Fragment is one piece of a streaming transcript. An interim fragment may be
// revised by the next one; a final fragment is committed.
type Fragment struct {
	Text    string  `json:"text"`
	IsFinal bool    `json:"is_final"`
	Elapsed float64 `json:"elapsed_seconds"` // since recording start
}

// Partial is the running state after a fragment is fed.
type Partial struct {
	Text            string   `json:"text"`
	WordCount       int      `json:"word_count"`
	FillerWordCount int      `json:"filler_word_count"`
	FillerWords     []string `json:"filler_words"`
	Fragments       int      `json:"fragments"`
	WordsPerMinute  float64  `json:"words_per_minute"`
}

// Session is the state of one live recording. It is not safe for concurrent
// use; callers serialize access per session.
type Session struct {
	extractor *metrics.Extractor
	committed []string
	interim   string
	fragments int
	elapsed   float64
	stopped   bool
}

// NewSession starts an empty session that detects fillers with extractor.
func NewSession(extractor *metrics.Extractor) *Session {
	return &Session{extractor: extractor}
}

// Feed applies f and returns the updated running metrics. An interim fragment
// replaces any previous interim text; a final fragment commits it.
func (s *Session) Feed(f Fragment) (Partial, error) {
	if s.stopped {
		return Partial{}, ErrSessionStopped
	}

	text := strings.Join(strings.Fields(f.Text), " ")
	if f.IsFinal {
		if text != "" {
			s.committed = append(s.committed, text)
		}
		s.interim = ""
		s.fragments++
	} else {
		s.interim = text
	}
	if f.Elapsed > s.elapsed {
		s.elapsed = f.Elapsed
	}

	return s.partial(), nil
}

// Snapshot returns the running metrics without feeding anything.
func (s *Session) Snapshot() (Partial, error) {
	if s.stopped {
		return Partial{}, ErrSessionStopped
	}
	return s.partial(), nil
}

// Transcript returns the text fed so far, interim tail included, with the
// latest elapsed time as its duration.
func (s *Session) Transcript() types.Transcript {
	return types.Transcript{Text: s.text(), Duration: s.elapsed}
}

// Stop discards all accumulated state. Subsequent Feed calls fail.
func (s *Session) Stop() {
	s.stopped = true
	s.committed = nil
	s.interim = ""
	s.fragments = 0
	s.elapsed = 0
}

// Stopped reports whether Stop has been called.
func (s *Session) Stopped() bool {
	return s.stopped
}

func (s *Session) text() string {
	parts := s.committed
	if s.interim != "" {
		parts = append(parts[:len(parts):len(parts)], s.interim)
	}
	return strings.Join(parts, " ")
}

func (s *Session) partial() Partial {
	text := s.text()
	wordCount := len(textmatch.Tokens(text))
	fillers := s.extractor.Fillers(text)
	return Partial{
		Text:            text,
		WordCount:       wordCount,
		FillerWordCount: len(fillers),
		FillerWords:     fillers,
		Fragments:       s.fragments,
		WordsPerMinute:  metrics.WordsPerMinute(wordCount, s.elapsed),
	}
}
