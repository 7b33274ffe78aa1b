package live

import (
	"testing"

	"github.com/jonathan/speech-coach/internal/metrics"
	"github.com/jonathan/speech-coach/internal/vocabulary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession() *Session {
	return NewSession(metrics.NewExtractor(vocabulary.Default()))
}

func TestFeed_AccumulatesFinalFragments(t *testing.T) {
	s := newTestSession()

	p, err := s.Feed(Fragment{Text: "Um I led the", IsFinal: true, Elapsed: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, p.WordCount)
	assert.Equal(t, 1, p.FillerWordCount)
	assert.Equal(t, 1, p.Fragments)

	p, err = s.Feed(Fragment{Text: "migration project,  you know.", IsFinal: true, Elapsed: 6})
	require.NoError(t, err)
	assert.Equal(t, "Um I led the migration project, you know.", p.Text)
	assert.Equal(t, 8, p.WordCount)
	assert.Equal(t, []string{"um", "you know"}, p.FillerWords)
	assert.Equal(t, 2, p.Fragments)
	assert.InDelta(t, 80.0, p.WordsPerMinute, 1e-9)
}

func TestFeed_InterimReplacedByNextFragment(t *testing.T) {
	s := newTestSession()

	_, err := s.Feed(Fragment{Text: "I think", IsFinal: true, Elapsed: 1})
	require.NoError(t, err)

	p, err := s.Feed(Fragment{Text: "the uh", Elapsed: 1.5})
	require.NoError(t, err)
	assert.Equal(t, "I think the uh", p.Text)
	assert.Equal(t, 1, p.FillerWordCount)

	p, err = s.Feed(Fragment{Text: "the answer", Elapsed: 2})
	require.NoError(t, err)
	assert.Equal(t, "I think the answer", p.Text)
	assert.Equal(t, 0, p.FillerWordCount)
	assert.Equal(t, 1, p.Fragments)

	p, err = s.Feed(Fragment{Text: "the answer is yes.", IsFinal: true, Elapsed: 3})
	require.NoError(t, err)
	assert.Equal(t, "I think the answer is yes.", p.Text)
	assert.Equal(t, 2, p.Fragments)
}

func TestFeed_EmptyAndOutOfOrderElapsed(t *testing.T) {
	s := newTestSession()

	p, err := s.Feed(Fragment{Text: "   ", IsFinal: true})
	require.NoError(t, err)
	assert.Equal(t, "", p.Text)
	assert.Equal(t, 0, p.WordCount)
	assert.Equal(t, 0.0, p.WordsPerMinute)
	assert.NotNil(t, p.FillerWords)

	_, err = s.Feed(Fragment{Text: "one two", IsFinal: true, Elapsed: 30})
	require.NoError(t, err)
	p, err = s.Feed(Fragment{Text: "three", IsFinal: true, Elapsed: 10})
	require.NoError(t, err)
	assert.InDelta(t, 6.0, p.WordsPerMinute, 1e-9, "elapsed never moves backwards")
}

func TestTranscript_IncludesInterimTail(t *testing.T) {
	s := newTestSession()
	_, _ = s.Feed(Fragment{Text: "first part", IsFinal: true, Elapsed: 1})
	_, _ = s.Feed(Fragment{Text: "second", Elapsed: 4})

	tr := s.Transcript()
	assert.Equal(t, "first part second", tr.Text)
	assert.Equal(t, 4.0, tr.Duration)

	// The interim tail is not committed by reading the transcript.
	p, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 1, p.Fragments)
}

func TestStop_DiscardsStateAndRejectsFeed(t *testing.T) {
	s := newTestSession()
	_, _ = s.Feed(Fragment{Text: "some words", IsFinal: true, Elapsed: 1})

	s.Stop()

	assert.True(t, s.Stopped())
	assert.Equal(t, "", s.Transcript().Text)

	_, err := s.Feed(Fragment{Text: "more", IsFinal: true})
	assert.ErrorIs(t, err, ErrSessionStopped)
	_, err = s.Snapshot()
	assert.ErrorIs(t, err, ErrSessionStopped)
}
