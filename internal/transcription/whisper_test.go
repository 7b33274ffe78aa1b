package transcription

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhisperProvider_TranscribeWithWordTimestamps(t *testing.T) {
	var gotFields map[string]string
	var gotAudio []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transcribe", r.URL.Path)
		assert.NoError(t, r.ParseMultipartForm(1<<20))

		gotFields = map[string]string{
			"word_timestamps": r.FormValue("word_timestamps"),
			"language":        r.FormValue("language"),
			"model":           r.FormValue("model"),
		}
		if f, _, err := r.FormFile("file"); assert.NoError(t, err) {
			gotAudio, _ = io.ReadAll(f)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"text": " Hello there team. ",
			"language": "en",
			"duration": 3.5,
			"segments": [{
				"text": " Hello there team.", "start": 0, "end": 2,
				"words": [
					{"word": " Hello", "start": 0.0, "end": 0.4, "probability": 0.98},
					{"word": " there", "start": 0.5, "end": 0.9, "probability": 0.91},
					{"word": " team.", "start": 1.5, "end": 2.0, "probability": 1.2}
				]
			}]
		}`)
	}))
	defer srv.Close()

	p := NewWhisperProvider(WhisperConfig{URL: srv.URL + "/", Model: "base", Language: "en"})
	tr, err := p.Transcribe(context.Background(), Request{Audio: []byte("RIFF....")})
	require.NoError(t, err)

	assert.Equal(t, "true", gotFields["word_timestamps"])
	assert.Equal(t, "en", gotFields["language"])
	assert.Equal(t, "base", gotFields["model"])
	assert.Equal(t, []byte("RIFF...."), gotAudio)

	assert.Equal(t, "Hello there team.", tr.Text)
	assert.Equal(t, 3.5, tr.Duration)
	require.Len(t, tr.Words, 3)
	assert.Equal(t, "Hello", tr.Words[0].Word)
	assert.Equal(t, 0.91, tr.Words[1].Confidence)
	assert.Equal(t, 1.0, tr.Words[2].Confidence, "probability is clamped to 1")
}

func TestWhisperProvider_SegmentOnlyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"segments": [
			{"text": "one two", "start": 0, "end": 1, "avg_logprob": 0},
			{"text": "three four", "start": 2, "end": 4, "avg_logprob": -0.5}
		]}`)
	}))
	defer srv.Close()

	tr, err := NewWhisperProvider(WhisperConfig{URL: srv.URL}).Transcribe(context.Background(), Request{Audio: []byte("x")})
	require.NoError(t, err)

	assert.Equal(t, "one two three four", tr.Text)
	assert.Equal(t, 4.0, tr.Duration)
	require.Len(t, tr.Words, 4)
	assert.Equal(t, 0.5, tr.Words[1].Start)
	assert.Equal(t, 1.0, tr.Words[1].End)
	assert.Equal(t, 3.0, tr.Words[3].Start)
	assert.Equal(t, 1.0, tr.Words[0].Confidence)
	assert.InDelta(t, 0.6065, tr.Words[2].Confidence, 1e-3)
}

func TestWhisperProvider_ReadsAudioPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answer.wav")
	require.NoError(t, os.WriteFile(path, []byte("wav-bytes"), 0o600))

	var filename string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, header, err := r.FormFile("file"); assert.NoError(t, err) {
			filename = header.Filename
		}
		_, _ = io.WriteString(w, `{"text": "", "segments": []}`)
	}))
	defer srv.Close()

	tr, err := NewWhisperProvider(WhisperConfig{URL: srv.URL}).Transcribe(context.Background(), Request{AudioPath: path})
	require.NoError(t, err)
	assert.Equal(t, "answer.wav", filename)
	assert.Empty(t, tr.Words)
}

func TestWhisperProvider_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	p := NewWhisperProvider(WhisperConfig{URL: srv.URL})

	tests := []struct {
		name    string
		req     Request
		message string
	}{
		{"server error", Request{Audio: []byte("x")}, "model not loaded"},
		{"no audio", Request{}, "no audio provided"},
		{"missing file", Request{AudioPath: filepath.Join(t.TempDir(), "nope.wav")}, "read audio file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Transcribe(context.Background(), tt.req)
			require.Error(t, err)

			var perr *ProviderError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, WhisperProviderName, perr.Provider)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestWhisperProvider_IsAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	p := NewWhisperProvider(WhisperConfig{URL: srv.URL})
	assert.True(t, p.IsAvailable(context.Background()))

	srv.Close()
	assert.False(t, p.IsAvailable(context.Background()))
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider("")
	tr, err := p.Transcribe(context.Background(), Request{})
	require.NoError(t, err)

	assert.Equal(t, DefaultMockText, tr.Text)
	assert.Len(t, tr.Words, len(strings.Fields(DefaultMockText)))
	assert.InDelta(t, float64(len(tr.Words))*mockWordSeconds, tr.Duration, 1e-9)
	assert.Equal(t, MockProviderName, p.Name())
}

func TestMockProvider_ConfiguredError(t *testing.T) {
	cause := errors.New("boom")
	_, err := (&MockProvider{Err: cause}).Transcribe(context.Background(), Request{})

	require.ErrorIs(t, err, cause)
	var perr *ProviderError
	assert.ErrorAs(t, err, &perr)
}
