package server

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/speech-coach/internal/engine"
	"github.com/jonathan/speech-coach/internal/feedback"
	"github.com/jonathan/speech-coach/internal/server/ratelimit"
	"github.com/jonathan/speech-coach/internal/transcription"
	"github.com/jonathan/speech-coach/internal/vocabulary"
)

func newTranscribeServer(t *testing.T, provider transcription.Provider) *Server {
	t.Helper()
	s, err := New(Config{
		Engine:      engine.New(vocabulary.Default()),
		Transcriber: provider,
		Logger:      zerolog.Nop(),
		RateLimit:   &ratelimit.Config{Enabled: false},
	})
	require.NoError(t, err)
	t.Cleanup(s.rateLimiter.Stop)
	return s
}

func multipartRequest(t *testing.T, fields map[string]string, audio []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if audio != nil {
		part, err := mw.CreateFormFile("file", "answer.wav")
		require.NoError(t, err)
		_, err = part.Write(audio)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/transcribe", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestTranscribeEndpoint_Success(t *testing.T) {
	s := newTranscribeServer(t, transcription.NewMockProvider(""))

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, multipartRequest(t, map[string]string{"question": "What is your greatest strength?"}, []byte("RIFF")))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody[TranscribeResponse](t, w)
	assert.False(t, resp.Fallback)
	require.NotNil(t, resp.Transcript)
	assert.Equal(t, transcription.DefaultMockText, resp.Transcript.Text)
	assert.Positive(t, resp.Metrics.WordCount)
	assert.NotEqual(t, feedback.FallbackScore, resp.Feedback.ClarityScore)
}

func TestTranscribeEndpoint_ProviderFailureFallsBack(t *testing.T) {
	provider := &transcription.MockProvider{Err: errors.New("sidecar down")}
	s := newTranscribeServer(t, provider)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, multipartRequest(t, nil, []byte("RIFF")))

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[TranscribeResponse](t, w)
	assert.True(t, resp.Fallback)
	assert.Nil(t, resp.Transcript)
	assert.Equal(t, feedback.Fallback("configured failure"), resp.Feedback)
}

func TestTranscribeEndpoint_BadRequests(t *testing.T) {
	s := newTranscribeServer(t, transcription.NewMockProvider(""))

	tests := []struct {
		name   string
		fields map[string]string
		audio  []byte
	}{
		{name: "missing file", fields: map[string]string{"question": "q"}},
		{name: "negative duration", fields: map[string]string{"duration_seconds": "-2"}, audio: []byte("RIFF")},
		{name: "non-numeric duration", fields: map[string]string{"duration_seconds": "soon"}, audio: []byte("RIFF")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, multipartRequest(t, tt.fields, tt.audio))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestTranscribeEndpoint_NotConfigured(t *testing.T) {
	s := newTranscribeServer(t, nil)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, multipartRequest(t, nil, []byte("RIFF")))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
