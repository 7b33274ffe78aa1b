package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/speech-coach/internal/feedback"
)

func TestTranscribeCommand_MockProvider(t *testing.T) {
	stdout, _, err := executeCommand(t, "transcribe", "--audio", "answer.wav", "--provider", "mock", "--mock-text", sampleAnswer)
	require.NoError(t, err)

	rec := decodeRecord(t, stdout)
	assert.NotEqual(t, feedback.Fallback(""), rec)
	assert.GreaterOrEqual(t, len(rec.Strengths), 3)
}

func TestTranscribeCommand_WhisperSidecar(t *testing.T) {
	sidecar := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transcribe" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"text":     "I shipped the feature in two weeks.",
			"duration": 3.0,
			"segments": []map[string]any{
				{"text": "I shipped the feature in two weeks.", "start": 0.0, "end": 3.0, "avg_logprob": -0.1},
			},
		})
	}))
	defer sidecar.Close()

	audio := writeFile(t, "answer.wav", "RIFF....WAVE")
	transcriptOut := filepath.Join(t.TempDir(), "transcript.json")

	stdout, _, err := executeCommand(t, "transcribe", "--audio", audio, "--whisper-url", sidecar.URL, "--transcript-out", transcriptOut)
	require.NoError(t, err)

	rec := decodeRecord(t, stdout)
	assert.NotEqual(t, feedback.FallbackScore, rec.ClarityScore)
	assert.FileExists(t, transcriptOut)
}

func TestTranscribeCommand_FailureFallsBack(t *testing.T) {
	stdout, stderr, err := executeCommand(t, "transcribe", "--audio", filepath.Join(t.TempDir(), "missing.wav"))
	require.NoError(t, err)

	rec := decodeRecord(t, stdout)
	assert.Equal(t, feedback.FallbackScore, rec.OverallScore)
	assert.Equal(t, feedback.ImprovementCheckSetup, rec.Improvements[0])
	assert.Contains(t, stderr, "fallback")
}

func TestTranscribeCommand_UnknownProvider(t *testing.T) {
	_, _, err := executeCommand(t, "transcribe", "--audio", "a.wav", "--provider", "cloud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestTranscribeCommand_MissingAudioFlag(t *testing.T) {
	_, _, err := executeCommand(t, "transcribe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}
