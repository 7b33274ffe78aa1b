//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTranscript() Transcript {
	return Transcript{
		Text: "hello there",
		Words: []Word{
			{Word: "hello", Start: 0, End: 0.4, Confidence: 0.9},
			{Word: "there", Start: 0.5, End: 0.9, Confidence: 0.8},
		},
		Duration: 1.2,
	}
}

func TestScoreRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(r *ScoreRequest)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid request",
			modify:  func(_ *ScoreRequest) {},
			wantErr: false,
		},
		{
			name:    "empty transcript is allowed",
			modify:  func(r *ScoreRequest) { r.Transcript = Transcript{} },
			wantErr: false,
		},
		{
			name:    "negative duration",
			modify:  func(r *ScoreRequest) { r.DurationSeconds = -1 },
			wantErr: true,
			errMsg:  "gte",
		},
		{
			name:    "confidence above one",
			modify:  func(r *ScoreRequest) { r.Transcript.Words[1].Confidence = 1.5 },
			wantErr: true,
			errMsg:  "lte",
		},
		{
			name:    "negative word start",
			modify:  func(r *ScoreRequest) { r.Transcript.Words[0].Start = -0.1 },
			wantErr: true,
			errMsg:  "gte",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := ScoreRequest{Question: "Tell me about yourself", DurationSeconds: 30, Transcript: validTranscript()}
			tt.modify(&req)

			err := req.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestScoreRequest_EffectiveDuration(t *testing.T) {
	req := ScoreRequest{DurationSeconds: 30, Transcript: validTranscript()}
	assert.Equal(t, 30.0, req.EffectiveDuration())

	req.DurationSeconds = 0
	assert.Equal(t, 1.2, req.EffectiveDuration())
}

func TestBatchScoreRequest_Validation(t *testing.T) {
	item := ScoreRequest{Transcript: validTranscript()}

	t.Run("valid batch", func(t *testing.T) {
		req := BatchScoreRequest{Items: []ScoreRequest{item, item}}
		assert.NoError(t, req.Validate())
	})

	t.Run("empty batch", func(t *testing.T) {
		req := BatchScoreRequest{}
		err := req.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "required")
	})

	t.Run("too many items", func(t *testing.T) {
		items := make([]ScoreRequest, 101)
		req := BatchScoreRequest{Items: items}
		err := req.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max")
	})

	t.Run("invalid nested item", func(t *testing.T) {
		bad := ScoreRequest{DurationSeconds: -5}
		req := BatchScoreRequest{Items: []ScoreRequest{item, bad}}
		assert.Error(t, req.Validate())
	})
}

func TestFragmentRequest_Validation(t *testing.T) {
	assert.NoError(t, (&FragmentRequest{Text: "so", Elapsed: 1.5}).Validate())
	assert.NoError(t, (&FragmentRequest{}).Validate())

	err := (&FragmentRequest{Text: "so", Elapsed: -1}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gte")
}

func TestStartLiveRequest_Validation(t *testing.T) {
	assert.NoError(t, (&StartLiveRequest{}).Validate())
	assert.NoError(t, (&StartLiveRequest{Question: "Why this role?"}).Validate())

	err := (&StartLiveRequest{Question: strings.Repeat("a", 2001)}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max")
}

func TestFragmentRequest_JSONFieldNames(t *testing.T) {
	var req FragmentRequest
	require.NoError(t, json.Unmarshal([]byte(`{"text":"um hello","is_final":true,"elapsed_seconds":2.5}`), &req))

	assert.Equal(t, "um hello", req.Text)
	assert.True(t, req.IsFinal)
	assert.Equal(t, 2.5, req.Elapsed)
}

func TestTranscript_Confidences(t *testing.T) {
	assert.Equal(t, []float64{0.9, 0.8}, validTranscript().Confidences())
	assert.Empty(t, Transcript{}.Confidences())
}

func TestSpeechMetrics_FillerRatio(t *testing.T) {
	assert.Equal(t, 0.0, SpeechMetrics{}.FillerRatio())
	assert.Equal(t, 0.25, SpeechMetrics{WordCount: 8, FillerWordCount: 2}.FillerRatio())
}
