package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"chatty", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "level %q", tt.in)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "info", Output: &buf, Service: "speech-coach"})

	log.Debug().Msg("hidden")
	log.Info().Int("words", 42).Msg("scored")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "exactly one JSON line expected: %s", buf.String())
	assert.Equal(t, "scored", entry["message"])
	assert.Equal(t, "speech-coach", entry["service"])
	assert.Equal(t, float64(42), entry["words"])
	assert.Contains(t, entry, "time")
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Format: "console", Output: &buf, NoColor: true})

	log.Warn().Str("path", "/score").Msg("slow request")

	out := buf.String()
	assert.Contains(t, out, "WRN")
	assert.Contains(t, out, "slow request")
	assert.Contains(t, out, "path=/score")
}

func TestNop(t *testing.T) {
	log := Nop()
	log.Error().Msg("discarded")
	assert.Equal(t, zerolog.Disabled, log.GetLevel())
}
