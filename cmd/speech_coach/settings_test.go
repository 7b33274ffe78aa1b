package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/speech-coach/internal/config"
)

func TestLoadSettings_Precedence(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("VOCABULARY_PATH", "")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("PORT", "")
	t.Setenv("BATCH_CONCURRENCY", "")
	t.Setenv("WHISPER_URL", "http://env-whisper:8387")
	t.Setenv("LOG_LEVEL", "error")

	configPath = writeFile(t, "config.json", `{"port": 9001, "whisper_url": "http://file-whisper:8387", "log_level": "debug", "verbose": true}`)
	logLevel = ""
	logFormat = "json"
	t.Cleanup(func() {
		configPath = ""
		logFormat = ""
	})

	cfg, err := loadSettings()
	require.NoError(t, err)

	assert.Equal(t, 9001, cfg.Port, "config file beats defaults")
	assert.Equal(t, "http://env-whisper:8387", cfg.WhisperURL, "environment beats config file")
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat, "flag beats everything")
	assert.Equal(t, config.DefaultBatchConcurrency, cfg.BatchConcurrency)
	assert.True(t, cfg.Verbose)
}

func TestLoadSettings_InvalidConfig(t *testing.T) {
	t.Setenv("LOG_FORMAT", "")
	configPath = writeFile(t, "config.json", `{"log_format": "xml"}`)
	t.Cleanup(func() { configPath = "" })

	_, err := loadSettings()
	assert.Error(t, err)
}

func TestNewEngine_RejectsIncompleteVocabulary(t *testing.T) {
	cfg := config.Defaults()
	cfg.Vocabulary = writeFile(t, "vocab.yaml", "hedging: []\n")

	_, err := newEngine(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid vocabulary")
}
