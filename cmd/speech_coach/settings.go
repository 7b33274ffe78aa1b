package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/jonathan/speech-coach/internal/config"
	"github.com/jonathan/speech-coach/internal/engine"
	"github.com/jonathan/speech-coach/internal/logging"
)

// loadSettings resolves configuration with precedence flags > environment >
// config file > defaults. Subcommands apply their own flags afterwards.
func loadSettings() (config.Config, error) {
	cfg := config.FromEnv()

	if configPath != "" {
		fileCfg, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = cfg.MergeWithDefaults(*fileCfg)
		cfg.Verbose = fileCfg.Verbose
	}
	cfg = cfg.MergeWithDefaults(config.Defaults())

	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newLogger builds the process logger writing to out.
func newLogger(cfg config.Config, out io.Writer) zerolog.Logger {
	return logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Output:  out,
		Service: "speech_coach",
	})
}

// newEngine builds a scoring engine over the configured vocabulary.
func newEngine(cfg config.Config) (*engine.Engine, error) {
	vocab, err := cfg.LoadVocabulary()
	if err != nil {
		return nil, fmt.Errorf("failed to load vocabulary: %w", err)
	}
	if err := vocab.Validate(); err != nil {
		return nil, fmt.Errorf("invalid vocabulary: %w", err)
	}
	return engine.New(vocab), nil
}
