// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jonathan/speech-coach/internal/vocabulary"
)

// Default values applied by Defaults
const (
	DefaultPort             = 8080
	DefaultWhisperURL       = "http://localhost:8387"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "console"
	DefaultBatchConcurrency = 8
)

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	Port             int    `json:"port,omitempty"`              // HTTP listen port
	DatabaseURL      string `json:"database_url,omitempty"`      // PostgreSQL connection URL; empty disables persistence
	Vocabulary       string `json:"vocabulary,omitempty"`        // Path to a YAML vocabulary file
	WhisperURL       string `json:"whisper_url,omitempty"`       // faster-whisper sidecar base URL
	LogLevel         string `json:"log_level,omitempty"`         // debug, info, warn, error
	LogFormat        string `json:"log_format,omitempty"`        // json or console
	BatchConcurrency int    `json:"batch_concurrency,omitempty"` // Max answers scored in parallel
	Verbose          bool   `json:"verbose,omitempty"`           // Print detailed debug information
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:             DefaultPort,
		WhisperURL:       DefaultWhisperURL,
		LogLevel:         DefaultLogLevel,
		LogFormat:        DefaultLogFormat,
		BatchConcurrency: DefaultBatchConcurrency,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv returns a Config populated from environment variables. Unset
// variables leave fields empty so the result can be merged.
func FromEnv() Config {
	cfg := Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Vocabulary:  os.Getenv("VOCABULARY_PATH"),
		WhisperURL:  os.Getenv("WHISPER_URL"),
		LogLevel:    os.Getenv("LOG_LEVEL"),
		LogFormat:   os.Getenv("LOG_FORMAT"),
	}
	if port, err := strconv.Atoi(os.Getenv("PORT")); err == nil {
		cfg.Port = port
	}
	if n, err := strconv.Atoi(os.Getenv("BATCH_CONCURRENCY")); err == nil {
		cfg.BatchConcurrency = n
	}
	return cfg
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.BatchConcurrency < 0 {
		return fmt.Errorf("config error: 'batch_concurrency' must be non-negative")
	}

	switch strings.ToLower(c.LogFormat) {
	case "", "json", "console":
	default:
		return fmt.Errorf("config error: 'log_format' must be json or console, got %q", c.LogFormat)
	}

	if c.WhisperURL != "" {
		u, err := url.Parse(c.WhisperURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("config error: 'whisper_url' is not an absolute URL: %s", c.WhisperURL)
		}
	}

	// Validate file paths exist (if specified)
	if c.Vocabulary != "" {
		if _, err := os.Stat(c.Vocabulary); os.IsNotExist(err) {
			return fmt.Errorf("config error: vocabulary file not found: %s", c.Vocabulary)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.Vocabulary == "" {
		result.Vocabulary = defaults.Vocabulary
	}
	if result.WhisperURL == "" {
		result.WhisperURL = defaults.WhisperURL
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.BatchConcurrency == 0 {
		result.BatchConcurrency = defaults.BatchConcurrency
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// LoadVocabulary returns the configured vocabulary, or the built-in one when
// no file is set.
func (c *Config) LoadVocabulary() (vocabulary.Vocabulary, error) {
	if c.Vocabulary == "" {
		return vocabulary.Default(), nil
	}
	return vocabulary.Load(c.Vocabulary)
}
