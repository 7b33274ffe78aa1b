package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/speech-coach/internal/db"
	"github.com/jonathan/speech-coach/internal/observability"
	"github.com/jonathan/speech-coach/internal/server"
	"github.com/jonathan/speech-coach/internal/transcription"
)

var (
	servePort     int
	serveProvider string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for scoring answers, live sessions and stored feedback.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT, default 8080)")
	serveCmd.Flags().StringVar(&serveProvider, "provider", transcription.WhisperProviderName, "Transcription provider for /transcribe: whisper, mock or none")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	logger := newLogger(cfg, os.Stderr)

	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	mp, err := observability.InitProvider()
	if err != nil {
		return fmt.Errorf("failed to initialise metrics: %w", err)
	}
	defer func() { _ = mp.Shutdown(context.Background()) }()

	met, err := observability.NewMetrics(mp)
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	srvCfg := server.Config{
		Port:       cfg.Port,
		Engine:     eng,
		Logger:     logger,
		Metrics:    met,
		BatchLimit: cfg.BatchConcurrency,
	}

	if serveProvider != "none" {
		provider, err := newProvider(serveProvider, cfg.WhisperURL, "", "", 0)
		if err != nil {
			return err
		}
		srvCfg.Transcriber = provider

		if wp, ok := provider.(*transcription.WhisperProvider); ok && !wp.IsAvailable(cmd.Context()) {
			logger.Warn().Str("url", cfg.WhisperURL).Msg("whisper sidecar not reachable, /transcribe will return fallback feedback")
		}
	}

	// Persistence is optional
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()

		if err := database.Migrate(cmd.Context()); err != nil {
			return err
		}
		srvCfg.Store = database
	} else {
		logger.Warn().Msg("DATABASE_URL not set, feedback will not be stored")
	}

	srv, err := server.New(srvCfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
