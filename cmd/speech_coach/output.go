package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/speech-coach/internal/db"
	"github.com/jonathan/speech-coach/internal/engine"
	"github.com/jonathan/speech-coach/internal/observability"
	"github.com/jonathan/speech-coach/internal/schemas"
	"github.com/jonathan/speech-coach/internal/types"
)

// writeJSON writes v as indented JSON to outPath, or to the command's stdout
// when outPath is empty.
func writeJSON(cmd *cobra.Command, v any, outPath string) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if outPath == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), string(jsonBytes))
		return err
	}

	if err := os.WriteFile(outPath, jsonBytes, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Output: %s\n", outPath)
	return nil
}

// emitRecord checks a feedback record against its schema and writes it.
func emitRecord(cmd *cobra.Command, rec types.FeedbackRecord, outPath string) error {
	if err := schemas.ValidateValue(schemas.KindFeedbackRecord, rec); err != nil {
		return fmt.Errorf("generated feedback does not validate against schema: %w", err)
	}
	return writeJSON(cmd, rec, outPath)
}

// printResult renders the verbose boxes for a scored answer.
func printResult(out io.Writer, result engine.Result) {
	printer := observability.NewPrinter(out)
	printer.PrintMetrics(&result.Metrics)
	printer.PrintSignals(&result.Signals)
	printer.PrintFeedback(&result.Feedback)
}

// printFallback renders the verbose feedback box for a fallback record.
func printFallback(cmd *cobra.Command, rec types.FeedbackRecord) {
	observability.NewPrinter(cmd.ErrOrStderr()).PrintFeedback(&rec)
}

// saveResult persists a scored answer when databaseURL is set.
func saveResult(ctx context.Context, databaseURL, question string, duration float64, result engine.Result) (string, error) {
	if databaseURL == "" {
		return "", nil
	}

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return "", fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return "", err
	}

	sessionID, err := database.CreatePracticeSession(ctx, question, duration)
	if err != nil {
		return "", err
	}
	feedbackID, err := database.SaveFeedback(ctx, sessionID, result.Feedback, &result.Metrics)
	if err != nil {
		return "", err
	}
	return feedbackID.String(), nil
}
