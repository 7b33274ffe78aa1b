package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/speech-coach/internal/schemas"
	"github.com/jonathan/speech-coach/internal/types"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a transcribed answer and print the feedback record",
	Long:  "Score a transcript JSON file (or plain text) against an interview question and print the resulting feedback record as JSON.",
	RunE:  runScore,
}

var (
	scoreTranscriptFile string
	scoreText           string
	scoreQuestion       string
	scoreDuration       float64
	scoreOutputFile     string
	scoreDatabaseURL    string
	scoreVerbose        bool
)

func init() {
	scoreCmd.Flags().StringVarP(&scoreTranscriptFile, "transcript", "t", "", "Path to transcript JSON file")
	scoreCmd.Flags().StringVar(&scoreText, "text", "", "Plain answer text (instead of --transcript)")
	scoreCmd.Flags().StringVarP(&scoreQuestion, "question", "q", "", "Interview question the answer responds to")
	scoreCmd.Flags().Float64VarP(&scoreDuration, "duration", "d", 0, "Session duration in seconds (defaults to the transcript duration)")
	scoreCmd.Flags().StringVarP(&scoreOutputFile, "out", "o", "", "Path to output JSON file (defaults to stdout)")
	scoreCmd.Flags().StringVar(&scoreDatabaseURL, "db-url", "", "Database URL to persist the result (overrides DATABASE_URL)")
	scoreCmd.Flags().BoolVarP(&scoreVerbose, "verbose", "v", false, "Print metrics, signals and feedback boxes to stderr")

	scoreCmd.MarkFlagsMutuallyExclusive("transcript", "text")
	scoreCmd.MarkFlagsOneRequired("transcript", "text")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	transcript := types.Transcript{Text: scoreText}
	if scoreTranscriptFile != "" {
		data, err := os.ReadFile(scoreTranscriptFile)
		if err != nil {
			return fmt.Errorf("failed to read transcript file: %w", err)
		}
		if err := schemas.ValidateDocument(schemas.KindTranscript, data); err != nil {
			return fmt.Errorf("transcript file is invalid: %w", err)
		}
		if err := json.Unmarshal(data, &transcript); err != nil {
			return fmt.Errorf("failed to parse transcript JSON: %w", err)
		}
	}

	req := types.ScoreRequest{
		Question:        scoreQuestion,
		DurationSeconds: scoreDuration,
		Transcript:      transcript,
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid score request: %w", err)
	}

	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}
	result := eng.Evaluate(req.Question, req.Transcript, req.EffectiveDuration())

	if scoreVerbose || cfg.Verbose {
		printResult(cmd.ErrOrStderr(), result)
	}

	databaseURL := scoreDatabaseURL
	if databaseURL == "" {
		databaseURL = cfg.DatabaseURL
	}
	feedbackID, err := saveResult(cmd.Context(), databaseURL, req.Question, req.EffectiveDuration(), result)
	if err != nil {
		logger.Warn().Err(err).Msg("could not persist feedback")
	} else if feedbackID != "" {
		logger.Info().Str("feedback_id", feedbackID).Msg("feedback saved")
	}

	return emitRecord(cmd, result.Feedback, scoreOutputFile)
}
