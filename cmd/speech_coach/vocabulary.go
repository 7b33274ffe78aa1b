package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/speech-coach/internal/vocabulary"
)

var vocabularyCmd = &cobra.Command{
	Use:   "vocabulary",
	Short: "Write or check a vocabulary file",
	Long: `Write the built-in vocabulary as YAML so it can be edited for another locale, or check that
an edited vocabulary file loads and contains every list the content score needs.`,
	RunE: runVocabulary,
}

var (
	vocabularyOutputFile string
	vocabularyCheckFile  string
)

func init() {
	vocabularyCmd.Flags().StringVarP(&vocabularyOutputFile, "out", "o", "", "Path to write the default vocabulary YAML (defaults to stdout)")
	vocabularyCmd.Flags().StringVar(&vocabularyCheckFile, "check", "", "Path to a vocabulary YAML file to check")
	vocabularyCmd.MarkFlagsMutuallyExclusive("out", "check")

	rootCmd.AddCommand(vocabularyCmd)
}

func runVocabulary(cmd *cobra.Command, _ []string) error {
	if vocabularyCheckFile != "" {
		vocab, err := vocabulary.Load(vocabularyCheckFile)
		if err != nil {
			return err
		}
		if err := vocab.Validate(); err != nil {
			return fmt.Errorf("vocabulary %s: %w", vocabularyCheckFile, err)
		}
		vocab = vocab.Normalized()
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Vocabulary OK: %s (%d fillers, %d stop words)\n",
			vocabularyCheckFile, len(vocab.Fillers), len(vocab.StopWords))
		return nil
	}

	data, err := vocabulary.Default().Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal vocabulary: %w", err)
	}

	if vocabularyOutputFile == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(vocabularyOutputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write vocabulary file: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote vocabulary: %s\n", vocabularyOutputFile)
	return nil
}
