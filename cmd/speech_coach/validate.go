package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/speech-coach/internal/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a JSON document against its schema",
	Long: `Validate a transcript, score request or feedback record against its embedded JSON schema,
or any JSON file against a schema file given with --schema.`,
	RunE: runValidate,
}

var (
	validateKind       string
	validateFile       string
	validateSchemaFile string
)

func init() {
	validateCmd.Flags().StringVarP(&validateKind, "kind", "k", "", "Document kind: "+strings.Join(schemas.Kinds(), ", "))
	validateCmd.Flags().StringVarP(&validateFile, "file", "f", "", "Path to the JSON document (required)")
	validateCmd.Flags().StringVar(&validateSchemaFile, "schema", "", "Path to a JSON schema file (instead of --kind)")

	_ = validateCmd.MarkFlagRequired("file")
	validateCmd.MarkFlagsMutuallyExclusive("kind", "schema")
	validateCmd.MarkFlagsOneRequired("kind", "schema")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	var err error
	if validateSchemaFile != "" {
		err = schemas.ValidateJSON(validateSchemaFile, validateFile)
	} else {
		var data []byte
		data, err = os.ReadFile(validateFile)
		if err != nil {
			return fmt.Errorf("document file not found: %w", err)
		}
		err = schemas.ValidateDocument(validateKind, data)
	}

	if err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Validation failed: %s\n", validateFile)
		}
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Validation passed: %s\n", validateFile)
	return nil
}
