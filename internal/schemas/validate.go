// Package schemas provides JSON Schema validation for transcripts, score
// requests and feedback records.
package schemas

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	schemafiles "github.com/jonathan/speech-coach/schemas"
)

// Document kinds with an embedded schema
const (
	KindTranscript     = "transcript"
	KindFeedbackRecord = "feedback"
	KindScoreRequest   = "score_request"
)

var kindFiles = map[string]string{
	KindTranscript:     schemafiles.TranscriptFile,
	KindFeedbackRecord: schemafiles.FeedbackRecordFile,
	KindScoreRequest:   schemafiles.ScoreRequestFile,
}

// Kinds lists the document kinds accepted by ValidateDocument, sorted.
func Kinds() []string {
	kinds := make([]string, 0, len(kindFiles))
	for k := range kindFiles {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// FieldError is one schema violation. Field is a dotted path, "(root)" for
// the document itself.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every schema violation found in a document.
type ValidationError struct {
	Schema string
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "document does not match %s (%d %s):", ve.Schema, len(ve.Errors), plural(len(ve.Errors), "violation", "violations"))
	for i, fe := range ve.Errors {
		fmt.Fprintf(&sb, "\n  %d. %s: %s", i+1, fe.Field, fe.Message)
	}
	return sb.String()
}

// SchemaLoadError reports a schema that could not be read or compiled.
type SchemaLoadError struct {
	Path  string
	Cause error
}

func (e *SchemaLoadError) Error() string {
	return fmt.Sprintf("failed to load schema %s: %v", e.Path, e.Cause)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// DocumentError reports a document that is not valid JSON.
type DocumentError struct {
	Cause error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document is not valid JSON: %v", e.Cause)
}

func (e *DocumentError) Unwrap() error {
	return e.Cause
}

// Embedded schemas are compiled on first use and reused afterwards.
var (
	compileOnce sync.Once
	compiled    map[string]*gojsonschema.Schema
	compileErr  error
)

func embeddedSchema(kind string) (*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled = make(map[string]*gojsonschema.Schema, len(kindFiles))
		for k, file := range kindFiles {
			raw, err := schemafiles.FS.ReadFile(file)
			if err != nil {
				compileErr = &SchemaLoadError{Path: file, Cause: err}
				return
			}
			schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
			if err != nil {
				compileErr = &SchemaLoadError{Path: file, Cause: err}
				return
			}
			compiled[k] = schema
		}
	})
	if compileErr != nil {
		return nil, compileErr
	}

	schema, ok := compiled[kind]
	if !ok {
		return nil, fmt.Errorf("unknown document kind %q (want one of %s)", kind, strings.Join(Kinds(), ", "))
	}
	return schema, nil
}

// ValidateDocument validates JSON content against the embedded schema for kind
func ValidateDocument(kind string, data []byte) error {
	schema, err := embeddedSchema(kind)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &DocumentError{Cause: err}
	}
	return toValidationError(kindFiles[kind], result)
}

// ValidateValue marshals v and validates it against the embedded schema for kind
func ValidateValue(kind string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", kind, err)
	}
	return ValidateDocument(kind, data)
}

// ValidateJSON validates a JSON file against a JSON Schema file
func ValidateJSON(schemaPath, jsonPath string) error {
	schemaAbs, err := existingFile(schemaPath, "schema")
	if err != nil {
		return err
	}
	docAbs, err := existingFile(jsonPath, "JSON")
	if err != nil {
		return err
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewReferenceLoader("file://" + filepath.ToSlash(schemaAbs)))
	if err != nil {
		return &SchemaLoadError{Path: schemaAbs, Cause: err}
	}
	result, err := schema.Validate(gojsonschema.NewReferenceLoader("file://" + filepath.ToSlash(docAbs)))
	if err != nil {
		return &DocumentError{Cause: err}
	}
	return toValidationError(filepath.Base(schemaAbs), result)
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaContent))
	if err != nil {
		return &SchemaLoadError{Path: "(inline schema)", Cause: err}
	}
	result, err := schema.Validate(gojsonschema.NewStringLoader(jsonContent))
	if err != nil {
		return &DocumentError{Cause: err}
	}
	return toValidationError("(inline schema)", result)
}

func existingFile(path, what string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s path: %w", what, err)
	}
	if _, err := os.Stat(abs); os.IsNotExist(err) {
		return "", fmt.Errorf("%s file not found: %s", what, abs)
	}
	return abs, nil
}

func toValidationError(schemaName string, result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	ve := &ValidationError{Schema: schemaName, Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return ve
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
