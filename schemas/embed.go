// Package schemas embeds the JSON Schemas for the documents the tool reads and writes.
package schemas

import "embed"

// FS holds every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS

// Schema file names
const (
	TranscriptFile     = "transcript.schema.json"
	FeedbackRecordFile = "feedback_record.schema.json"
	ScoreRequestFile   = "score_request.schema.json"
)
