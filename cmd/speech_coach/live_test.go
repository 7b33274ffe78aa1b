package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/speech-coach/internal/live"
)

func TestParseFragmentLine(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   live.Fragment
		wantOK bool
	}{
		{name: "final", line: "I led the project.", want: live.Fragment{Text: "I led the project.", IsFinal: true, Elapsed: 4}, wantOK: true},
		{name: "interim", line: "~ I led the", want: live.Fragment{Text: "I led the", Elapsed: 4}, wantOK: true},
		{name: "interim without space", line: "~um", want: live.Fragment{Text: "um", Elapsed: 4}, wantOK: true},
		{name: "blank", line: "   ", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseFragmentLine(tt.line, 4)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

const fragmentsFile = `~ um so
Um so I led the migration.

~ first we
First we mapped every dependency.
`

func TestLiveCommand_PrintsPartials(t *testing.T) {
	path := writeFile(t, "fragments.txt", fragmentsFile)

	stdout, _, err := executeCommand(t, "live", "--fragments", path, "--interval", "1.5")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "2 words")
	assert.Contains(t, lines[3], "11 words")
}

func TestLiveCommand_Score(t *testing.T) {
	path := writeFile(t, "fragments.txt", fragmentsFile)

	stdout, stderr, err := executeCommand(t, "live", "--fragments", path, "--score", "--question", "Tell me about a migration")
	require.NoError(t, err)

	rec := decodeRecord(t, stdout)
	assert.Equal(t, 2, rec.FillerWordCount)
	assert.NotEmpty(t, stderr, "partials go to stderr when scoring")
}

func TestLiveCommand_Errors(t *testing.T) {
	_, _, err := executeCommand(t, "live")
	assert.Error(t, err)

	_, _, err = executeCommand(t, "live", "--fragments", "does-not-exist.txt")
	assert.Error(t, err)

	_, _, err = executeCommand(t, "live", "--fragments", writeFile(t, "f.txt", "hi\n"), "--interval", "0")
	assert.Error(t, err)
}
