// Package observability provides formatted output for verbose CLI mode and
// OpenTelemetry metrics for the scoring service.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/speech-coach/internal/live"
	"github.com/jonathan/speech-coach/internal/types"
)

// Report boxes are a fixed width; lists inside them are truncated.
const (
	boxWidth   = 60
	boxInner   = boxWidth - 4
	listLimit  = 5
	horizontal = "─"
)

// Printer renders verbose scoring reports as boxed text sections.
type Printer struct {
	out io.Writer
}

func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox writes one titled section, wrapping body lines to the box width.
// Write errors are ignored; the report is best effort.
func (p *Printer) printBox(title string, body string) {
	rule := strings.Repeat(horizontal, boxWidth-2)

	lines := []string{"┌" + rule + "┐", "│ " + pad(title) + " │", "├" + rule + "┤"}
	for _, para := range strings.Split(body, "\n") {
		for _, line := range wrap(para, boxInner) {
			lines = append(lines, "│ "+pad(line)+" │")
		}
	}
	lines = append(lines, "└"+rule+"┘", "")

	_, _ = io.WriteString(p.out, strings.Join(lines, "\n"))
}

// pad right-fills s with spaces to the inner box width.
func pad(s string) string {
	if n := boxInner - utf8.RuneCountInString(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

// PrintMetrics outputs the measured speech metrics.
func (p *Printer) PrintMetrics(m *types.SpeechMetrics) {
	if m == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Words:            %d (%d unique)\n", m.WordCount, m.UniqueWordCount)
	fmt.Fprintf(&sb, "Sentences:        %d (avg %.1f words)\n", m.SentenceCount, m.AverageWordsPerSentence)
	fmt.Fprintf(&sb, "Pace:             %.0f WPM over %.1fs\n", m.WordsPerMinute, m.DurationSeconds)
	fmt.Fprintf(&sb, "Vocabulary:       %.2f richness\n", m.VocabularyRichness)
	fmt.Fprintf(&sb, "Pauses:           %d (avg %.2fs, %d long)\n", len(m.PauseDurations), m.AveragePauseDuration, m.LongPauseCount)
	if m.AverageConfidence > 0 {
		fmt.Fprintf(&sb, "Confidence:       %.2f\n", m.AverageConfidence)
	}
	fmt.Fprintf(&sb, "Filler words:     %d", m.FillerWordCount)
	if len(m.FillerWords) > 0 {
		sb.WriteString(" (" + joinLimited(m.FillerWords, listLimit) + ")")
	}

	p.printBox("SPEECH METRICS", sb.String())
}

// PrintSignals outputs the detected content signals.
func (p *Printer) PrintSignals(s *types.ContentSignals) {
	if s == nil {
		return
	}

	var sb strings.Builder
	for _, row := range []struct {
		label string
		on    bool
	}{
		{"Examples", s.HasExamples},
		{"Structure markers", s.HasStructureMarkers},
		{"Confident language", s.HasConfidentLanguage},
		{"Hedging language", s.HasHedgingLanguage},
		{"Quantified results", s.HasQuantifiedResults},
	} {
		fmt.Fprintf(&sb, "%-20s %s\n", row.label+":", check(row.on))
	}
	fmt.Fprintf(&sb, "%-20s %s", "Length:", s.LengthVerdict)
	if s.QuestionOverlap != nil {
		fmt.Fprintf(&sb, "\n%-20s %.0f%%", "Question overlap:", *s.QuestionOverlap*100)
	}

	p.printBox("CONTENT SIGNALS", sb.String())
}

// PrintFeedback outputs the scores, advice lists and narrative of a feedback record.
func (p *Printer) PrintFeedback(rec *types.FeedbackRecord) {
	if rec == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Overall:    %3d\n", rec.OverallScore)
	fmt.Fprintf(&sb, "Clarity:    %3d\n", rec.ClarityScore)
	fmt.Fprintf(&sb, "Structure:  %3d\n", rec.StructureScore)
	fmt.Fprintf(&sb, "Pace:       %3d\n", rec.PaceScore)
	fmt.Fprintf(&sb, "Content:    %3d\n", rec.ContentScore)
	sb.WriteString("\nStrengths:\n")
	for _, s := range rec.Strengths {
		fmt.Fprintf(&sb, "  ✓ %s\n", s)
	}
	sb.WriteString("\nImprovements:\n")
	for _, s := range rec.Improvements {
		fmt.Fprintf(&sb, "  → %s\n", s)
	}
	p.printBox("FEEDBACK SCORES", strings.TrimSuffix(sb.String(), "\n"))

	if rec.FeedbackText != "" {
		p.printBox("FEEDBACK", rec.FeedbackText)
	}
}

// PrintPartial outputs one line of running live-session metrics.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintPartial(part live.Partial) {
	fmt.Fprintf(p.out, "[%2d] %4d words  %3.0f WPM  %2d fillers  %s\n",
		part.Fragments, part.WordCount, part.WordsPerMinute, part.FillerWordCount, tail(part.Text, 30))
}

func check(on bool) string {
	if on {
		return "yes"
	}
	return "no"
}

func joinLimited(items []string, limit int) string {
	if len(items) <= limit {
		return strings.Join(items, ", ")
	}
	return strings.Join(items[:limit], ", ") + fmt.Sprintf(", ... and %d more", len(items)-limit)
}

// tail returns the last n runes of s, prefixed with "..." when shortened.
func tail(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return "..." + string(r[len(r)-n:])
}

// wrap splits line into chunks of at most width runes, breaking on spaces
// where possible.
func wrap(line string, width int) []string {
	if utf8.RuneCountInString(line) <= width {
		return []string{line}
	}

	var out []string
	var cur []rune
	for _, word := range strings.Fields(line) {
		w := []rune(word)
		for len(w) > width {
			if len(cur) > 0 {
				out = append(out, string(cur))
				cur = nil
			}
			out = append(out, string(w[:width]))
			w = w[width:]
		}
		switch {
		case len(cur) == 0:
			cur = w
		case len(cur)+1+len(w) <= width:
			cur = append(append(cur, ' '), w...)
		default:
			out = append(out, string(cur))
			cur = w
		}
	}
	if len(cur) > 0 {
		out = append(out, string(cur))
	}
	return out
}
