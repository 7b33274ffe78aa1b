// Package content detects qualitative signals in an answer and derives the content sub-score.
package content

import (
	"github.com/jonathan/speech-coach/internal/scoring"
	"github.com/jonathan/speech-coach/internal/textmatch"
	"github.com/jonathan/speech-coach/internal/types"
	"github.com/jonathan/speech-coach/internal/vocabulary"
)

// Content score policy
const (
	baseline            = 70.0
	lengthBonus         = 10.0
	examplesBonus       = 10.0
	structureBonus      = 10.0
	confidentBonus      = 5.0
	quantifiedBonus     = 5.0
	lowRichnessPenalty  = 10.0
	MinAppropriateWords = 50
	MaxAppropriateWords = 300

	// minKeywordLength drops short question words before measuring overlap
	minKeywordLength = 3
	// relevantOverlap is the share of question keywords an on-topic answer reuses
	relevantOverlap = 0.3
)

// Candidate strengths and improvements, one pair per signal
const (
	StrengthExamples      = "Included concrete examples to support your points"
	ImprovementExamples   = "Add specific examples from your experience to support your points"
	StrengthStructure     = "Organized the answer with a clear structure"
	ImprovementStructure  = "Structure your answer with a clear beginning, middle, and end (try the STAR method)"
	StrengthConfident     = "Used confident, assertive language"
	ImprovementHedging    = "Reduce hedging phrases like \"I think\" or \"maybe\" to sound more certain"
	ImprovementAssertive  = "Use assertive statements such as \"I delivered\" or \"I achieved\""
	StrengthQuantified    = "Quantified results with concrete numbers"
	ImprovementQuantified = "Quantify your impact with numbers, percentages, or timeframes"
	StrengthLength        = "Answer length was well suited to the question"
	ImprovementTooBrief   = "Expand your answer with more detail; aim for at least 50 words"
	ImprovementTooVerbose = "Tighten your answer to stay under 300 words and keep the key points clear"
	StrengthOnTopic       = "Stayed focused on the question that was asked"
	ImprovementOffTopic   = "Tie your answer back to the key terms of the question"
)

// Analysis is the content analyzer's output for one answer.
type Analysis struct {
	ContentScore int                  `json:"content_score"`
	Signals      types.ContentSignals `json:"signals"`
	Strengths    []string             `json:"strengths"`
	Improvements []string             `json:"improvements"`
}

// Analyzer holds compiled matchers for one vocabulary. It is read-only after
// construction and safe for concurrent use.
type Analyzer struct {
	examples   *textmatch.PhraseMatcher
	structure  *textmatch.PhraseMatcher
	confident  *textmatch.PhraseMatcher
	hedging    *textmatch.PhraseMatcher
	quantified *textmatch.PhraseMatcher
	stopWords  map[string]bool
}

// NewAnalyzer compiles the content lists of vocab.
func NewAnalyzer(vocab vocabulary.Vocabulary) *Analyzer {
	stop := make(map[string]bool, len(vocab.StopWords))
	for _, w := range vocab.StopWords {
		stop[textmatch.Normalize(w)] = true
	}
	return &Analyzer{
		examples:   textmatch.NewPhraseMatcher(vocab.Examples),
		structure:  textmatch.NewPhraseMatcher(vocab.StructureMarkers),
		confident:  textmatch.NewPhraseMatcher(vocab.Confident),
		hedging:    textmatch.NewPhraseMatcher(vocab.Hedging),
		quantified: textmatch.NewQuantityMatcher(vocab.QuantityUnits),
		stopWords:  stop,
	}
}

// Analyze detects content signals in text and scores them. m supplies the word
// count and vocabulary richness already measured by the metrics extractor.
func (a *Analyzer) Analyze(question, text string, m types.SpeechMetrics) Analysis {
	signals := a.Signals(question, text, m.WordCount)

	score := baseline
	if signals.IsAppropriateLength {
		score += lengthBonus
	}
	if signals.HasExamples {
		score += examplesBonus
	}
	if signals.HasStructureMarkers {
		score += structureBonus
	}
	if signals.HasConfidentLanguage && !signals.HasHedgingLanguage {
		score += confidentBonus
	}
	if signals.HasQuantifiedResults {
		score += quantifiedBonus
	}
	if m.VocabularyRichness < scoring.LowRichnessThreshold {
		score -= lowRichnessPenalty
	}

	strengths, improvements := Candidates(signals)
	return Analysis{
		ContentScore: scoring.Clamp(score),
		Signals:      signals,
		Strengths:    strengths,
		Improvements: improvements,
	}
}

// Signals runs every pattern list over text.
func (a *Analyzer) Signals(question, text string, wordCount int) types.ContentSignals {
	s := types.ContentSignals{
		HasExamples:          a.examples.MatchString(text),
		HasStructureMarkers:  a.structure.MatchString(text),
		HasConfidentLanguage: a.confident.MatchString(text),
		HasHedgingLanguage:   a.hedging.MatchString(text),
		HasQuantifiedResults: a.quantified.MatchString(text),
		QuestionOverlap:      a.QuestionOverlap(question, text),
	}

	switch {
	case wordCount < MinAppropriateWords:
		s.LengthVerdict = types.LengthTooBrief
	case wordCount > MaxAppropriateWords:
		s.LengthVerdict = types.LengthTooVerbose
	default:
		s.LengthVerdict = types.LengthAppropriate
		s.IsAppropriateLength = true
	}
	return s
}

// QuestionOverlap returns the share of question keywords that also appear in
// the answer, or nil when the question has no keywords.
func (a *Analyzer) QuestionOverlap(question, text string) *float64 {
	keywords := a.keywords(question)
	if len(keywords) == 0 {
		return nil
	}

	answer := make(map[string]bool)
	for _, tok := range textmatch.Tokens(text) {
		answer[textmatch.CleanToken(tok)] = true
	}

	found := 0
	for _, k := range keywords {
		if answer[k] {
			found++
		}
	}
	overlap := float64(found) / float64(len(keywords))
	return &overlap
}

func (a *Analyzer) keywords(question string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, tok := range textmatch.Tokens(question) {
		w := textmatch.CleanToken(tok)
		if len([]rune(w)) <= minKeywordLength || a.stopWords[w] || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// Candidates maps each signal to exactly one strength or one improvement, in a
// fixed signal order.
func Candidates(s types.ContentSignals) (strengths, improvements []string) {
	strengths = []string{}
	improvements = []string{}

	if s.HasExamples {
		strengths = append(strengths, StrengthExamples)
	} else {
		improvements = append(improvements, ImprovementExamples)
	}

	if s.HasStructureMarkers {
		strengths = append(strengths, StrengthStructure)
	} else {
		improvements = append(improvements, ImprovementStructure)
	}

	switch {
	case s.HasHedgingLanguage:
		improvements = append(improvements, ImprovementHedging)
	case s.HasConfidentLanguage:
		strengths = append(strengths, StrengthConfident)
	default:
		improvements = append(improvements, ImprovementAssertive)
	}

	if s.HasQuantifiedResults {
		strengths = append(strengths, StrengthQuantified)
	} else {
		improvements = append(improvements, ImprovementQuantified)
	}

	switch s.LengthVerdict {
	case types.LengthTooBrief:
		improvements = append(improvements, ImprovementTooBrief)
	case types.LengthTooVerbose:
		improvements = append(improvements, ImprovementTooVerbose)
	default:
		strengths = append(strengths, StrengthLength)
	}

	if s.QuestionOverlap != nil {
		if *s.QuestionOverlap >= relevantOverlap {
			strengths = append(strengths, StrengthOnTopic)
		} else {
			improvements = append(improvements, ImprovementOffTopic)
		}
	}

	return strengths, improvements
}
