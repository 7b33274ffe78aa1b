// Package textmatch provides whole-word and whole-phrase matching over transcript text.
package textmatch

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// PhraseMatcher matches a fixed list of words and phrases as whole words,
// case-insensitively. Multi-word entries match across any run of whitespace.
// Word boundaries are Unicode-aware, so entries in any script never match
// inside a longer word. A nil or empty matcher never matches.
type PhraseMatcher struct {
	re *regexp.Regexp
}

// Boundary guards around the alternation. The trailing guard is consumed by
// a match, so scanning resumes at the end of the phrase group instead.
const (
	nonWord       = `[^\p{L}\p{M}\p{N}_]`
	leadingGuard  = `(?:^|` + nonWord + `)`
	trailingGuard = `(?:` + nonWord + `|$)`
)

func compileGuarded(core string) *PhraseMatcher {
	return &PhraseMatcher{re: regexp.MustCompile(`(?i)` + leadingGuard + `(` + core + `)` + trailingGuard)}
}

// NewPhraseMatcher compiles phrases into a single alternation. Longer entries
// are tried first so that "kind of" wins over a hypothetical "kind".
func NewPhraseMatcher(phrases []string) *PhraseMatcher {
	alts := phraseAlternatives(phrases)
	if len(alts) == 0 {
		return &PhraseMatcher{}
	}
	return compileGuarded(strings.Join(alts, "|"))
}

// NewQuantityMatcher builds a matcher for a number immediately followed by one
// of units ("85 percent", "30%", "1,200 users").
func NewQuantityMatcher(units []string) *PhraseMatcher {
	alts := phraseAlternatives(units)
	if len(alts) == 0 {
		return &PhraseMatcher{}
	}
	return compileGuarded(`\d+(?:[.,]\d+)*\s*(?:` + strings.Join(alts, "|") + `)`)
}

// FindAll returns every non-overlapping match, lower-cased with whitespace collapsed.
func (m *PhraseMatcher) FindAll(text string) []string {
	var out []string
	m.scan(text, func(match string) bool {
		out = append(out, Normalize(match))
		return true
	})
	return out
}

// MatchString reports whether any phrase occurs in text.
func (m *PhraseMatcher) MatchString(text string) bool {
	found := false
	m.scan(text, func(string) bool {
		found = true
		return false
	})
	return found
}

// scan calls yield with each matched phrase in order until yield returns false.
func (m *PhraseMatcher) scan(text string, yield func(match string) bool) {
	if m == nil || m.re == nil || text == "" {
		return
	}
	for pos := 0; pos < len(text); {
		loc := m.re.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			return
		}
		start, end := pos+loc[2], pos+loc[3]
		if !yield(text[start:end]) {
			return
		}
		pos = end
	}
}

func phraseAlternatives(phrases []string) []string {
	cleaned := make([]string, 0, len(phrases))
	seen := make(map[string]bool, len(phrases))
	for _, p := range phrases {
		p = Normalize(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		cleaned = append(cleaned, p)
	}
	sort.SliceStable(cleaned, func(i, j int) bool { return len(cleaned[i]) > len(cleaned[j]) })

	alts := make([]string, 0, len(cleaned))
	for _, p := range cleaned {
		words := strings.Fields(p)
		quoted := make([]string, len(words))
		for i, w := range words {
			quoted[i] = regexp.QuoteMeta(w)
		}
		alts = append(alts, strings.Join(quoted, `\s+`))
	}
	return alts
}

// Normalize lower-cases s and collapses internal whitespace.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Tokens splits text on whitespace.
func Tokens(text string) []string {
	return strings.Fields(text)
}

// CleanToken lower-cases a token and trims surrounding punctuation.
func CleanToken(token string) string {
	return strings.ToLower(strings.TrimFunc(token, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}))
}
