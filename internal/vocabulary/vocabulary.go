// Package vocabulary holds the word and phrase lists that drive filler detection
// and content signal matching. A Vocabulary is immutable once built; callers
// inject it at construction time so alternate locales can be substituted.
package vocabulary

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Vocabulary is the full set of lexical lists used by the engine.
type Vocabulary struct {
	Fillers          []string `yaml:"fillers"`
	Examples         []string `yaml:"examples"`
	StructureMarkers []string `yaml:"structure_markers"`
	Confident        []string `yaml:"confident"`
	Hedging          []string `yaml:"hedging"`
	QuantityUnits    []string `yaml:"quantity_units"`
	StopWords        []string `yaml:"stop_words"`
}

// Default returns the built-in English vocabulary.
func Default() Vocabulary {
	return Vocabulary{
		Fillers: []string{
			"um", "uh", "like", "you know", "sort of", "kind of", "i mean",
			"basically", "actually", "literally", "just", "so", "well", "right",
			"okay", "alright", "anyway", "hmm", "er", "ah",
		},
		Examples:         []string{"example", "instance", "time when", "situation", "experience"},
		StructureMarkers: []string{"first", "second", "then", "next", "finally", "result", "outcome", "achieved"},
		Confident:        []string{"i will", "i can", "i have", "i am confident", "successfully", "achieved", "delivered"},
		Hedging:          []string{"maybe", "might", "possibly", "i think", "i guess", "probably", "kind of", "sort of"},
		QuantityUnits:    []string{"percent", "%", "people", "users", "customers", "dollars", "weeks", "months", "years"},
		StopWords: []string{
			"what", "when", "where", "which", "who", "whom", "why", "how", "that", "this",
			"these", "those", "your", "you", "have", "with", "about", "would", "could",
			"should", "tell", "describe", "give", "from", "into", "there", "their", "were",
			"been", "being", "does", "some", "time",
		},
	}
}

// LoadError represents an error reading or parsing a vocabulary file
type LoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("vocabulary %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("vocabulary %s: %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Load reads a YAML vocabulary file. Lists omitted from the file keep their
// default values; a list given as empty stays empty.
func Load(path string) (Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, &LoadError{Path: path, Message: "failed to read file", Cause: err}
	}
	return Parse(data, path)
}

// Parse decodes YAML vocabulary content over the defaults.
func Parse(data []byte, source string) (Vocabulary, error) {
	v := Default()
	if err := yaml.Unmarshal(data, &v); err != nil {
		return Vocabulary{}, &LoadError{Path: source, Message: "failed to parse YAML", Cause: err}
	}
	v = v.Normalized()
	if err := v.Validate(); err != nil {
		return Vocabulary{}, &LoadError{Path: source, Message: "invalid vocabulary", Cause: err}
	}
	return v, nil
}

// Normalized returns a copy with entries lower-cased, whitespace-collapsed and
// de-duplicated. Empty entries are dropped.
func (v Vocabulary) Normalized() Vocabulary {
	return Vocabulary{
		Fillers:          normalizeList(v.Fillers),
		Examples:         normalizeList(v.Examples),
		StructureMarkers: normalizeList(v.StructureMarkers),
		Confident:        normalizeList(v.Confident),
		Hedging:          normalizeList(v.Hedging),
		QuantityUnits:    normalizeList(v.QuantityUnits),
		StopWords:        normalizeList(v.StopWords),
	}
}

// Validate checks that the lists the content score depends on are present.
func (v Vocabulary) Validate() error {
	required := map[string][]string{
		"examples":          v.Examples,
		"structure_markers": v.StructureMarkers,
		"confident":         v.Confident,
		"hedging":           v.Hedging,
		"quantity_units":    v.QuantityUnits,
	}
	for _, name := range []string{"examples", "structure_markers", "confident", "hedging", "quantity_units"} {
		if len(required[name]) == 0 {
			return fmt.Errorf("list %q must not be empty", name)
		}
	}
	return nil
}

// Marshal renders the vocabulary as YAML.
func (v Vocabulary) Marshal() ([]byte, error) {
	return yaml.Marshal(v)
}

func normalizeList(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, entry := range in {
		e := strings.ToLower(strings.Join(strings.Fields(entry), " "))
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}
