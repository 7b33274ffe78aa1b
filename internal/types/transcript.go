// Package types provides type definitions for structured data used throughout the speech-coach system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Transcript is a complete speech-to-text result for one recorded answer.
// Word timings are not required to be ordered or non-overlapping.
type Transcript struct {
	Text     string  `json:"text"`
	Words    []Word  `json:"words"`
	Duration float64 `json:"duration"` // seconds
}

// Word holds per-word timing and recognition confidence
type Word struct {
	Word       string  `json:"word"`
	Start      float64 `json:"start" validate:"gte=0"`
	End        float64 `json:"end" validate:"gte=0"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=1"`
}

// Confidences returns the per-word confidence values in word order.
func (t Transcript) Confidences() []float64 {
	out := make([]float64, len(t.Words))
	for i, w := range t.Words {
		out[i] = w.Confidence
	}
	return out
}
