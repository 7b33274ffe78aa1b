package feedback

import (
	"fmt"

	"github.com/jonathan/speech-coach/internal/types"
)

// FallbackScore is the neutral score used when no transcript could be produced.
const FallbackScore = 50

// ImprovementCheckSetup leads the fallback improvements.
const ImprovementCheckSetup = "Check your microphone and recording setup before answering"

// Fallback returns the fixed record a caller substitutes when transcription
// failed outright. The scoring pipeline is not involved.
func Fallback(reason string) types.FeedbackRecord {
	text := "We could not transcribe this recording, so the scores below are placeholders rather than an assessment of your answer."
	if reason != "" {
		text = fmt.Sprintf("We could not transcribe this recording (%s), so the scores below are placeholders rather than an assessment of your answer.", reason)
	}
	text += "\n\nCheck that your microphone is connected and that you are speaking clearly, then record your answer again."

	return types.FeedbackRecord{
		OverallScore:    FallbackScore,
		ClarityScore:    FallbackScore,
		StructureScore:  FallbackScore,
		PaceScore:       FallbackScore,
		ContentScore:    FallbackScore,
		FillerWordCount: 0,
		FeedbackText:    text,
		Strengths:       BuildList(strengthPool),
		Improvements:    BuildList(improvementPool, []string{ImprovementCheckSetup}),
	}
}
