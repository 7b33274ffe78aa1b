package feedback

import (
	"fmt"
	"strings"

	"github.com/jonathan/speech-coach/internal/scoring"
	"github.com/jonathan/speech-coach/internal/types"
)

// Overall score bands for the opening paragraph
const (
	excellentBand = 85
	goodBand      = 70
	fairBand      = 50
)

const closingParagraph = "Keep practicing. Focus on one improvement at a time, then record the answer again to hear the difference."

// Narrative renders the multi-paragraph feedback text. It is never empty.
func Narrative(overall int, m types.SpeechMetrics) string {
	paragraphs := []string{opening(overall)}

	if m.WordCount == 0 {
		paragraphs = append(paragraphs,
			"No speech was detected in this answer, so pace, filler words and vocabulary could not be assessed. "+
				"Check your microphone and try answering again.")
	} else {
		paragraphs = append(paragraphs,
			paceParagraph(m),
			fillerParagraph(m),
			sentenceParagraph(m),
			vocabularyParagraph(m),
		)
	}

	paragraphs = append(paragraphs, closingParagraph)
	return strings.Join(paragraphs, "\n\n")
}

func opening(overall int) string {
	switch {
	case overall >= excellentBand:
		return fmt.Sprintf("Excellent work! Your answer was clear and well delivered. Overall score: %d/100.", overall)
	case overall >= goodBand:
		return fmt.Sprintf("Good job. Your answer covered the essentials, with a few areas left to polish. Overall score: %d/100.", overall)
	case overall >= fairBand:
		return fmt.Sprintf("You're on the right track. The core of a solid answer is there, but several areas need attention. Overall score: %d/100.", overall)
	default:
		return fmt.Sprintf("This answer needs more work, and every practice session builds the skill. Overall score: %d/100.", overall)
	}
}

func paceParagraph(m types.SpeechMetrics) string {
	wpm := m.WordsPerMinute
	switch {
	case wpm <= 0:
		return "The recording had no usable duration, so your speaking rate could not be measured."
	case wpm < scoring.IdealMinWPM:
		return fmt.Sprintf("You spoke at about %.0f words per minute, which is on the slow side. "+
			"Aim for %.0f to %.0f words per minute to keep your listener engaged.", wpm, scoring.IdealMinWPM, scoring.IdealMaxWPM)
	case wpm > scoring.IdealMaxWPM:
		return fmt.Sprintf("You spoke at about %.0f words per minute, which is fast. "+
			"Slowing to %.0f to %.0f words per minute will make your points easier to follow.", wpm, scoring.IdealMinWPM, scoring.IdealMaxWPM)
	default:
		return fmt.Sprintf("Your pace of about %.0f words per minute sits comfortably in the ideal range.", wpm)
	}
}

func fillerParagraph(m types.SpeechMetrics) string {
	switch {
	case m.FillerWordCount == 0:
		return "You avoided filler words entirely, which makes you sound prepared and confident."
	case m.FillerRatio() <= scoring.FillerRatioThreshold:
		return fmt.Sprintf("You used %d filler %s, which is within a natural range.", m.FillerWordCount, plural(m.FillerWordCount, "word", "words"))
	default:
		return fmt.Sprintf("You used %d filler words, most often %q. "+
			"Try replacing them with a short, silent pause while you gather your next thought.", m.FillerWordCount, MostFrequent(m.FillerWords))
	}
}

func sentenceParagraph(m types.SpeechMetrics) string {
	avg := m.AverageWordsPerSentence
	switch {
	case avg < scoring.ChoppySentenceWords:
		return fmt.Sprintf("Your sentences averaged %.0f words, which can sound choppy. Link related ideas into fuller sentences.", avg)
	case avg > scoring.RunOnSentenceWords:
		return fmt.Sprintf("Your sentences averaged %.0f words. Breaking long sentences apart will help your listener keep up.", avg)
	default:
		return fmt.Sprintf("Your sentences averaged %.0f words, a comfortable length for spoken answers.", avg)
	}
}

func vocabularyParagraph(m types.SpeechMetrics) string {
	switch {
	case m.VocabularyRichness > scoring.HighRichnessThreshold:
		return "Your word choice was varied and precise."
	case m.VocabularyRichness < scoring.LowRichnessThreshold:
		return "Several words were repeated often. Varying your vocabulary will make the answer more engaging."
	default:
		return "Your vocabulary was solid. Reaching for more specific terms can make your answer stand out."
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
