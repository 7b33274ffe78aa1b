package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/speech-coach/internal/live"
	"github.com/jonathan/speech-coach/internal/observability"
)

// interimPrefix marks a fragment line that the next line may revise
const interimPrefix = "~"

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Replay transcript fragments and print running metrics",
	Long: `Replay a file of transcript fragments, one per line, through a live session and print the
running word count, pace and filler words after each. Lines starting with "~" are interim
fragments; every other non-empty line is final. With --score the finished transcript is scored.`,
	RunE: runLive,
}

var (
	liveFragmentsFile string
	liveQuestion      string
	liveInterval      float64
	liveScore         bool
	liveOutputFile    string
)

func init() {
	liveCmd.Flags().StringVarP(&liveFragmentsFile, "fragments", "f", "", "Path to fragments file (required)")
	liveCmd.Flags().StringVarP(&liveQuestion, "question", "q", "", "Interview question the answer responds to")
	liveCmd.Flags().Float64Var(&liveInterval, "interval", 2.0, "Seconds of speech assumed between fragments")
	liveCmd.Flags().BoolVar(&liveScore, "score", false, "Score the finished transcript")
	liveCmd.Flags().StringVarP(&liveOutputFile, "out", "o", "", "Path to output JSON file for --score (defaults to stdout)")

	_ = liveCmd.MarkFlagRequired("fragments")

	rootCmd.AddCommand(liveCmd)
}

// parseFragmentLine turns one fragments-file line into a fragment. ok is false
// for blank lines.
func parseFragmentLine(line string, elapsed float64) (live.Fragment, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return live.Fragment{}, false
	}
	if rest, interim := strings.CutPrefix(line, interimPrefix); interim {
		return live.Fragment{Text: strings.TrimSpace(rest), Elapsed: elapsed}, true
	}
	return live.Fragment{Text: line, IsFinal: true, Elapsed: elapsed}, true
}

func runLive(cmd *cobra.Command, _ []string) error {
	if liveInterval <= 0 {
		return fmt.Errorf("--interval must be positive")
	}

	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	file, err := os.Open(liveFragmentsFile)
	if err != nil {
		return fmt.Errorf("failed to open fragments file: %w", err)
	}
	defer file.Close()

	session := live.NewSession(eng.Extractor())
	printer := observability.NewPrinter(cmd.ErrOrStderr())
	if !liveScore {
		printer = observability.NewPrinter(cmd.OutOrStdout())
	}

	scanner := bufio.NewScanner(file)
	fed := 0
	for scanner.Scan() {
		fragment, ok := parseFragmentLine(scanner.Text(), float64(fed+1)*liveInterval)
		if !ok {
			continue
		}
		partial, err := session.Feed(fragment)
		if err != nil {
			return err
		}
		fed++
		printer.PrintPartial(partial)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read fragments file: %w", err)
	}

	if !liveScore {
		return nil
	}

	transcript := session.Transcript()
	session.Stop()
	result := eng.Evaluate(liveQuestion, transcript, transcript.Duration)
	if cfg.Verbose {
		printResult(cmd.ErrOrStderr(), result)
	}
	return emitRecord(cmd, result.Feedback, liveOutputFile)
}
