// Package engine composes metric extraction, sub-scoring, content analysis and
// feedback synthesis into a single scoring call.
package engine

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/speech-coach/internal/content"
	"github.com/jonathan/speech-coach/internal/feedback"
	"github.com/jonathan/speech-coach/internal/metrics"
	"github.com/jonathan/speech-coach/internal/scoring"
	"github.com/jonathan/speech-coach/internal/types"
	"github.com/jonathan/speech-coach/internal/vocabulary"
)

// DefaultBatchLimit bounds concurrent scoring when the caller passes no limit
const DefaultBatchLimit = 8

// Result is the feedback record together with the intermediate measurements
// it was derived from. Elapsed is the time spent scoring this answer alone.
type Result struct {
	Feedback types.FeedbackRecord `json:"feedback"`
	Metrics  types.SpeechMetrics  `json:"metrics"`
	Signals  types.ContentSignals `json:"signals"`
	Elapsed  time.Duration        `json:"-"`
}

// ResultCallback receives each batch result as soon as it is ready. Calls are
// serialized; index is the item's position in the request slice.
type ResultCallback func(index int, result Result)

// Engine scores transcripts. It holds only read-only matchers, so one Engine
// may serve any number of concurrent callers.
type Engine struct {
	extractor *metrics.Extractor
	analyzer  *content.Analyzer
}

// New builds an engine for vocab.
func New(vocab vocabulary.Vocabulary) *Engine {
	return &Engine{
		extractor: metrics.NewExtractor(vocab),
		analyzer:  content.NewAnalyzer(vocab),
	}
}

// Extractor returns the metrics extractor used by the engine.
func (e *Engine) Extractor() *metrics.Extractor {
	return e.extractor
}

// Evaluate runs the full pipeline for one answer. It never fails; degenerate
// transcripts score with safe defaults.
func (e *Engine) Evaluate(question string, t types.Transcript, durationSeconds float64) Result {
	start := time.Now()
	m := e.extractor.Extract(t, durationSeconds)
	analysis := e.analyzer.Analyze(question, t.Text, m)

	scores := types.SubScores{
		Clarity:   scoring.Clarity(m, t.Confidences()),
		Structure: scoring.Structure(m),
		Pace:      scoring.Pace(m),
		Content:   analysis.ContentScore,
	}

	record := feedback.Synthesize(feedback.Input{
		Scores:              scores,
		Metrics:             m,
		ContentStrengths:    analysis.Strengths,
		ContentImprovements: analysis.Improvements,
	})

	return Result{Feedback: record, Metrics: m, Signals: analysis.Signals, Elapsed: time.Since(start)}
}

// Score evaluates req and returns only the feedback record.
func (e *Engine) Score(req types.ScoreRequest) types.FeedbackRecord {
	return e.Evaluate(req.Question, req.Transcript, req.EffectiveDuration()).Feedback
}

// ScoreBatch evaluates every request with at most limit running at once. The
// output is in input order. It only fails when ctx is cancelled.
func (e *Engine) ScoreBatch(ctx context.Context, reqs []types.ScoreRequest, limit int) ([]Result, error) {
	return e.ScoreBatchFunc(ctx, reqs, limit, nil)
}

// ScoreBatchFunc is ScoreBatch with a callback invoked as each item completes.
func (e *Engine) ScoreBatchFunc(ctx context.Context, reqs []types.ScoreRequest, limit int, onResult ResultCallback) ([]Result, error) {
	if limit <= 0 {
		limit = DefaultBatchLimit
	}

	results := make([]Result, len(reqs))
	var cbMu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i := range reqs {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			req := reqs[i]
			result := e.Evaluate(req.Question, req.Transcript, req.EffectiveDuration())
			results[i] = result

			if onResult != nil {
				cbMu.Lock()
				onResult(i, result)
				cbMu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
