package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/jonathan/speech-coach/internal/types"
)

// meterName is the instrumentation scope for all speech-coach metrics
const meterName = "github.com/jonathan/speech-coach"

// Score sources recorded with every scored answer
const (
	SourceSingle   = "single"
	SourceBatch    = "batch"
	SourceLive     = "live"
	SourceFallback = "fallback"
)

// Metrics holds the OpenTelemetry instruments. All fields are safe for
// concurrent use.
type Metrics struct {
	// AnswersScored counts feedback records produced, by source
	AnswersScored metric.Int64Counter

	// Scores records each sub-score and the overall score, by dimension
	Scores metric.Int64Histogram

	// ScoreDuration tracks scoring latency, by source
	ScoreDuration metric.Float64Histogram

	// FillerWords counts detected filler words
	FillerWords metric.Int64Counter

	// TranscriptionRequests counts provider calls, by provider and status
	TranscriptionRequests metric.Int64Counter

	// ActiveLiveSessions tracks open live sessions
	ActiveLiveSessions metric.Int64UpDownCounter

	// HTTPRequestDuration tracks request latency, by method, route and status
	HTTPRequestDuration metric.Float64Histogram
}

var scoreBuckets = []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

var latencyBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

// NewMetrics creates the instruments on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.AnswersScored, err = m.Int64Counter("speech_coach.answers.scored",
		metric.WithDescription("Total answers scored by source."),
	); err != nil {
		return nil, err
	}
	if met.Scores, err = m.Int64Histogram("speech_coach.score",
		metric.WithDescription("Distribution of scores by dimension."),
		metric.WithExplicitBucketBoundaries(scoreBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ScoreDuration, err = m.Float64Histogram("speech_coach.score.duration",
		metric.WithDescription("Latency of scoring one answer or batch."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.FillerWords, err = m.Int64Counter("speech_coach.filler_words",
		metric.WithDescription("Total filler words detected."),
	); err != nil {
		return nil, err
	}
	if met.TranscriptionRequests, err = m.Int64Counter("speech_coach.transcription.requests",
		metric.WithDescription("Total transcription requests by provider and status."),
	); err != nil {
		return nil, err
	}
	if met.ActiveLiveSessions, err = m.Int64UpDownCounter("speech_coach.live.active_sessions",
		metric.WithDescription("Number of open live sessions."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("speech_coach.http.request.duration",
		metric.WithDescription("HTTP request latency by method, route and status."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// RecordFeedback records one feedback record produced from source.
func (m *Metrics) RecordFeedback(ctx context.Context, source string, rec types.FeedbackRecord, elapsed time.Duration) {
	src := metric.WithAttributes(attribute.String("source", source))
	m.AnswersScored.Add(ctx, 1, src)
	m.ScoreDuration.Record(ctx, elapsed.Seconds(), src)
	m.FillerWords.Add(ctx, int64(rec.FillerWordCount))

	for dim, score := range map[string]int{
		"overall":   rec.OverallScore,
		"clarity":   rec.ClarityScore,
		"structure": rec.StructureScore,
		"pace":      rec.PaceScore,
		"content":   rec.ContentScore,
	} {
		m.Scores.Record(ctx, int64(score), metric.WithAttributes(attribute.String("dimension", dim)))
	}
}

// RecordTranscription records one transcription attempt.
func (m *Metrics) RecordTranscription(ctx context.Context, provider string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.TranscriptionRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("status", status),
	))
}

// LiveSessionOpened increments the active live session gauge.
func (m *Metrics) LiveSessionOpened(ctx context.Context) {
	m.ActiveLiveSessions.Add(ctx, 1)
}

// LiveSessionClosed decrements the active live session gauge.
func (m *Metrics) LiveSessionClosed(ctx context.Context) {
	m.ActiveLiveSessions.Add(ctx, -1)
}

// InitProvider installs a global MeterProvider backed by a Prometheus exporter
// and returns it. Callers Shutdown the provider on exit.
func InitProvider() (*sdkmetric.MeterProvider, error) {
	exporter, err := promexporter.New()
	if err != nil {
		return nil, err
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	return mp, nil
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Middleware records request duration. The route label is the matched mux
// pattern, so path parameters do not inflate cardinality.
func Middleware(m *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rec, r)

			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			m.HTTPRequestDuration.Record(r.Context(), time.Since(start).Seconds(),
				metric.WithAttributes(
					attribute.String("method", r.Method),
					attribute.String("route", route),
					attribute.String("status", strconv.Itoa(rec.statusCode)),
				),
			)
		})
	}
}
