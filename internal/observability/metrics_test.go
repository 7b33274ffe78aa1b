package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/jonathan/speech-coach/internal/types"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader for
// programmatic metric inspection.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumByAttr(t *testing.T, m *metricdata.Metrics, key, value string) int64 {
	t.Helper()
	require.NotNil(t, m)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is %T, not an int64 sum", m.Name, m.Data)
	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
			total += dp.Value
		}
	}
	return total
}

func TestRecordFeedback(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	rec := types.FeedbackRecord{OverallScore: 80, ClarityScore: 90, StructureScore: 70, PaceScore: 75, ContentScore: 85, FillerWordCount: 4}
	m.RecordFeedback(ctx, SourceSingle, rec, 2*time.Millisecond)
	m.RecordFeedback(ctx, SourceBatch, rec, time.Millisecond)
	m.RecordFeedback(ctx, SourceBatch, rec, time.Millisecond)

	rm := collect(t, reader)

	scored := findMetric(rm, "speech_coach.answers.scored")
	assert.Equal(t, int64(1), sumByAttr(t, scored, "source", SourceSingle))
	assert.Equal(t, int64(2), sumByAttr(t, scored, "source", SourceBatch))

	fillers := findMetric(rm, "speech_coach.filler_words")
	require.NotNil(t, fillers)
	assert.Equal(t, int64(12), fillers.Data.(metricdata.Sum[int64]).DataPoints[0].Value)

	scores := findMetric(rm, "speech_coach.score")
	require.NotNil(t, scores)
	hist, ok := scores.Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	assert.Len(t, hist.DataPoints, 5, "one series per dimension")
	for _, dp := range hist.DataPoints {
		assert.Equal(t, uint64(3), dp.Count)
	}
}

func TestRecordTranscription(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordTranscription(ctx, "whisper", nil)
	m.RecordTranscription(ctx, "whisper", errors.New("timeout"))
	m.RecordTranscription(ctx, "whisper", errors.New("timeout"))

	requests := findMetric(collect(t, reader), "speech_coach.transcription.requests")
	assert.Equal(t, int64(1), sumByAttr(t, requests, "status", "ok"))
	assert.Equal(t, int64(2), sumByAttr(t, requests, "status", "error"))
}

func TestLiveSessionGauge(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.LiveSessionOpened(ctx)
	m.LiveSessionOpened(ctx)
	m.LiveSessionClosed(ctx)

	gauge := findMetric(collect(t, reader), "speech_coach.live.active_sessions")
	require.NotNil(t, gauge)
	assert.Equal(t, int64(1), gauge.Data.(metricdata.Sum[int64]).DataPoints[0].Value)
}

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	m, reader := newTestMetrics(t)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /feedback/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	h := Middleware(m)(mux)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/feedback/abc", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	dur := findMetric(collect(t, reader), "speech_coach.http.request.duration")
	require.NotNil(t, dur)
	hist := dur.Data.(metricdata.Histogram[float64])
	require.Len(t, hist.DataPoints, 1)

	attrs := hist.DataPoints[0].Attributes
	route, _ := attrs.Value("route")
	status, _ := attrs.Value("status")
	assert.Equal(t, "GET /feedback/{id}", route.AsString())
	assert.Equal(t, "404", status.AsString())
}
