package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/propcast/internal/models"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestRecordPrediction(t *testing.T) {
	InitRegistry()
	edge := -2.5
	record := &models.PredictionRecord{
		Key:            models.PredictionKey{AthleteID: "a", GameID: "g", StatType: models.StatRebounds},
		Edge:           &edge,
		Confidence:     models.ConfidenceMedium,
		Recommendation: models.RecommendationUnder,
	}

	before := testutil.ToFloat64(PredictionsTotal.WithLabelValues("rebounds", "Under", "Medium"))
	RecordPrediction(record, 15*time.Millisecond)
	after := testutil.ToFloat64(PredictionsTotal.WithLabelValues("rebounds", "Under", "Medium"))

	assert.Equal(t, before+1, after)
}

func TestRecordPredictionWithoutEdge(t *testing.T) {
	InitRegistry()
	record := &models.PredictionRecord{
		Key:            models.PredictionKey{AthleteID: "a", GameID: "g", StatType: models.StatBlocks},
		Confidence:     models.ConfidenceLow,
		Recommendation: models.RecommendationPass,
	}

	assert.NotPanics(t, func() {
		RecordPrediction(record, time.Millisecond)
	})
}

func TestLineCacheCounters(t *testing.T) {
	InitRegistry()

	hits := testutil.ToFloat64(LineCacheRequestsTotal.WithLabelValues("hit"))
	misses := testutil.ToFloat64(LineCacheRequestsTotal.WithLabelValues("miss"))
	RecordLineCacheHit()
	RecordLineCacheHit()
	RecordLineCacheMiss()

	assert.Equal(t, hits+2, testutil.ToFloat64(LineCacheRequestsTotal.WithLabelValues("hit")))
	assert.Equal(t, misses+1, testutil.ToFloat64(LineCacheRequestsTotal.WithLabelValues("miss")))
}

func TestUpdateBacktestSummary(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name  string
		runID string
		mae   float64
		rate  *float64
	}{
		{name: "with beat line rate", runID: "run-a", mae: 4.2, rate: func() *float64 { v := 0.55; return &v }()},
		{name: "without beat line rate", runID: "run-b", mae: 3.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			UpdateBacktestSummary(tt.runID, tt.mae, tt.rate)
			assert.Equal(t, tt.mae, testutil.ToFloat64(BacktestMAE.WithLabelValues(tt.runID)))
		})
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	InitRegistry()
	RecordPredictionStored()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "propcast_predictions_stored_total")
}
