// Package metrics provides centralized Prometheus metrics registry for propcast.
package metrics

import (
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yourusername/propcast/internal/models"
)

const namespace = "propcast"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_total",
		Help:      "Total number of predictions generated",
	}, []string{"stat_type", "recommendation", "confidence"})
	PredictionsSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_skipped_total",
		Help:      "Total number of prediction requests that produced no record",
	}, []string{"stat_type", "reason"})
	PredictionsStoredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_stored_total",
		Help:      "Total number of predictions upserted",
	})
	LineFallbacksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "line_fallbacks_total",
		Help:      "Total number of predictions degraded to statistics only after a line source failure",
	}, []string{"stat_type"})
	SchedulerRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scheduler_runs_total",
		Help:      "Total number of scheduled regeneration runs by status",
	}, []string{"status"})
)

// Histogram metrics
var (
	PredictionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "prediction_duration_seconds",
		Help:      "Duration of a single prediction including source lookups",
		Buckets:   prometheus.DefBuckets,
	})
	PredictionEdge = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "prediction_abs_edge",
		Help:      "Absolute edge between blended estimate and line",
		Buckets:   []float64{0.25, 0.5, 1, 1.5, 2, 3, 5, 8},
	}, []string{"stat_type"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(PredictionsTotal)
		registry.MustRegister(PredictionsSkippedTotal)
		registry.MustRegister(PredictionsStoredTotal)
		registry.MustRegister(LineFallbacksTotal)
		registry.MustRegister(SchedulerRunsTotal)
		registry.MustRegister(PredictionDuration)
		registry.MustRegister(PredictionEdge)

		// Register line feed metrics
		registry.MustRegister(LineCacheRequestsTotal)
		registry.MustRegister(LineFeedRequestsTotal)
		registry.MustRegister(LineFeedLatency)

		// Register backtest metrics
		registry.MustRegister(BacktestRunsTotal)
		registry.MustRegister(BacktestCasesTotal)
		registry.MustRegister(BacktestMAE)
		registry.MustRegister(BacktestBeatLineRate)
		registry.MustRegister(BacktestDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordPrediction records a generated prediction.
func RecordPrediction(r *models.PredictionRecord, duration time.Duration) {
	stat := string(r.Key.StatType)
	PredictionsTotal.WithLabelValues(stat, string(r.Recommendation), string(r.Confidence)).Inc()
	PredictionDuration.Observe(duration.Seconds())
	if r.Edge != nil {
		PredictionEdge.WithLabelValues(stat).Observe(math.Abs(*r.Edge))
	}
}

// RecordPredictionSkipped records a request that produced no record.
func RecordPredictionSkipped(statType, reason string) {
	PredictionsSkippedTotal.WithLabelValues(statType, reason).Inc()
}

// RecordPredictionStored records an upserted prediction.
func RecordPredictionStored() {
	PredictionsStoredTotal.Inc()
}

// RecordLineFallback records a line source failure absorbed by the engine.
func RecordLineFallback(statType string) {
	LineFallbacksTotal.WithLabelValues(statType).Inc()
}

// RecordSchedulerRun records a scheduled regeneration run.
// status should be one of: "success", "failure"
func RecordSchedulerRun(status string) {
	SchedulerRunsTotal.WithLabelValues(status).Inc()
}
