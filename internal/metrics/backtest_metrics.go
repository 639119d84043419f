package metrics

import "github.com/prometheus/client_golang/prometheus"

// Backtest counter vectors
var (
	BacktestRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backtest_runs_total",
		Help:      "Total number of backtest runs by status",
	}, []string{"status"})
	BacktestCasesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backtest_cases_total",
		Help:      "Backtest cases by outcome",
	}, []string{"stat_type", "outcome"})
)

// Backtest gauge vectors
var (
	BacktestMAE = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backtest_mae",
		Help:      "Mean absolute error of the latest backtest run",
	}, []string{"run_id"})
	BacktestBeatLineRate = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backtest_beat_line_rate",
		Help:      "Share of directional calls that beat the line in the latest backtest run",
	}, []string{"run_id"})
)

// BacktestDuration tracks wall time of whole runs
var BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
	Namespace: namespace,
	Name:      "backtest_duration_seconds",
	Help:      "Duration of backtest runs in seconds",
	Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
})

// RecordBacktestRun records a backtest run event.
// status should be one of: "success", "failure", "cancelled"
func RecordBacktestRun(status string, durationSeconds float64) {
	BacktestRunsTotal.WithLabelValues(status).Inc()
	BacktestDuration.Observe(durationSeconds)
}

// RecordBacktestCase records one case outcome: "evaluated" or "skipped".
func RecordBacktestCase(statType, outcome string) {
	BacktestCasesTotal.WithLabelValues(statType, outcome).Inc()
}

// UpdateBacktestSummary publishes the headline accuracy of a run.
func UpdateBacktestSummary(runID string, mae float64, beatLineRate *float64) {
	BacktestMAE.WithLabelValues(runID).Set(mae)
	if beatLineRate != nil {
		BacktestBeatLineRate.WithLabelValues(runID).Set(*beatLineRate)
	}
}
