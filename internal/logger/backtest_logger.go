package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// BacktestLogger provides dedicated logging for backtest runs.
type BacktestLogger struct {
	*logrus.Entry
}

// NewBacktestLogger creates a new backtest logger.
func NewBacktestLogger(baseLogger *logrus.Logger) *BacktestLogger {
	return &BacktestLogger{
		Entry: baseLogger.WithField("component", "backtest"),
	}
}

// LogRunStarted logs the start or resumption of a run.
func (bl *BacktestLogger) LogRunStarted(runID string, start, end time.Time, statTypes []string, resumed bool) {
	bl.WithFields(logrus.Fields{
		"run_id":     runID,
		"start":      start.Format(time.DateOnly),
		"end":        end.Format(time.DateOnly),
		"stat_types": statTypes,
		"resumed":    resumed,
	}).Info("Backtest run started")
}

// LogProgress logs periodic progress.
func (bl *BacktestLogger) LogProgress(runID string, evaluated, skipped int, runningMAE float64) {
	bl.WithFields(logrus.Fields{
		"run_id":      runID,
		"evaluated":   evaluated,
		"skipped":     skipped,
		"running_mae": runningMAE,
	}).Info("Backtest progress")
}

// LogCheckpoint logs a persisted checkpoint.
func (bl *BacktestLogger) LogCheckpoint(runID, path string, evaluated int) {
	bl.WithFields(logrus.Fields{
		"run_id":    runID,
		"path":      path,
		"evaluated": evaluated,
	}).Debug("Backtest checkpoint saved")
}

// LogRunCompleted logs the final summary of a run.
func (bl *BacktestLogger) LogRunCompleted(runID string, evaluated, skipped int, mae, rmse float64, beatLineRate *float64) {
	fields := logrus.Fields{
		"run_id":    runID,
		"evaluated": evaluated,
		"skipped":   skipped,
		"mae":       mae,
		"rmse":      rmse,
	}
	if beatLineRate != nil {
		fields["beat_line_rate"] = *beatLineRate
	}
	bl.WithFields(fields).Info("Backtest run completed")
}
