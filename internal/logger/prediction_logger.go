package logger

import (
	"github.com/sirupsen/logrus"
	"github.com/yourusername/propcast/internal/models"
)

// PredictionLogger provides dedicated logging for engine output.
type PredictionLogger struct {
	*logrus.Entry
}

// NewPredictionLogger creates a new prediction logger.
func NewPredictionLogger(baseLogger *logrus.Logger) *PredictionLogger {
	return &PredictionLogger{
		Entry: baseLogger.WithField("component", "prediction"),
	}
}

// LogPrediction logs a generated prediction.
func (pl *PredictionLogger) LogPrediction(r *models.PredictionRecord) {
	fields := logrus.Fields{
		"prediction_id":  r.Key.ID(),
		"athlete_id":     r.Key.AthleteID,
		"game_id":        r.Key.GameID,
		"stat_type":      string(r.Key.StatType),
		"baseline":       r.BaselineEstimate,
		"form_delta":     r.FormAdjustment,
		"blended":        r.BlendedEstimate,
		"confidence":     string(r.Confidence),
		"recommendation": string(r.Recommendation),
		"line_status":    string(r.LineStatus),
		"games_used":     r.GamesUsed,
	}
	if r.LineValue != nil {
		fields["line"] = *r.LineValue
	}
	if r.Edge != nil {
		fields["edge"] = *r.Edge
	}
	pl.WithFields(fields).Debug("Prediction generated")
}

// LogLineDegraded logs a line lookup failure that fell back to statistics only.
func (pl *PredictionLogger) LogLineDegraded(key models.PredictionKey, err error) {
	pl.WithFields(logrus.Fields{
		"prediction_id": key.ID(),
		"stat_type":     string(key.StatType),
	}).WithError(err).Warn("Line unavailable, using statistical estimate only")
}

// LogInsufficientData logs a key skipped for lack of qualifying games.
func (pl *PredictionLogger) LogInsufficientData(key models.PredictionKey) {
	pl.WithFields(logrus.Fields{
		"prediction_id": key.ID(),
		"athlete_id":    key.AthleteID,
		"stat_type":     string(key.StatType),
	}).Info("Skipping prediction: insufficient data")
}

// LogBatch logs the outcome of a generation batch.
func (pl *PredictionLogger) LogBatch(requested, generated, skipped, failed int, durationMs float64) {
	pl.WithFields(logrus.Fields{
		"requested":   requested,
		"generated":   generated,
		"skipped":     skipped,
		"failed":      failed,
		"duration_ms": durationMs,
	}).Info("Prediction batch completed")
}
