package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides an audit trail of persisted output and parameter changes.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogPredictionStored logs an upserted prediction.
func (al *AuditLogger) LogPredictionStored(predictionID, recommendation string, generatedAt time.Time) {
	al.WithFields(logrus.Fields{
		"prediction_id":  predictionID,
		"recommendation": recommendation,
		"generated_at":   generatedAt.Unix(),
	}).Info("Prediction stored")
}

// LogEngineParameters logs the engine parameters in effect for a process.
func (al *AuditLogger) LogEngineParameters(hash string, parameters map[string]interface{}) {
	al.WithFields(logrus.Fields{
		"config_hash": hash,
		"parameters":  parameters,
	}).Info("Engine parameters loaded")
}
