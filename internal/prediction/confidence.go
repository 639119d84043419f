package prediction

import "github.com/yourusername/propcast/internal/models"

// CV thresholds for confidence tiers
const (
	highConfidenceCV   = 0.3
	mediumConfidenceCV = 0.5
)

// CoefficientOfVariation returns stdev/mean over values. ok is false when the
// mean is zero and the ratio is undefined.
func CoefficientOfVariation(values []float64) (cv float64, ok bool) {
	m := mean(values)
	if len(values) == 0 || m == 0 {
		return 0, false
	}
	return sampleStddev(values) / m, true
}

// ClassifyCV maps a coefficient of variation onto a tier
func ClassifyCV(cv float64) models.Confidence {
	switch {
	case cv < highConfidenceCV:
		return models.ConfidenceHigh
	case cv < mediumConfidenceCV:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// ClassifyConfidence rates the recent window. Degenerate windows (zero mean) and
// low-sample windows are Low.
func ClassifyConfidence(window []float64, lowSample bool) (models.Confidence, float64) {
	cv, ok := CoefficientOfVariation(window)
	if !ok {
		return models.ConfidenceLow, 0
	}
	if lowSample {
		return models.ConfidenceLow, cv
	}
	return ClassifyCV(cv), cv
}
