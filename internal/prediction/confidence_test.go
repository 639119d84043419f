package prediction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yourusername/propcast/internal/models"
)

func TestClassifyCVThresholds(t *testing.T) {
	tests := []struct {
		cv   float64
		want models.Confidence
	}{
		{0, models.ConfidenceHigh},
		{0.29, models.ConfidenceHigh},
		{0.3, models.ConfidenceMedium},
		{0.49, models.ConfidenceMedium},
		{0.5, models.ConfidenceLow},
		{1.2, models.ConfidenceLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyCV(tt.cv), "cv=%v", tt.cv)
	}
}

func TestClassifyCVMonotonic(t *testing.T) {
	prev := models.ConfidenceHigh.Rank()
	for cv := 0.0; cv < 1.5; cv += 0.01 {
		rank := ClassifyCV(cv).Rank()
		assert.LessOrEqual(t, rank, prev, "cv=%v", cv)
		prev = rank
	}
}

func TestClassifyConfidenceSpreadIncreasesCV(t *testing.T) {
	tight := []float64{20, 21, 19, 20, 20, 21}
	loose := []float64{10, 30, 15, 25, 20, 20}
	wild := []float64{2, 40, 5, 35, 18, 20}

	tc, tightCV := ClassifyConfidence(tight, false)
	lc, looseCV := ClassifyConfidence(loose, false)
	wc, wildCV := ClassifyConfidence(wild, false)

	assert.Less(t, tightCV, looseCV)
	assert.Less(t, looseCV, wildCV)
	assert.GreaterOrEqual(t, tc.Rank(), lc.Rank())
	assert.GreaterOrEqual(t, lc.Rank(), wc.Rank())
}

func TestClassifyConfidenceScenario(t *testing.T) {
	confidence, cv := ClassifyConfidence(scenarioValues, false)

	assert.Equal(t, models.ConfidenceHigh, confidence)
	assert.InDelta(t, 0.134, cv, 0.001)
}

func TestClassifyConfidenceDegenerate(t *testing.T) {
	confidence, cv := ClassifyConfidence([]float64{0, 0, 0, 0, 0}, false)
	assert.Equal(t, models.ConfidenceLow, confidence)
	assert.Zero(t, cv)

	confidence, _ = ClassifyConfidence([]float64{12}, false)
	assert.Equal(t, models.ConfidenceHigh, confidence)
}

func TestClassifyConfidenceLowSampleForcedLow(t *testing.T) {
	confidence, cv := ClassifyConfidence([]float64{20, 20, 21}, true)

	assert.Equal(t, models.ConfidenceLow, confidence)
	assert.Less(t, cv, 0.3)
}
