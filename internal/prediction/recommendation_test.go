package prediction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/propcast/internal/models"
)

func TestBlendEstimate(t *testing.T) {
	cfg := DefaultConfig()

	blend := BlendEstimate(27.3559, ptr(27.5), cfg)
	assert.InDelta(t, 27.45, blend.Value, 0.01)
	assert.InDelta(t, 1.0, blend.EffectiveVegas+blend.EffectiveStat, 1e-12)
	assert.Equal(t, models.ModelHybrid, blend.ModelType)

	stats := BlendEstimate(27.3559, nil, cfg)
	assert.Equal(t, 27.3559, stats.Value)
	assert.Equal(t, 1.0, stats.EffectiveStat)
	assert.Zero(t, stats.EffectiveVegas)
	assert.Equal(t, models.ModelStatistical, stats.ModelType)
}

func TestBlendWeightsAlwaysSumToOne(t *testing.T) {
	for _, vegas := range []float64{0, 0.1, 0.5, 0.65, 0.9, 1} {
		cfg := DefaultConfig().WithBlendWeights(vegas)
		require.NoError(t, cfg.Validate())
		blend := BlendEstimate(10, ptr(20.0), cfg)
		assert.InDelta(t, 1.0, blend.EffectiveVegas+blend.EffectiveStat, 1e-12)
	}
}

func TestRecommend(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name    string
		blended float64
		line    *float64
		want    models.Recommendation
	}{
		{name: "no line", blended: 30, line: nil, want: models.RecommendationPass},
		{name: "edge below threshold", blended: 20.99, line: ptr(20.0), want: models.RecommendationPass},
		{name: "agreement over", blended: 21.5, line: ptr(20.0), want: models.RecommendationOver},
		{name: "agreement under", blended: 18.5, line: ptr(20.0), want: models.RecommendationUnder},
		{name: "moderate disagreement small edge", blended: 11.2, line: ptr(10.0), want: models.RecommendationPass},
		{name: "moderate disagreement over", blended: 11.8, line: ptr(10.0), want: models.RecommendationOver},
		{name: "moderate disagreement under", blended: 8.2, line: ptr(10.0), want: models.RecommendationUnder},
		{name: "large disagreement", blended: 7, line: ptr(5.0), want: models.RecommendationPass},
		{name: "zero line", blended: 1.5, line: ptr(0.0), want: models.RecommendationOver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call := Recommend(tt.blended, tt.line, cfg)
			assert.Equal(t, tt.want, call.Recommendation)
			if tt.line == nil {
				assert.Nil(t, call.Edge)
				assert.Nil(t, call.Disagreement)
				return
			}
			require.NotNil(t, call.Edge)
			assert.InDelta(t, tt.blended-*tt.line, *call.Edge, 1e-9)
		})
	}
}

func TestRecommendNeverDirectionalBelowEdgeThreshold(t *testing.T) {
	cfg := DefaultConfig()
	for line := 0.5; line <= 40; line += 0.5 {
		for edge := -0.99; edge <= 0.99; edge += 0.09 {
			call := Recommend(line+edge, ptr(line), cfg)
			assert.Equal(t, models.RecommendationPass, call.Recommendation, "line=%v edge=%v", line, edge)
		}
	}
}

func TestDisagreement(t *testing.T) {
	assert.InDelta(t, 0.1, Disagreement(-2, 20), 1e-12)
	assert.Zero(t, Disagreement(3, 0))
	assert.Zero(t, Disagreement(3, -1))
}
