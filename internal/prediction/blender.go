package prediction

import "github.com/yourusername/propcast/internal/models"

// Blend is the combination of the statistical estimate and the line
type Blend struct {
	Value          float64
	EffectiveVegas float64
	EffectiveStat  float64
	ModelType      models.ModelType
}

// BlendEstimate weights the line against the statistical estimate. Without a
// line the statistical estimate passes through with an effective stat weight of 1.
func BlendEstimate(statistical float64, line *float64, cfg Config) Blend {
	if line == nil {
		return Blend{
			Value:          statistical,
			EffectiveVegas: 0,
			EffectiveStat:  1,
			ModelType:      models.ModelStatistical,
		}
	}
	return Blend{
		Value:          *line*cfg.VegasWeight + statistical*cfg.StatWeight,
		EffectiveVegas: cfg.VegasWeight,
		EffectiveStat:  cfg.StatWeight,
		ModelType:      models.ModelHybrid,
	}
}
