package prediction

import (
	"math"

	"github.com/yourusername/propcast/internal/models"
)

// Call is the policy output
type Call struct {
	Edge           *float64
	Disagreement   *float64
	Recommendation models.Recommendation
}

// Disagreement is |edge| relative to the line. Non-positive lines have no
// meaningful ratio and report full agreement.
func Disagreement(edge, line float64) float64 {
	if line <= 0 {
		return 0
	}
	return math.Abs(edge) / line
}

// Recommend converts the blended estimate and the line into a directional call.
//
// With no line the call is always Pass. Otherwise an edge below EdgeThreshold is
// a Pass; small disagreement follows the edge sign; moderate disagreement needs
// the edge to clear ModerateEdgeThreshold; large disagreement declines to bet
// against the line.
func Recommend(blended float64, line *float64, cfg Config) Call {
	if line == nil {
		return Call{Recommendation: models.RecommendationPass}
	}
	edge := blended - *line
	ratio := Disagreement(edge, *line)
	call := Call{Edge: &edge, Disagreement: &ratio, Recommendation: models.RecommendationPass}

	if math.Abs(edge) < cfg.EdgeThreshold {
		return call
	}
	switch {
	case ratio < cfg.AgreementRatio:
		call.Recommendation = direction(edge)
	case ratio < cfg.DisagreementRatio:
		if edge > cfg.ModerateEdgeThreshold {
			call.Recommendation = models.RecommendationOver
		} else if edge < -cfg.ModerateEdgeThreshold {
			call.Recommendation = models.RecommendationUnder
		}
	}
	return call
}

func direction(edge float64) models.Recommendation {
	if edge > 0 {
		return models.RecommendationOver
	}
	return models.RecommendationUnder
}
