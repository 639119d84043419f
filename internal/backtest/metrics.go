package backtest

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math"

	"github.com/yourusername/propcast/internal/models"
)

// Score compares a prediction with what the athlete actually recorded
func Score(record *models.PredictionRecord, c models.BacktestCase) models.BacktestResult {
	result := models.BacktestResult{
		Key:            c.Key,
		GameDate:       c.GameDate,
		Predicted:      record.BlendedEstimate,
		Actual:         c.Actual,
		AbsoluteError:  math.Abs(record.BlendedEstimate - c.Actual),
		Confidence:     record.Confidence,
		Recommendation: record.Recommendation,
	}
	if record.LineValue != nil {
		line := *record.LineValue
		lineErr := math.Abs(line - c.Actual)
		result.LineValue = &line
		result.LineError = &lineErr
		result.BeatLine = beatLine(record.Recommendation, line, c.Actual)
	}
	return result
}

// beatLine is nil for Pass calls and pushes
func beatLine(rec models.Recommendation, line, actual float64) *bool {
	if !rec.IsDirectional() || actual == line {
		return nil
	}
	hit := (rec == models.RecommendationOver && actual > line) ||
		(rec == models.RecommendationUnder && actual < line)
	return &hit
}

// IsPush reports whether a directional call landed exactly on the line
func IsPush(r models.BacktestResult) bool {
	return r.Recommendation.IsDirectional() && r.LineValue != nil && r.BeatLine == nil
}

// HashParameters creates a stable hash for a parameter set
func HashParameters(params any) string {
	data, _ := json.Marshal(params)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func rate(num, den int) *float64 {
	if den == 0 {
		return nil
	}
	r := float64(num) / float64(den)
	return &r
}
