package prediction

import (
	"math"

	"github.com/yourusername/propcast/internal/models"
)

// UsageShift is the relative change in recent field goal attempts vs season
type UsageShift struct {
	Change      float64
	RecentFGA   float64
	SeasonFGA   float64
	Significant bool
}

// DetectUsageShift compares the FormWindow most recent field goal attempts with
// the season mean. It returns nil when usage tracking is disabled or fewer than
// FormWindow observations carry attempts.
func DetectUsageShift(observations []models.GameObservation, cfg Config) *UsageShift {
	if !cfg.UsageShiftEnabled {
		return nil
	}
	attempts := make([]float64, 0, len(observations))
	for _, o := range observations {
		if o.FieldGoalAttempts == nil || math.IsNaN(*o.FieldGoalAttempts) || *o.FieldGoalAttempts < 0 {
			continue
		}
		attempts = append(attempts, *o.FieldGoalAttempts)
	}
	if len(attempts) < cfg.FormWindow {
		return nil
	}
	season := mean(attempts)
	if season == 0 {
		return nil
	}
	last := mean(recent(attempts, cfg.FormWindow))
	change := (last - season) / season
	return &UsageShift{
		Change:      change,
		RecentFGA:   last,
		SeasonFGA:   season,
		Significant: math.Abs(change) > cfg.UsageShiftThreshold,
	}
}

// decayFor picks the baseline decay rate given a usage shift
func decayFor(shift *UsageShift, cfg Config) float64 {
	if shift != nil && shift.Significant {
		return cfg.UsageDecayRate
	}
	return cfg.DecayRate
}
