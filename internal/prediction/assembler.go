package prediction

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/yourusername/propcast/internal/models"
)

// Assemble produces the prediction record for key from the athlete's game
// history and the optional bookmaker quote. observations may arrive in any
// order and may include games that do not qualify; those are dropped and
// counted. Only the season of the newest qualifying game is used.
//
// Assemble is pure: identical inputs give an identical record.
func Assemble(
	key models.PredictionKey,
	observations []models.GameObservation,
	quote *models.LineQuote,
	cfg Config,
	generatedAt time.Time,
) (*models.PredictionRecord, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	season, dropped := seasonToDate(observations, cfg.SeasonWindow)
	if len(season) == 0 {
		return nil, fmt.Errorf("%s: %w", key.ID(), models.ErrInsufficientData)
	}
	values := statValues(season)

	shift := DetectUsageShift(season, cfg)
	decay := decayFor(shift, cfg)

	baseline, err := EstimateBaseline(values, decay, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key.ID(), err)
	}
	form := FormAdjustment(values, cfg)
	statistical := baseline.Value + form.Delta

	line, status := usableLine(quote, cfg)
	blend := BlendEstimate(statistical, line, cfg)
	call := Recommend(blend.Value, line, cfg)
	confidence, cv := ClassifyConfidence(recent(values, cfg.WindowSize), baseline.LowSample)

	record := &models.PredictionRecord{
		Key:                 key,
		Season:              season[0].Season,
		BaselineEstimate:    baseline.Value,
		FormAdjustment:      form.Delta,
		StatisticalEstimate: statistical,
		LineValue:           line,
		BlendedEstimate:     blend.Value,
		Edge:                call.Edge,
		Confidence:          confidence,
		Recommendation:      call.Recommendation,
		GeneratedAt:         generatedAt,
		SeasonAverage:       form.SeasonAverage,
		Last5Average:        form.RecentAverage,
		CoefficientOfVar:    cv,
		GamesUsed:           len(season),
		SampleSize:          baseline.SampleSize,
		LowSample:           baseline.LowSample,
		LineStatus:          status,
		Disagreement:        call.Disagreement,
		DecayRate:           decay,
		ModelType:           blend.ModelType,
		DroppedObservations: dropped,
	}
	if quote != nil {
		record.LineSource = quote.Source
	}
	if shift != nil {
		change := shift.Change
		record.UsageShift = &change
	}
	record.Factors = factors(record, shift)
	return record, nil
}

// seasonToDate keeps qualifying observations from the newest season, newest
// first, capped at limit. It also returns how many observations were dropped
// as non-qualifying.
func seasonToDate(observations []models.GameObservation, limit int) ([]models.GameObservation, int) {
	valid := make([]models.GameObservation, 0, len(observations))
	for _, o := range observations {
		if o.IsQualifying() {
			valid = append(valid, o)
		}
	}
	dropped := len(observations) - len(valid)
	if len(valid) == 0 {
		return nil, dropped
	}

	slices.SortStableFunc(valid, func(a, b models.GameObservation) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return cmp.Compare(b.GameID, a.GameID)
	})

	current := valid[0].Season
	season := valid[:0]
	for _, o := range valid {
		if o.Season == current {
			season = append(season, o)
		}
	}
	if limit > 0 && len(season) > limit {
		season = season[:limit]
	}
	return season, dropped
}

func statValues(observations []models.GameObservation) []float64 {
	values := make([]float64, len(observations))
	for i, o := range observations {
		values[i] = o.StatValue
	}
	return values
}

// usableLine returns the line value the blend may consume. Alternate lines and
// malformed quotes are reported but not blended.
func usableLine(quote *models.LineQuote, cfg Config) (*float64, models.LineStatus) {
	if quote == nil || math.IsNaN(quote.LineValue) || math.IsInf(quote.LineValue, 0) || quote.LineValue < 0 {
		return nil, models.LineUnavailable
	}
	if !quote.IsMainLine(cfg.MainLineMaxOdds) {
		return nil, models.LineAlternate
	}
	v := quote.LineValue
	return &v, models.LineAvailable
}

func factors(r *models.PredictionRecord, shift *UsageShift) []string {
	out := []string{
		fmt.Sprintf("baseline %.2f over %d games (k=%.2f)", r.BaselineEstimate, r.SampleSize, r.DecayRate),
		fmt.Sprintf("form %+.2f (last5 %.2f vs season %.2f)", r.FormAdjustment, r.Last5Average, r.SeasonAverage),
	}
	if shift != nil && shift.Significant {
		out = append(out, fmt.Sprintf("usage shift %+.0f%% FGA", shift.Change*100))
	}
	switch r.LineStatus {
	case models.LineAvailable:
		out = append(out, fmt.Sprintf("line %.1f, edge %+.2f", *r.LineValue, *r.Edge))
	case models.LineAlternate:
		out = append(out, "alternate line ignored, statistical only")
	default:
		out = append(out, "no line, statistical only")
	}
	if r.LowSample {
		out = append(out, fmt.Sprintf("low sample: %d games", r.SampleSize))
	}
	if r.DroppedObservations > 0 {
		out = append(out, fmt.Sprintf("dropped %d non-qualifying games", r.DroppedObservations))
	}
	return out
}
