package backtest

import (
	"math"

	"github.com/yourusername/propcast/internal/models"
)

// WithinThresholds are the absolute-error bands reported for every run
var WithinThresholds = []float64{3, 5, 7}

// ErrorStats is a running sum of absolute and squared errors
type ErrorStats struct {
	Count       int     `json:"count"`
	SumAbsolute float64 `json:"sum_absolute"`
	SumSquared  float64 `json:"sum_squared"`
}

func (e *ErrorStats) add(absErr float64) {
	e.Count++
	e.SumAbsolute += absErr
	e.SumSquared += absErr * absErr
}

// MAE is the mean absolute error
func (e ErrorStats) MAE() float64 {
	return safeDiv(e.SumAbsolute, float64(e.Count))
}

// RMSE is the root mean squared error
func (e ErrorStats) RMSE() float64 {
	return math.Sqrt(safeDiv(e.SumSquared, float64(e.Count)))
}

// BeatLineTally counts directional calls against a line
type BeatLineTally struct {
	Calls  int `json:"calls"`
	Hits   int `json:"hits"`
	Pushes int `json:"pushes"`
}

func (b *BeatLineTally) add(r models.BacktestResult) {
	if !r.Recommendation.IsDirectional() || r.LineValue == nil {
		return
	}
	b.Calls++
	switch {
	case r.BeatLine == nil:
		b.Pushes++
	case *r.BeatLine:
		b.Hits++
	}
}

// Rate is hits over decided calls; nil until a call has been decided
func (b BeatLineTally) Rate() *float64 {
	return rate(b.Hits, b.Calls-b.Pushes)
}

// TierState accumulates one confidence tier
type TierState struct {
	Errors   ErrorStats    `json:"errors"`
	BeatLine BeatLineTally `json:"beat_line"`
}

// Aggregator folds results into running totals without retaining them. Its
// exported state round-trips through JSON so a checkpoint can restore it.
// It is not safe for concurrent use.
type Aggregator struct {
	Errors      ErrorStats                       `json:"errors"`
	Skipped     int                              `json:"skipped"`
	Within      []int                            `json:"within"`
	Tiers       map[models.Confidence]*TierState `json:"tiers"`
	BeatLine    BeatLineTally                    `json:"beat_line"`
	LineErrors  ErrorStats                       `json:"line_errors"`
	ModelBetter int                              `json:"model_better"`
}

// NewAggregator returns an empty aggregator
func NewAggregator() *Aggregator {
	a := &Aggregator{}
	a.init()
	return a
}

func (a *Aggregator) init() {
	if len(a.Within) != len(WithinThresholds) {
		a.Within = make([]int, len(WithinThresholds))
	}
	if a.Tiers == nil {
		a.Tiers = make(map[models.Confidence]*TierState)
	}
	for _, tier := range models.ConfidenceTiers() {
		if a.Tiers[tier] == nil {
			a.Tiers[tier] = &TierState{}
		}
	}
}

// Add folds one result into the totals
func (a *Aggregator) Add(r models.BacktestResult) {
	a.init()
	a.Errors.add(r.AbsoluteError)
	for i, threshold := range WithinThresholds {
		if r.AbsoluteError <= threshold {
			a.Within[i]++
		}
	}

	tier, ok := a.Tiers[r.Confidence]
	if !ok {
		tier = a.Tiers[models.ConfidenceLow]
	}
	tier.Errors.add(r.AbsoluteError)
	tier.BeatLine.add(r)
	a.BeatLine.add(r)

	if r.LineError != nil {
		a.LineErrors.add(*r.LineError)
		if r.AbsoluteError < *r.LineError {
			a.ModelBetter++
		}
	}
}

// Skip counts a case that produced no prediction
func (a *Aggregator) Skip() {
	a.Skipped++
}

// Count is the number of evaluated results
func (a *Aggregator) Count() int {
	return a.Errors.Count
}

// WithinRate is the share of results inside one error band
type WithinRate struct {
	Threshold float64 `json:"threshold"`
	Count     int     `json:"count"`
	Rate      float64 `json:"rate"`
}

// TierSummary reports one confidence tier
type TierSummary struct {
	Count        int      `json:"count"`
	MAE          float64  `json:"mae"`
	RMSE         float64  `json:"rmse"`
	BeatLineRate *float64 `json:"beat_line_rate"`
}

// BeatLineSummary reports directional calls against the line
type BeatLineSummary struct {
	Calls  int      `json:"calls"`
	Hits   int      `json:"hits"`
	Pushes int      `json:"pushes"`
	Rate   *float64 `json:"rate"`
}

// LineBaseline scores the line itself as a predictor. BeatLineErrorRate is the
// share of lined cases where the model's error was strictly smaller.
type LineBaseline struct {
	Count             int      `json:"count"`
	MAE               float64  `json:"mae"`
	RMSE              float64  `json:"rmse"`
	BeatLineErrorRate *float64 `json:"beat_line_error_rate"`
}

// Summary is the accuracy report of a run
type Summary struct {
	Count        int                               `json:"count"`
	Skipped      int                               `json:"skipped"`
	MAE          float64                           `json:"mae"`
	RMSE         float64                           `json:"rmse"`
	Within       []WithinRate                      `json:"within"`
	ByConfidence map[models.Confidence]TierSummary `json:"by_confidence"`
	BeatLine     BeatLineSummary                   `json:"beat_line"`
	LineBaseline LineBaseline                      `json:"line_baseline"`
}

// Summary computes the report from the running totals
func (a *Aggregator) Summary() Summary {
	a.init()
	s := Summary{
		Count:        a.Errors.Count,
		Skipped:      a.Skipped,
		MAE:          a.Errors.MAE(),
		RMSE:         a.Errors.RMSE(),
		Within:       make([]WithinRate, len(WithinThresholds)),
		ByConfidence: make(map[models.Confidence]TierSummary, len(a.Tiers)),
		BeatLine: BeatLineSummary{
			Calls:  a.BeatLine.Calls,
			Hits:   a.BeatLine.Hits,
			Pushes: a.BeatLine.Pushes,
			Rate:   a.BeatLine.Rate(),
		},
		LineBaseline: LineBaseline{
			Count:             a.LineErrors.Count,
			MAE:               a.LineErrors.MAE(),
			RMSE:              a.LineErrors.RMSE(),
			BeatLineErrorRate: rate(a.ModelBetter, a.LineErrors.Count),
		},
	}
	for i, threshold := range WithinThresholds {
		s.Within[i] = WithinRate{
			Threshold: threshold,
			Count:     a.Within[i],
			Rate:      safeDiv(float64(a.Within[i]), float64(a.Errors.Count)),
		}
	}
	for tier, state := range a.Tiers {
		s.ByConfidence[tier] = TierSummary{
			Count:        state.Errors.Count,
			MAE:          state.Errors.MAE(),
			RMSE:         state.Errors.RMSE(),
			BeatLineRate: state.BeatLine.Rate(),
		}
	}
	return s
}
