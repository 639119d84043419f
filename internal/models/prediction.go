package models

import (
	"fmt"
	"time"
)

// Confidence is the reliability tier attached to an estimate
type Confidence string

// Confidence tiers, strictest first
const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// Rank orders confidence tiers; higher is stricter
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 2
	case ConfidenceMedium:
		return 1
	default:
		return 0
	}
}

// ConfidenceTiers lists tiers in report order
func ConfidenceTiers() []Confidence {
	return []Confidence{ConfidenceHigh, ConfidenceMedium, ConfidenceLow}
}

// Recommendation is the directional call against a line
type Recommendation string

// Recommendations
const (
	RecommendationOver  Recommendation = "Over"
	RecommendationUnder Recommendation = "Under"
	RecommendationPass  Recommendation = "Pass"
)

// IsDirectional reports whether the call is Over or Under
func (r Recommendation) IsDirectional() bool {
	return r == RecommendationOver || r == RecommendationUnder
}

// LineStatus records how the bookmaker line was used
type LineStatus string

// Line statuses
const (
	LineAvailable   LineStatus = "available"
	LineUnavailable LineStatus = "unavailable"
	LineAlternate   LineStatus = "alternate"
)

// ModelType names the blend that produced the estimate
type ModelType string

// Model types
const (
	ModelHybrid      ModelType = "hybrid"
	ModelStatistical ModelType = "statistical"
)

// PredictionKey is the natural key of a prediction
type PredictionKey struct {
	AthleteID string   `db:"athlete_id" json:"athlete_id" validate:"required"`
	GameID    string   `db:"game_id" json:"game_id" validate:"required"`
	StatType  StatType `db:"stat_type" json:"stat_type" validate:"required"`
}

// ID renders the key as a stable primary key
func (k PredictionKey) ID() string {
	return fmt.Sprintf("%s_%s_%s", k.GameID, k.AthleteID, k.StatType)
}

// Validate checks the key is fully populated
func (k PredictionKey) Validate() error {
	if k.AthleteID == "" || k.GameID == "" {
		return fmt.Errorf("%w: athlete and game ids are required", ErrInvalidKey)
	}
	if !k.StatType.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatType, k.StatType)
	}
	return nil
}

// PredictionRecord is the engine output for one key. It is never mutated after
// assembly; regenerations supersede it.
type PredictionRecord struct {
	Key                 PredictionKey  `json:"key"`
	Season              string         `db:"season" json:"season"`
	BaselineEstimate    float64        `db:"baseline_estimate" json:"baseline_estimate"`
	FormAdjustment      float64        `db:"form_adjustment" json:"form_adjustment"`
	StatisticalEstimate float64        `db:"statistical_estimate" json:"statistical_estimate"`
	LineValue           *float64       `db:"line_value" json:"line_value"`
	BlendedEstimate     float64        `db:"blended_estimate" json:"blended_estimate"`
	Edge                *float64       `db:"edge" json:"edge"`
	Confidence          Confidence     `db:"confidence" json:"confidence"`
	Recommendation      Recommendation `db:"recommendation" json:"recommendation"`
	GeneratedAt         time.Time      `db:"generated_at" json:"generated_at"`

	SeasonAverage       float64    `db:"season_average" json:"season_average"`
	Last5Average        float64    `db:"last5_average" json:"last5_average"`
	CoefficientOfVar    float64    `db:"coefficient_of_variation" json:"coefficient_of_variation"`
	GamesUsed           int        `db:"games_used" json:"games_used"`
	SampleSize          int        `db:"sample_size" json:"sample_size"`
	LowSample           bool       `db:"low_sample" json:"low_sample"`
	LineStatus          LineStatus `db:"line_status" json:"line_status"`
	LineSource          string     `db:"line_source" json:"line_source,omitempty"`
	Disagreement        *float64   `db:"disagreement" json:"disagreement,omitempty"`
	DecayRate           float64    `db:"decay_rate" json:"decay_rate"`
	UsageShift          *float64   `db:"usage_shift" json:"usage_shift,omitempty"`
	ModelType           ModelType  `db:"model_type" json:"model_type"`
	DroppedObservations int        `db:"dropped_observations" json:"dropped_observations"`
	Factors             []string   `db:"factors" json:"factors"`
}

// HasLine reports whether a bookmaker line contributed to the record
func (p *PredictionRecord) HasLine() bool {
	return p.LineValue != nil
}
