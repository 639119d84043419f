// Package prediction implements the Vegas+ player stat estimator: a
// recency-weighted baseline, a short-window form correction, a blend with the
// bookmaker line, a consistency-based confidence tier and a directional call.
//
// Everything in this package except Engine is a pure function of its inputs.
package prediction

import (
	"fmt"
	"math"

	"github.com/yourusername/propcast/internal/config"
	"github.com/yourusername/propcast/internal/models"
)

const weightSumTolerance = 1e-9

// Config holds every tunable parameter of the engine
type Config struct {
	// DecayRate is k in w_i = e^(-k*i)
	DecayRate float64 `json:"decay_rate"`
	// FormWeight scales (last5_avg - season_avg)
	FormWeight float64 `json:"form_weight"`
	// VegasWeight and StatWeight are one tunable pair and must sum to 1
	VegasWeight float64 `json:"vegas_weight"`
	StatWeight  float64 `json:"stat_weight"`
	// MinGames below which confidence is forced to Low
	MinGames int `json:"min_games"`
	// EdgeThreshold is the minimum |edge| to act on
	EdgeThreshold float64 `json:"edge_threshold"`
	// ModerateEdgeThreshold applies in the moderate-disagreement tier
	ModerateEdgeThreshold float64 `json:"moderate_edge_threshold"`

	WindowSize        int     `json:"window_size"`
	FormWindow        int     `json:"form_window"`
	SeasonWindow      int     `json:"season_window"`
	AgreementRatio    float64 `json:"agreement_ratio"`
	DisagreementRatio float64 `json:"disagreement_ratio"`

	UsageShiftEnabled   bool    `json:"usage_shift_enabled"`
	UsageShiftThreshold float64 `json:"usage_shift_threshold"`
	UsageDecayRate      float64 `json:"usage_decay_rate"`

	MainLineMaxOdds int `json:"main_line_max_odds"`
}

// DefaultConfig returns the hand-tuned production parameters
func DefaultConfig() Config {
	return Config{
		DecayRate:             0.15,
		FormWeight:            0.25,
		VegasWeight:           0.65,
		StatWeight:            0.35,
		MinGames:              5,
		EdgeThreshold:         1.0,
		ModerateEdgeThreshold: 1.5,
		WindowSize:            10,
		FormWindow:            5,
		SeasonWindow:          82,
		AgreementRatio:        0.10,
		DisagreementRatio:     0.20,
		UsageShiftEnabled:     true,
		UsageShiftThreshold:   0.20,
		UsageDecayRate:        0.05,
		MainLineMaxOdds:       models.DefaultMainLineMaxOdds,
	}
}

// WithBlendWeights returns a copy with the vegas/stat pair set together
func (c Config) WithBlendWeights(vegasWeight float64) Config {
	c.VegasWeight = vegasWeight
	c.StatWeight = 1 - vegasWeight
	return c
}

// Validate validates engine parameters
func (c Config) Validate() error {
	if c.DecayRate <= 0 {
		return fmt.Errorf("decay rate must be positive")
	}
	if c.FormWeight < 0 {
		return fmt.Errorf("form weight cannot be negative")
	}
	if c.VegasWeight < 0 || c.StatWeight < 0 {
		return fmt.Errorf("blend weights cannot be negative")
	}
	if math.Abs(c.VegasWeight+c.StatWeight-1) > weightSumTolerance {
		return fmt.Errorf("vegas weight and stat weight must sum to 1, got %.4f", c.VegasWeight+c.StatWeight)
	}
	if c.MinGames < 1 {
		return fmt.Errorf("min games must be at least 1")
	}
	if c.EdgeThreshold < 0 || c.ModerateEdgeThreshold < c.EdgeThreshold {
		return fmt.Errorf("moderate edge threshold must be >= edge threshold >= 0")
	}
	if c.WindowSize < 1 || c.FormWindow < 1 {
		return fmt.Errorf("window sizes must be positive")
	}
	if c.SeasonWindow < c.WindowSize {
		return fmt.Errorf("season window must be at least the baseline window")
	}
	if c.AgreementRatio <= 0 || c.DisagreementRatio < c.AgreementRatio {
		return fmt.Errorf("disagreement ratio must be >= agreement ratio > 0")
	}
	if c.UsageShiftEnabled && (c.UsageDecayRate <= 0 || c.UsageShiftThreshold <= 0) {
		return fmt.Errorf("usage shift parameters must be positive")
	}
	if c.MainLineMaxOdds <= 100 {
		return fmt.Errorf("main line max odds must exceed 100")
	}
	return nil
}

// FromConfig converts app config to engine config, falling back to defaults for
// unset fields
func FromConfig(cfg *config.PredictionConfig) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("prediction config is required")
	}
	c := DefaultConfig()
	setFloat(&c.DecayRate, cfg.DecayRate)
	setFloat(&c.FormWeight, cfg.FormWeight)
	if cfg.VegasWeight != nil {
		c.VegasWeight = *cfg.VegasWeight
		c.StatWeight = 1 - *cfg.VegasWeight
	}
	if cfg.StatWeight != nil {
		c.StatWeight = *cfg.StatWeight
	}
	setInt(&c.MinGames, cfg.MinGames)
	setFloat(&c.EdgeThreshold, cfg.EdgeThreshold)
	setFloat(&c.ModerateEdgeThreshold, cfg.ModerateEdgeThreshold)
	setInt(&c.WindowSize, cfg.WindowSize)
	setInt(&c.FormWindow, cfg.FormWindow)
	setInt(&c.SeasonWindow, cfg.SeasonWindow)
	setFloat(&c.AgreementRatio, cfg.AgreementRatio)
	setFloat(&c.DisagreementRatio, cfg.DisagreementRatio)
	if cfg.UsageShiftEnabled != nil {
		c.UsageShiftEnabled = *cfg.UsageShiftEnabled
	}
	setFloat(&c.UsageShiftThreshold, cfg.UsageShiftThreshold)
	setFloat(&c.UsageDecayRate, cfg.UsageDecayRate)
	setInt(&c.MainLineMaxOdds, cfg.MainLineMaxOdds)

	return c, c.Validate()
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
