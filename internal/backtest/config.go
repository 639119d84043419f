package backtest

import (
	"fmt"
	"slices"
	"time"

	"github.com/yourusername/propcast/internal/config"
	"github.com/yourusername/propcast/internal/models"
)

// BacktestConfig holds harness settings
type BacktestConfig struct {
	StartDate       time.Time
	EndDate         time.Time
	StatTypes       []models.StatType
	BatchSize       int
	Workers         int
	CheckpointEvery int
	CheckpointPath  string
	OutputPath      string
	PersistResults  bool
}

// Range is the slice of history a run replays. Both ends are inclusive dates.
type Range struct {
	Start     time.Time         `json:"start"`
	End       time.Time         `json:"end"`
	StatTypes []models.StatType `json:"stat_types"`
}

// Equal reports whether two ranges cover the same cases
func (r Range) Equal(other Range) bool {
	return r.Start.Equal(other.Start) && r.End.Equal(other.End) && slices.Equal(r.StatTypes, other.StatTypes)
}

// Validate checks the range is replayable
func (r Range) Validate() error {
	if r.Start.After(r.End) {
		return fmt.Errorf("start date must not be after end date")
	}
	if len(r.StatTypes) == 0 {
		return fmt.Errorf("at least one stat type is required")
	}
	for _, st := range r.StatTypes {
		if !st.IsValid() {
			return fmt.Errorf("%w: %q", models.ErrInvalidStatType, st)
		}
	}
	return nil
}

// FromConfig converts app config to backtest config
func FromConfig(cfg *config.BacktestConfig) (BacktestConfig, error) {
	if cfg == nil {
		return BacktestConfig{}, fmt.Errorf("backtest config is required")
	}
	start, err := time.Parse(time.DateOnly, cfg.StartDate)
	if err != nil {
		return BacktestConfig{}, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := time.Parse(time.DateOnly, cfg.EndDate)
	if err != nil {
		return BacktestConfig{}, fmt.Errorf("invalid end date: %w", err)
	}

	stats := make([]models.StatType, 0, len(cfg.StatTypes))
	for _, name := range cfg.StatTypes {
		st, err := models.ParseStatType(name)
		if err != nil {
			return BacktestConfig{}, err
		}
		stats = append(stats, st)
	}

	bt := BacktestConfig{
		StartDate:       start,
		EndDate:         end,
		StatTypes:       stats,
		BatchSize:       cfg.BatchSize,
		Workers:         cfg.Workers,
		CheckpointEvery: cfg.CheckpointEvery,
		CheckpointPath:  cfg.CheckpointPath,
		OutputPath:      cfg.OutputPath,
		PersistResults:  cfg.PersistResults,
	}

	return bt, bt.Validate()
}

// Range returns the configured replay range
func (b BacktestConfig) Range() Range {
	return Range{Start: b.StartDate, End: b.EndDate, StatTypes: b.StatTypes}
}

// Validate validates backtest config parameters
func (b BacktestConfig) Validate() error {
	if err := b.Range().Validate(); err != nil {
		return err
	}
	if b.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}
	if b.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if b.CheckpointEvery < 0 {
		return fmt.Errorf("checkpoint interval cannot be negative")
	}
	return nil
}
