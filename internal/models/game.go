package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// StatType identifies the box-score statistic being forecast
type StatType string

// Supported stat types
const (
	StatPoints   StatType = "points"
	StatRebounds StatType = "rebounds"
	StatAssists  StatType = "assists"
	StatSteals   StatType = "steals"
	StatBlocks   StatType = "blocks"
)

var propNames = map[StatType]string{
	StatPoints:   "Total Points",
	StatRebounds: "Total Rebounds",
	StatAssists:  "Total Assists",
	StatSteals:   "Total Steals",
	StatBlocks:   "Total Blocks",
}

// AllStatTypes returns every supported stat type in display order
func AllStatTypes() []StatType {
	return []StatType{StatPoints, StatRebounds, StatAssists, StatSteals, StatBlocks}
}

// ParseStatType parses a stat type name case-insensitively
func ParseStatType(s string) (StatType, error) {
	st := StatType(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatType, s)
	}
	return st, nil
}

// IsValid reports whether the stat type is supported
func (s StatType) IsValid() bool {
	_, ok := propNames[s]
	return ok
}

// PropName returns the bookmaker market name for the stat type
func (s StatType) PropName() string {
	return propNames[s]
}

// StatTypeFromPropName maps a bookmaker market name back to a stat type
func StatTypeFromPropName(name string) (StatType, bool) {
	for st, prop := range propNames {
		if strings.EqualFold(prop, name) {
			return st, true
		}
	}
	return "", false
}

// SeasonType mirrors the provider's event season type codes
type SeasonType int

// Season types
const (
	SeasonTypePreseason     SeasonType = 1
	SeasonTypeRegularSeason SeasonType = 2
	SeasonTypePostseason    SeasonType = 3
)

// GameObservation is one historical game for one athlete and one statistic
type GameObservation struct {
	GameID            string     `db:"game_id" json:"game_id" validate:"required"`
	AthleteID         string     `db:"athlete_id" json:"athlete_id" validate:"required"`
	Date              time.Time  `db:"date" json:"date" validate:"required"`
	Season            string     `db:"season" json:"season" validate:"required"`
	SeasonType        SeasonType `db:"season_type" json:"season_type"`
	StatValue         float64    `db:"stat_value" json:"stat_value" validate:"gte=0"`
	Minutes           float64    `db:"minutes" json:"minutes" validate:"gt=0"`
	Played            bool       `db:"played" json:"played"`
	FieldGoalAttempts *float64   `db:"field_goal_attempts" json:"field_goal_attempts,omitempty"`
}

// IsQualifying reports whether the observation may feed an estimate:
// a regular-season game the athlete played with nonzero minutes and a usable stat value.
func (o GameObservation) IsQualifying() bool {
	if o.SeasonType != SeasonTypeRegularSeason || !o.Played {
		return false
	}
	if math.IsNaN(o.Minutes) || o.Minutes <= 0 {
		return false
	}
	if math.IsNaN(o.StatValue) || math.IsInf(o.StatValue, 0) || o.StatValue < 0 {
		return false
	}
	return true
}

// Game is a scheduled or completed event
type Game struct {
	GameID     string     `db:"event_id" json:"game_id"`
	Date       time.Time  `db:"date" json:"date"`
	Season     string     `db:"season" json:"season"`
	SeasonType SeasonType `db:"event_season_type" json:"season_type"`
}
