package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BacktestResult is the accuracy record for one evaluated historical game
type BacktestResult struct {
	Key            PredictionKey  `json:"key"`
	GameDate       time.Time      `json:"game_date"`
	Predicted      float64        `json:"predicted"`
	Actual         float64        `json:"actual"`
	AbsoluteError  float64        `json:"absolute_error"`
	Confidence     Confidence     `json:"confidence"`
	Recommendation Recommendation `json:"recommendation"`
	LineValue      *float64       `json:"line_value,omitempty"`
	LineError      *float64       `json:"line_error,omitempty"`
	BeatLine       *bool          `json:"beat_line"`
}

// BacktestCase is one completed game to replay: the key, its date and the
// stat the athlete actually recorded
type BacktestCase struct {
	Key      PredictionKey `json:"key"`
	GameDate time.Time     `json:"game_date"`
	Actual   float64       `json:"actual"`
}

// CaseCursor is the position of a case in (date, game, athlete) order. The
// zero cursor precedes every case.
type CaseCursor struct {
	GameDate  time.Time `json:"game_date"`
	GameID    string    `json:"game_id"`
	AthleteID string    `json:"athlete_id"`
}

// IsZero reports whether the cursor is at the start
func (c CaseCursor) IsZero() bool {
	return c.GameDate.IsZero() && c.GameID == "" && c.AthleteID == ""
}

// CursorOf returns the cursor positioned at c
func CursorOf(c BacktestCase) CaseCursor {
	return CaseCursor{GameDate: c.GameDate, GameID: c.Key.GameID, AthleteID: c.Key.AthleteID}
}

// BacktestRun represents a persisted backtest run summary
type BacktestRun struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	RunDate      time.Time       `db:"run_date" json:"run_date"`
	StartDate    time.Time       `db:"start_date" json:"start_date"`
	EndDate      time.Time       `db:"end_date" json:"end_date"`
	StatTypes    []string        `db:"stat_types" json:"stat_types"`
	Evaluated    int             `db:"evaluated" json:"evaluated"`
	Skipped      int             `db:"skipped" json:"skipped"`
	MAE          float64         `db:"mae" json:"mae"`
	RMSE         float64         `db:"rmse" json:"rmse"`
	BeatLineRate *float64        `db:"beat_line_rate" json:"beat_line_rate"`
	ConfigHash   string          `db:"config_hash" json:"config_hash"`
	Summary      json.RawMessage `db:"summary" json:"summary"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}
