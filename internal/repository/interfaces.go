package repository

import (
	"context"
	"time"

	"github.com/yourusername/propcast/internal/models"
)

// GameLogRepository reads athlete box scores
type GameLogRepository interface {
	// GetObservations returns qualifying games dated strictly before before,
	// newest first, at most limit rows
	GetObservations(ctx context.Context, athleteID string, stat models.StatType, before time.Time, limit int) ([]models.GameObservation, error)
	GetAthletesForGame(ctx context.Context, gameID string) ([]string, error)
}

// BacktestCaseRepository lists completed games to replay
type BacktestCaseRepository interface {
	// ListCases returns cases in [start, end] ordered by (date, game, athlete)
	// strictly after the cursor
	ListCases(ctx context.Context, stat models.StatType, start, end time.Time, after models.CaseCursor, limit int) ([]models.BacktestCase, error)
}

// LineRepository reads stored bookmaker prop lines
type LineRepository interface {
	GetQuotes(ctx context.Context, athleteID, gameID string, stat models.StatType) ([]*models.LineQuote, error)
	GetAthletesWithLines(ctx context.Context, gameID string, stat models.StatType) ([]string, error)
}

// ScheduleRepository reads events
type ScheduleRepository interface {
	GetGame(ctx context.Context, gameID string) (*models.Game, error)
	GetUpcoming(ctx context.Context, from, to time.Time) ([]*models.Game, error)
}

// PredictionRepository persists prediction records keyed by prediction id
type PredictionRepository interface {
	Upsert(ctx context.Context, record *models.PredictionRecord) error
	UpsertBatch(ctx context.Context, records []*models.PredictionRecord) error
	GetByID(ctx context.Context, predictionID string) (*models.PredictionRecord, error)
	GetByGame(ctx context.Context, gameID string) ([]*models.PredictionRecord, error)
}

// BacktestRunRepository persists backtest run summaries
type BacktestRunRepository interface {
	Save(ctx context.Context, run *models.BacktestRun) error
	GetLatest(ctx context.Context, limit int) ([]*models.BacktestRun, error)
}
