package repository

import (
	"fmt"

	"github.com/yourusername/propcast/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	GameLog      GameLogRepository
	BacktestCase BacktestCaseRepository
	Line         LineRepository
	Schedule     ScheduleRepository
	Prediction   PredictionRepository
	BacktestRun  BacktestRunRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	gameLog := NewPostgresGameLogRepository(db)
	return &Repositories{
		GameLog:      gameLog,
		BacktestCase: gameLog,
		Line:         NewPostgresLineRepository(db),
		Schedule:     NewPostgresScheduleRepository(db),
		Prediction:   NewPostgresPredictionRepository(db),
		BacktestRun:  NewPostgresBacktestRunRepository(db),
	}, nil
}
