package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/propcast/internal/database"
	"github.com/yourusername/propcast/internal/models"
)

const selectGame = `
	SELECT event_id, CAST(date AS TIMESTAMPTZ), CAST(season AS TEXT), event_season_type
	FROM basic_events
`

// PostgresScheduleRepository reads the basic_events table
type PostgresScheduleRepository struct {
	db *database.DB
}

// NewPostgresScheduleRepository creates a new schedule repository
func NewPostgresScheduleRepository(db *database.DB) *PostgresScheduleRepository {
	return &PostgresScheduleRepository{db: db}
}

// GetGame retrieves a game by id
func (r *PostgresScheduleRepository) GetGame(ctx context.Context, gameID string) (*models.Game, error) {
	g := &models.Game{}
	err := r.db.Conn(ctx).QueryRow(ctx, selectGame+" WHERE event_id = $1", gameID).
		Scan(&g.GameID, &g.Date, &g.Season, &g.SeasonType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("game %s: %w", gameID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return g, nil
}

// GetUpcoming retrieves games scheduled in [from, to)
func (r *PostgresScheduleRepository) GetUpcoming(ctx context.Context, from, to time.Time) ([]*models.Game, error) {
	query := selectGame + `
		WHERE CAST(date AS TIMESTAMPTZ) >= $1 AND CAST(date AS TIMESTAMPTZ) < $2
		ORDER BY CAST(date AS TIMESTAMPTZ), event_id
	`
	rows, err := r.db.Conn(ctx).Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		g := &models.Game{}
		if err := rows.Scan(&g.GameID, &g.Date, &g.Season, &g.SeasonType); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}
