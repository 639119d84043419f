package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/propcast/internal/database"
	"github.com/yourusername/propcast/internal/models"
)

// PostgresLineRepository reads the player_props table
type PostgresLineRepository struct {
	db *database.DB
}

// NewPostgresLineRepository creates a new line repository
func NewPostgresLineRepository(db *database.DB) *PostgresLineRepository {
	return &PostgresLineRepository{db: db}
}

// GetQuotes retrieves every stored quote for an athlete, game and stat
func (r *PostgresLineRepository) GetQuotes(ctx context.Context, athleteID, gameID string, stat models.StatType) ([]*models.LineQuote, error) {
	query := fmt.Sprintf(`
		SELECT athlete_id, game_id, %s, COALESCE(provider, ''),
			COALESCE(CAST(last_updated AS TIMESTAMPTZ), CAST(fetch_date AS TIMESTAMPTZ)),
			%s, %s
		FROM player_props
		WHERE athlete_id = $1
		AND game_id = $2
		AND prop_type = $3
		AND %s IS NOT NULL
	`, asFloat("line"), asOdds("over_odds"), asOdds("under_odds"), asFloat("line"))

	rows, err := r.db.Conn(ctx).Query(ctx, query, athleteID, gameID, stat.PropName())
	if err != nil {
		return nil, fmt.Errorf("failed to query prop lines: %w", err)
	}
	defer rows.Close()

	var quotes []*models.LineQuote
	for rows.Next() {
		q := &models.LineQuote{StatType: stat}
		if err := rows.Scan(
			&q.AthleteID, &q.GameID, &q.LineValue, &q.Source,
			&q.CapturedAt, &q.OverOdds, &q.UnderOdds,
		); err != nil {
			return nil, fmt.Errorf("failed to scan prop line: %w", err)
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

// GetAthletesWithLines retrieves athletes with a line posted for a game and stat
func (r *PostgresLineRepository) GetAthletesWithLines(ctx context.Context, gameID string, stat models.StatType) ([]string, error) {
	query := `
		SELECT DISTINCT athlete_id
		FROM player_props
		WHERE game_id = $1
		AND prop_type = $2
		ORDER BY athlete_id
	`
	return queryStrings(ctx, r.db.Conn(ctx), query, gameID, stat.PropName())
}
