package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/propcast/internal/database"
	"github.com/yourusername/propcast/internal/models"
)

const errScanObservation = "failed to scan game observation: %w"

// PostgresGameLogRepository reads player_boxscores joined with basic_events
type PostgresGameLogRepository struct {
	db *database.DB
}

// NewPostgresGameLogRepository creates a new game log repository
func NewPostgresGameLogRepository(db *database.DB) *PostgresGameLogRepository {
	return &PostgresGameLogRepository{db: db}
}

// GetObservations retrieves an athlete's qualifying games before a date
func (r *PostgresGameLogRepository) GetObservations(ctx context.Context, athleteID string, stat models.StatType, before time.Time, limit int) ([]models.GameObservation, error) {
	col, err := statColumn(stat)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT pb.game_id, pb.athlete_id, CAST(be.date AS TIMESTAMPTZ), CAST(be.season AS TEXT),
			be.event_season_type, COALESCE(%s, 'NaN'), COALESCE(%s, 0),
			%s
		FROM player_boxscores pb
		JOIN basic_events be ON pb.game_id = be.event_id
		WHERE pb.athlete_id = $1
		AND CAST(be.date AS TIMESTAMPTZ) < $2
		AND %s
		ORDER BY CAST(be.date AS TIMESTAMPTZ) DESC, pb.game_id DESC
		LIMIT $3
	`, asFloat(col), asFloat("pb.minutes"),
		asFloat(`SPLIT_PART(CAST(pb."fieldGoalsMade_fieldGoalsAttempted" AS TEXT), '-', 2)`),
		qualifyingGame)

	rows, err := r.db.Conn(ctx).Query(ctx, query, athleteID, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query game log: %w", err)
	}
	defer rows.Close()

	var observations []models.GameObservation
	for rows.Next() {
		o := models.GameObservation{Played: true}
		if err := rows.Scan(
			&o.GameID, &o.AthleteID, &o.Date, &o.Season,
			&o.SeasonType, &o.StatValue, &o.Minutes,
			&o.FieldGoalAttempts,
		); err != nil {
			return nil, fmt.Errorf(errScanObservation, err)
		}
		observations = append(observations, o)
	}
	return observations, rows.Err()
}

// GetAthletesForGame retrieves athletes who played in a game
func (r *PostgresGameLogRepository) GetAthletesForGame(ctx context.Context, gameID string) ([]string, error) {
	query := `
		SELECT DISTINCT pb.athlete_id
		FROM player_boxscores pb
		WHERE pb.game_id = $1
		AND CAST(pb."athlete_didNotPlay" AS TEXT) IN ('0', 'false')
		ORDER BY pb.athlete_id
	`
	return queryStrings(ctx, r.db.Conn(ctx), query, gameID)
}

// ListCases retrieves completed games to replay in cursor order
func (r *PostgresGameLogRepository) ListCases(ctx context.Context, stat models.StatType, start, end time.Time, after models.CaseCursor, limit int) ([]models.BacktestCase, error) {
	col, err := statColumn(stat)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT pb.athlete_id, pb.game_id, CAST(be.date AS TIMESTAMPTZ), %s
		FROM player_boxscores pb
		JOIN basic_events be ON pb.game_id = be.event_id
		WHERE CAST(be.date AS TIMESTAMPTZ) >= $1
		AND CAST(be.date AS TIMESTAMPTZ) < $2
		AND (CAST(be.date AS TIMESTAMPTZ), pb.game_id, pb.athlete_id) > ($3, $4, $5)
		AND %s IS NOT NULL
		AND %s
		ORDER BY CAST(be.date AS TIMESTAMPTZ), pb.game_id, pb.athlete_id
		LIMIT $6
	`, asFloat(col), asFloat(col), qualifyingGame)

	// end is inclusive of the whole day
	rows, err := r.db.Conn(ctx).Query(ctx, query,
		start, end.AddDate(0, 0, 1),
		after.GameDate, after.GameID, after.AthleteID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query backtest cases: %w", err)
	}
	defer rows.Close()

	var cases []models.BacktestCase
	for rows.Next() {
		c := models.BacktestCase{Key: models.PredictionKey{StatType: stat}}
		if err := rows.Scan(&c.Key.AthleteID, &c.Key.GameID, &c.GameDate, &c.Actual); err != nil {
			return nil, fmt.Errorf("failed to scan backtest case: %w", err)
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

func queryStrings(ctx context.Context, q database.Querier, query string, args ...any) ([]string, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ids: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
