package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/propcast/internal/database"
	"github.com/yourusername/propcast/internal/models"
)

// PostgresBacktestRunRepository implements BacktestRunRepository for PostgreSQL
type PostgresBacktestRunRepository struct {
	db *database.DB
}

// NewPostgresBacktestRunRepository creates a new backtest run repository
func NewPostgresBacktestRunRepository(db *database.DB) *PostgresBacktestRunRepository {
	return &PostgresBacktestRunRepository{db: db}
}

// Save inserts or replaces a run summary. Resumed runs keep their id.
func (r *PostgresBacktestRunRepository) Save(ctx context.Context, run *models.BacktestRun) error {
	query := `
		INSERT INTO backtest_runs (
			id, run_date, start_date, end_date, stat_types,
			evaluated, skipped, mae, rmse, beat_line_rate,
			config_hash, summary, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (id) DO UPDATE SET
			run_date = EXCLUDED.run_date,
			evaluated = EXCLUDED.evaluated,
			skipped = EXCLUDED.skipped,
			mae = EXCLUDED.mae,
			rmse = EXCLUDED.rmse,
			beat_line_rate = EXCLUDED.beat_line_rate,
			summary = EXCLUDED.summary
	`

	_, err := r.db.Conn(ctx).Exec(ctx, query,
		run.ID, run.RunDate, run.StartDate, run.EndDate, run.StatTypes,
		run.Evaluated, run.Skipped, run.MAE, run.RMSE, run.BeatLineRate,
		run.ConfigHash, []byte(run.Summary), run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save backtest run: %w", err)
	}
	return nil
}

// GetLatest retrieves the most recent runs
func (r *PostgresBacktestRunRepository) GetLatest(ctx context.Context, limit int) ([]*models.BacktestRun, error) {
	query := `
		SELECT id, run_date, start_date, end_date, stat_types, evaluated, skipped,
			mae, rmse, beat_line_rate, config_hash, summary, created_at
		FROM backtest_runs
		ORDER BY run_date DESC
		LIMIT $1
	`
	rows, err := r.db.Conn(ctx).Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query backtest runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.BacktestRun
	for rows.Next() {
		run := &models.BacktestRun{}
		var summary []byte
		if err := rows.Scan(
			&run.ID, &run.RunDate, &run.StartDate, &run.EndDate, &run.StatTypes,
			&run.Evaluated, &run.Skipped, &run.MAE, &run.RMSE, &run.BeatLineRate,
			&run.ConfigHash, &summary, &run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan backtest run: %w", err)
		}
		run.Summary = summary
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
