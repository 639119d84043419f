package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/propcast/internal/database"
	"github.com/yourusername/propcast/internal/models"
)

const upsertPrediction = `
	INSERT INTO predictions (
		prediction_id, athlete_id, game_id, season, stat_type,
		predicted_value, stat_prediction, baseline_estimate, form_adjustment, vegas_line,
		edge, confidence, recommendation, model_type, line_status,
		factors, games_used, low_sample, decay_rate, usage_shift,
		details, generated_at, created_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,NOW())
	ON CONFLICT (prediction_id) DO UPDATE SET
		season = EXCLUDED.season,
		predicted_value = EXCLUDED.predicted_value,
		stat_prediction = EXCLUDED.stat_prediction,
		baseline_estimate = EXCLUDED.baseline_estimate,
		form_adjustment = EXCLUDED.form_adjustment,
		vegas_line = EXCLUDED.vegas_line,
		edge = EXCLUDED.edge,
		confidence = EXCLUDED.confidence,
		recommendation = EXCLUDED.recommendation,
		model_type = EXCLUDED.model_type,
		line_status = EXCLUDED.line_status,
		factors = EXCLUDED.factors,
		games_used = EXCLUDED.games_used,
		low_sample = EXCLUDED.low_sample,
		decay_rate = EXCLUDED.decay_rate,
		usage_shift = EXCLUDED.usage_shift,
		details = EXCLUDED.details,
		generated_at = EXCLUDED.generated_at
`

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db *database.DB
}

// NewPostgresPredictionRepository creates a new prediction repository
func NewPostgresPredictionRepository(db *database.DB) *PostgresPredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

func upsertArgs(r *models.PredictionRecord) ([]any, error) {
	details, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode prediction %s: %w", r.Key.ID(), err)
	}
	factors, err := json.Marshal(r.Factors)
	if err != nil {
		return nil, fmt.Errorf("failed to encode factors for %s: %w", r.Key.ID(), err)
	}
	return []any{
		r.Key.ID(), r.Key.AthleteID, r.Key.GameID, r.Season, string(r.Key.StatType),
		r.BlendedEstimate, r.StatisticalEstimate, r.BaselineEstimate, r.FormAdjustment, r.LineValue,
		r.Edge, string(r.Confidence), string(r.Recommendation), string(r.ModelType), string(r.LineStatus),
		factors, r.GamesUsed, r.LowSample, r.DecayRate, r.UsageShift,
		details, r.GeneratedAt,
	}, nil
}

// Upsert inserts or replaces the prediction with the same key
func (p *PostgresPredictionRepository) Upsert(ctx context.Context, record *models.PredictionRecord) error {
	args, err := upsertArgs(record)
	if err != nil {
		return err
	}
	if _, err := p.db.Conn(ctx).Exec(ctx, upsertPrediction, args...); err != nil {
		return fmt.Errorf("failed to upsert prediction %s: %w", record.Key.ID(), err)
	}
	return nil
}

// UpsertBatch upserts records in a single round trip
func (p *PostgresPredictionRepository) UpsertBatch(ctx context.Context, records []*models.PredictionRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range records {
		args, err := upsertArgs(r)
		if err != nil {
			return err
		}
		batch.Queue(upsertPrediction, args...)
	}

	results := p.db.Conn(ctx).SendBatch(ctx, batch)
	defer results.Close()

	for _, r := range records {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert prediction %s: %w", r.Key.ID(), err)
		}
	}
	return nil
}

// GetByID retrieves a prediction by its id
func (p *PostgresPredictionRepository) GetByID(ctx context.Context, predictionID string) (*models.PredictionRecord, error) {
	var details []byte
	err := p.db.Conn(ctx).QueryRow(ctx, `SELECT details FROM predictions WHERE prediction_id = $1`, predictionID).Scan(&details)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}
	return decodePrediction(details)
}

// GetByGame retrieves every prediction for a game
func (p *PostgresPredictionRepository) GetByGame(ctx context.Context, gameID string) ([]*models.PredictionRecord, error) {
	rows, err := p.db.Conn(ctx).Query(ctx, `
		SELECT details FROM predictions
		WHERE game_id = $1
		ORDER BY athlete_id, stat_type
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions by game: %w", err)
	}
	defer rows.Close()

	var records []*models.PredictionRecord
	for rows.Next() {
		var details []byte
		if err := rows.Scan(&details); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		record, err := decodePrediction(details)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func decodePrediction(details []byte) (*models.PredictionRecord, error) {
	record := &models.PredictionRecord{}
	if err := json.Unmarshal(details, record); err != nil {
		return nil, fmt.Errorf("failed to decode prediction: %w", err)
	}
	return record, nil
}
