package prediction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/propcast/internal/logger"
	"github.com/yourusername/propcast/internal/metrics"
	"github.com/yourusername/propcast/internal/models"
)

// Request identifies one prediction at a fixed evaluation instant
type Request struct {
	Key      models.PredictionKey
	GameDate time.Time
}

// Engine wires the pure estimator to its data sources
type Engine struct {
	games    GameRecordSource
	lines    LineSource
	schedule ScheduleSource
	config   Config
	logger   *logger.PredictionLogger
}

// NewEngine creates a new engine. lines and schedule may be nil: without lines
// every prediction is statistical only, without a schedule only PredictAt works.
func NewEngine(cfg Config, games GameRecordSource, lines LineSource, schedule ScheduleSource, log *logrus.Logger) (*Engine, error) {
	if games == nil {
		return nil, fmt.Errorf("game record source is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	if log == nil {
		log = logrus.New()
	}
	return &Engine{
		games:    games,
		lines:    lines,
		schedule: schedule,
		config:   cfg,
		logger:   logger.NewPredictionLogger(log),
	}, nil
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.config
}

// Predict resolves the game date and generates the prediction for the key
func (e *Engine) Predict(ctx context.Context, athleteID, gameID string, stat models.StatType) (*models.PredictionRecord, error) {
	if e.schedule == nil {
		return nil, fmt.Errorf("schedule source is not configured")
	}
	gameDate, err := e.schedule.GameDate(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve game %s: %w", gameID, err)
	}
	return e.PredictAt(ctx, Request{
		Key:      models.PredictionKey{AthleteID: athleteID, GameID: gameID, StatType: stat},
		GameDate: gameDate,
	})
}

// PredictAt generates the prediction as of req.GameDate. Only games strictly
// before the game date are consulted. A failing line source degrades the
// prediction to statistics only; a failing game source is returned.
func (e *Engine) PredictAt(ctx context.Context, req Request) (*models.PredictionRecord, error) {
	start := time.Now()
	if err := req.Key.Validate(); err != nil {
		return nil, err
	}

	observations, err := e.games.Fetch(ctx, req.Key.AthleteID, req.Key.StatType, req.GameDate, e.config.SeasonWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch game history for %s: %w", req.Key.ID(), err)
	}

	quote, err := e.fetchLine(ctx, req)
	if err != nil {
		return nil, err
	}

	record, err := Assemble(req.Key, observations, quote, e.config, req.GameDate)
	if err != nil {
		if errors.Is(err, models.ErrInsufficientData) {
			metrics.RecordPredictionSkipped(string(req.Key.StatType), "insufficient_data")
		}
		return nil, err
	}

	metrics.RecordPrediction(record, time.Since(start))
	e.logger.LogPrediction(record)
	return record, nil
}

// fetchLine only fails when ctx is done
func (e *Engine) fetchLine(ctx context.Context, req Request) (*models.LineQuote, error) {
	if e.lines == nil {
		return nil, nil
	}
	quote, err := e.lines.Fetch(ctx, req.Key.AthleteID, req.Key.GameID, req.Key.StatType, req.GameDate)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		e.logger.LogLineDegraded(req.Key, err)
		metrics.RecordLineFallback(string(req.Key.StatType))
		return nil, nil
	}
	return quote, nil
}
