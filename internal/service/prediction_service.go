package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/propcast/internal/logger"
	"github.com/yourusername/propcast/internal/metrics"
	"github.com/yourusername/propcast/internal/models"
	"github.com/yourusername/propcast/internal/prediction"
	"github.com/yourusername/propcast/internal/repository"
)

// Predictor produces one prediction as of a game date
type Predictor interface {
	PredictAt(ctx context.Context, req prediction.Request) (*models.PredictionRecord, error)
}

// PredictionService generates predictions and persists them
type PredictionService struct {
	engine      Predictor
	predictions repository.PredictionRepository
	lines       repository.LineRepository
	games       repository.GameLogRepository
	schedule    repository.ScheduleRepository
	workers     int
	logger      *logger.PredictionLogger
	audit       *logger.AuditLogger
}

// NewPredictionService creates a new prediction service
func NewPredictionService(
	engine Predictor,
	repos *repository.Repositories,
	workers int,
	log *logrus.Logger,
) (*PredictionService, error) {
	if engine == nil {
		return nil, fmt.Errorf("prediction engine is required")
	}
	if repos == nil || repos.Prediction == nil {
		return nil, fmt.Errorf("prediction repository is required")
	}
	if workers <= 0 {
		workers = 4
	}
	if log == nil {
		log = logrus.New()
	}
	return &PredictionService{
		engine:      engine,
		predictions: repos.Prediction,
		lines:       repos.Line,
		games:       repos.GameLog,
		schedule:    repos.Schedule,
		workers:     workers,
		logger:      logger.NewPredictionLogger(log),
		audit:       logger.NewAuditLogger(log),
	}, nil
}

// Generate predicts every request concurrently and upserts the results.
// Requests without enough history are skipped; other per-request failures are
// logged and counted. Only cancellation or a storage failure is returned.
func (s *PredictionService) Generate(ctx context.Context, reqs []prediction.Request) (*GenerationMetrics, error) {
	m := &GenerationMetrics{StartTime: time.Now(), Requested: len(reqs)}
	records := make([]*models.PredictionRecord, len(reqs))
	skipped := make([]bool, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, req := range reqs {
		g.Go(func() error {
			record, err := s.engine.PredictAt(gctx, req)
			switch {
			case err == nil:
				records[i] = record
			case errors.Is(err, models.ErrInsufficientData):
				skipped[i] = true
				s.logger.LogInsufficientData(req.Key)
			case gctx.Err() != nil:
				return gctx.Err()
			default:
				s.logger.WithError(err).WithField("prediction_id", req.Key.ID()).Error("Prediction failed")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return m, err
	}

	stored := make([]*models.PredictionRecord, 0, len(records))
	for i, r := range records {
		switch {
		case r != nil:
			stored = append(stored, r)
		case skipped[i]:
			m.Skipped++
		default:
			m.Failed++
		}
	}
	m.Generated = len(stored)

	if len(stored) > 0 {
		if err := s.predictions.UpsertBatch(ctx, stored); err != nil {
			m.Duration = time.Since(m.StartTime)
			return m, fmt.Errorf("failed to store predictions: %w", err)
		}
		for _, r := range stored {
			metrics.RecordPredictionStored()
			s.audit.LogPredictionStored(r.Key.ID(), string(r.Recommendation), r.GeneratedAt)
		}
		m.Stored = len(stored)
	}

	m.Duration = time.Since(m.StartTime)
	s.logger.LogBatch(m.Requested, m.Generated, m.Skipped, m.Failed, float64(m.Duration.Milliseconds()))
	return m, nil
}

// GenerateForGame predicts every athlete with a posted line for the game
func (s *PredictionService) GenerateForGame(ctx context.Context, gameID string, statTypes []models.StatType) (*GenerationMetrics, error) {
	if s.lines == nil {
		return nil, fmt.Errorf("line repository is not configured")
	}
	return s.generateFor(ctx, gameID, statTypes, func(ctx context.Context, stat models.StatType) ([]string, error) {
		return s.lines.GetAthletesWithLines(ctx, gameID, stat)
	})
}

// GenerateForRoster predicts every athlete with a box score in the game,
// whether or not a line was posted
func (s *PredictionService) GenerateForRoster(ctx context.Context, gameID string, statTypes []models.StatType) (*GenerationMetrics, error) {
	if s.games == nil {
		return nil, fmt.Errorf("game log repository is not configured")
	}
	var roster []string
	return s.generateFor(ctx, gameID, statTypes, func(ctx context.Context, _ models.StatType) ([]string, error) {
		if roster != nil {
			return roster, nil
		}
		athletes, err := s.games.GetAthletesForGame(ctx, gameID)
		roster = athletes
		return athletes, err
	})
}

// GenerateUpcoming predicts every game scheduled in [from, to]
func (s *PredictionService) GenerateUpcoming(ctx context.Context, from, to time.Time, statTypes []models.StatType) (*GenerationMetrics, error) {
	if s.schedule == nil {
		return nil, fmt.Errorf("schedule repository is not configured")
	}
	games, err := s.schedule.GetUpcoming(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load upcoming games: %w", err)
	}

	total := &GenerationMetrics{StartTime: time.Now()}
	for _, game := range games {
		m, err := s.GenerateForGame(ctx, game.GameID, statTypes)
		total.Merge(m)
		if err != nil {
			return total, fmt.Errorf("game %s: %w", game.GameID, err)
		}
	}
	return total, nil
}

type athleteLister func(ctx context.Context, stat models.StatType) ([]string, error)

func (s *PredictionService) generateFor(ctx context.Context, gameID string, statTypes []models.StatType, list athleteLister) (*GenerationMetrics, error) {
	if s.schedule == nil {
		return nil, fmt.Errorf("schedule repository is not configured")
	}
	game, err := s.schedule.GetGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve game %s: %w", gameID, err)
	}

	var reqs []prediction.Request
	for _, stat := range statTypes {
		athletes, err := list(ctx, stat)
		if err != nil {
			return nil, fmt.Errorf("failed to list athletes for game %s: %w", gameID, err)
		}
		for _, athleteID := range athletes {
			reqs = append(reqs, prediction.Request{
				Key:      models.PredictionKey{AthleteID: athleteID, GameID: gameID, StatType: stat},
				GameDate: game.Date,
			})
		}
	}
	return s.Generate(ctx, reqs)
}
