package repository

import (
	"context"
	"time"

	"github.com/yourusername/propcast/internal/models"
)

// GameRecordSource adapts a GameLogRepository to the engine's game source
type GameRecordSource struct {
	repo GameLogRepository
}

// NewGameRecordSource creates a game record source
func NewGameRecordSource(repo GameLogRepository) *GameRecordSource {
	return &GameRecordSource{repo: repo}
}

// Fetch returns qualifying games strictly before before
func (s *GameRecordSource) Fetch(ctx context.Context, athleteID string, stat models.StatType, before time.Time, maxCount int) ([]models.GameObservation, error) {
	return s.repo.GetObservations(ctx, athleteID, stat, before, maxCount)
}

// StoredLineSource resolves the authoritative stored quote for a key
type StoredLineSource struct {
	repo    LineRepository
	maxOdds int
}

// NewStoredLineSource creates a line source backed by stored props. maxOdds
// bounds a main line market; zero uses the default.
func NewStoredLineSource(repo LineRepository, maxOdds int) *StoredLineSource {
	return &StoredLineSource{repo: repo, maxOdds: maxOdds}
}

// Fetch returns the authoritative quote captured before asOf, or nil when none
// exists
func (s *StoredLineSource) Fetch(ctx context.Context, athleteID, gameID string, stat models.StatType, asOf time.Time) (*models.LineQuote, error) {
	quotes, err := s.repo.GetQuotes(ctx, athleteID, gameID, stat)
	if err != nil {
		return nil, err
	}
	return models.SelectAuthoritative(quotes, asOf, s.maxOdds), nil
}

// ScheduleSource adapts a ScheduleRepository to the engine's schedule source
type ScheduleSource struct {
	repo ScheduleRepository
}

// NewScheduleSource creates a schedule source
func NewScheduleSource(repo ScheduleRepository) *ScheduleSource {
	return &ScheduleSource{repo: repo}
}

// GameDate returns the scheduled date of a game
func (s *ScheduleSource) GameDate(ctx context.Context, gameID string) (time.Time, error) {
	game, err := s.repo.GetGame(ctx, gameID)
	if err != nil {
		return time.Time{}, err
	}
	return game.Date, nil
}
