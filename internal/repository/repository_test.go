package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/propcast/internal/database"
	"github.com/yourusername/propcast/internal/models"
)

type fakeLineRepo struct {
	quotes []*models.LineQuote
	err    error
}

func (f *fakeLineRepo) GetQuotes(context.Context, string, string, models.StatType) ([]*models.LineQuote, error) {
	return f.quotes, f.err
}

func (f *fakeLineRepo) GetAthletesWithLines(context.Context, string, models.StatType) ([]string, error) {
	return nil, f.err
}

type fakeScheduleRepo struct {
	games map[string]*models.Game
}

func (f *fakeScheduleRepo) GetGame(_ context.Context, gameID string) (*models.Game, error) {
	g, ok := f.games[gameID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return g, nil
}

func (f *fakeScheduleRepo) GetUpcoming(context.Context, time.Time, time.Time) ([]*models.Game, error) {
	return nil, nil
}

func odds(v int) *int {
	return &v
}

func TestStoredLineSourceSelectsLatestBeforeTipoff(t *testing.T) {
	tipoff := time.Date(2024, 2, 10, 0, 30, 0, 0, time.UTC)
	repo := &fakeLineRepo{quotes: []*models.LineQuote{
		{LineValue: 24.5, CapturedAt: tipoff.Add(-6 * time.Hour), OverOdds: odds(-110), UnderOdds: odds(-110)},
		{LineValue: 25.5, CapturedAt: tipoff.Add(-1 * time.Hour), OverOdds: odds(-115), UnderOdds: odds(-105)},
		{LineValue: 27.5, CapturedAt: tipoff.Add(2 * time.Hour), OverOdds: odds(-110), UnderOdds: odds(-110)},
	}}

	quote, err := NewStoredLineSource(repo, 0).Fetch(context.Background(), "a", "g", models.StatPoints, tipoff)
	require.NoError(t, err)
	require.NotNil(t, quote)

	assert.Equal(t, 25.5, quote.LineValue)
}

func TestStoredLineSourcePrefersMainLineOnTie(t *testing.T) {
	captured := time.Date(2024, 2, 9, 18, 0, 0, 0, time.UTC)
	repo := &fakeLineRepo{quotes: []*models.LineQuote{
		{LineValue: 19.5, CapturedAt: captured, OverOdds: odds(-400), UnderOdds: odds(290)},
		{LineValue: 24.5, CapturedAt: captured, OverOdds: odds(-112), UnderOdds: odds(-108)},
		{LineValue: 29.5, CapturedAt: captured, OverOdds: odds(310), UnderOdds: odds(-450)},
	}}

	quote, err := NewStoredLineSource(repo, 0).Fetch(context.Background(), "a", "g", models.StatPoints, captured.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 24.5, quote.LineValue)
}

func TestStoredLineSourceKeepsMainLineOverLaterAlternate(t *testing.T) {
	tipoff := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	repo := &fakeLineRepo{quotes: []*models.LineQuote{
		{LineValue: 27.5, CapturedAt: tipoff.Add(-5 * time.Hour), OverOdds: odds(-110), UnderOdds: odds(-110)},
		{LineValue: 19.5, CapturedAt: tipoff.Add(-3 * time.Hour), OverOdds: odds(-450), UnderOdds: odds(320)},
	}}

	quote, err := NewStoredLineSource(repo, 200).Fetch(context.Background(), "a", "g", models.StatPoints, tipoff)
	require.NoError(t, err)
	require.NotNil(t, quote)

	assert.Equal(t, 27.5, quote.LineValue)
}

func TestStoredLineSourceNoQuotes(t *testing.T) {
	quote, err := NewStoredLineSource(&fakeLineRepo{}, 0).Fetch(context.Background(), "a", "g", models.StatAssists, time.Now())

	require.NoError(t, err)
	assert.Nil(t, quote)
}

func TestStoredLineSourceError(t *testing.T) {
	repoErr := errors.New("timeout")
	_, err := NewStoredLineSource(&fakeLineRepo{err: repoErr}, 0).Fetch(context.Background(), "a", "g", models.StatAssists, time.Now())

	assert.ErrorIs(t, err, repoErr)
}

func TestScheduleSource(t *testing.T) {
	date := time.Date(2024, 2, 10, 0, 30, 0, 0, time.UTC)
	source := NewScheduleSource(&fakeScheduleRepo{games: map[string]*models.Game{"401": {GameID: "401", Date: date}}})

	got, err := source.GameDate(context.Background(), "401")
	require.NoError(t, err)
	assert.Equal(t, date, got)

	_, err = source.GameDate(context.Background(), "402")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStatColumnRejectsUnknownStat(t *testing.T) {
	_, err := statColumn("turnovers")
	assert.ErrorIs(t, err, models.ErrInvalidStatType)

	col, err := statColumn(models.StatBlocks)
	require.NoError(t, err)
	assert.Equal(t, "pb.blocks", col)
}

func TestNewRepositoriesRequiresDB(t *testing.T) {
	_, err := NewRepositories(nil)
	assert.Error(t, err)
}

func TestPredictionRepositoryUpsertIntegration(t *testing.T) {
	db := database.SetupTestDB(t)
	repos, err := NewRepositories(db)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	record := &models.PredictionRecord{
		Key:             models.PredictionKey{AthleteID: "it-athlete", GameID: "it-game", StatType: models.StatPoints},
		Season:          "2024",
		BlendedEstimate: 21.4,
		Confidence:      models.ConfidenceMedium,
		Recommendation:  models.RecommendationPass,
		ModelType:       models.ModelStatistical,
		LineStatus:      models.LineUnavailable,
		GeneratedAt:     time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repos.Prediction.Upsert(ctx, record))
	record.BlendedEstimate = 22.1
	require.NoError(t, repos.Prediction.Upsert(ctx, record))

	got, err := repos.Prediction.GetByID(ctx, record.Key.ID())
	require.NoError(t, err)
	assert.Equal(t, 22.1, got.BlendedEstimate)
}

func TestGameLogRepositoryExcludesGameDateIntegration(t *testing.T) {
	db := database.SetupTestDB(t)
	repo := NewPostgresGameLogRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cutoff := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	observations, err := repo.GetObservations(ctx, "3112335", models.StatPoints, cutoff, 82)
	require.NoError(t, err)
	for _, o := range observations {
		assert.True(t, o.Date.Before(cutoff))
	}
}
