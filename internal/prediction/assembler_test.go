package prediction

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/propcast/internal/models"
)

func TestAssembleScenarioWithLine(t *testing.T) {
	obs := observationsFor(scenarioValues, scenarioGameDate)

	record, err := Assemble(scenarioKey, obs, quoteAt(27.5), DefaultConfig(), scenarioGameDate)
	require.NoError(t, err)

	assert.InDelta(t, 27.06, record.BaselineEstimate, 0.01)
	assert.InDelta(t, 26.2, record.SeasonAverage, 1e-9)
	assert.InDelta(t, 27.4, record.Last5Average, 1e-9)
	assert.InDelta(t, 0.30, record.FormAdjustment, 1e-9)
	assert.InDelta(t, 27.36, record.StatisticalEstimate, 0.01)
	require.NotNil(t, record.LineValue)
	assert.Equal(t, 27.5, *record.LineValue)
	assert.InDelta(t, 27.45, record.BlendedEstimate, 0.01)
	require.NotNil(t, record.Edge)
	assert.InDelta(t, -0.05, *record.Edge, 0.01)
	assert.Equal(t, models.RecommendationPass, record.Recommendation)
	assert.Equal(t, models.ConfidenceHigh, record.Confidence)
	assert.Equal(t, models.LineAvailable, record.LineStatus)
	assert.Equal(t, models.ModelHybrid, record.ModelType)
	assert.Equal(t, "espn", record.LineSource)
	assert.Equal(t, 10, record.GamesUsed)
	assert.Equal(t, scenarioGameDate, record.GeneratedAt)
	assert.Equal(t, "2024", record.Season)
	assert.NotEmpty(t, record.Factors)
}

func TestAssembleScenarioWithoutLine(t *testing.T) {
	obs := observationsFor(scenarioValues, scenarioGameDate)

	record, err := Assemble(scenarioKey, obs, nil, DefaultConfig(), scenarioGameDate)
	require.NoError(t, err)

	assert.Equal(t, record.StatisticalEstimate, record.BlendedEstimate)
	assert.InDelta(t, 27.36, record.BlendedEstimate, 0.01)
	assert.Nil(t, record.LineValue)
	assert.Nil(t, record.Edge)
	assert.Equal(t, models.RecommendationPass, record.Recommendation)
	assert.Equal(t, models.LineUnavailable, record.LineStatus)
	assert.Equal(t, models.ModelStatistical, record.ModelType)
}

func TestAssembleInsufficientData(t *testing.T) {
	record, err := Assemble(scenarioKey, nil, quoteAt(20), DefaultConfig(), scenarioGameDate)

	assert.ErrorIs(t, err, models.ErrInsufficientData)
	assert.Nil(t, record)
}

func TestAssembleOnlyNonQualifyingObservations(t *testing.T) {
	obs := observationsFor([]float64{10, 12}, scenarioGameDate)
	obs[0].Played = false
	obs[1].Minutes = 0

	_, err := Assemble(scenarioKey, obs, nil, DefaultConfig(), scenarioGameDate)
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestAssembleInvalidKey(t *testing.T) {
	obs := observationsFor(scenarioValues, scenarioGameDate)
	key := scenarioKey
	key.StatType = "turnovers"

	_, err := Assemble(key, obs, nil, DefaultConfig(), scenarioGameDate)
	assert.ErrorIs(t, err, models.ErrInvalidStatType)
}

func TestAssembleIdempotent(t *testing.T) {
	obs := observationsFor(scenarioValues, scenarioGameDate)
	cfg := DefaultConfig()

	first, err := Assemble(scenarioKey, obs, quoteAt(25.5), cfg, scenarioGameDate)
	require.NoError(t, err)
	second, err := Assemble(scenarioKey, obs, quoteAt(25.5), cfg, scenarioGameDate)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAssembleOrderIndependent(t *testing.T) {
	obs := observationsFor(scenarioValues, scenarioGameDate)
	shuffled := []models.GameObservation{obs[4], obs[9], obs[0], obs[7], obs[2], obs[1], obs[8], obs[3], obs[6], obs[5]}

	want, err := Assemble(scenarioKey, obs, nil, DefaultConfig(), scenarioGameDate)
	require.NoError(t, err)
	got, err := Assemble(scenarioKey, shuffled, nil, DefaultConfig(), scenarioGameDate)
	require.NoError(t, err)

	assert.Equal(t, want.BaselineEstimate, got.BaselineEstimate)
	assert.Equal(t, want.BlendedEstimate, got.BlendedEstimate)
}

func TestAssembleDropsInvalidObservations(t *testing.T) {
	obs := observationsFor(scenarioValues, scenarioGameDate)
	bad := obs[0]
	bad.GameID = "nan"
	bad.StatValue = math.NaN()
	playoff := obs[1]
	playoff.GameID = "playoff"
	playoff.SeasonType = models.SeasonTypePostseason
	withBad := append([]models.GameObservation{bad, playoff}, obs...)

	clean, err := Assemble(scenarioKey, obs, nil, DefaultConfig(), scenarioGameDate)
	require.NoError(t, err)
	record, err := Assemble(scenarioKey, withBad, nil, DefaultConfig(), scenarioGameDate)
	require.NoError(t, err)

	assert.Equal(t, 2, record.DroppedObservations)
	assert.Equal(t, clean.BaselineEstimate, record.BaselineEstimate)
}

func TestAssembleKeepsNewestSeasonOnly(t *testing.T) {
	obs := observationsFor([]float64{20, 22, 18, 21, 19, 40, 40, 40}, scenarioGameDate)
	for i := 5; i < len(obs); i++ {
		obs[i].Season = "2023"
	}

	record, err := Assemble(scenarioKey, obs, nil, DefaultConfig(), scenarioGameDate)
	require.NoError(t, err)

	assert.Equal(t, 5, record.GamesUsed)
	assert.InDelta(t, 20.0, record.SeasonAverage, 1e-9)
}

func TestAssembleLowSample(t *testing.T) {
	obs := observationsFor([]float64{20, 21, 20}, scenarioGameDate)

	record, err := Assemble(scenarioKey, obs, quoteAt(20.5), DefaultConfig(), scenarioGameDate)
	require.NoError(t, err)

	assert.True(t, record.LowSample)
	assert.Equal(t, models.ConfidenceLow, record.Confidence)
	assert.Equal(t, 3, record.SampleSize)
}

func TestAssembleAlternateLineIgnored(t *testing.T) {
	obs := observationsFor(scenarioValues, scenarioGameDate)
	quote := quoteAt(19.5)
	quote.OverOdds = ptr(-450)
	quote.UnderOdds = ptr(320)

	record, err := Assemble(scenarioKey, obs, quote, DefaultConfig(), scenarioGameDate)
	require.NoError(t, err)

	assert.Equal(t, models.LineAlternate, record.LineStatus)
	assert.Nil(t, record.LineValue)
	assert.Equal(t, models.RecommendationPass, record.Recommendation)
	assert.Equal(t, record.StatisticalEstimate, record.BlendedEstimate)
}

func TestAssembleBlendsMainLineOverLaterAlternate(t *testing.T) {
	obs := observationsFor(scenarioValues, scenarioGameDate)
	cfg := DefaultConfig()

	main := quoteAt(27.5)
	main.CapturedAt = scenarioGameDate.Add(-5 * time.Hour)
	main.OverOdds = ptr(-110)
	main.UnderOdds = ptr(-110)
	alt := quoteAt(19.5)
	alt.OverOdds = ptr(-450)
	alt.UnderOdds = ptr(320)

	quote := models.SelectAuthoritative([]*models.LineQuote{main, alt}, scenarioGameDate, cfg.MainLineMaxOdds)
	record, err := Assemble(scenarioKey, obs, quote, cfg, scenarioGameDate)
	require.NoError(t, err)

	assert.Equal(t, models.LineAvailable, record.LineStatus)
	require.NotNil(t, record.LineValue)
	assert.Equal(t, 27.5, *record.LineValue)
	assert.InDelta(t, 27.5*cfg.VegasWeight+record.StatisticalEstimate*cfg.StatWeight, record.BlendedEstimate, 1e-9)
	assert.InDelta(t, 27.45, record.BlendedEstimate, 0.01)
}

func TestAssembleUsageShiftChangesDecay(t *testing.T) {
	obs := observationsFor(scenarioValues, scenarioGameDate)
	for i := range obs {
		fga := 12.0
		if i < 5 {
			fga = 24
		}
		obs[i].FieldGoalAttempts = ptr(fga)
	}
	cfg := DefaultConfig()

	record, err := Assemble(scenarioKey, obs, nil, cfg, scenarioGameDate)
	require.NoError(t, err)

	require.NotNil(t, record.UsageShift)
	assert.InDelta(t, 1.0/3.0, *record.UsageShift, 1e-9)
	assert.Equal(t, cfg.UsageDecayRate, record.DecayRate)

	cfg.UsageShiftEnabled = false
	record, err = Assemble(scenarioKey, obs, nil, cfg, scenarioGameDate)
	require.NoError(t, err)
	assert.Nil(t, record.UsageShift)
	assert.Equal(t, cfg.DecayRate, record.DecayRate)
}

func TestAssembleMissingAttemptsNoShift(t *testing.T) {
	obs := observationsFor(scenarioValues, scenarioGameDate)
	obs[0].FieldGoalAttempts = ptr(30.0)

	record, err := Assemble(scenarioKey, obs, nil, DefaultConfig(), scenarioGameDate)
	require.NoError(t, err)

	assert.Nil(t, record.UsageShift)
	assert.Equal(t, 0.15, record.DecayRate)
}
