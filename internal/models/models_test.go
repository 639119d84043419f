package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func odds(v int) *int { return &v }

func TestParseStatType(t *testing.T) {
	st, err := ParseStatType(" Rebounds ")
	require.NoError(t, err)
	assert.Equal(t, StatRebounds, st)

	_, err = ParseStatType("turnovers")
	assert.ErrorIs(t, err, ErrInvalidStatType)
}

func TestPropNameRoundTrip(t *testing.T) {
	for _, st := range AllStatTypes() {
		got, ok := StatTypeFromPropName(st.PropName())
		require.True(t, ok, st)
		assert.Equal(t, st, got)
	}
	got, ok := StatTypeFromPropName("total assists")
	assert.True(t, ok)
	assert.Equal(t, StatAssists, got)

	_, ok = StatTypeFromPropName("Total Turnovers")
	assert.False(t, ok)
}

func TestIsQualifying(t *testing.T) {
	base := GameObservation{SeasonType: SeasonTypeRegularSeason, Played: true, Minutes: 31, StatValue: 12}
	assert.True(t, base.IsQualifying())

	tests := map[string]func(o *GameObservation){
		"playoffs":     func(o *GameObservation) { o.SeasonType = SeasonTypePostseason },
		"did not play": func(o *GameObservation) { o.Played = false },
		"zero minutes": func(o *GameObservation) { o.Minutes = 0 },
		"nan minutes":  func(o *GameObservation) { o.Minutes = math.NaN() },
		"nan stat":     func(o *GameObservation) { o.StatValue = math.NaN() },
		"negative":     func(o *GameObservation) { o.StatValue = -1 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			o := base
			mutate(&o)
			assert.False(t, o.IsQualifying())
		})
	}
}

func TestIsMainLine(t *testing.T) {
	assert.True(t, (&LineQuote{}).IsMainLine(200))
	assert.True(t, (&LineQuote{OverOdds: odds(-115), UnderOdds: odds(-105)}).IsMainLine(200))
	assert.False(t, (&LineQuote{OverOdds: odds(-350), UnderOdds: odds(+260)}).IsMainLine(200))
}

func TestSelectAuthoritative(t *testing.T) {
	tip := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	early := &LineQuote{LineValue: 20.5, CapturedAt: tip.Add(-6 * time.Hour), OverOdds: odds(-110), UnderOdds: odds(-110)}
	lateMain := &LineQuote{LineValue: 21.5, CapturedAt: tip.Add(-time.Hour), OverOdds: odds(-112), UnderOdds: odds(-108)}
	lateAlt := &LineQuote{LineValue: 24.5, CapturedAt: tip.Add(-time.Hour), OverOdds: odds(+180), UnderOdds: odds(-240)}
	afterTip := &LineQuote{LineValue: 23.5, CapturedAt: tip, OverOdds: odds(-110), UnderOdds: odds(-110)}

	got := SelectAuthoritative([]*LineQuote{early, lateAlt, afterTip, lateMain, nil}, tip, 200)
	assert.Same(t, lateMain, got)

	assert.Nil(t, SelectAuthoritative([]*LineQuote{afterTip}, tip, 200))
	assert.Nil(t, SelectAuthoritative(nil, tip, 200))
}

func TestSelectAuthoritativePrefersOlderMainLine(t *testing.T) {
	tip := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	main := &LineQuote{LineValue: 27.5, CapturedAt: tip.Add(-5 * time.Hour), OverOdds: odds(-110), UnderOdds: odds(-110)}
	alt := &LineQuote{LineValue: 19.5, CapturedAt: tip.Add(-3 * time.Hour), OverOdds: odds(-450), UnderOdds: odds(+320)}

	assert.Same(t, main, SelectAuthoritative([]*LineQuote{alt, main}, tip, 200))
	assert.Same(t, main, SelectAuthoritative([]*LineQuote{main, alt}, tip, 0), "zero falls back to the default bound")

	// with no main line on the board the alternate is still reported
	assert.Same(t, alt, SelectAuthoritative([]*LineQuote{alt}, tip, 200))
}

func TestPredictionKey(t *testing.T) {
	k := PredictionKey{AthleteID: "3975", GameID: "401585601", StatType: StatPoints}
	assert.Equal(t, "401585601_3975_points", k.ID())
	assert.NoError(t, k.Validate())

	assert.ErrorIs(t, PredictionKey{GameID: "g", StatType: StatPoints}.Validate(), ErrInvalidKey)
	assert.ErrorIs(t, PredictionKey{AthleteID: "a", GameID: "g", StatType: "fouls"}.Validate(), ErrInvalidStatType)
}

func TestConfidenceRankAndDirection(t *testing.T) {
	tiers := ConfidenceTiers()
	for i := 1; i < len(tiers); i++ {
		assert.Greater(t, tiers[i-1].Rank(), tiers[i].Rank())
	}
	assert.False(t, RecommendationPass.IsDirectional())
}

func TestCursorOf(t *testing.T) {
	assert.True(t, CaseCursor{}.IsZero())
	c := BacktestCase{Key: PredictionKey{AthleteID: "a", GameID: "g"}, GameDate: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)}
	cur := CursorOf(c)
	assert.False(t, cur.IsZero())
	assert.Equal(t, "g", cur.GameID)
}
