package prediction

import (
	"fmt"
	"time"

	"github.com/yourusername/propcast/internal/models"
)

var scenarioValues = []float64{27, 31, 29, 26, 24, 28, 30, 25, 22, 20}

var scenarioKey = models.PredictionKey{AthleteID: "3112335", GameID: "401585700", StatType: models.StatPoints}

var scenarioGameDate = time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

// observationsFor builds qualifying games, newest first, one day apart before gameDate
func observationsFor(values []float64, gameDate time.Time) []models.GameObservation {
	obs := make([]models.GameObservation, len(values))
	for i, v := range values {
		obs[i] = models.GameObservation{
			GameID:     fmt.Sprintf("g%03d", len(values)-i),
			AthleteID:  scenarioKey.AthleteID,
			Date:       gameDate.AddDate(0, 0, -(i + 1)),
			Season:     "2024",
			SeasonType: models.SeasonTypeRegularSeason,
			StatValue:  v,
			Minutes:    32,
			Played:     true,
		}
	}
	return obs
}

func quoteAt(line float64) *models.LineQuote {
	return &models.LineQuote{
		AthleteID:  scenarioKey.AthleteID,
		GameID:     scenarioKey.GameID,
		StatType:   scenarioKey.StatType,
		LineValue:  line,
		Source:     "espn",
		CapturedAt: scenarioGameDate.Add(-3 * time.Hour),
	}
}

func ptr[T any](v T) *T {
	return &v
}
