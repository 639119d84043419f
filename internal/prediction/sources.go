package prediction

import (
	"context"
	"time"

	"github.com/yourusername/propcast/internal/models"
)

// GameRecordSource supplies an athlete's game history. Implementations must
// return only games dated strictly before before, at most maxCount of them,
// newest first.
type GameRecordSource interface {
	Fetch(ctx context.Context, athleteID string, stat models.StatType, before time.Time, maxCount int) ([]models.GameObservation, error)
}

// LineSource supplies the authoritative bookmaker quote for a key as of an
// instant. A nil quote with a nil error means no line exists.
type LineSource interface {
	Fetch(ctx context.Context, athleteID, gameID string, stat models.StatType, asOf time.Time) (*models.LineQuote, error)
}

// ScheduleSource resolves a game's date
type ScheduleSource interface {
	GameDate(ctx context.Context, gameID string) (time.Time, error)
}
