package datasource

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yourusername/propcast/internal/models"
)

// PropFeed defines the interface for fetching player prop lines from a bookmaker feed
type PropFeed interface {
	// FetchProps retrieves every player prop posted for a game. A game with no
	// props posted yet returns an empty slice and no error.
	FetchProps(ctx context.Context, gameID string) ([]PropLine, error)

	// Name returns the name of the feed
	Name() string
}

// PropLine is one player prop market with both sides merged
type PropLine struct {
	GameID       string           `json:"game_id"`
	AthleteID    string           `json:"athlete_id"`
	PropType     string           `json:"prop_type"`     // Provider market name (e.g., "Total Points")
	StatType     models.StatType  `json:"stat_type"`     // Empty when the market is not a supported stat
	Line         decimal.Decimal  `json:"line"`          // Exact line as posted
	OverOdds     *int             `json:"over_odds"`     // American odds
	UnderOdds    *int             `json:"under_odds"`    // American odds
	OverDecimal  *decimal.Decimal `json:"over_decimal"`  // Decimal odds if posted
	UnderDecimal *decimal.Decimal `json:"under_decimal"` // Decimal odds if posted
	Provider     string           `json:"provider"`
	LastUpdated  time.Time        `json:"last_updated"`
	FetchedAt    time.Time        `json:"fetched_at"`
}

// Quote converts the prop into an engine quote. The capture time is the
// provider's last update, falling back to the fetch time.
func (p PropLine) Quote() *models.LineQuote {
	captured := p.LastUpdated
	if captured.IsZero() {
		captured = p.FetchedAt
	}
	return &models.LineQuote{
		AthleteID:  p.AthleteID,
		GameID:     p.GameID,
		StatType:   p.StatType,
		LineValue:  p.Line.InexactFloat64(),
		Source:     p.Provider,
		CapturedAt: captured,
		OverOdds:   p.OverOdds,
		UnderOdds:  p.UnderOdds,
	}
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

// Unwrap exposes the underlying error
func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded = "rate_limit_exceeded"
	ErrCodeNotFound          = "not_found"
	ErrCodeInvalidData       = "invalid_data"
	ErrCodeNetworkError      = "network_error"
	ErrCodeServerError       = "server_error"
	ErrCodeCircuitOpen       = "circuit_open"
)

// Sentinel errors
var (
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrInvalidData       = errors.New("invalid data format")
	ErrServerError       = errors.New("server error")
	ErrCircuitOpen       = errors.New("circuit breaker open")
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
