package models

import (
	"time"
)

// LineQuote represents a bookmaker prop line for one athlete, game and stat
type LineQuote struct {
	AthleteID  string    `db:"athlete_id" json:"athlete_id" validate:"required"`
	GameID     string    `db:"game_id" json:"game_id" validate:"required"`
	StatType   StatType  `db:"stat_type" json:"stat_type" validate:"required"`
	LineValue  float64   `db:"line_value" json:"line_value" validate:"gte=0"`
	Source     string    `db:"source" json:"source"`
	CapturedAt time.Time `db:"captured_at" json:"captured_at" validate:"required"`
	OverOdds   *int      `db:"over_odds" json:"over_odds,omitempty"`
	UnderOdds  *int      `db:"under_odds" json:"under_odds,omitempty"`
}

// HasOdds returns true when both sides of the market are priced
func (q *LineQuote) HasOdds() bool {
	return q.OverOdds != nil && q.UnderOdds != nil
}

// IsMainLine reports whether the quote looks like the main market rather than an
// alternate line. Main lines are priced within +/-maxOdds on both sides; quotes
// without odds are treated as main lines.
func (q *LineQuote) IsMainLine(maxOdds int) bool {
	if !q.HasOdds() {
		return true
	}
	return withinOdds(*q.OverOdds, maxOdds) && withinOdds(*q.UnderOdds, maxOdds)
}

// OddsDistance measures how far the over price sits from a standard -110 market.
// Lower is closer to the main line.
func (q *LineQuote) OddsDistance() int {
	if q.OverOdds == nil {
		return 1 << 30
	}
	d := abs(*q.OverOdds) - 110
	return abs(d)
}

// DefaultMainLineMaxOdds bounds both sides of a main line market
const DefaultMainLineMaxOdds = 200

// SelectAuthoritative picks the quote to consume among candidates for the same
// athlete/game/stat captured strictly before asOf. Main lines win over
// alternates regardless of capture time; within a class the most recent
// capture wins, with ties broken by closeness to a -110 market. An alternate
// is returned only when no main line exists. maxOdds <= 0 uses
// DefaultMainLineMaxOdds.
func SelectAuthoritative(quotes []*LineQuote, asOf time.Time, maxOdds int) *LineQuote {
	if maxOdds <= 0 {
		maxOdds = DefaultMainLineMaxOdds
	}
	var main, alt *LineQuote
	for _, q := range quotes {
		if q == nil || !q.CapturedAt.Before(asOf) {
			continue
		}
		if q.IsMainLine(maxOdds) {
			main = preferQuote(main, q)
		} else {
			alt = preferQuote(alt, q)
		}
	}
	if main != nil {
		return main
	}
	return alt
}

func preferQuote(best, q *LineQuote) *LineQuote {
	switch {
	case best == nil, q.CapturedAt.After(best.CapturedAt):
		return q
	case q.CapturedAt.Equal(best.CapturedAt) && q.OddsDistance() < best.OddsDistance():
		return q
	}
	return best
}

func withinOdds(v, maxOdds int) bool {
	return v >= -maxOdds && v <= maxOdds
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
