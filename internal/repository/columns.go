package repository

import (
	"fmt"

	"github.com/yourusername/propcast/internal/models"
)

// Box score stat columns are stored as text by the ingestion pipeline
var statColumns = map[models.StatType]string{
	models.StatPoints:   "pb.points",
	models.StatRebounds: "pb.rebounds",
	models.StatAssists:  "pb.assists",
	models.StatSteals:   "pb.steals",
	models.StatBlocks:   "pb.blocks",
}

func statColumn(stat models.StatType) (string, error) {
	col, ok := statColumns[stat]
	if !ok {
		return "", fmt.Errorf("%w: %q", models.ErrInvalidStatType, stat)
	}
	return col, nil
}

// asFloat casts a text or numeric column to double precision, mapping blanks to NULL
func asFloat(col string) string {
	return fmt.Sprintf("CAST(NULLIF(TRIM(CAST(%s AS TEXT)), '') AS DOUBLE PRECISION)", col)
}

// asOdds parses American odds text such as "+120" or "-110"
func asOdds(col string) string {
	return fmt.Sprintf("CAST(NULLIF(REPLACE(TRIM(CAST(%s AS TEXT)), '+', ''), '') AS INTEGER)", col)
}

// qualifyingGame restricts box scores to regular-season games actually played
var qualifyingGame = fmt.Sprintf(`be.event_season_type = %d
		AND CAST(pb."athlete_didNotPlay" AS TEXT) IN ('0', 'false')
		AND %s > 0`, models.SeasonTypeRegularSeason, asFloat("pb.minutes"))
