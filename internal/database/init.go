package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/yourusername/propcast/internal/config"
)

// RequiredTables are read or written by propcast. They are created by the
// ingestion pipeline, not by this module.
var RequiredTables = []string{
	"player_boxscores",
	"basic_events",
	"player_props",
	"predictions",
	"backtest_runs",
}

// Initialize creates a database connection pool and verifies the expected
// tables exist
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	missing, err := db.missingTables(ctx, RequiredTables)
	if err != nil {
		db.Close()
		return nil, err
	}
	if len(missing) > 0 {
		db.Close()
		return nil, fmt.Errorf("database is missing tables: %s", strings.Join(missing, ", "))
	}

	return db, nil
}

func (db *DB) missingTables(ctx context.Context, tables []string) ([]string, error) {
	var missing []string
	for _, table := range tables {
		var found *string
		if err := db.pool.QueryRow(ctx, "SELECT to_regclass($1)::text", table).Scan(&found); err != nil {
			return nil, fmt.Errorf("failed to check table %s: %w", table, err)
		}
		if found == nil {
			missing = append(missing, table)
		}
	}
	return missing, nil
}
