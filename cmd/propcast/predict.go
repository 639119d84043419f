package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/propcast/internal/metrics"
	"github.com/yourusername/propcast/internal/models"
	"github.com/yourusername/propcast/internal/service"
)

var predictFlags struct {
	athleteID string
	gameID    string
	stats     []string
	roster    bool
	store     bool
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict one athlete, or every athlete in a game",
	Example: `  propcast predict --game 401585601 --athlete 3975 --stat points
  propcast predict --game 401585601 --stat points --stat rebounds --store
  propcast predict --game 401585601 --roster --store`,
	RunE: runPredict,
}

func init() {
	f := predictCmd.Flags()
	f.StringVar(&predictFlags.athleteID, "athlete", "", "Athlete id; omit to predict the whole game")
	f.StringVar(&predictFlags.gameID, "game", "", "Game id")
	f.StringSliceVar(&predictFlags.stats, "stat", nil, "Stat type (repeatable); defaults to all")
	f.BoolVar(&predictFlags.roster, "roster", false, "Predict every athlete with a box score, not just those with lines")
	f.BoolVar(&predictFlags.store, "store", false, "Persist single-athlete predictions")
	_ = predictCmd.MarkFlagRequired("game")
}

func runPredict(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	stats, err := parseStatTypes(predictFlags.stats)
	if err != nil {
		return err
	}

	deps, err := setupDependencies(ctx)
	if err != nil {
		return err
	}
	defer deps.Close()

	engine, err := deps.engine()
	if err != nil {
		return err
	}

	if predictFlags.athleteID == "" {
		svc, err := service.NewPredictionService(engine, deps.repos, cfg.Prediction.Workers, logger)
		if err != nil {
			return err
		}
		var m *service.GenerationMetrics
		if predictFlags.roster {
			m, err = svc.GenerateForRoster(ctx, predictFlags.gameID, stats)
		} else {
			m, err = svc.GenerateForGame(ctx, predictFlags.gameID, stats)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), m.String())
		return nil
	}

	records := make([]*models.PredictionRecord, 0, len(stats))
	for _, stat := range stats {
		record, err := engine.Predict(ctx, predictFlags.athleteID, predictFlags.gameID, stat)
		if err != nil {
			return fmt.Errorf("%s: %w", stat, err)
		}
		records = append(records, record)
	}

	if predictFlags.store {
		if err := deps.repos.Prediction.UpsertBatch(ctx, records); err != nil {
			return fmt.Errorf("failed to store predictions: %w", err)
		}
		for range records {
			metrics.RecordPredictionStored()
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
