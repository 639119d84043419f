package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/propcast/internal/backtest"
	"github.com/yourusername/propcast/internal/repository"
)

var backtestFlags struct {
	startDate string
	endDate   string
	stats     []string
	output    string
	csv       bool
	fresh     bool
}

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay completed games and measure prediction accuracy",
	Long: `Replays every completed game in the configured window, predicting each case
using only information available before tip-off, and reports error and
beat-the-line metrics. Interrupted runs resume from the last checkpoint.`,
	RunE: runBacktest,
}

func init() {
	f := backtestCmd.Flags()
	f.StringVar(&backtestFlags.startDate, "start-date", "", "Override start date (YYYY-MM-DD)")
	f.StringVar(&backtestFlags.endDate, "end-date", "", "Override end date (YYYY-MM-DD)")
	f.StringSliceVar(&backtestFlags.stats, "stat", nil, "Override stat types (repeatable)")
	f.StringVar(&backtestFlags.output, "output", "", "Override output directory")
	f.BoolVar(&backtestFlags.csv, "csv", false, "Also write a CSV summary")
	f.BoolVar(&backtestFlags.fresh, "fresh", false, "Discard any checkpoint and start over")
}

func buildBacktestConfig() (backtest.BacktestConfig, error) {
	btConfig, err := backtest.FromConfig(&cfg.Backtest)
	if err != nil {
		return btConfig, fmt.Errorf("invalid backtest config: %w", err)
	}
	if backtestFlags.startDate != "" {
		if btConfig.StartDate, err = time.Parse(time.DateOnly, backtestFlags.startDate); err != nil {
			return btConfig, fmt.Errorf("invalid start date: %w", err)
		}
	}
	if backtestFlags.endDate != "" {
		if btConfig.EndDate, err = time.Parse(time.DateOnly, backtestFlags.endDate); err != nil {
			return btConfig, fmt.Errorf("invalid end date: %w", err)
		}
	}
	if len(backtestFlags.stats) > 0 {
		if btConfig.StatTypes, err = parseStatTypes(backtestFlags.stats); err != nil {
			return btConfig, err
		}
	}
	if backtestFlags.output != "" {
		btConfig.OutputPath = backtestFlags.output
	}
	return btConfig, btConfig.Validate()
}

func runBacktest(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	btConfig, err := buildBacktestConfig()
	if err != nil {
		return err
	}

	deps, err := setupDependencies(ctx)
	if err != nil {
		return err
	}
	defer deps.Close()

	if backtestFlags.fresh && btConfig.CheckpointPath != "" {
		if err := backtest.NewFileCheckpointStore(btConfig.CheckpointPath).Clear(); err != nil {
			return fmt.Errorf("failed to clear checkpoint: %w", err)
		}
	}

	harness, err := backtest.NewHarness(
		btConfig,
		deps.params,
		deps.repos.BacktestCase,
		repository.NewGameRecordSource(deps.repos.GameLog),
		deps.lines,
		logger,
	)
	if err != nil {
		return err
	}

	report, err := harness.Run(ctx, btConfig.Range())
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), backtest.GenerateConsoleReport(report))

	if btConfig.OutputPath != "" {
		path, err := backtest.ExportToJSON(report, btConfig.OutputPath)
		if err != nil {
			return err
		}
		logger.WithField("path", path).Info("Backtest report written")

		if backtestFlags.csv {
			csvPath := filepath.Join(btConfig.OutputPath, fmt.Sprintf("backtest_%s.csv", report.RunID))
			if err := backtest.GenerateCSVExport(report, csvPath); err != nil {
				return err
			}
		}
	}

	if btConfig.PersistResults {
		if err := backtest.ExportToDatabase(ctx, report, deps.repos.BacktestRun); err != nil {
			return err
		}
	}
	return nil
}
