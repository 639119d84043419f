package backtest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yourusername/propcast/internal/models"
	"github.com/yourusername/propcast/internal/repository"
)

// ExportToJSON writes the report to <outputDir>/backtest_<run id>.json and
// returns the file path
func ExportToJSON(report *Report, outputDir string) (string, error) {
	if outputDir == "" {
		return "", fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	path := filepath.Join(outputDir, fmt.Sprintf("backtest_%s.json", report.RunID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// ToRun converts the report into its persisted summary
func (r *Report) ToRun() (*models.BacktestRun, error) {
	summary, err := json.Marshal(r.Summary)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}
	return &models.BacktestRun{
		ID:           r.RunID,
		RunDate:      r.StartedAt,
		StartDate:    r.Range.Start,
		EndDate:      r.Range.End,
		StatTypes:    statNames(r.Range.StatTypes),
		Evaluated:    r.Summary.Count,
		Skipped:      r.Summary.Skipped,
		MAE:          r.Summary.MAE,
		RMSE:         r.Summary.RMSE,
		BeatLineRate: r.Summary.BeatLine.Rate,
		ConfigHash:   r.ConfigHash,
		Summary:      summary,
		CreatedAt:    r.CompletedAt,
	}, nil
}

// ExportToDatabase persists the run summary
func ExportToDatabase(ctx context.Context, report *Report, repo repository.BacktestRunRepository) error {
	if repo == nil {
		return fmt.Errorf("backtest run repository is required")
	}
	run, err := report.ToRun()
	if err != nil {
		return err
	}
	if err := repo.Save(ctx, run); err != nil {
		return fmt.Errorf("failed to save backtest run: %w", err)
	}
	return nil
}
