package backtest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yourusername/propcast/internal/models"
)

// GenerateConsoleReport formats a run for terminal output
func GenerateConsoleReport(report *Report) string {
	s := report.Summary
	var builder strings.Builder
	builder.WriteString("Backtest Report\n")
	builder.WriteString("================\n")
	builder.WriteString(fmt.Sprintf("Run: %s\n", report.RunID))
	builder.WriteString(fmt.Sprintf("Range: %s to %s (%s)\n",
		report.Range.Start.Format(time.DateOnly), report.Range.End.Format(time.DateOnly), strings.Join(statNames(report.Range.StatTypes), ", ")))
	builder.WriteString(fmt.Sprintf("Evaluated: %d  Skipped: %d\n", s.Count, s.Skipped))
	builder.WriteString(fmt.Sprintf("MAE: %.3f  RMSE: %.3f\n", s.MAE, s.RMSE))
	for _, w := range s.Within {
		builder.WriteString(fmt.Sprintf("Within %.0f: %.1f%% (%d)\n", w.Threshold, w.Rate*100, w.Count))
	}

	builder.WriteString("\nBy confidence\n")
	builder.WriteString(fmt.Sprintf("%-8s %7s %8s %8s %10s\n", "tier", "count", "mae", "rmse", "beat line"))
	for _, tier := range models.ConfidenceTiers() {
		t := s.ByConfidence[tier]
		builder.WriteString(fmt.Sprintf("%-8s %7d %8.3f %8.3f %10s\n", tier, t.Count, t.MAE, t.RMSE, formatRate(t.BeatLineRate)))
	}

	builder.WriteString("\nAgainst the line\n")
	builder.WriteString(fmt.Sprintf("Calls: %d  Hits: %d  Pushes: %d  Rate: %s\n",
		s.BeatLine.Calls, s.BeatLine.Hits, s.BeatLine.Pushes, formatRate(s.BeatLine.Rate)))
	builder.WriteString(fmt.Sprintf("Line MAE: %.3f  Line RMSE: %.3f  Model closer: %s of %d\n",
		s.LineBaseline.MAE, s.LineBaseline.RMSE, formatRate(s.LineBaseline.BeatLineErrorRate), s.LineBaseline.Count))
	return builder.String()
}

// GenerateCSVExport exports key metrics for spreadsheets
func GenerateCSVExport(report *Report, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	s := report.Summary
	var b strings.Builder
	b.WriteString("metric,value\n")
	b.WriteString(fmt.Sprintf("count,%d\n", s.Count))
	b.WriteString(fmt.Sprintf("skipped,%d\n", s.Skipped))
	b.WriteString(fmt.Sprintf("mae,%.4f\n", s.MAE))
	b.WriteString(fmt.Sprintf("rmse,%.4f\n", s.RMSE))
	for _, w := range s.Within {
		b.WriteString(fmt.Sprintf("within_%.0f,%.4f\n", w.Threshold, w.Rate))
	}
	for _, tier := range models.ConfidenceTiers() {
		t := s.ByConfidence[tier]
		name := strings.ToLower(string(tier))
		b.WriteString(fmt.Sprintf("%s_count,%d\n", name, t.Count))
		b.WriteString(fmt.Sprintf("%s_mae,%.4f\n", name, t.MAE))
	}
	if s.BeatLine.Rate != nil {
		b.WriteString(fmt.Sprintf("beat_line_rate,%.4f\n", *s.BeatLine.Rate))
	}
	b.WriteString(fmt.Sprintf("line_mae,%.4f\n", s.LineBaseline.MAE))
	return os.WriteFile(outputPath, []byte(b.String()), 0o644)
}

func formatRate(r *float64) string {
	if r == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", *r*100)
}
