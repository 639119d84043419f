package backtest

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/propcast/internal/models"
)

func ptr[T any](v T) *T { return &v }

func lined(rec models.Recommendation, conf models.Confidence, predicted, line, actual float64) models.BacktestResult {
	record := &models.PredictionRecord{
		BlendedEstimate: predicted,
		Confidence:      conf,
		Recommendation:  rec,
		LineValue:       ptr(line),
	}
	return Score(record, models.BacktestCase{Actual: actual})
}

func TestScore(t *testing.T) {
	t.Run("over hit", func(t *testing.T) {
		r := lined(models.RecommendationOver, models.ConfidenceHigh, 27, 25.5, 30)
		assert.InDelta(t, 3.0, r.AbsoluteError, 1e-9)
		require.NotNil(t, r.LineError)
		assert.InDelta(t, 4.5, *r.LineError, 1e-9)
		require.NotNil(t, r.BeatLine)
		assert.True(t, *r.BeatLine)
	})

	t.Run("under miss", func(t *testing.T) {
		r := lined(models.RecommendationUnder, models.ConfidenceMedium, 20, 22.5, 24)
		require.NotNil(t, r.BeatLine)
		assert.False(t, *r.BeatLine)
	})

	t.Run("push is null", func(t *testing.T) {
		r := lined(models.RecommendationOver, models.ConfidenceHigh, 27, 25, 25)
		assert.Nil(t, r.BeatLine)
		assert.True(t, IsPush(r))
	})

	t.Run("pass is null", func(t *testing.T) {
		r := lined(models.RecommendationPass, models.ConfidenceHigh, 25.2, 25.5, 30)
		assert.Nil(t, r.BeatLine)
		assert.False(t, IsPush(r))
	})

	t.Run("no line", func(t *testing.T) {
		r := Score(&models.PredictionRecord{BlendedEstimate: 10, Recommendation: models.RecommendationPass}, models.BacktestCase{Actual: 12})
		assert.Nil(t, r.LineValue)
		assert.Nil(t, r.LineError)
		assert.Nil(t, r.BeatLine)
		assert.InDelta(t, 2.0, r.AbsoluteError, 1e-9)
	})
}

func TestAggregatorSummary(t *testing.T) {
	agg := NewAggregator()
	agg.Add(lined(models.RecommendationOver, models.ConfidenceHigh, 27, 25.5, 30))  // err 3, hit
	agg.Add(lined(models.RecommendationUnder, models.ConfidenceHigh, 20, 22.5, 24)) // err 4, miss
	agg.Add(lined(models.RecommendationOver, models.ConfidenceMedium, 27, 25, 25))  // err 2, push
	agg.Add(lined(models.RecommendationPass, models.ConfidenceLow, 18, 18.5, 26))   // err 8, pass
	agg.Skip()

	s := agg.Summary()
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 1, s.Skipped)
	assert.InDelta(t, 17.0/4, s.MAE, 1e-9)
	assert.InDelta(t, 4.8218, s.RMSE, 1e-4)

	require.Len(t, s.Within, 3)
	assert.Equal(t, 2, s.Within[0].Count)
	assert.Equal(t, 3, s.Within[1].Count)
	assert.Equal(t, 3, s.Within[2].Count)
	assert.InDelta(t, 0.75, s.Within[2].Rate, 1e-9)

	assert.Equal(t, 3, s.BeatLine.Calls)
	assert.Equal(t, 1, s.BeatLine.Hits)
	assert.Equal(t, 1, s.BeatLine.Pushes)
	require.NotNil(t, s.BeatLine.Rate)
	assert.InDelta(t, 0.5, *s.BeatLine.Rate, 1e-9)

	high := s.ByConfidence[models.ConfidenceHigh]
	assert.Equal(t, 2, high.Count)
	assert.InDelta(t, 3.5, high.MAE, 1e-9)
	medium := s.ByConfidence[models.ConfidenceMedium]
	assert.Nil(t, medium.BeatLineRate)
	assert.Equal(t, 1, s.ByConfidence[models.ConfidenceLow].Count)

	assert.Equal(t, 4, s.LineBaseline.Count)
	assert.InDelta(t, (4.5+1.5+0+7.5)/4, s.LineBaseline.MAE, 1e-9)
	require.NotNil(t, s.LineBaseline.BeatLineErrorRate)
	assert.InDelta(t, 0.25, *s.LineBaseline.BeatLineErrorRate, 1e-9)
}

func TestAggregatorEmpty(t *testing.T) {
	s := NewAggregator().Summary()
	assert.Zero(t, s.Count)
	assert.Zero(t, s.MAE)
	assert.Zero(t, s.RMSE)
	assert.Nil(t, s.BeatLine.Rate)
	assert.Nil(t, s.LineBaseline.BeatLineErrorRate)
	assert.Len(t, s.ByConfidence, 3)
}

func TestAggregatorStateSurvivesJSON(t *testing.T) {
	agg := NewAggregator()
	agg.Add(lined(models.RecommendationOver, models.ConfidenceHigh, 27, 25.5, 30))
	agg.Skip()

	data, err := json.Marshal(agg)
	require.NoError(t, err)
	var restored Aggregator
	require.NoError(t, json.Unmarshal(data, &restored))

	restored.Add(lined(models.RecommendationUnder, models.ConfidenceHigh, 20, 22.5, 24))
	agg.Add(lined(models.RecommendationUnder, models.ConfidenceHigh, 20, 22.5, 24))
	assert.Equal(t, agg.Summary(), restored.Summary())
}

func TestFileCheckpointStore(t *testing.T) {
	store := NewFileCheckpointStore(filepath.Join(t.TempDir(), "nested", "cp.json"))

	cp, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, cp)

	agg := NewAggregator()
	agg.Add(lined(models.RecommendationOver, models.ConfidenceHigh, 27, 25.5, 30))
	saved := &Checkpoint{
		RunID:  uuid.New(),
		Range:  Range{Start: day(1), End: day(5), StatTypes: []models.StatType{models.StatPoints}},
		Cursor: Cursor{StatType: models.StatPoints, After: models.CaseCursor{GameDate: day(3), GameID: "g03", AthleteID: "a1"}},
		State:  agg,
	}
	require.NoError(t, store.Save(saved))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, saved.RunID, loaded.RunID)
	assert.True(t, saved.Range.Equal(loaded.Range))
	assert.Equal(t, "g03", loaded.Cursor.After.GameID)
	assert.Equal(t, 1, loaded.State.Count())

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
}

func TestHashParametersIsStable(t *testing.T) {
	a := HashParameters(map[string]any{"decay": 0.1, "weight": 0.65})
	b := HashParameters(map[string]any{"weight": 0.65, "decay": 0.1})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, HashParameters(map[string]any{"decay": 0.2, "weight": 0.65}))
}

type fakeRunRepo struct {
	saved []*models.BacktestRun
}

func (f *fakeRunRepo) Save(_ context.Context, run *models.BacktestRun) error {
	f.saved = append(f.saved, run)
	return nil
}

func (f *fakeRunRepo) GetLatest(_ context.Context, _ int) ([]*models.BacktestRun, error) {
	return f.saved, nil
}

func sampleReport() *Report {
	agg := NewAggregator()
	agg.Add(lined(models.RecommendationOver, models.ConfidenceHigh, 27, 25.5, 30))
	agg.Add(lined(models.RecommendationPass, models.ConfidenceLow, 18, 18.5, 26))
	return &Report{
		RunID:       uuid.New(),
		Range:       Range{Start: day(1), End: day(31), StatTypes: []models.StatType{models.StatPoints}},
		ConfigHash:  "abc",
		Summary:     agg.Summary(),
		StartedAt:   day(40),
		CompletedAt: day(40).Add(time.Minute),
	}
}

func TestReportOutputs(t *testing.T) {
	report := sampleReport()

	console := GenerateConsoleReport(report)
	assert.Contains(t, console, "MAE: 5.500")
	assert.Contains(t, console, "Within 3")
	assert.Contains(t, console, "High")
	assert.Contains(t, console, "Pushes: 0")

	dir := t.TempDir()
	path, err := ExportToJSON(report, dir)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, report.RunID, decoded.RunID)
	assert.Equal(t, 2, decoded.Summary.Count)

	csvPath := filepath.Join(dir, "summary.csv")
	require.NoError(t, GenerateCSVExport(report, csvPath))
	csv, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(csv), "metric,value\n"))
	assert.Contains(t, string(csv), "beat_line_rate,1.0000")

	repo := &fakeRunRepo{}
	require.NoError(t, ExportToDatabase(context.Background(), report, repo))
	require.Len(t, repo.saved, 1)
	run := repo.saved[0]
	assert.Equal(t, report.RunID, run.ID)
	assert.Equal(t, 2, run.Evaluated)
	assert.Equal(t, []string{"points"}, run.StatTypes)
	assert.JSONEq(t, mustJSON(t, report.Summary), string(run.Summary))

	assert.Error(t, ExportToDatabase(context.Background(), report, nil))
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}
