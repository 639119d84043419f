package backtest

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/propcast/internal/logger"
	"github.com/yourusername/propcast/internal/metrics"
	"github.com/yourusername/propcast/internal/models"
	"github.com/yourusername/propcast/internal/prediction"
)

// CaseSource lists completed games to replay, ordered by (date, game,
// athlete) and strictly after the cursor
type CaseSource interface {
	ListCases(ctx context.Context, stat models.StatType, start, end time.Time, after models.CaseCursor, limit int) ([]models.BacktestCase, error)
}

// Harness replays history through the prediction engine
type Harness struct {
	config      BacktestConfig
	params      prediction.Config
	engine      *prediction.Engine
	cases       CaseSource
	checkpoints CheckpointStore
	logger      *logger.BacktestLogger
}

// NewHarness creates a harness. Every game record the engine sees passes
// through a guard that fails the run if anything on or after the evaluated
// game date leaks in. lines may be nil for a statistics-only replay.
func NewHarness(
	cfg BacktestConfig,
	params prediction.Config,
	cases CaseSource,
	games prediction.GameRecordSource,
	lines prediction.LineSource,
	log *logrus.Logger,
) (*Harness, error) {
	if cases == nil {
		return nil, fmt.Errorf("case source is required")
	}
	if games == nil {
		return nil, fmt.Errorf("game record source is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backtest config: %w", err)
	}
	if log == nil {
		log = logrus.New()
	}

	engine, err := prediction.NewEngine(params, lookaheadGuard{source: games}, lines, nil, log)
	if err != nil {
		return nil, err
	}

	h := &Harness{
		config: cfg,
		params: params,
		engine: engine,
		cases:  cases,
		logger: logger.NewBacktestLogger(log),
	}
	if cfg.CheckpointPath != "" {
		h.checkpoints = NewFileCheckpointStore(cfg.CheckpointPath)
	}
	return h, nil
}

// Config returns the backtest configuration
func (h *Harness) Config() BacktestConfig {
	return h.config
}

// ConfigHash identifies the engine parameters a run was scored with
func (h *Harness) ConfigHash() string {
	return HashParameters(h.params)
}

// lookaheadGuard rejects any observation dated on or after the cutoff
type lookaheadGuard struct {
	source prediction.GameRecordSource
}

func (g lookaheadGuard) Fetch(ctx context.Context, athleteID string, stat models.StatType, before time.Time, maxCount int) ([]models.GameObservation, error) {
	observations, err := g.source.Fetch(ctx, athleteID, stat, before, maxCount)
	if err != nil {
		return nil, err
	}
	if err := CheckLookahead(observations, before); err != nil {
		return nil, err
	}
	return observations, nil
}

// CheckLookahead returns ErrLookahead if any observation is dated on or after
// cutoff
func CheckLookahead(observations []models.GameObservation, cutoff time.Time) error {
	for _, o := range observations {
		if !o.Date.Before(cutoff) {
			return fmt.Errorf("%w: game %s dated %s, evaluating %s",
				models.ErrLookahead, o.GameID, o.Date.Format(time.DateOnly), cutoff.Format(time.DateOnly))
		}
	}
	return nil
}

// evaluate returns a nil result for cases without enough history
func (h *Harness) evaluate(ctx context.Context, c models.BacktestCase) (*models.BacktestResult, error) {
	record, err := h.engine.PredictAt(ctx, prediction.Request{Key: c.Key, GameDate: c.GameDate})
	if err != nil {
		if errors.Is(err, models.ErrInsufficientData) {
			metrics.RecordBacktestCase(string(c.Key.StatType), "skipped")
			return nil, nil
		}
		return nil, err
	}
	result := Score(record, c)
	metrics.RecordBacktestCase(string(c.Key.StatType), "evaluated")
	return &result, nil
}

type outcome struct {
	cursor models.CaseCursor
	result *models.BacktestResult
}

// evaluateBatch scores cases concurrently and returns outcomes in case order
func (h *Harness) evaluateBatch(ctx context.Context, cases []models.BacktestCase) ([]outcome, error) {
	out := make([]outcome, len(cases))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.config.Workers)
	for i, c := range cases {
		g.Go(func() error {
			result, err := h.evaluate(gctx, c)
			if err != nil {
				return fmt.Errorf("case %s: %w", c.Key.ID(), err)
			}
			out[i] = outcome{cursor: models.CursorOf(c), result: result}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Iterator lazily walks the results of a range. It pulls one batch of cases
// at a time and is finite: Next returns false once every stat type is
// exhausted or an error occurs.
type Iterator struct {
	ctx       context.Context
	harness   *Harness
	rng       Range
	statIdx   int
	after     models.CaseCursor
	exhausted bool
	buf       []outcome
	pos       int
	current   *models.BacktestResult
	skipped   int
	done      bool
	err       error
}

// Iterate returns an iterator over rng positioned after from
func (h *Harness) Iterate(ctx context.Context, rng Range, from Cursor) *Iterator {
	it := &Iterator{ctx: ctx, harness: h, rng: rng, after: from.After}
	if err := rng.Validate(); err != nil {
		it.err = err
		return it
	}
	if from.StatType != "" {
		it.statIdx = slices.Index(rng.StatTypes, from.StatType)
		if it.statIdx < 0 {
			it.err = fmt.Errorf("cursor stat type %q is not in the range", from.StatType)
		}
	}
	return it
}

// Next advances to the next evaluated result. Skipped cases are consumed
// silently and counted.
func (it *Iterator) Next() bool {
	if it.err != nil || it.done {
		return false
	}
	for {
		for it.pos < len(it.buf) {
			o := it.buf[it.pos]
			it.pos++
			it.after = o.cursor
			if o.result == nil {
				it.skipped++
				continue
			}
			it.current = o.result
			return true
		}
		it.current = nil

		if err := it.ctx.Err(); err != nil {
			it.err = err
			return false
		}
		if it.exhausted {
			if it.statIdx+1 >= len(it.rng.StatTypes) {
				it.done = true
				return false
			}
			it.statIdx++
			it.after = models.CaseCursor{}
			it.exhausted = false
		}
		if err := it.fill(); err != nil {
			it.err = err
			return false
		}
	}
}

func (it *Iterator) fill() error {
	h := it.harness
	stat := it.rng.StatTypes[it.statIdx]
	cases, err := h.cases.ListCases(it.ctx, stat, it.rng.Start, it.rng.End, it.after, h.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to list %s cases: %w", stat, err)
	}
	if len(cases) < h.config.BatchSize {
		it.exhausted = true
	}
	out, err := h.evaluateBatch(it.ctx, cases)
	if err != nil {
		return err
	}
	it.buf, it.pos = out, 0
	return nil
}

// Result returns the result Next advanced to
func (it *Iterator) Result() *models.BacktestResult {
	return it.current
}

// Err returns the error that stopped iteration, if any
func (it *Iterator) Err() error {
	return it.err
}

// Skipped is the number of cases consumed without a prediction
func (it *Iterator) Skipped() int {
	return it.skipped
}

// Cursor is the position after the last consumed case. Iterating again from
// it resumes without repeating or losing a case.
func (it *Iterator) Cursor() Cursor {
	if len(it.rng.StatTypes) == 0 || it.statIdx < 0 {
		return Cursor{}
	}
	return Cursor{StatType: it.rng.StatTypes[it.statIdx], After: it.after}
}

// Report is the outcome of a completed run
type Report struct {
	RunID       uuid.UUID         `json:"run_id"`
	Range       Range             `json:"range"`
	ConfigHash  string            `json:"config_hash"`
	Parameters  prediction.Config `json:"parameters"`
	Resumed     bool              `json:"resumed"`
	Summary     Summary           `json:"summary"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt time.Time         `json:"completed_at"`
}

// Run replays rng to completion. With a checkpoint store configured it resumes
// a matching interrupted run and checkpoints every CheckpointEvery results;
// the checkpoint is also written when the run fails so it can be retried.
func (h *Harness) Run(ctx context.Context, rng Range) (*Report, error) {
	start := time.Now()
	cp, resumed, err := h.resume(rng)
	if err != nil {
		return nil, err
	}
	runID := cp.RunID.String()
	h.logger.LogRunStarted(runID, rng.Start, rng.End, statNames(rng.StatTypes), resumed)

	agg := cp.State
	it := h.Iterate(ctx, rng, cp.Cursor)
	seenSkipped := 0
	for it.Next() {
		agg.Add(*it.Result())
		for ; seenSkipped < it.Skipped(); seenSkipped++ {
			agg.Skip()
		}
		if h.config.CheckpointEvery > 0 && agg.Count()%h.config.CheckpointEvery == 0 {
			h.logger.LogProgress(runID, agg.Count(), agg.Skipped, agg.Errors.MAE())
			cp.Cursor = it.Cursor()
			if err := h.saveCheckpoint(cp); err != nil {
				return nil, err
			}
		}
	}
	for ; seenSkipped < it.Skipped(); seenSkipped++ {
		agg.Skip()
	}
	cp.Cursor = it.Cursor()

	if err := it.Err(); err != nil {
		status := "error"
		if errors.Is(err, models.ErrLookahead) {
			status = "lookahead"
		}
		metrics.RecordBacktestRun(status, time.Since(start).Seconds())
		if saveErr := h.saveCheckpoint(cp); saveErr != nil {
			h.logger.WithError(saveErr).Warn("Failed to save checkpoint after run error")
		}
		return nil, fmt.Errorf("backtest run %s failed: %w", runID, err)
	}

	summary := agg.Summary()
	if h.checkpoints != nil {
		if err := h.checkpoints.Clear(); err != nil {
			h.logger.WithError(err).Warn("Failed to clear checkpoint")
		}
	}
	metrics.RecordBacktestRun("completed", time.Since(start).Seconds())
	metrics.UpdateBacktestSummary(runID, summary.MAE, summary.BeatLine.Rate)
	h.logger.LogRunCompleted(runID, summary.Count, summary.Skipped, summary.MAE, summary.RMSE, summary.BeatLine.Rate)

	return &Report{
		RunID:       cp.RunID,
		Range:       rng,
		ConfigHash:  cp.ConfigHash,
		Parameters:  h.params,
		Resumed:     resumed,
		Summary:     summary,
		StartedAt:   cp.StartedAt,
		CompletedAt: time.Now().UTC(),
	}, nil
}

// resume loads a checkpoint for the same range and parameters, or starts fresh
func (h *Harness) resume(rng Range) (*Checkpoint, bool, error) {
	hash := h.ConfigHash()
	if h.checkpoints != nil {
		cp, err := h.checkpoints.Load()
		if err != nil {
			return nil, false, err
		}
		if cp != nil && cp.Range.Equal(rng) && cp.ConfigHash == hash {
			return cp, true, nil
		}
	}
	now := time.Now().UTC()
	return &Checkpoint{
		RunID:      uuid.New(),
		Range:      rng,
		ConfigHash: hash,
		State:      NewAggregator(),
		StartedAt:  now,
		UpdatedAt:  now,
	}, false, nil
}

func (h *Harness) saveCheckpoint(cp *Checkpoint) error {
	if h.checkpoints == nil {
		return nil
	}
	cp.UpdatedAt = time.Now().UTC()
	if err := h.checkpoints.Save(cp); err != nil {
		return err
	}
	h.logger.LogCheckpoint(cp.RunID.String(), h.config.CheckpointPath, cp.State.Count())
	return nil
}

func statNames(stats []models.StatType) []string {
	names := make([]string, len(stats))
	for i, st := range stats {
		names[i] = string(st)
	}
	return names
}
