package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/propcast/internal/config"
	"github.com/yourusername/propcast/internal/models"
	"github.com/yourusername/propcast/internal/service"
)

type call struct {
	from, to time.Time
	stats    []models.StatType
}

type fakeRegenerator struct {
	calls []call
	err   error
}

func (f *fakeRegenerator) GenerateUpcoming(_ context.Context, from, to time.Time, stats []models.StatType) (*service.GenerationMetrics, error) {
	f.calls = append(f.calls, call{from: from, to: to, stats: stats})
	if f.err != nil {
		return nil, f.err
	}
	return &service.GenerationMetrics{Requested: 2, Generated: 2, Stored: 2}, nil
}

func newTestScheduler(r Regenerator) *Scheduler {
	log := logrus.New()
	log.SetOutput(io.Discard)
	s := NewScheduler(r, log)
	s.now = func() time.Time { return time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC) }
	return s
}

func TestScheduleRegenerationValidation(t *testing.T) {
	s := newTestScheduler(&fakeRegenerator{})

	_, err := s.ScheduleRegeneration("not a cron", 1, []models.StatType{models.StatPoints})
	assert.Error(t, err)
	_, err = s.ScheduleRegeneration("0 * * * *", 0, []models.StatType{models.StatPoints})
	assert.Error(t, err)
	_, err = s.ScheduleRegeneration("0 * * * *", 1, nil)
	assert.Error(t, err)
	assert.Empty(t, s.Entries())
}

func TestRunNowUsesLookaheadWindow(t *testing.T) {
	r := &fakeRegenerator{}
	s := newTestScheduler(r)
	_, err := s.ScheduleRegeneration("0 */2 * * *", 2, []models.StatType{models.StatPoints, models.StatAssists})
	require.NoError(t, err)

	require.NoError(t, s.RunNow(context.Background()))
	require.Len(t, r.calls, 1)
	assert.Equal(t, time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC), r.calls[0].from)
	assert.Equal(t, time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC), r.calls[0].to)
	assert.Equal(t, []models.StatType{models.StatPoints, models.StatAssists}, r.calls[0].stats)
}

func TestRunNowReturnsRegenerationError(t *testing.T) {
	r := &fakeRegenerator{err: errors.New("db down")}
	s := newTestScheduler(r)
	_, err := s.ScheduleRegeneration("@every 1h", 1, []models.StatType{models.StatPoints})
	require.NoError(t, err)

	assert.EqualError(t, s.RunNow(context.Background()), "db down")
}

func TestScheduleFromConfig(t *testing.T) {
	r := &fakeRegenerator{}
	s := newTestScheduler(r)

	require.NoError(t, s.ScheduleFromConfig(config.SchedulerConfig{Enabled: false, Cron: "bad"}))
	assert.Empty(t, s.Entries())

	err := s.ScheduleFromConfig(config.SchedulerConfig{
		Enabled: true, Cron: "0 * * * *", LookaheadDays: 1, StatTypes: []string{"points", "turnovers"},
	})
	assert.ErrorIs(t, err, models.ErrInvalidStatType)

	require.NoError(t, s.ScheduleFromConfig(config.SchedulerConfig{
		Enabled: true, Cron: "0 * * * *", LookaheadDays: 1, StatTypes: []string{"Points", "blocks"},
	}))
	assert.Len(t, s.Entries(), 1)
}

func TestSchedulerLifecycle(t *testing.T) {
	s := newTestScheduler(&fakeRegenerator{})
	assert.Error(t, s.Start(), "starting without jobs should fail")

	id, err := s.ScheduleRegeneration("@every 1h", 1, []models.StatType{models.StatPoints})
	require.NoError(t, err)
	assert.True(t, s.GetNextRun().IsZero())

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start())
	assert.False(t, s.GetNextRun().IsZero())

	_, err = s.ScheduleRegeneration("@every 1h", 1, []models.StatType{models.StatPoints})
	assert.Error(t, err)
	assert.Error(t, s.RemoveJob(id))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.IsRunning())
	require.NoError(t, s.Stop(ctx))

	require.NoError(t, s.RemoveJob(id))
	assert.Empty(t, s.Entries())
}
