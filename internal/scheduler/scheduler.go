package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/propcast/internal/config"
	"github.com/yourusername/propcast/internal/metrics"
	"github.com/yourusername/propcast/internal/models"
	"github.com/yourusername/propcast/internal/service"
)

// Regenerator produces predictions for every game in a date window
type Regenerator interface {
	GenerateUpcoming(ctx context.Context, from, to time.Time, statTypes []models.StatType) (*service.GenerationMetrics, error)
}

type regenerationJob struct {
	lookahead time.Duration
	statTypes []models.StatType
}

// Scheduler manages scheduled prediction regeneration jobs
type Scheduler struct {
	cron        *cron.Cron
	regenerator Regenerator
	logger      *logrus.Entry
	mu          sync.RWMutex
	isRunning   bool
	jobIDs      []cron.EntryID
	jobs        map[cron.EntryID]regenerationJob
	jobTimeout  time.Duration
	now         func() time.Time
}

// NewScheduler creates a new scheduler
func NewScheduler(regenerator Regenerator, log *logrus.Logger) *Scheduler {
	if log == nil {
		log = logrus.New()
	}
	return &Scheduler{
		cron:        cron.New(cron.WithLocation(time.UTC)),
		regenerator: regenerator,
		logger:      log.WithField("component", "scheduler"),
		jobIDs:      make([]cron.EntryID, 0),
		jobs:        make(map[cron.EntryID]regenerationJob),
		jobTimeout:  time.Hour,
		now:         time.Now,
	}
}

// ScheduleFromConfig registers the regeneration job described by cfg. A
// disabled config registers nothing.
func (s *Scheduler) ScheduleFromConfig(cfg config.SchedulerConfig) error {
	if !cfg.Enabled {
		return nil
	}
	stats := make([]models.StatType, 0, len(cfg.StatTypes))
	for _, name := range cfg.StatTypes {
		stat, err := models.ParseStatType(name)
		if err != nil {
			return err
		}
		stats = append(stats, stat)
	}
	_, err := s.ScheduleRegeneration(cfg.Cron, cfg.LookaheadDays, stats)
	return err
}

// ScheduleRegeneration regenerates predictions for games in the next
// lookaheadDays days on the given cron schedule
func (s *Scheduler) ScheduleRegeneration(cronExpression string, lookaheadDays int, statTypes []models.StatType) (cron.EntryID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return 0, fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if lookaheadDays <= 0 {
		return 0, fmt.Errorf("lookahead must be at least one day, got %d", lookaheadDays)
	}
	if len(statTypes) == 0 {
		return 0, fmt.Errorf("at least one stat type is required")
	}

	job := regenerationJob{
		lookahead: time.Duration(lookaheadDays) * 24 * time.Hour,
		statTypes: statTypes,
	}
	entryID, err := s.cron.AddFunc(cronExpression, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()
		_ = s.run(ctx, job)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.jobs[entryID] = job
	s.logger.WithFields(logrus.Fields{
		"cron":           cronExpression,
		"lookahead_days": lookaheadDays,
		"entry_id":       entryID,
	}).Info("Scheduled prediction regeneration")

	return entryID, nil
}

// RunNow executes every registered job once, in registration order
func (s *Scheduler) RunNow(ctx context.Context) error {
	s.mu.RLock()
	jobs := make([]regenerationJob, 0, len(s.jobIDs))
	for _, id := range s.jobIDs {
		jobs = append(jobs, s.jobs[id])
	}
	s.mu.RUnlock()

	for _, job := range jobs {
		if err := s.run(ctx, job); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) run(ctx context.Context, job regenerationJob) error {
	from := s.now().UTC()
	to := from.Add(job.lookahead)

	s.logger.WithFields(logrus.Fields{
		"from": from.Format(time.DateOnly),
		"to":   to.Format(time.DateOnly),
	}).Info("Starting scheduled regeneration")

	m, err := s.regenerator.GenerateUpcoming(ctx, from, to, job.statTypes)
	if err != nil {
		metrics.RecordSchedulerRun("error")
		s.logger.WithError(err).Error("Scheduled regeneration failed")
		return err
	}
	metrics.RecordSchedulerRun("success")
	s.logger.Info(m.String())
	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.Infof("Scheduler started with %d jobs", len(s.jobIDs))
	return nil
}

// Stop waits for running jobs to finish, or ctx to expire
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.isRunning = false
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler did not stop cleanly: %w", ctx.Err())
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return time.Time{}
	}

	var next time.Time
	for _, id := range s.jobIDs {
		entry := s.cron.Entry(id)
		if entry.Valid() && (next.IsZero() || entry.Next.Before(next)) {
			next = entry.Next
		}
	}
	return next
}

// Entries returns the registered cron entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, id := range s.jobIDs {
		if entry := s.cron.Entry(id); entry.Valid() {
			entries = append(entries, entry)
		}
	}
	return entries
}

// RemoveJob removes a scheduled job
func (s *Scheduler) RemoveJob(jobID cron.EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot remove job while scheduler is running")
	}

	s.cron.Remove(jobID)
	delete(s.jobs, jobID)
	for i, id := range s.jobIDs {
		if id == jobID {
			s.jobIDs = append(s.jobIDs[:i], s.jobIDs[i+1:]...)
			break
		}
	}
	s.logger.WithField("entry_id", jobID).Info("Removed job")
	return nil
}
