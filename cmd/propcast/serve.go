package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/propcast/internal/health"
	"github.com/yourusername/propcast/internal/metrics"
	"github.com/yourusername/propcast/internal/scheduler"
	"github.com/yourusername/propcast/internal/service"
)

var runOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Regenerate predictions on a schedule and serve health endpoints",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&runOnStart, "run-now", false, "Regenerate immediately before waiting for the schedule")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := setupDependencies(ctx)
	if err != nil {
		return err
	}
	defer deps.Close()

	engine, err := deps.engine()
	if err != nil {
		return err
	}
	svc, err := service.NewPredictionService(engine, deps.repos, cfg.Prediction.Workers, logger)
	if err != nil {
		return err
	}

	sched := scheduler.NewScheduler(svc, logger)
	if err := sched.ScheduleFromConfig(cfg.Scheduler); err != nil {
		return err
	}

	healthCfg := health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Port:        cfg.Metrics.Port,
		Logger:      logger,
		DB:          deps.db,
		Jobs:        sched,
	}
	if cfg.Metrics.Enabled {
		healthCfg.MetricsPath = cfg.Metrics.Path
		healthCfg.MetricsHandler = metrics.Handler()
	}
	server := health.NewServer(healthCfg)
	if err := server.Start(ctx); err != nil {
		return err
	}

	if runOnStart {
		if err := sched.RunNow(ctx); err != nil {
			logger.WithError(err).Warn("Initial regeneration failed")
		}
	}

	if cfg.Scheduler.Enabled {
		if err := sched.Start(); err != nil {
			return err
		}
	}
	server.SetReady(true)
	logger.WithField("environment", cfg.App.Environment).Info("propcast serving")

	<-ctx.Done()
	server.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return sched.Stop(shutdownCtx)
}
