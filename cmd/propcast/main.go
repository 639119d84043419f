// Package main provides the propcast command line interface.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/propcast/internal/backtest"
	"github.com/yourusername/propcast/internal/config"
	"github.com/yourusername/propcast/internal/database"
	"github.com/yourusername/propcast/internal/datasource"
	applog "github.com/yourusername/propcast/internal/logger"
	"github.com/yourusername/propcast/internal/models"
	"github.com/yourusername/propcast/internal/prediction"
	"github.com/yourusername/propcast/internal/repository"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	cfg        *config.Config
	logger     *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:           "propcast",
	Short:         "Player prop projections and backtesting",
	Long:          `Projects athlete box-score stats, blends them with bookmaker lines and replays history to measure accuracy.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logger = applog.NewLogger(cfg.App.LogLevel, cfg.App.LogFormat)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(predictCmd, backtestCmd, serveCmd, versionCmd)
}

var versionCmd = &cobra.Command{
	Use:               "version",
	Short:             "Print build information",
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "propcast %s (%s)\n", Version, GitCommit)
	},
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(ctx context.Context) error {
	loaded, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	if err := config.LoadSecretsFromAWS(ctx, loaded); err != nil {
		return err
	}
	if err := config.Validate(loaded); err != nil {
		return err
	}
	if err := config.ValidateEnvironment(loaded); err != nil {
		return err
	}
	cfg = loaded
	return nil
}

// dependencies is the wiring shared by every command that touches storage
type dependencies struct {
	db     *database.DB
	repos  *repository.Repositories
	params prediction.Config
	lines  prediction.LineSource
}

func setupDependencies(ctx context.Context) (*dependencies, error) {
	params, err := prediction.FromConfig(&cfg.Prediction)
	if err != nil {
		return nil, fmt.Errorf("invalid prediction parameters: %w", err)
	}

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	repos, err := repository.NewRepositories(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	lines, err := datasource.NewFactory(cfg, logger).NewLineSource(repos.Line)
	if err != nil {
		db.Close()
		return nil, err
	}

	logEngineParameters(params)
	return &dependencies{db: db, repos: repos, params: params, lines: lines}, nil
}

func (d *dependencies) engine() (*prediction.Engine, error) {
	return prediction.NewEngine(
		d.params,
		repository.NewGameRecordSource(d.repos.GameLog),
		d.lines,
		repository.NewScheduleSource(d.repos.Schedule),
		logger,
	)
}

func (d *dependencies) Close() {
	d.db.Close()
}

func logEngineParameters(params prediction.Config) {
	var fields map[string]interface{}
	data, err := json.Marshal(params)
	if err == nil {
		err = json.Unmarshal(data, &fields)
	}
	if err != nil {
		logger.WithError(err).Warn("Failed to render engine parameters")
		return
	}
	applog.NewAuditLogger(logger).LogEngineParameters(backtest.HashParameters(params), fields)
}

func parseStatTypes(names []string) ([]models.StatType, error) {
	if len(names) == 0 {
		return models.AllStatTypes(), nil
	}
	stats := make([]models.StatType, 0, len(names))
	for _, name := range names {
		stat, err := models.ParseStatType(name)
		if err != nil {
			return nil, err
		}
		stats = append(stats, stat)
	}
	return stats, nil
}
