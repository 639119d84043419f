// Package config provides configuration management for propcast.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Prediction PredictionConfig `mapstructure:"prediction"`
	Backtest   BacktestConfig   `mapstructure:"backtest" validate:"required"`
	Lines      LinesConfig      `mapstructure:"lines" validate:"required"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
	Secrets    SecretsConfig    `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
	LogFormat   string `mapstructure:"log_format" validate:"omitempty,oneof=json text"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// PredictionConfig overrides engine parameters. Unset fields keep the engine
// defaults.
type PredictionConfig struct {
	DecayRate             *float64 `mapstructure:"decay_rate" validate:"omitempty,gt=0"`
	FormWeight            *float64 `mapstructure:"form_weight" validate:"omitempty,gte=0"`
	VegasWeight           *float64 `mapstructure:"vegas_weight" validate:"omitempty,gte=0,lte=1"`
	StatWeight            *float64 `mapstructure:"stat_weight" validate:"omitempty,gte=0,lte=1"`
	MinGames              *int     `mapstructure:"min_games" validate:"omitempty,gt=0"`
	EdgeThreshold         *float64 `mapstructure:"edge_threshold" validate:"omitempty,gte=0"`
	ModerateEdgeThreshold *float64 `mapstructure:"moderate_edge_threshold" validate:"omitempty,gte=0"`
	WindowSize            *int     `mapstructure:"window_size" validate:"omitempty,gt=0"`
	FormWindow            *int     `mapstructure:"form_window" validate:"omitempty,gt=0"`
	SeasonWindow          *int     `mapstructure:"season_window" validate:"omitempty,gt=0"`
	AgreementRatio        *float64 `mapstructure:"agreement_ratio" validate:"omitempty,gt=0"`
	DisagreementRatio     *float64 `mapstructure:"disagreement_ratio" validate:"omitempty,gt=0"`
	UsageShiftEnabled     *bool    `mapstructure:"usage_shift_enabled"`
	UsageShiftThreshold   *float64 `mapstructure:"usage_shift_threshold" validate:"omitempty,gt=0"`
	UsageDecayRate        *float64 `mapstructure:"usage_decay_rate" validate:"omitempty,gt=0"`
	MainLineMaxOdds       *int     `mapstructure:"main_line_max_odds" validate:"omitempty,gt=100"`
	Workers               int      `mapstructure:"workers" validate:"omitempty,gt=0"`
}

// BacktestConfig represents backtesting configuration
type BacktestConfig struct {
	StartDate       string   `mapstructure:"start_date" validate:"required,datetime"`
	EndDate         string   `mapstructure:"end_date" validate:"required,datetime"`
	StatTypes       []string `mapstructure:"stat_types" validate:"required,min=1,dive,stattype"`
	BatchSize       int      `mapstructure:"batch_size" validate:"required,gt=0"`
	Workers         int      `mapstructure:"workers" validate:"required,gt=0"`
	CheckpointEvery int      `mapstructure:"checkpoint_every" validate:"gte=0"`
	CheckpointPath  string   `mapstructure:"checkpoint_path"`
	OutputPath      string   `mapstructure:"output_path" validate:"required"`
	PersistResults  bool     `mapstructure:"persist_results"`
}

// LinesConfig represents the bookmaker prop feed configuration
type LinesConfig struct {
	Provider          string `mapstructure:"provider" validate:"required,oneof=database espn"`
	BaseURL           string `mapstructure:"base_url" validate:"omitempty,url"`
	ProviderID        int    `mapstructure:"provider_id" validate:"gte=0"`
	RequestsPerSecond int    `mapstructure:"requests_per_second" validate:"required,gt=0"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts     int    `mapstructure:"retry_attempts" validate:"gte=0"`
	CacheTTLSeconds   int    `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
}

// SchedulerConfig represents prediction regeneration scheduling
type SchedulerConfig struct {
	Enabled       bool     `mapstructure:"enabled"`
	Cron          string   `mapstructure:"cron" validate:"required"`
	LookaheadDays int      `mapstructure:"lookahead_days" validate:"required,gt=0"`
	StatTypes     []string `mapstructure:"stat_types" validate:"required,min=1,dive,stattype"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// SecretsConfig points at an optional AWS Secrets Manager overlay
type SecretsConfig struct {
	AWSRegion  string `mapstructure:"aws_region"`
	SecretName string `mapstructure:"secret_name" validate:"required_with=AWSRegion"`
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// DSN returns a PostgreSQL connection URL
func (c DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

// BacktestRange parses the configured backtest window
func (c *Config) BacktestRange() (time.Time, time.Time, error) {
	start, err := time.Parse(time.DateOnly, c.Backtest.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid backtest start_date: %w", err)
	}
	end, err := time.Parse(time.DateOnly, c.Backtest.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid backtest end_date: %w", err)
	}
	return start, end, nil
}

// LineCacheTTL returns the line cache expiry
func (c *Config) LineCacheTTL() time.Duration {
	return time.Duration(c.Lines.CacheTTLSeconds) * time.Second
}

// LineTimeout returns the prop feed request timeout
func (c *Config) LineTimeout() time.Duration {
	return time.Duration(c.Lines.TimeoutSeconds) * time.Second
}
