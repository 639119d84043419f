package datasource

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/propcast/internal/config"
	"github.com/yourusername/propcast/internal/models"
	"github.com/yourusername/propcast/internal/prediction"
	"github.com/yourusername/propcast/internal/repository"
)

// ProviderType names where bookmaker lines come from
type ProviderType string

const (
	// DatabaseProvider reads props already stored in player_props
	DatabaseProvider ProviderType = "database"
	// ESPNProvider reads props live from the ESPN odds API
	ESPNProvider ProviderType = "espn"
)

// Factory creates line sources based on configuration
type Factory struct {
	config *config.Config
	logger *logrus.Logger
}

// NewFactory creates a new line source factory
func NewFactory(cfg *config.Config, log *logrus.Logger) *Factory {
	if log == nil {
		log = logrus.New()
	}
	return &Factory{config: cfg, logger: log}
}

// NewLineSource builds the configured line source. Stored lines are cached per
// key; live lines are cached per game.
func (f *Factory) NewLineSource(lines repository.LineRepository) (prediction.LineSource, error) {
	if f.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	ttl := f.config.LineCacheTTL()
	maxOdds := models.DefaultMainLineMaxOdds
	if f.config.Prediction.MainLineMaxOdds != nil {
		maxOdds = *f.config.Prediction.MainLineMaxOdds
	}

	switch ProviderType(f.config.Lines.Provider) {
	case DatabaseProvider:
		if lines == nil {
			return nil, fmt.Errorf("line repository is required for the database provider")
		}
		return NewCachedLineSource(repository.NewStoredLineSource(lines, maxOdds), ttl), nil

	case ESPNProvider:
		if f.config.Lines.BaseURL == "" {
			return nil, fmt.Errorf("lines.base_url is required for the espn provider")
		}
		httpClient := NewRateLimitedHTTPClient(HTTPClientConfigFrom(f.config), f.logger)
		client := NewESPNClient(httpClient, f.config.Lines.BaseURL, f.config.Lines.ProviderID, f.logger)
		f.logger.WithFields(logrus.Fields{
			"provider":    ESPNProvider,
			"provider_id": f.config.Lines.ProviderID,
		}).Info("Using live prop feed")
		return NewFeedLineSource(NewCachedPropFeed(client, ttl), maxOdds), nil

	default:
		return nil, fmt.Errorf("unknown line provider: %s", f.config.Lines.Provider)
	}
}
