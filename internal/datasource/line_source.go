package datasource

import (
	"context"
	"fmt"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/propcast/internal/metrics"
	"github.com/yourusername/propcast/internal/models"
	"github.com/yourusername/propcast/internal/prediction"
)

// FeedLineSource serves engine quotes straight from a prop feed
type FeedLineSource struct {
	feed    PropFeed
	maxOdds int
}

// NewFeedLineSource creates a line source over a live feed. maxOdds bounds a
// main line market; zero uses the default.
func NewFeedLineSource(feed PropFeed, maxOdds int) *FeedLineSource {
	return &FeedLineSource{feed: feed, maxOdds: maxOdds}
}

// Fetch returns the authoritative quote for the key captured before asOf
func (s *FeedLineSource) Fetch(ctx context.Context, athleteID, gameID string, stat models.StatType, asOf time.Time) (*models.LineQuote, error) {
	props, err := s.feed.FetchProps(ctx, gameID)
	if err != nil {
		return nil, err
	}
	var quotes []*models.LineQuote
	for _, p := range props {
		if p.AthleteID == athleteID && p.StatType == stat {
			quotes = append(quotes, p.Quote())
		}
	}
	return models.SelectAuthoritative(quotes, asOf, s.maxOdds), nil
}

// CachedLineSource memoises quotes, including the absence of a quote, for a
// bounded time
type CachedLineSource struct {
	source prediction.LineSource
	cache  *cache.Cache
	ttl    time.Duration
}

type cachedQuote struct {
	quote *models.LineQuote
}

// NewCachedLineSource wraps source with a TTL cache
func NewCachedLineSource(source prediction.LineSource, ttl time.Duration) *CachedLineSource {
	return &CachedLineSource{
		source: source,
		cache:  cache.New(ttl, ttl*2),
		ttl:    ttl,
	}
}

// Fetch returns a cached quote or fetches and caches it. Errors are not cached.
func (c *CachedLineSource) Fetch(ctx context.Context, athleteID, gameID string, stat models.StatType, asOf time.Time) (*models.LineQuote, error) {
	key := fmt.Sprintf("%s:%s:%s:%d", gameID, athleteID, stat, asOf.UnixNano())
	if v, found := c.cache.Get(key); found {
		if entry, ok := v.(cachedQuote); ok {
			metrics.RecordLineCacheHit()
			return entry.quote, nil
		}
	}
	metrics.RecordLineCacheMiss()

	quote, err := c.source.Fetch(ctx, athleteID, gameID, stat, asOf)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, cachedQuote{quote: quote}, c.ttl)
	return quote, nil
}

// Flush drops every cached quote
func (c *CachedLineSource) Flush() {
	c.cache.Flush()
}

// ItemCount returns the number of cached entries, expired or not
func (c *CachedLineSource) ItemCount() int {
	return c.cache.ItemCount()
}

// CachedPropFeed memoises a feed's props per game so that every athlete and
// stat of one game shares a single upstream fetch
type CachedPropFeed struct {
	feed  PropFeed
	cache *cache.Cache
	ttl   time.Duration
}

// NewCachedPropFeed wraps feed with a per-game TTL cache
func NewCachedPropFeed(feed PropFeed, ttl time.Duration) *CachedPropFeed {
	return &CachedPropFeed{feed: feed, cache: cache.New(ttl, ttl*2), ttl: ttl}
}

// Name returns the wrapped feed's name
func (c *CachedPropFeed) Name() string {
	return c.feed.Name()
}

// FetchProps returns cached props for the game or fetches them
func (c *CachedPropFeed) FetchProps(ctx context.Context, gameID string) ([]PropLine, error) {
	if v, found := c.cache.Get(gameID); found {
		if props, ok := v.([]PropLine); ok {
			metrics.RecordLineCacheHit()
			return props, nil
		}
	}
	metrics.RecordLineCacheMiss()

	props, err := c.feed.FetchProps(ctx, gameID)
	if err != nil {
		return nil, err
	}
	c.cache.Set(gameID, props, c.ttl)
	return props, nil
}
