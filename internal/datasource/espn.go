package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/propcast/internal/models"
)

const (
	espnSourceName = "espn"
	espnPageLimit  = 1000
	// DefaultESPNProviderID is ESPN BET
	DefaultESPNProviderID = 58
	espnProviderName      = "ESPN BET"
)

// ESPNClient reads player props from the ESPN core odds API
type ESPNClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	providerID int
	now        func() time.Time
	logger     *logrus.Entry
}

type espnPropPage struct {
	Count     int            `json:"count"`
	PageIndex int            `json:"pageIndex"`
	PageCount int            `json:"pageCount"`
	Items     []espnPropItem `json:"items"`
}

type espnRef struct {
	Ref string `json:"$ref"`
}

type espnPropItem struct {
	Athlete espnRef `json:"athlete"`
	Type    struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"type"`
	Current struct {
		Target struct {
			Value        *float64 `json:"value"`
			DisplayValue string   `json:"displayValue"`
		} `json:"target"`
		Over  *espnPrice `json:"over"`
		Under *espnPrice `json:"under"`
	} `json:"current"`
	LastUpdated string `json:"lastUpdated"`
}

type espnPrice struct {
	Value                 *float64 `json:"value"`
	Decimal               *float64 `json:"decimal"`
	AlternateDisplayValue string   `json:"alternateDisplayValue"`
}

// NewESPNClient creates a new ESPN prop feed client
func NewESPNClient(httpClient *RateLimitedHTTPClient, baseURL string, providerID int, log *logrus.Logger) *ESPNClient {
	if providerID == 0 {
		providerID = DefaultESPNProviderID
	}
	if log == nil {
		log = logrus.New()
	}
	return &ESPNClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		providerID: providerID,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     log.WithField("component", "espn_props"),
	}
}

// Name returns the data source name
func (c *ESPNClient) Name() string {
	return espnSourceName
}

// FetchProps pages through every prop posted for the game and merges the
// separate over and under items of each market
func (c *ESPNClient) FetchProps(ctx context.Context, gameID string) ([]PropLine, error) {
	fetchedAt := c.now()
	merged := newPropMerger(gameID, fetchedAt)

	pageCount := 1
	for page := 1; page <= pageCount; page++ {
		body, err := c.fetchPage(ctx, gameID, page)
		if err != nil {
			return nil, err
		}
		if body == nil {
			// a game with no market at all 404s on the first page
			if page == 1 {
				return []PropLine{}, nil
			}
			break
		}
		if page == 1 && body.PageCount > 1 {
			pageCount = body.PageCount
			c.logger.WithFields(logrus.Fields{
				"game_id": gameID,
				"count":   body.Count,
				"pages":   body.PageCount,
			}).Debug("Paginated prop response")
		}
		if len(body.Items) == 0 {
			break
		}
		for _, item := range body.Items {
			if err := merged.add(item); err != nil {
				c.logger.WithError(err).WithField("game_id", gameID).Debug("Skipping malformed prop")
			}
		}
	}
	return merged.lines(), nil
}

// fetchPage returns nil when the game has no props
func (c *ESPNClient) fetchPage(ctx context.Context, gameID string, page int) (*espnPropPage, error) {
	url := fmt.Sprintf("%s/events/%s/competitions/%s/odds/%d/propBets?lang=en&region=us&limit=%d&page=%d",
		c.baseURL, gameID, gameID, c.providerID, espnPageLimit, page)

	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return nil, NewDataSourceError(espnSourceName, ErrCodeNetworkError, "failed to fetch props", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewDataSourceError(espnSourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", ErrRateLimitExceeded)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, NewDataSourceError(espnSourceName, ErrCodeServerError,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), ErrServerError)
	}

	var body espnPropPage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, NewDataSourceError(espnSourceName, ErrCodeInvalidData, "failed to parse response", err)
	}
	return &body, nil
}

// propMerger combines items that share (athlete, market, line)
type propMerger struct {
	gameID    string
	fetchedAt time.Time
	order     []string
	byKey     map[string]*PropLine
}

func newPropMerger(gameID string, fetchedAt time.Time) *propMerger {
	return &propMerger{gameID: gameID, fetchedAt: fetchedAt, byKey: make(map[string]*PropLine)}
}

func (m *propMerger) add(item espnPropItem) error {
	athleteID := refID(item.Athlete.Ref)
	if athleteID == "" {
		return fmt.Errorf("%w: prop without athlete", ErrInvalidData)
	}
	display := strings.TrimSpace(item.Current.Target.DisplayValue)
	if display == "" {
		return fmt.Errorf("%w: prop without line for athlete %s", ErrInvalidData, athleteID)
	}
	line, err := decimal.NewFromString(display)
	if err != nil {
		return fmt.Errorf("%w: line %q: %v", ErrInvalidData, display, err)
	}

	key := athleteID + "|" + item.Type.Name + "|" + line.String()
	prop, ok := m.byKey[key]
	if !ok {
		stat, _ := models.StatTypeFromPropName(item.Type.Name)
		prop = &PropLine{
			GameID:    m.gameID,
			AthleteID: athleteID,
			PropType:  item.Type.Name,
			StatType:  stat,
			Line:      line,
			Provider:  espnProviderName,
			FetchedAt: m.fetchedAt,
		}
		if ts, err := time.Parse(time.RFC3339, item.LastUpdated); err == nil {
			prop.LastUpdated = ts.UTC()
		} else if ts, err := time.Parse("2006-01-02T15:04Z", item.LastUpdated); err == nil {
			prop.LastUpdated = ts.UTC()
		}
		m.byKey[key] = prop
		m.order = append(m.order, key)
	}

	if item.Current.Over != nil && prop.OverOdds == nil {
		prop.OverOdds, prop.OverDecimal = item.Current.Over.parse()
	}
	if item.Current.Under != nil && prop.UnderOdds == nil {
		prop.UnderOdds, prop.UnderDecimal = item.Current.Under.parse()
	}
	return nil
}

func (m *propMerger) lines() []PropLine {
	out := make([]PropLine, 0, len(m.order))
	for _, k := range m.order {
		out = append(out, *m.byKey[k])
	}
	return out
}

func (p *espnPrice) parse() (*int, *decimal.Decimal) {
	var dec *decimal.Decimal
	if p.Decimal != nil {
		d := decimal.NewFromFloat(*p.Decimal)
		dec = &d
	}
	odds, err := ParseAmericanOdds(p.AlternateDisplayValue)
	if err != nil {
		return nil, dec
	}
	return odds, dec
}

// ParseAmericanOdds parses a moneyline string such as "+120", "-110" or
// "EVEN". Empty input yields nil.
func ParseAmericanOdds(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if strings.EqualFold(s, "even") || strings.EqualFold(s, "ev") {
		v := 100
		return &v, nil
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(s, "+"))
	if err != nil {
		return nil, fmt.Errorf("%w: odds %q", ErrInvalidData, s)
	}
	if !d.IsInteger() {
		return nil, fmt.Errorf("%w: fractional american odds %q", ErrInvalidData, s)
	}
	v := int(d.IntPart())
	if v > -100 && v < 100 {
		return nil, fmt.Errorf("%w: american odds out of range %q", ErrInvalidData, s)
	}
	return &v, nil
}

// refID extracts the trailing id of an API reference URL
func refID(ref string) string {
	if i := strings.IndexByte(ref, '?'); i >= 0 {
		ref = ref[:i]
	}
	ref = strings.TrimRight(ref, "/")
	if i := strings.LastIndexByte(ref, '/'); i >= 0 {
		return ref[i+1:]
	}
	return ref
}
