package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang-forex-pulse/internal/pipeline/config"
	"golang-forex-pulse/internal/pipeline/dto"
	"golang-forex-pulse/pkg/logger"
	"golang-forex-pulse/pkg/metrics"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	endpointCalendar = "calendar"
	endpointNews     = "news"
	endpointFeed     = "feed"
)

// Client fetches raw releases and articles from upstream providers.
// Fetch methods never fail: upstream problems are logged and yield an empty list.
type Client interface {
	FetchCalendar(ctx context.Context) []dto.FinnhubEconomicEvent
	FetchNews(ctx context.Context, category string) []dto.FinnhubNewsArticle
	FetchFeeds(ctx context.Context) []dto.FinnhubNewsArticle
}

type client struct {
	cfg            config.Finnhub
	feeds          []config.Feed
	log            *logger.Logger
	metrics        *metrics.Metrics
	httpClient     *http.Client
	requestLimiter *rate.Limiter
	responseCache  *cache.Cache
}

// NewClient creates a provider client for the Finnhub API and the configured feeds.
func NewClient(cfg *config.Config, log *logger.Logger, m *metrics.Metrics) Client {
	limit := rate.Inf
	if cfg.Finnhub.MaxRequestPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.Finnhub.MaxRequestPerMinute))
	}

	timeout := cfg.Finnhub.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var responseCache *cache.Cache
	if cfg.Finnhub.CacheTTL > 0 {
		responseCache = cache.New(cfg.Finnhub.CacheTTL, 2*cfg.Finnhub.CacheTTL)
	}

	return &client{
		cfg:     cfg.Finnhub,
		feeds:   cfg.News.Feeds,
		log:     log,
		metrics: m,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		requestLimiter: rate.NewLimiter(limit, 1),
		responseCache:  responseCache,
	}
}

func (c *client) FetchCalendar(ctx context.Context) []dto.FinnhubEconomicEvent {
	body, err := c.get(ctx, endpointCalendar, "/calendar/economic", nil)
	if err != nil {
		c.absorb(ctx, endpointCalendar, err)
		return []dto.FinnhubEconomicEvent{}
	}

	var resp dto.FinnhubCalendarResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.absorb(ctx, endpointCalendar, fmt.Errorf("decode calendar: %w", err))
		return []dto.FinnhubEconomicEvent{}
	}

	events := make([]dto.FinnhubEconomicEvent, 0, len(resp.EconomicCalendar))
	malformed := 0
	for i, raw := range resp.EconomicCalendar {
		var event dto.FinnhubEconomicEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			malformed++
			c.log.WarnContext(ctx, "Skipping malformed calendar release",
				logger.IntField("index", i),
				logger.ErrorField(err),
			)
			continue
		}
		events = append(events, event)
	}
	c.metrics.AddEvents("malformed", malformed)

	c.log.DebugContext(ctx, "Fetched economic calendar",
		logger.IntField("events", len(events)),
		logger.IntField("malformed", malformed),
	)
	return events
}

func (c *client) FetchNews(ctx context.Context, category string) []dto.FinnhubNewsArticle {
	body, err := c.get(ctx, endpointNews, "/news", url.Values{"category": []string{category}})
	if err != nil {
		c.absorb(ctx, endpointNews, err, logger.StringField("category", category))
		return []dto.FinnhubNewsArticle{}
	}

	var articles []dto.FinnhubNewsArticle
	if err := json.Unmarshal(body, &articles); err != nil {
		c.absorb(ctx, endpointNews, fmt.Errorf("decode news: %w", err), logger.StringField("category", category))
		return []dto.FinnhubNewsArticle{}
	}
	if articles == nil {
		return []dto.FinnhubNewsArticle{}
	}

	c.log.DebugContext(ctx, "Fetched market news",
		logger.StringField("category", category),
		logger.IntField("articles", len(articles)),
	)
	return articles
}

func (c *client) absorb(ctx context.Context, endpoint string, err error, fields ...zap.Field) {
	c.metrics.ProviderError(endpoint)
	fields = append(fields, logger.StringField("endpoint", endpoint), logger.ErrorField(err))
	c.log.WarnContext(ctx, "Upstream fetch failed, continuing with no data", fields...)
}

// get performs a GET against the Finnhub API, serving from the response cache when enabled.
func (c *client) get(ctx context.Context, endpoint, path string, query url.Values) ([]byte, error) {
	if c.cfg.APIKey == "" {
		return nil, dto.ErrMissingConfiguration
	}

	cacheKey := endpoint + ":" + query.Encode()
	if c.responseCache != nil {
		if cached, ok := c.responseCache.Get(cacheKey); ok {
			return cached.([]byte), nil
		}
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("token", c.cfg.APIKey)
	target := strings.TrimRight(c.cfg.BaseURL, "/") + path + "?" + query.Encode()

	body, err := c.sendWithRetry(ctx, target)
	if err != nil {
		return nil, err
	}

	if c.responseCache != nil {
		c.responseCache.SetDefault(cacheKey, body)
	}
	return body, nil
}

// statusError is a non-2xx upstream response.
type statusError struct {
	StatusCode int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

func (e *statusError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

func (c *client) sendWithRetry(ctx context.Context, target string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * c.cfg.RetryBackoff):
			}
		}

		body, err := c.send(ctx, target)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if se, ok := err.(*statusError); ok && !se.retryable() {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.DebugContext(ctx, "Retrying upstream request",
			logger.IntField("attempt", attempt+1),
			logger.ErrorField(err),
		)
	}
	return nil, lastErr
}

func (c *client) send(ctx context.Context, target string) ([]byte, error) {
	if err := c.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for request limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, redactToken(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &statusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}

// redactToken strips the request URL (which carries the API token) from transport errors.
func redactToken(err error) error {
	if ue, ok := err.(*url.Error); ok {
		return fmt.Errorf("%s request: %w", ue.Op, ue.Err)
	}
	return err
}
