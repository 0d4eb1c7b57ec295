// Package client provides single-attempt HTTP retrieval of people pages
// with error classification, optional caching, and metrics.
//
// The client performs exactly one network attempt per call; retry and
// backoff policy live in pkg/controller.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Sternrassler/swapi-client/pkg/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for page fetch operations.
var (
	pageRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swapi_requests_total",
		Help: "Total upstream requests by result status",
	}, []string{"status"})

	pageRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "swapi_request_duration_seconds",
		Help:    "Upstream request duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	})

	pageErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swapi_errors_total",
		Help: "Total fetch errors by class",
	}, []string{"class"})
)

// Client fetches single pages of the people resource.
type Client struct {
	httpClient *http.Client
	cache      *cache.Manager
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the default resource root, fetched when no page token is given.
	BaseURL string

	// UserAgent header sent with every request.
	UserAgent string

	// Timeout per HTTP request.
	Timeout time.Duration

	// Redis client for page caching. nil disables caching.
	Redis *redis.Client

	// CacheTTL is how long successful page bodies stay cached.
	// The upstream sends no usable cache headers, so the TTL is fixed.
	CacheTTL time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:   "https://swapi.dev/api/people/",
		UserAgent: userAgent,
		Timeout:   30 * time.Second,
		CacheTTL:  60 * time.Second,
	}
}

// New creates a new people page client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := log.With().Str("component", "swapi-client").Logger()

	var cacheManager *cache.Manager
	if cfg.Redis != nil {
		cacheManager = cache.NewManager(cfg.Redis)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache:  cacheManager,
		config: cfg,
		logger: logger,
	}, nil
}

// FetchPage retrieves one page of the people resource.
//
// pageURL is used verbatim as the request target; the empty string means
// the configured resource root. A cancelled context is surfaced as the
// context's error, never as an *APIError.
func (c *Client) FetchPage(ctx context.Context, pageURL string) (*Page, error) {
	target := pageURL
	if target == "" {
		target = c.config.BaseURL
	}

	startTime := time.Now()
	defer func() {
		pageRequestDuration.Observe(time.Since(startTime).Seconds())
	}()

	if page, ok := c.fromCache(ctx, target); ok {
		return page, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("page_url", target).
		Msg("Fetching page")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Cancellation is not a failure class; let the caller see it as such.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		c.logger.Error().Err(err).Str("page_url", target).Msg("HTTP request failed")
		pageErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		pageRequestsTotal.WithLabelValues("network_error").Inc()
		return nil, &APIError{
			Class:   ErrorClassNetwork,
			Message: err.Error(),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	pageRequestsTotal.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newStatusError(resp.StatusCode)
		pageErrorsTotal.WithLabelValues(string(apiErr.Class)).Inc()

		c.logger.Warn().
			Str("page_url", target).
			Int("status", resp.StatusCode).
			Str("error_class", string(apiErr.Class)).
			Msg("Page fetch error")

		return nil, apiErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		pageErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &APIError{
			Class:   ErrorClassNetwork,
			Message: fmt.Sprintf("read page body: %v", err),
			Err:     err,
		}
	}

	page, err := decodePage(body)
	if err != nil {
		// A malformed success body carries no status code and is therefore
		// treated like any other transient failure.
		c.logger.Warn().Err(err).Str("page_url", target).Msg("Failed to decode page")
		pageErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &APIError{
			Class:   ErrorClassNetwork,
			Message: fmt.Sprintf("decode page: %v", err),
			Err:     err,
		}
	}

	c.toCache(ctx, target, body)

	c.logger.Debug().
		Str("page_url", target).
		Int("results", len(page.Results)).
		Msg("Page fetched")

	return page, nil
}

// decodePage parses a page body into its expected shape.
func decodePage(body []byte) (*Page, error) {
	var page Page
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// fromCache returns the cached page for target, if caching is enabled and
// a fresh entry exists. Cache failures degrade to a network fetch.
func (c *Client) fromCache(ctx context.Context, target string) (*Page, bool) {
	if c.cache == nil {
		return nil, false
	}

	key := cache.Key{URL: target}
	entry, err := c.cache.Get(ctx, key)
	if err != nil {
		if err != cache.ErrCacheMiss {
			c.logger.Warn().Err(err).Str("page_url", target).Msg("Cache get error")
		}
		return nil, false
	}

	page, err := decodePage(entry.Data)
	if err != nil {
		c.logger.Warn().Err(err).Str("page_url", target).Msg("Corrupt cache entry, dropping")
		_ = c.cache.Delete(ctx, key)
		return nil, false
	}

	c.logger.Debug().Str("page_url", target).Msg("Page served from cache")
	return page, true
}

// toCache stores a successful page body, if caching is enabled.
func (c *Client) toCache(ctx context.Context, target string, body []byte) {
	if c.cache == nil || c.config.CacheTTL <= 0 {
		return
	}

	key := cache.Key{URL: target}
	entry := cache.NewEntry(body, c.config.CacheTTL)
	if err := c.cache.Set(ctx, key, entry); err != nil {
		c.logger.Warn().Err(err).Str("page_url", target).Msg("Failed to cache page")
		return
	}

	c.logger.Debug().
		Str("page_url", target).
		Dur("ttl", c.config.CacheTTL).
		Msg("Cached page")
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
