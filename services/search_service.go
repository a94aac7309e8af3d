package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sethvargo/go-retry"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/itish2003/searchdoc/config"
	"github.com/itish2003/searchdoc/metrics"
	"github.com/itish2003/searchdoc/models"
)

var (
	// ErrEmptyQuery is returned when the search query is blank.
	ErrEmptyQuery = errors.New("search query is required")
	// ErrSearchUnauthorized indicates a 401/403 from the search provider.
	ErrSearchUnauthorized = errors.New("search: unauthorized (check SERPAPI_KEY)")
)

// SearchAPIError is a non-success response from the search provider.
type SearchAPIError struct {
	StatusCode int
	Message    string
}

func (e *SearchAPIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("search: provider returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("search: provider returned status %d: %s", e.StatusCode, e.Message)
}

// SearchService returns the organic hits for a query, in ranking order.
type SearchService interface {
	Search(ctx context.Context, query string) ([]models.SearchHit, error)
}

type serpResponse struct {
	OrganicResults []models.SearchHit `json:"organic_results"`
}

// SerpAPIClient queries SerpAPI's /search endpoint.
type SerpAPIClient struct {
	http       *resty.Client
	apiKey     string
	engine     string
	maxRetries uint64
	baseDelay  time.Duration
	cache      *expirable.LRU[string, []models.SearchHit]
	log        *zap.Logger
}

// SearchOption customises a SerpAPIClient.
type SearchOption func(*SerpAPIClient)

// WithSearchHTTPClient swaps the underlying transport (useful for testing).
func WithSearchHTTPClient(h *http.Client) SearchOption {
	return func(c *SerpAPIClient) {
		c.http = resty.NewWithClient(h).
			SetBaseURL(c.http.BaseURL).
			SetHeader("Accept", "application/json")
	}
}

// WithRetryBaseDelay sets the first backoff interval; later ones double.
func WithRetryBaseDelay(d time.Duration) SearchOption {
	return func(c *SerpAPIClient) { c.baseDelay = d }
}

// NewSerpAPIClient creates a new SerpAPI search client. A zero CacheSize
// disables result caching.
func NewSerpAPIClient(cfg config.SearchConfig, log *zap.Logger, opts ...SearchOption) *SerpAPIClient {
	c := &SerpAPIClient{
		http: resty.New().
			SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
			SetTimeout(cfg.Timeout).
			SetHeader("Accept", "application/json"),
		apiKey:     cfg.APIKey,
		engine:     cfg.Engine,
		maxRetries: cfg.MaxRetries,
		baseDelay:  250 * time.Millisecond,
		log:        log,
	}
	if cfg.CacheSize > 0 {
		c.cache = expirable.NewLRU[string, []models.SearchHit](cfg.CacheSize, nil, cfg.CacheTTL)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search runs the query with retries on transport errors, 429 and 5xx.
// Successful results are cached per engine and query; callers always get
// their own copy of the hits.
func (c *SerpAPIClient) Search(ctx context.Context, query string) ([]models.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	key := c.engine + "\x00" + query
	if c.cache != nil {
		if hits, ok := c.cache.Get(key); ok {
			c.log.Debug("search cache hit", zap.String("query", query))
			metrics.SearchCacheHits.Inc()
			return slices.Clone(hits), nil
		}
	}

	c.log.Info("sending request to search provider", zap.String("query", query), zap.String("engine", c.engine))

	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.baseDelay))
	attempt := 0
	hits, err := retry.DoValue(ctx, backoff, func(ctx context.Context) ([]models.SearchHit, error) {
		attempt++
		hits, err := c.fetch(ctx, query)
		var apiErr *SearchAPIError
		if errors.As(err, &apiErr) && isTransientStatus(apiErr.StatusCode) {
			c.log.Warn("search provider busy, retrying", zap.Int("attempt", attempt), zap.Error(err))
			return nil, retry.RetryableError(err)
		}
		return hits, err
	})
	if err != nil {
		metrics.RecordSearch("error", 0)
		c.log.Error("search failed", zap.String("query", query), zap.Int("attempts", attempt), zap.Error(err))
		return nil, err
	}

	metrics.RecordSearch("success", len(hits))
	c.log.Info("search request successful", zap.String("query", query), zap.Int("hits", len(hits)))
	if c.cache != nil && len(hits) > 0 {
		c.cache.Add(key, slices.Clone(hits))
	}
	return hits, nil
}

func (c *SerpAPIClient) fetch(ctx context.Context, query string) ([]models.SearchHit, error) {
	var out serpResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"engine":  c.engine,
			"q":       query,
			"api_key": c.apiKey,
		}).
		SetResult(&out).
		Get("/search")
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, retry.RetryableError(fmt.Errorf("search: request failed: %w", err))
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return nil, ErrSearchUnauthorized
	case resp.IsError() || code < 200 || code >= 300:
		return nil, &SearchAPIError{StatusCode: code, Message: gjson.GetBytes(resp.Body(), "error").String()}
	}

	if out.OrganicResults == nil {
		return []models.SearchHit{}, nil
	}
	return out.OrganicResults, nil
}

func isTransientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}
