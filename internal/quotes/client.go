// Package quotes looks up market prices from the quote provider, with a
// short-TTL Redis cache in front and a circuit breaker around the upstream.
package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"github.com/trogers1052/finance-tracker-system/internal/models"
)

// fetchBatchSize bounds concurrent upstream lookups per evaluation cycle.
const fetchBatchSize = 10

// Config holds quote client configuration
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	CacheTTL       time.Duration
}

// Client fetches quotes with per-symbol failure isolation: a symbol that
// cannot be resolved is omitted from the result, never failing the set.
type Client struct {
	baseURL  string
	http     *http.Client
	cache    redis.Cmdable
	cacheTTL time.Duration
	breaker  *gobreaker.CircuitBreaker
	logger   zerolog.Logger
}

// NewClient creates a quote client. cache may be nil to disable caching.
func NewClient(cfg Config, cache redis.Cmdable, logger zerolog.Logger) *Client {
	settings := gobreaker.Settings{
		Name:     "quote-provider",
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}

	return &Client{
		baseURL:  cfg.BaseURL,
		http:     &http.Client{Timeout: timeout},
		cache:    cache,
		cacheTTL: ttl,
		breaker:  gobreaker.NewCircuitBreaker(settings),
		logger:   logger,
	}
}

// GetQuotes resolves prices for the given symbols. Lookups fan out in
// batches of ten; each symbol succeeds or fails independently and failures
// degrade to "no quote" for that symbol only.
func (c *Client) GetQuotes(ctx context.Context, symbols []string) (map[string]models.Quote, error) {
	quotes := make(map[string]models.Quote, len(symbols))
	var mu sync.Mutex

	for start := 0; start < len(symbols); start += fetchBatchSize {
		end := start + fetchBatchSize
		if end > len(symbols) {
			end = len(symbols)
		}

		var wg sync.WaitGroup
		for _, symbol := range symbols[start:end] {
			wg.Add(1)
			go func(symbol string) {
				defer wg.Done()
				quote, err := c.getQuote(ctx, symbol)
				if err != nil {
					c.logger.Warn().Err(err).Str("symbol", symbol).Msg("quote lookup failed")
					return
				}
				mu.Lock()
				quotes[symbol] = quote
				mu.Unlock()
			}(symbol)
		}
		wg.Wait()

		if ctx.Err() != nil {
			return quotes, ctx.Err()
		}
	}

	return quotes, nil
}

func (c *Client) getQuote(ctx context.Context, symbol string) (models.Quote, error) {
	if quote, ok := c.cached(ctx, symbol); ok {
		return quote, nil
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, symbol)
	})
	if err != nil {
		return models.Quote{}, err
	}
	quote := result.(models.Quote)

	c.store(ctx, quote)
	return quote, nil
}

func (c *Client) fetch(ctx context.Context, symbol string) (models.Quote, error) {
	endpoint := fmt.Sprintf("%s/quote?symbol=%s", c.baseURL, url.QueryEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.Quote{}, fmt.Errorf("failed to build quote request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return models.Quote{}, fmt.Errorf("quote request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Quote{}, fmt.Errorf("quote provider returned status %d for %s", resp.StatusCode, symbol)
	}

	var body struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.Quote{}, fmt.Errorf("failed to decode quote response: %w", err)
	}

	return models.Quote{Symbol: symbol, Price: body.Price, FetchedAt: time.Now()}, nil
}

func cacheKey(symbol string) string {
	return "quote:" + symbol
}

func (c *Client) cached(ctx context.Context, symbol string) (models.Quote, bool) {
	if c.cache == nil {
		return models.Quote{}, false
	}

	data, err := c.cache.Get(ctx, cacheKey(symbol)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Str("symbol", symbol).Msg("quote cache read failed")
		}
		return models.Quote{}, false
	}

	var quote models.Quote
	if err := json.Unmarshal(data, &quote); err != nil {
		return models.Quote{}, false
	}
	return quote, true
}

func (c *Client) store(ctx context.Context, quote models.Quote) {
	if c.cache == nil {
		return
	}

	data, err := json.Marshal(quote)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, cacheKey(quote.Symbol), data, c.cacheTTL).Err(); err != nil {
		c.logger.Warn().Err(err).Str("symbol", quote.Symbol).Msg("quote cache write failed")
	}
}
