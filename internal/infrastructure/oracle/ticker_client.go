package oracle

import (
	"context"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/patrickmn/go-cache"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"

	"rebalancer/internal/app/port"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	defaultBaseURL        = "https://api.binance.com/api/v3"
	defaultQuoteAsset     = "USDT"
	defaultRequestTimeout = 10 * time.Second
	defaultCacheTTL       = time.Minute
	cacheCleanupInterval  = 10 * time.Minute

	defaultRequestsPerSecond = 5
)

// Config holds the ticker oracle settings.
type Config struct {
	BaseURL           string
	QuoteAsset        string
	RequestTimeout    time.Duration
	CacheTTL          time.Duration
	RequestsPerSecond float64
}

// TickerClient quotes symbols against USD using a spot ticker endpoint. It
// implements port.PriceOracle. Quotes are cached for a short TTL so a burst
// of pipeline runs does not hammer the exchange API.
//
// The payload returned to callers is the decoded response as-is; the
// pipeline's pricing parser extracts and sanity-checks the number.
type TickerClient struct {
	client  *fasthttp.Client
	limiter *rate.Limiter
	cache   *cache.Cache
	logger  port.Logger
	baseURL string
	quote   string
	timeout time.Duration
}

// NewTickerClient creates a TickerClient with defaults filled in.
func NewTickerClient(cfg Config, log port.Logger) *TickerClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.QuoteAsset == "" {
		cfg.QuoteAsset = defaultQuoteAsset
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaultRequestsPerSecond
	}
	return &TickerClient{
		client:  &fasthttp.Client{},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		cache:   cache.New(cfg.CacheTTL, cacheCleanupInterval),
		logger:  log,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		quote:   strings.ToUpper(cfg.QuoteAsset),
		timeout: cfg.RequestTimeout,
	}
}

// FetchUnitPriceUSD returns the latest quote payload for the symbol.
func (c *TickerClient) FetchUnitPriceUSD(ctx context.Context, symbol string) (any, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" {
		return nil, fmt.Errorf("empty symbol")
	}

	if cached, found := c.cache.Get(sym); found {
		return cached, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	pair := sym + c.quote
	requestURL := fmt.Sprintf("%s/ticker/price?symbol=%s", c.baseURL, pair)
	c.logger.Debug("requesting ticker price", "symbol", sym, "url", requestURL)

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetContentType("application/json")

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			return nil, fmt.Errorf("failed to execute request to %s with default timeout: %w", requestURL, err)
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Warn("ticker request failed",
			"symbol", sym, "statusCode", resp.StatusCode(), "body", string(resp.Body()))
		return nil, fmt.Errorf("ticker request for %s failed with status %d", pair, resp.StatusCode())
	}

	var payload map[string]any
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ticker response for %s: %w", pair, err)
	}

	c.cache.SetDefault(sym, payload)
	return payload, nil
}
