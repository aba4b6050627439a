package tokenindexer

import (
	"context"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"

	"rebalancer/internal/app/port"
	"rebalancer/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	defaultBaseURL        = "https://api.chainbase.online/v1"
	defaultRequestTimeout = 15 * time.Second
	defaultPageLimit      = 100

	// The free indexer tier allows 2 requests per second.
	defaultRequestsPerSecond = 2
)

// Config holds the indexer client settings.
type Config struct {
	BaseURL           string
	APIKey            string
	RequestTimeout    time.Duration
	RequestsPerSecond float64
}

// Client fetches ERC-20 holdings for a wallet from the token indexer API.
// It implements port.BalanceSource.
type Client struct {
	client  *fasthttp.Client
	limiter *rate.Limiter
	logger  port.Logger
	baseURL string
	apiKey  string
	timeout time.Duration
}

// NewClient creates an indexer client. Zero-value config fields fall back to
// defaults; an empty APIKey is allowed and simply sends no auth header.
func NewClient(cfg Config, log port.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaultRequestsPerSecond
	}
	return &Client{
		client:  &fasthttp.Client{},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:  log,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		timeout: cfg.RequestTimeout,
	}
}

// tokensResponse is the wrapped response shape of /account/tokens.
type tokensResponse struct {
	Code    int                     `json:"code"`
	Message string                  `json:"message"`
	Data    []entity.RawTokenRecord `json:"data"`
}

// FetchAccountTokenHoldings returns the wallet's token records for the chain.
// The indexer reports balances as raw integer strings (hex or decimal);
// decoding is the caller's concern.
func (c *Client) FetchAccountTokenHoldings(ctx context.Context, chainID uint64, address string) ([]entity.RawTokenRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	requestURL := fmt.Sprintf("%s/account/tokens?chain_id=%d&address=%s&limit=%d",
		c.baseURL, chainID, address, defaultPageLimit)
	c.logger.Debug("requesting token holdings", "url", requestURL)

	rawBody, err := c.doGet(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	// Most deployments wrap records in a data envelope, some proxies strip
	// it; try the envelope first and fall back to a bare array.
	var wrapped tokensResponse
	if err := json.Unmarshal(rawBody, &wrapped); err == nil && wrapped.Data != nil {
		return wrapped.Data, nil
	}

	var direct []entity.RawTokenRecord
	if err := json.Unmarshal(rawBody, &direct); err != nil {
		c.logger.Error("failed to unmarshal indexer response", "url", requestURL, "error", err)
		return nil, fmt.Errorf("failed to unmarshal indexer response from %s: %w", requestURL, err)
	}
	return direct, nil
}

func (c *Client) doGet(ctx context.Context, requestURL string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetContentType("application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

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
		c.logger.Error("indexer API request failed",
			"url", requestURL, "statusCode", resp.StatusCode(), "body", string(resp.Body()))
		return nil, fmt.Errorf("indexer request to %s failed with status %d", requestURL, resp.StatusCode())
	}

	// resp.Body() is only valid until release.
	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, nil
}
