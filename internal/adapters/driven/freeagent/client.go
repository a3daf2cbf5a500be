package freeagent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
	"github.com/custodia-labs/ledgerbridge/internal/core/ports/driven"
	"github.com/custodia-labs/ledgerbridge/internal/logger"
)

// Ensure Gateway implements the interface.
var _ driven.AccountingAPI = (*Gateway)(nil)

const (
	// DefaultTimeout is the total HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultConnectTimeout bounds TCP connection setup.
	DefaultConnectTimeout = 10 * time.Second

	// MaxRetries is the number of retries for transport failures.
	MaxRetries = 3

	// RetryDelay is the fixed delay between retries.
	RetryDelay = time.Second

	// DefaultPageSize is the provider's maximum page size.
	DefaultPageSize = 100

	// DefaultMaxPages is the pagination safety cap.
	DefaultMaxPages = 1000

	// maxErrorBody limits how much of an error body is kept.
	maxErrorBody = 1024
)

// Gateway is the rate-limited, retrying, caching client for the remote API.
type Gateway struct {
	http       *http.Client
	baseURL    string
	tokens     Tokens
	limiter    *RateLimiter
	cache      driven.Cache
	ttl        domain.CacheSettings
	pageSize   int
	maxPages   int
	maxRetries int
	backoff    time.Duration
}

// NewGateway creates a gateway from resolved settings.
// Zero values in settings fall back to the package defaults.
func NewGateway(settings domain.APISettings, ttl domain.CacheSettings, tokens Tokens, cache driven.Cache) *Gateway {
	timeout := orDuration(settings.RequestTimeout, DefaultTimeout)
	connect := orDuration(settings.ConnectTimeout, DefaultConnectTimeout)

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: connect, KeepAlive: 30 * time.Second}).DialContext

	maxRetries := settings.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	} else if maxRetries == 0 {
		maxRetries = MaxRetries
	}

	return &Gateway{
		http:       &http.Client{Timeout: timeout, Transport: transport},
		baseURL:    strings.TrimRight(orString(settings.BaseURL, ProductionBaseURL), "/"),
		tokens:     tokens,
		limiter:    NewRateLimiter(settings.RateLimit),
		cache:      cache,
		ttl:        ttl,
		pageSize:   orInt(settings.PageSize, DefaultPageSize),
		maxPages:   orInt(settings.MaxPages, DefaultMaxPages),
		maxRetries: maxRetries,
		backoff:    orDuration(settings.RetryBackoff, RetryDelay),
	}
}

// BaseURL returns the API root this gateway talks to.
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// Request performs one authenticated call and returns the decoded JSON object.
// Transport failures are retried; HTTP error statuses never are.
func (g *Gateway) Request(ctx context.Context, method, path, owner string, params url.Values) (map[string]json.RawMessage, error) {
	token, err := NewTokenSource(ctx, g.tokens, owner).Token()
	if err != nil {
		return nil, err
	}

	if !g.limiter.Allow(owner) {
		return nil, &domain.APIError{Kind: domain.ErrRateLimited, Path: path}
	}

	endpoint := g.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			logger.Debug("Retrying %s %s (attempt %d/%d): %v", method, path, attempt, g.maxRetries, lastErr)
			if err := sleep(ctx, g.backoff); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		token.SetAuthHeader(req)

		resp, err := g.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}
		return g.handleResponse(resp, owner, path)
	}

	return nil, &domain.APIError{Kind: domain.ErrNetwork, Path: path, Err: lastErr}
}

func (g *Gateway) handleResponse(resp *http.Response, owner, path string) (map[string]json.RawMessage, error) {
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, &domain.APIError{Kind: domain.ErrAuthenticationFailed, StatusCode: resp.StatusCode, Path: path}
	case resp.StatusCode == http.StatusTooManyRequests:
		g.limiter.RecordRateLimitError(owner, retryAfter(resp.Header.Get("Retry-After")))
		return nil, &domain.APIError{Kind: domain.ErrRateLimited, StatusCode: resp.StatusCode, Path: path}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.APIError{
			Kind:       domain.ErrRequestFailed,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			Path:       path,
		}
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, &domain.APIError{Kind: domain.ErrDecoding, StatusCode: resp.StatusCode, Path: path, Err: err}
	}
	return body, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(header string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func orInt(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func orString(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func orDuration(v, def time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return def
}
