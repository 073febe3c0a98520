package amazonads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/adlumen/amzads/internal/core/domain"
	"github.com/adlumen/amzads/internal/core/ports/driven"
	"github.com/adlumen/amzads/internal/logger"
)

// Retry policy for outbound requests. Delay grows by backoffFactor per
// attempt and every sleep is jittered.
const (
	maxAttempts    = 7
	backoffBase    = 1 * time.Second
	backoffFactor  = 3
	requestTimeout = 60 * time.Second
)

// Request describes one outbound API call.
type Request struct {
	Method string
	// Path is resolved against the region's API host. URL, when set, is used
	// verbatim instead; report artifacts live on pre-signed URLs.
	Path  string
	URL   string
	Query url.Values
	// MediaType sets both Content-Type and Accept. List endpoints use
	// versioned vendor media types.
	MediaType string
	Body      []byte
	// Unauthenticated skips bearer and identity headers. Pre-signed artifact
	// URLs reject extra credentials.
	Unauthenticated bool
}

// Response is a fully-read API response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client is the single chokepoint for outbound Amazon Ads requests. It
// injects credentials, rate limits, classifies responses, and retries
// transient failures with exponential backoff.
type Client struct {
	cfg     *Config
	tokens  driven.TokenProvider
	http    *http.Client
	limiter *RateLimiter

	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates an authenticated client for one advertising account.
func NewClient(cfg *Config, tokens driven.TokenProvider) *Client {
	return &Client{
		cfg:     cfg,
		tokens:  tokens,
		http:    &http.Client{Timeout: requestTimeout},
		limiter: NewRateLimiter(),
		sleep:   sleepContext,
	}
}

// Do sends the request, retrying throttled, server-side and transport
// failures until the attempt budget runs out. 401 and other client errors
// surface immediately. The token is re-validated on every attempt because a
// long backoff can outlast a token's lifetime.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	var lastErr error
	delay := backoffBase

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx, jitter(delay)); err != nil {
				return nil, err
			}
			delay *= backoffFactor
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := c.attempt(ctx, req)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, domain.ErrAuthFailed) || errors.Is(err, ErrInvalidRequest) {
				return nil, err
			}
			logger.Debug("amazonads: attempt %d transport failure: %v", attempt, err)
			lastErr = err
			continue
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return resp, nil

		case resp.StatusCode == http.StatusTooManyRequests:
			c.limiter.RecordRateLimitError(retryAfterSeconds(resp.Header))
			logger.Debug("amazonads: attempt %d rate limited", attempt)
			lastErr = newAPIError(resp.StatusCode, resp.Body)

		case resp.StatusCode >= 500:
			logger.Debug("amazonads: attempt %d server error %d", attempt, resp.StatusCode)
			lastErr = newAPIError(resp.StatusCode, resp.Body)

		default:
			// 401 and remaining 4xx: retrying cannot change the outcome.
			return nil, newAPIError(resp.StatusCode, resp.Body)
		}
	}

	return nil, fmt.Errorf("retries exhausted after %d attempts: %w", maxAttempts, lastErr)
}

// attempt performs a single exchange. The token is fetched fresh each call.
func (c *Client) attempt(ctx context.Context, req *Request) (*Response, error) {
	target := req.URL
	if target == "" {
		target = c.cfg.EndpointBase() + req.Path
	}
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader = http.NoBody
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	if !req.Unauthenticated {
		token, err := c.tokens.GetToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("get token: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
		httpReq.Header.Set("Amazon-Advertising-API-ClientId", c.cfg.ClientID)
		httpReq.Header.Set("Amazon-Advertising-API-Scope", c.cfg.ProfileID)
	}
	if c.cfg.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if req.MediaType != "" {
		httpReq.Header.Set("Accept", req.MediaType)
		if len(req.Body) > 0 {
			httpReq.Header.Set("Content-Type", req.MediaType)
		}
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       respBody,
	}, nil
}

// retryAfterSeconds parses the Retry-After header, returning 0 when absent
// or unusable.
func retryAfterSeconds(h http.Header) int {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// jitter spreads a delay uniformly over [d/2, d].
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	half := d / 2
	return half + rand.N(half+1)
}

// sleepContext sleeps for d or until the context is cancelled. No lock is
// held while sleeping.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
