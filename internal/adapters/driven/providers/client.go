package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
	maxRetryAfter     = 5 * time.Minute
)

// APIError is a non-2xx provider response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider API error %d: %s", e.StatusCode, e.Body)
}

// Client performs authenticated JSON requests against one provider.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *RateLimiter
	maxRetries int
	retryUnit  time.Duration
}

// NewClient creates a client for creds. A nil limiter gets DefaultRateLimit.
func NewClient(httpClient *http.Client, creds domain.ProviderCredentials, limiter *RateLimiter) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if limiter == nil {
		limiter = NewRateLimiter(DefaultRateLimit)
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(creds.BaseURL, "/"),
		apiKey:     creds.APIKey,
		limiter:    limiter,
		maxRetries: defaultMaxRetries,
		retryUnit:  time.Second,
	}
}

// getJSON issues GET baseURL+path?query and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	resp, err := c.do(ctx, http.MethodGet, target)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// do sends the request, honouring 429 Retry-After and retrying 5xx responses
// with a linear backoff. Any other status >= 400 is returned as *APIError.
func (c *Client) do(ctx context.Context, method, target string) (*http.Response, error) {
	var resp *http.Response
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, method, target, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Accept", "application/json")

		resp, err = c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("do request: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < c.maxRetries {
			if wait, ok := retryAfter(resp.Header.Get("Retry-After")); ok {
				resp.Body.Close()
				c.limiter.Backoff(wait)
				continue
			}
		}

		if resp.StatusCode < 500 || attempt == c.maxRetries {
			break
		}

		resp.Body.Close()
		timer := time.NewTimer(time.Duration(attempt+1) * c.retryUnit)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	return resp, nil
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(header string) (time.Duration, bool) {
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return 0, false
	}
	wait := time.Duration(secs) * time.Second
	if wait > maxRetryAfter {
		return 0, false
	}
	return wait, true
}
