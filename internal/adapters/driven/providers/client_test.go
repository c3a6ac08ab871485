package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(srv.Client(), domain.ProviderCredentials{BaseURL: srv.URL + "/", APIKey: "secret"},
		NewRateLimiter(RateLimitConfig{RequestsPerSecond: 1000, BurstSize: 100}))
	c.retryUnit = time.Millisecond
	return c
}

func TestClient_SendsBearerKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "/standards/updates", r.URL.Path)
		w.Write([]byte(`{"updates":[]}`))
	})

	var out standardsResponse
	require.NoError(t, c.getJSON(context.Background(), "/standards/updates", nil, &out))
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"updates":[{"code":"BRC-1"}]}`))
	})

	var out standardsResponse
	require.NoError(t, c.getJSON(context.Background(), "/standards/updates", nil, &out))
	assert.Equal(t, int32(3), calls.Load())
	require.Len(t, out.Updates, 1)
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	})

	var out standardsResponse
	err := c.getJSON(context.Background(), "/standards/updates", nil, &out)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "maintenance", apiErr.Body)
	assert.Equal(t, int32(defaultMaxRetries+1), calls.Load())
}

func TestClient_ClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	})

	var out standardsResponse
	err := c.getJSON(context.Background(), "/standards/updates", nil, &out)
	assert.ErrorContains(t, err, "401")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_HonoursRetryAfter(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"updates":[]}`))
	})

	var out standardsResponse
	require.NoError(t, c.getJSON(context.Background(), "/standards/updates", nil, &out))
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_DecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	var out standardsResponse
	assert.ErrorContains(t, c.getJSON(context.Background(), "/standards/updates", nil, &out), "decode")
}

func TestClient_ContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	c.retryUnit = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var out standardsResponse
	err := c.getJSON(ctx, "/standards/updates", nil, &out)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetryAfter(t *testing.T) {
	d, ok := retryAfter("2")
	assert.True(t, ok)
	assert.Equal(t, 2*time.Second, d)

	_, ok = retryAfter("Wed, 21 Oct 2026 07:28:00 GMT")
	assert.False(t, ok)

	_, ok = retryAfter("3600")
	assert.False(t, ok, "waits beyond the cap are not honoured")
}

func TestRateLimiter_Backoff(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{})
	rl.Backoff(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, rl.Wait(ctx), context.DeadlineExceeded)
}
