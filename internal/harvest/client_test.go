package harvest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/huangsam/mlscore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryCache is an in-memory CacheStore.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     []byte
	version   int
	timestamp int64
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]memoryEntry{}}
}

func (m *memoryCache) Get(key string) ([]byte, int, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, 0, 0, nil
	}
	return e.value, e.version, e.timestamp, nil
}

func (m *memoryCache) Set(key string, value []byte, version int, timestamp int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{value, version, timestamp}
	return nil
}

func (m *memoryCache) GetStatus() (schema.CacheStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return schema.CacheStatus{Backend: "memory", Connected: true, TotalEntries: len(m.entries)}, nil
}

func (m *memoryCache) Close() error { return nil }

func newTestClient(srv *httptest.Server, opts ...Option) *Client {
	base := []Option{WithHTTPClient(srv.Client()), WithRetries(0), WithTimeout(2 * time.Second)}
	return NewClient(append(base, opts...)...)
}

func TestClientGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/vnd.github.v3+json", r.Header.Get("Accept"))
		assert.Equal(t, "token secret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"full_name":"octo/repo"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv,
		WithHeaders(GitHubHeaders()),
		WithAuthFunc(GitHubTokenAuth("secret", srv.URL)),
	)
	var out map[string]any
	require.NoError(t, client.GetJSON(context.Background(), srv.URL+"/repos/octo/repo", &out))
	assert.Equal(t, "octo/repo", out["full_name"])
}

func TestClientStatusClasses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"not found", http.StatusNotFound, ErrNotFound},
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
		{"server error", http.StatusBadGateway, ErrUpstreamDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := newTestClient(srv).GetText(context.Background(), srv.URL)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	text, err := newTestClient(srv, WithRetries(2)).GetText(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, int32(3), hits.Load())
}

func TestClientRetryCount(t *testing.T) {
	tests := []struct {
		name     string
		retries  int
		wantHits int32
	}{
		{"no retries", 0, 1},
		{"one retry", 1, 2},
		{"three retries", 3, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(http.StatusServiceUnavailable)
			}))
			defer srv.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
			defer cancel()
			_, err := newTestClient(srv, WithRetries(tt.retries)).GetText(ctx, srv.URL)
			assert.ErrorIs(t, err, ErrUpstreamDown)
			assert.Equal(t, tt.wantHits, hits.Load())
		})
	}
}

func TestClientDoesNotRetryNotFound(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv, WithRetries(3)).GetText(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), hits.Load())
}

func TestClientCircuitBreakerOpens(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(srv)
	for range breakerThreshold {
		_, err := client.GetText(context.Background(), srv.URL)
		require.ErrorIs(t, err, ErrUpstreamDown)
	}

	_, err := client.GetText(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker open")
	assert.Equal(t, int32(breakerThreshold), hits.Load())
	assert.Equal(t, "open", client.BreakerStates()[hostOf(srv.URL)])
}

func TestClientNotFoundKeepsBreakerClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(srv)
	for range breakerThreshold + 2 {
		_, err := client.GetText(context.Background(), srv.URL)
		require.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, "closed", client.BreakerStates()[hostOf(srv.URL)])
}

func TestClientCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"id":"gpt2"}`))
	}))
	defer srv.Close()

	cache := newMemoryCache()
	client := newTestClient(srv, WithCache(cache, time.Hour))
	for range 3 {
		var out map[string]any
		require.NoError(t, client.GetJSON(context.Background(), srv.URL+"/api/models/gpt2", &out))
		assert.Equal(t, "gpt2", out["id"])
	}
	assert.Equal(t, int32(1), hits.Load())

	// Expired entries are refetched
	key := cacheKey(srv.URL + "/api/models/gpt2")
	require.NoError(t, cache.Set(key, []byte(`{"id":"old"}`), CacheFormatVersion, time.Now().Add(-2*time.Hour).Unix()))
	var out map[string]any
	require.NoError(t, client.GetJSON(context.Background(), srv.URL+"/api/models/gpt2", &out))
	assert.Equal(t, "gpt2", out["id"])
	assert.Equal(t, int32(2), hits.Load())
}

func TestClientRateLimitHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := newTestClient(srv, WithRateLimit(0.001))
	_, err := client.GetText(context.Background(), srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.GetText(ctx, srv.URL+"/second")
	assert.Error(t, err)
}

func TestCacheKey(t *testing.T) {
	assert.Len(t, cacheKey("https://huggingface.co/api/models/gpt2"), 64)
	assert.NotEqual(t, cacheKey("a"), cacheKey("b"))
}
