// Package harvest fetches raw artifact metadata from Hugging Face and GitHub.
package harvest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenk/backoff"
	"github.com/huangsam/mlscore/internal/contract"
	"golang.org/x/time/rate"
)

// Upstream failure classes.
var (
	ErrNotFound     = errors.New("upstream resource not found")
	ErrRateLimited  = errors.New("rate limited by upstream")
	ErrUpstreamDown = errors.New("upstream unavailable")
	ErrNetwork      = errors.New("network error")
)

// CacheFormatVersion is bumped when the cached payload format changes.
const CacheFormatVersion = 1

// maxBodyBytes bounds the size of any upstream response.
const maxBodyBytes = 16 << 20

// maxRetryElapsed bounds the total time spent retrying one request.
const maxRetryElapsed = 30 * time.Second

// Client performs rate limited, retried and circuit broken GET requests.
type Client struct {
	http      *http.Client
	userAgent string
	headers   map[string]string
	authFn    func(url string) (headerName, headerValue string)
	limiter   *rate.Limiter
	retries   uint64
	timeout   time.Duration
	cache     contract.CacheStore
	cacheTTL  time.Duration
	breakers  *breakerSet
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithHeaders adds headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(cl *Client) {
		for k, v := range headers {
			cl.headers[k] = v
		}
	}
}

// WithAuthFunc sets a function that returns the auth header for a request URL.
// Return empty strings to skip authentication for that URL.
func WithAuthFunc(fn func(url string) (headerName, headerValue string)) Option {
	return func(cl *Client) { cl.authFn = fn }
}

// WithRateLimit caps outbound requests per second. Zero disables limiting.
func WithRateLimit(rps float64) Option {
	return func(cl *Client) {
		if rps <= 0 {
			cl.limiter = nil
			return
		}
		burst := max(int(rps), 1)
		cl.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRetries sets how many times a retryable failure is retried.
func WithRetries(n int) Option {
	return func(cl *Client) {
		if n >= 0 {
			cl.retries = uint64(n)
		}
	}
}

// WithTimeout bounds every single request.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.timeout = d
		}
	}
}

// WithCache stores successful responses in a cache store for ttl.
func WithCache(store contract.CacheStore, ttl time.Duration) Option {
	return func(cl *Client) {
		cl.cache = store
		cl.cacheTTL = ttl
	}
}

// NewClient creates a Client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		userAgent: "mlscore/1.0",
		headers:   map[string]string{},
		retries:   contract.DefaultRetries,
		timeout:   contract.DefaultTimeout,
		breakers:  newBreakerSet(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = NewHTTPClient(c.timeout)
	}
	return c
}

// GetJSON performs a GET request and JSON-decodes the response into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	body, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding %s: %w", url, err)
	}
	return nil
}

// GetText performs a GET request and returns the body as a string.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// BreakerStates reports the circuit state of every contacted host.
func (c *Client) BreakerStates() map[string]string {
	return c.breakers.states()
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	key := cacheKey(url)
	if body, ok := c.cached(key); ok {
		return body, nil
	}

	host := hostOf(url)
	breaker := c.breakers.get(host)
	if !breaker.Ready() {
		return nil, fmt.Errorf("circuit breaker open for %s: %w", host, ErrUpstreamDown)
	}

	// Client errors such as 404 must not trip the breaker
	var body []byte
	var clientErr error
	err := breaker.Call(func() error {
		var fetchErr error
		body, fetchErr = c.getWithRetry(ctx, url)
		if fetchErr != nil && !isUpstreamFailure(fetchErr) {
			clientErr = fetchErr
			return nil
		}
		return fetchErr
	}, 0)
	if err != nil {
		return nil, err
	}
	if clientErr != nil {
		return nil, clientErr
	}

	c.store(key, body)
	return body, nil
}

// retryPolicy allows exactly c.retries retries after the first attempt.
func (c *Client) retryPolicy() backoff.BackOff {
	if c.retries == 0 {
		return &backoff.StopBackOff{}
	}
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 200 * time.Millisecond
	expBackoff.MaxInterval = 2 * time.Second
	expBackoff.MaxElapsedTime = maxRetryElapsed
	expBackoff.Reset()
	return backoff.WithMaxRetries(expBackoff, c.retries)
}

func (c *Client) getWithRetry(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	op := func() error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}
		var err error
		body, err = c.doRequest(ctx, url)
		if err != nil && !isRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(c.retryPolicy(), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) doRequest(ctx context.Context, url string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if c.authFn != nil {
		if name, value := c.authFn(url); name != "" && value != "" {
			req.Header.Set(name, value)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrNetwork, err)
	}
	return body, nil
}

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests:
		return ErrRateLimited
	case code >= 500:
		return fmt.Errorf("%w: status %d", ErrUpstreamDown, code)
	default:
		return fmt.Errorf("unexpected status %d", code)
	}
}

// isRetryable reports whether a later attempt may succeed.
func isRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUpstreamDown) || errors.Is(err, ErrNetwork)
}

// isUpstreamFailure reports whether err counts against the host breaker.
func isUpstreamFailure(err error) bool {
	return errors.Is(err, ErrUpstreamDown) || errors.Is(err, ErrNetwork)
}

func (c *Client) cached(key string) ([]byte, bool) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return nil, false
	}
	value, version, ts, err := c.cache.Get(key)
	if err != nil || value == nil || version != CacheFormatVersion {
		return nil, false
	}
	if time.Since(time.Unix(ts, 0)) > c.cacheTTL {
		return nil, false
	}
	return value, true
}

func (c *Client) store(key string, body []byte) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return
	}
	_ = c.cache.Set(key, body, CacheFormatVersion, time.Now().Unix())
}

// cacheKey hashes a URL into a fixed length key.
func cacheKey(url string) string {
	sum := sha256.Sum256([]byte("GET " + url))
	return hex.EncodeToString(sum[:])
}
