// Package fetch downloads remote topologies and overlay datasets.
//
// [Client] wraps an http.Client with three concerns: a [cache.Cache] in front
// of every GET, retry with exponential backoff for transient failures, and
// observability hooks around each request. It satisfies the Fetcher
// interfaces of the topology and datamaps packages.
//
//	client := fetch.NewClient(fileCache, fetch.WithTTL(24*time.Hour))
//	data, err := client.Fetch(ctx, "https://example.com/usa.topo.json")
package fetch

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/matzehuels/datamaps/pkg/cache"
	"github.com/matzehuels/datamaps/pkg/errors"
	"github.com/matzehuels/datamaps/pkg/httputil"
	"github.com/matzehuels/datamaps/pkg/observability"
)

const (
	defaultTimeout = 10 * time.Second
	defaultTTL     = 24 * time.Hour

	// DefaultMaxBody caps a downloaded document.
	DefaultMaxBody = 64 << 20
)

// Client fetches documents over HTTP with caching and retry.
type Client struct {
	http     *http.Client
	cache    cache.Cache
	keyer    cache.Keyer
	ttl      time.Duration
	headers  map[string]string
	attempts int
	delay    time.Duration
	maxBody  int64

	allowed    map[string]bool // nil: any host
	publicOnly bool
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithTTL sets how long fetched documents stay cached.
func WithTTL(ttl time.Duration) Option { return func(c *Client) { c.ttl = ttl } }

// WithKeyer sets the cache key layout.
func WithKeyer(k cache.Keyer) Option { return func(c *Client) { c.keyer = k } }

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

// WithMaxBody sets the largest document accepted, in bytes.
func WithMaxBody(n int64) Option { return func(c *Client) { c.maxBody = n } }

// WithRetry sets the retry policy: attempts in total, starting at delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) { c.attempts, c.delay = attempts, delay }
}

// NewClient returns a client caching into store. A nil store disables caching.
func NewClient(store cache.Cache, opts ...Option) *Client {
	if store == nil {
		store = cache.NewNullCache()
	}
	c := &Client{
		http:     &http.Client{Timeout: defaultTimeout},
		cache:    store,
		keyer:    cache.NewDefaultKeyer(),
		ttl:      defaultTTL,
		headers:  map[string]string{"User-Agent": "datamaps"},
		attempts: 3,
		delay:    time.Second,
		maxBody:  DefaultMaxBody,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.allowed != nil || c.publicOnly {
		c.http = c.guard(c.http)
	}
	return c
}

// Fetch returns the body of a GET on rawURL, from cache when possible.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := errors.ValidateURL(rawURL); err != nil {
		return nil, err
	}
	if err := c.hostAllowed(rawURL); err != nil {
		return nil, err
	}
	key := c.keyer.HTTPKey("fetch", rawURL)
	if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
		return data, nil
	}

	var body []byte
	err := httputil.Retry(ctx, c.attempts, c.delay, func() error {
		var err error
		body, err = c.get(ctx, rawURL)
		return err
	})
	if err != nil {
		return nil, classify(err, rawURL)
	}
	_ = c.cache.Set(ctx, key, body, c.ttl)
	return body, nil
}

// Invalidate drops the cached copy of rawURL.
func (c *Client) Invalidate(ctx context.Context, rawURL string) error {
	return c.cache.Delete(ctx, c.keyer.HTTPKey("fetch", rawURL))
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	host, path := hostPath(rawURL)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, http.MethodGet, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, http.MethodGet, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if stderrors.Is(err, ErrBlockedAddress) {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "fetch %s", rawURL)
		}
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, httputil.Retryable(err)
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, http.MethodGet, host, path, resp.StatusCode, time.Since(start))

	if err := httputil.CheckStatus(resp.StatusCode, rawURL); err != nil {
		var se *httputil.StatusError
		if stderrors.As(err, &se) {
			se.RetryAfter, _ = strconv.Atoi(resp.Header.Get("Retry-After"))
		}
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, httputil.Retryable(err)
	}
	if int64(len(data)) > c.maxBody {
		return nil, errors.New(errors.ErrCodeInvalidInput, "document at %s is too large (limit %d bytes)", rawURL, c.maxBody)
	}
	return data, nil
}

func classify(err error, rawURL string) error {
	if errors.GetCode(err) != "" {
		return err
	}
	var se *httputil.StatusError
	isStatus := stderrors.As(err, &se)
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(errors.ErrCodeTimeout, err, "fetch %s", rawURL)
	case isStatus && se.Code == http.StatusNotFound:
		return errors.Wrap(errors.ErrCodeNotFound, err, "fetch %s", rawURL)
	case isStatus && se.Code == http.StatusTooManyRequests:
		return errors.Wrap(errors.ErrCodeRateLimited, &errors.RateLimitedError{RetryAfter: se.RetryAfter, Message: se.Error()}, "fetch %s", rawURL)
	}
	return errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", rawURL)
}

func hostPath(rawURL string) (string, string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", rawURL
	}
	return u.Host, u.Path
}
