package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ppiankov/csrlens/internal/cache"
	"github.com/ppiankov/csrlens/internal/model"
	"github.com/ppiankov/csrlens/internal/worker"
)

// sleepFunc is overridden in tests
var sleepFunc = func(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Option configures the HTTP client.
type Option func(*HTTPClient)

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

// WithCache caches GET response bodies. A zero ttl uses the cache's defaults.
func WithCache(cc cache.Cache, ttl time.Duration) Option {
	return func(c *HTTPClient) {
		c.cache = cc
		c.cacheTTL = ttl
	}
}

// WithLimiter throttles requests.
func WithLimiter(l *worker.Limiter) Option {
	return func(c *HTTPClient) { c.limiter = l }
}

// WithRetries enables up to n extra attempts on 429/5xx and transport errors.
func WithRetries(n int) Option {
	return func(c *HTTPClient) {
		if n < 0 {
			n = 0
		}
		c.retries = n
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *HTTPClient) { c.userAgent = ua }
}

// WithMaxBodyBytes caps how much of a response body is read.
func WithMaxBodyBytes(n int64) Option {
	return func(c *HTTPClient) {
		if n > 0 {
			c.maxBytes = n
		}
	}
}

// HTTPClient talks to the CSR data API over HTTP.
type HTTPClient struct {
	baseURL   string
	http      *http.Client
	cache     cache.Cache
	cacheTTL  time.Duration
	limiter   *worker.Limiter
	retries   int
	userAgent string
	maxBytes  int64
}

var _ Client = (*HTTPClient)(nil)

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return eris.New("api: stopped after 3 redirects")
				}
				return nil
			},
		},
		cache:     cache.Nop{},
		userAgent: "csrlens",
		maxBytes:  20_000_000,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FromConfig builds a client with transport, cache and limiter taken from cfg.
func FromConfig(cfg *model.Config) *HTTPClient {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = proxyFunc(cfg.API.HTTPProxy, cfg.API.HTTPSProxy)
	transport.MaxIdleConnsPerHost = 20

	return NewClient(cfg.API.BaseURL,
		WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout, Transport: transport}),
		WithCache(cache.New(cfg.Cache), 0), // each layer applies its configured TTL
		WithLimiter(newLimiter(cfg.RateLimiting)),
		WithRetries(cfg.API.Retries),
		WithUserAgent(cfg.API.UserAgent),
		WithMaxBodyBytes(cfg.API.MaxBodyBytes),
	)
}

// newLimiter builds the per-host limiter with any configured host overrides
func newLimiter(rl model.RateLimitingConfig) *worker.Limiter {
	l := worker.NewLimiter(rl.RequestsPerSecond, rl.BurstSize)
	for _, h := range rl.Hosts {
		if h.Host == "" {
			continue
		}
		l.SetHostRate(h.Host, h.RequestsPerSecond, h.BurstSize)
	}
	return l
}

// proxyFunc prefers explicit proxy URLs and falls back to the environment
func proxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}
	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}

func (c *HTTPClient) Reports(ctx context.Context, q ReportQuery) ([]model.Report, error) {
	var out []model.Report
	if err := c.getJSON(ctx, "/reports", q.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Indicators(ctx context.Context) ([]model.Indicator, error) {
	var out []model.Indicator
	if err := c.getJSON(ctx, "/indicators", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) SearchIndicators(ctx context.Context, term string) ([]model.Indicator, error) {
	v := url.Values{}
	if term != "" {
		v.Set("indicator_name", term)
	}
	var out []model.Indicator
	if err := c.getJSON(ctx, "/indicators/search", v, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) SearchData(ctx context.Context, q DataQuery) ([]model.DataPoint, error) {
	var out []model.DataPoint
	if err := c.getJSON(ctx, "/data/search", q.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) SearchCompanies(ctx context.Context, query string) ([]model.CompanyMatch, error) {
	var out []model.CompanyMatch
	if err := c.getJSON(ctx, "/api/search_companies", url.Values{"q": {query}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) CompareData(ctx context.Context, req model.CompareRequest) (*model.CompareResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "api: marshal compare request")
	}

	raw, err := c.do(ctx, http.MethodPost, "/api/compare_data", nil, body)
	if err != nil {
		return nil, err
	}

	var out model.CompareResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, eris.Wrap(err, "api: unmarshal compare response")
	}
	if out.Data == nil {
		out.Data = map[string]map[string]model.Number{}
	}
	return &out, nil
}

// getJSON performs a cached GET and decodes the body into out
func (c *HTTPClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	reqURL := c.url(path, query)
	key := cache.Key(http.MethodGet, reqURL, nil)

	raw, hit := c.cache.Get(key)
	if hit {
		zap.L().Debug("api: cache hit", zap.String("url", reqURL))
	} else {
		var err error
		raw, err = c.do(ctx, http.MethodGet, path, query, nil)
		if err != nil {
			return err
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return eris.Wrapf(err, "api: unmarshal %s", path)
	}

	if !hit {
		if err := c.cache.Set(key, raw, c.cacheTTL); err != nil {
			zap.L().Warn("api: cache store failed", zap.String("url", reqURL), zap.Error(err))
		}
	}
	return nil
}

func (c *HTTPClient) url(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do sends the request, retrying transient failures when retries are enabled
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body []byte) ([]byte, error) {
	reqURL := c.url(path, query)
	backoff := 500 * time.Millisecond

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			zap.L().Debug("api: retrying",
				zap.String("url", reqURL),
				zap.Int("attempt", attempt+1),
				zap.Error(lastErr),
			)
			if err := sleepFunc(ctx, backoff); err != nil {
				return nil, eris.Wrap(err, "api: retry wait")
			}
			backoff *= 2
		}

		raw, err := c.once(ctx, method, path, reqURL, body)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !isRetryable(err) {
			break
		}
	}
	return nil, lastErr
}

func (c *HTTPClient) once(ctx context.Context, method, path, reqURL string, body []byte) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, reqURL); err != nil {
			return nil, eris.Wrap(err, "api: rate limit wait")
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, eris.Wrap(err, "api: create request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, eris.Wrapf(ctx.Err(), "api: %s %s", method, path)
		}
		return nil, &transportError{err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, eris.Wrapf(err, "api: read %s body", path)
	}

	zap.L().Debug("api: response",
		zap.String("method", method),
		zap.String("url", reqURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("bytes", len(raw)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(raw)}
	}
	if int64(len(raw)) > c.maxBytes {
		return nil, eris.Errorf("api: %s body exceeds %d bytes", path, c.maxBytes)
	}
	return raw, nil
}
