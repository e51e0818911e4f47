package tomorrowio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/planwx/planwx-core/internal/cache"
	t "github.com/planwx/planwx-core/internal/types"
	"go.uber.org/zap"
)

const (
	defaultBaseUrl     = "https://api.tomorrow.io/v4"
	defaultMaxRetries  = 3
	defaultBaseBackoff = 500 * time.Millisecond
	defaultTTL         = 10 * time.Minute
	defaultTimeout     = 10 * time.Second
)

// SleepFunc waits for d or until ctx is cancelled. Injectable so tests can
// observe backoff without waiting it out.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type ClientOption func(*Client)

type Client struct {
	apiKey      string
	baseUrl     string
	hc          *http.Client
	cache       *cache.Service
	maxRetries  int
	baseBackoff time.Duration
	ttl         time.Duration
	sleep       SleepFunc

	Logger *zap.SugaredLogger
}

func ApiKeyOption(apiKey string) ClientOption {
	return func(c *Client) {
		c.apiKey = apiKey
	}
}

func BaseUrlOption(baseUrl string) ClientOption {
	return func(c *Client) {
		if baseUrl != "" {
			c.baseUrl = baseUrl
		}
	}
}

func CacheOption(cs *cache.Service) ClientOption {
	return func(c *Client) {
		c.cache = cs
	}
}

func LoggerOption(logger *zap.SugaredLogger) ClientOption {
	return func(c *Client) {
		c.Logger = logger
	}
}

func MaxRetriesOption(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxRetries = n
		}
	}
}

func BaseBackoffOption(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.baseBackoff = d
		}
	}
}

func TTLOption(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.ttl = d
		}
	}
}

func HttpClientOption(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.hc = hc
	}
}

func SleepOption(sleep SleepFunc) ClientOption {
	return func(c *Client) {
		c.sleep = sleep
	}
}

func New(opts ...ClientOption) *Client {
	c := &Client{
		baseUrl:     defaultBaseUrl,
		maxRetries:  defaultMaxRetries,
		baseBackoff: defaultBaseBackoff,
		ttl:         defaultTTL,
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.hc == nil {
		c.hc = &http.Client{Timeout: defaultTimeout}
	}
	if c.cache == nil {
		c.cache = cache.New()
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop().Sugar()
	}
	return c
}

// Realtime fetches current conditions for the coordinate, served from cache
// when fresh.
func (c *Client) Realtime(ctx context.Context, coords t.Coordinates, units string) (*RealtimeResponse, error) {
	q := url.Values{}
	q.Set("location", fmt.Sprintf("%v,%v", coords.Latitude, coords.Longitude))
	q.Set("units", units)

	key := cache.Key("realtime", coords.Latitude, coords.Longitude, units)
	body, err := c.fetchCached(ctx, "/weather/realtime", q, key)
	if err != nil {
		return nil, err
	}

	var respObj RealtimeResponse
	if err := json.Unmarshal(body, &respObj); err != nil {
		return nil, fmt.Errorf("error unmarshalling realtime response from tomorrowio: %w", err)
	}
	return &respObj, nil
}

// ForecastHourly fetches the hourly timeline covering [start, end].
func (c *Client) ForecastHourly(ctx context.Context, coords t.Coordinates, units string, start, end time.Time) (*ForecastResponse, error) {
	startISO := start.UTC().Format(t.TimeLayoutUTC)
	endISO := end.UTC().Format(t.TimeLayoutUTC)

	q := url.Values{}
	q.Set("location", fmt.Sprintf("%v,%v", coords.Latitude, coords.Longitude))
	q.Set("units", units)
	q.Set("timesteps", "1h")
	q.Set("startTime", startISO)
	q.Set("endTime", endISO)

	key := cache.Key("forecast", coords.Latitude, coords.Longitude, units, "1h", startISO, endISO)
	body, err := c.fetchCached(ctx, "/weather/forecast", q, key)
	if err != nil {
		return nil, err
	}

	var respObj ForecastResponse
	if err := json.Unmarshal(body, &respObj); err != nil {
		return nil, fmt.Errorf("error unmarshalling forecast response from tomorrowio: %w", err)
	}
	return &respObj, nil
}

// fetchCached routes the call through the cache service, so concurrent
// callers of the same key share one upstream request. When retries are
// exhausted a stale cache entry is preferred over surfacing the error.
func (c *Client) fetchCached(ctx context.Context, path string, q url.Values, key string) ([]byte, error) {
	reqUrl, err := buildUrl(c.baseUrl, path, q)
	if err != nil {
		return nil, err
	}

	body, err := c.cache.GetOrFetch(ctx, key, c.ttl, func(ctx context.Context) ([]byte, error) {
		return c.fetchWithRetry(ctx, reqUrl)
	})
	if err == nil {
		return body, nil
	}

	// Stale fallback applies only to exhausted retryable failures;
	// configuration errors and client errors propagate untouched.
	var uerr *t.UpstreamError
	if errors.As(err, &uerr) && uerr.Retryable() {
		if stale, ok := c.cache.Stale(ctx, key); ok {
			c.Logger.Warnw("Serving stale tomorrowio payload after exhausted retries",
				"key", key, "error", err.Error())
			return stale, nil
		}
	}
	return nil, err
}

func (c *Client) fetchWithRetry(ctx context.Context, reqUrl string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, &t.ConfigurationError{Msg: "missing apikey for tomorrowio client"}
	}

	var lastErr *t.UpstreamError
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		body, uerr := c.do(ctx, reqUrl)
		if uerr == nil {
			return body, nil
		}
		if !uerr.Retryable() {
			return nil, uerr
		}
		lastErr = uerr

		if attempt == c.maxRetries-1 {
			break
		}
		delay := uerr.RetryAfter
		if delay <= 0 {
			delay = c.baseBackoff * (1 << attempt)
		}
		c.Logger.Warnw("Retrying tomorrowio request",
			"attempt", attempt+1, "delay", delay.String(), "error", uerr.Error())
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, reqUrl string) ([]byte, *t.UpstreamError) {
	req, err := http.NewRequestWithContext(ctx, "GET", reqUrl, nil)
	if err != nil {
		return nil, &t.UpstreamError{Provider: "tomorrowio", Err: err}
	}
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &t.UpstreamError{Provider: "tomorrowio", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		uerr := &t.UpstreamError{Provider: "tomorrowio", Status: resp.StatusCode}
		if ra, convErr := strconv.Atoi(resp.Header.Get("Retry-After")); convErr == nil && ra > 0 {
			uerr.RetryAfter = time.Duration(ra) * time.Second
		}
		return nil, uerr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &t.UpstreamError{Provider: "tomorrowio", Err: fmt.Errorf("error reading body of response: %w", err)}
	}
	return body, nil
}

func buildUrl(base, path string, q url.Values) (string, error) {
	req, err := url.Parse(base + path)
	if err != nil {
		return "", fmt.Errorf("failed to parse tomorrowio url %s: %w", base+path, err)
	}
	req.RawQuery = q.Encode()
	return req.String(), nil
}
