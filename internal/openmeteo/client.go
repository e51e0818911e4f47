package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	t "github.com/planwx/planwx-core/internal/types"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	defaultBaseUrl = "https://api.open-meteo.com/v1"
	defaultTimeout = 10 * time.Second

	currentFields = "temperature_2m,apparent_temperature,relative_humidity_2m," +
		"wind_speed_10m,wind_gusts_10m,wind_direction_10m,surface_pressure," +
		"visibility,uv_index,precipitation,precipitation_probability,cloud_cover,weather_code"
	hourlyFields = "temperature_2m,wind_speed_10m,wind_gusts_10m,visibility," +
		"uv_index,precipitation,precipitation_probability,weather_code"
)

type ClientOption func(*Client)

// Client talks to Open-Meteo, the no-credential fallback source. A circuit
// breaker keeps a flapping fallback from piling onto an already bad day.
type Client struct {
	baseUrl string
	hc      *http.Client
	circuit *gobreaker.CircuitBreaker

	Logger *zap.SugaredLogger
}

func BaseUrlOption(baseUrl string) ClientOption {
	return func(c *Client) {
		if baseUrl != "" {
			c.baseUrl = baseUrl
		}
	}
}

func LoggerOption(logger *zap.SugaredLogger) ClientOption {
	return func(c *Client) {
		c.Logger = logger
	}
}

func HttpClientOption(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.hc = hc
	}
}

func New(opts ...ClientOption) *Client {
	c := &Client{
		baseUrl: defaultBaseUrl,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.hc == nil {
		c.hc = &http.Client{Timeout: defaultTimeout}
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop().Sugar()
	}
	c.circuit = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
	return c
}

// Current fetches current conditions. Wind speed is requested in m/s;
// visibility arrives in metres.
func (c *Client) Current(ctx context.Context, coords t.Coordinates) (*CurrentResponse, error) {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%v", coords.Latitude))
	q.Set("longitude", fmt.Sprintf("%v", coords.Longitude))
	q.Set("current", currentFields)
	q.Set("wind_speed_unit", "ms")
	q.Set("timezone", "UTC")

	body, err := c.get(ctx, "/forecast", q)
	if err != nil {
		return nil, err
	}

	var respObj CurrentResponse
	if err := json.Unmarshal(body, &respObj); err != nil {
		return nil, fmt.Errorf("error unmarshalling current response from openmeteo: %w", err)
	}
	return &respObj, nil
}

// Hourly fetches one calendar day of hourly rows with timestamps expressed
// in tz. Callers querying a window fetch its start day and end day
// separately and merge.
func (c *Client) Hourly(ctx context.Context, coords t.Coordinates, date string, tz string) (*HourlyResponse, error) {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%v", coords.Latitude))
	q.Set("longitude", fmt.Sprintf("%v", coords.Longitude))
	q.Set("hourly", hourlyFields)
	q.Set("wind_speed_unit", "ms")
	q.Set("timezone", tz)
	q.Set("start_date", date)
	q.Set("end_date", date)

	body, err := c.get(ctx, "/forecast", q)
	if err != nil {
		return nil, err
	}

	var respObj HourlyResponse
	if err := json.Unmarshal(body, &respObj); err != nil {
		return nil, fmt.Errorf("error unmarshalling hourly response from openmeteo: %w", err)
	}
	return &respObj, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	req, err := url.Parse(c.baseUrl + path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse openmeteo url %s: %w", c.baseUrl+path, err)
	}
	req.RawQuery = q.Encode()

	result, err := c.circuit.Execute(func() (interface{}, error) {
		ctxReq, err := http.NewRequestWithContext(ctx, "GET", req.String(), nil)
		if err != nil {
			return nil, &t.UpstreamError{Provider: "openmeteo", Err: err}
		}
		resp, err := c.hc.Do(ctxReq)
		if err != nil {
			return nil, &t.UpstreamError{Provider: "openmeteo", Err: err}
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &t.UpstreamError{Provider: "openmeteo", Status: resp.StatusCode}
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &t.UpstreamError{Provider: "openmeteo", Err: fmt.Errorf("error reading body of response: %w", err)}
		}
		return body, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &t.UpstreamError{Provider: "openmeteo", Err: err}
		}
		return nil, err
	}
	return result.([]byte), nil
}
