// Package openmeteo fetches daily weather history from the Open-Meteo
// archive API.
package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/couchcryptid/travel-trends-collector/internal/domain"
	"github.com/couchcryptid/travel-trends-collector/internal/observability"
)

const (
	DefaultBaseURL = "https://archive-api.open-meteo.com/v1/archive"

	defaultRetries = 5
	defaultBackoff = 200 * time.Millisecond
)

var dailyVariables = []string{
	"precipitation_sum",
	"temperature_2m_mean",
	"daylight_duration",
	"wind_speed_10m_max",
}

// Cache stores raw response bodies by request URL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, body []byte) error
}

// Client implements domain.WeatherClient.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retries    int
	backoff    time.Duration
	cache      Cache
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithRetry sets the retry count and the initial backoff interval, which
// doubles on every attempt.
func WithRetry(retries int, initial time.Duration) Option {
	return func(c *Client) {
		c.retries = retries
		c.backoff = initial
	}
}

// WithCache serves repeated requests from cache.
func WithCache(cache Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// NewClient creates an archive API client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		retries:    defaultRetries,
		backoff:    defaultBackoff,
		logger:     logger,
		metrics:    metrics,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Daily returns the daily series for the query's point and season. The
// half-open range is sent as inclusive start and end dates.
func (c *Client) Daily(ctx context.Context, q domain.WeatherQuery) (domain.DailySeries, error) {
	params := url.Values{
		"latitude":   {strconv.FormatFloat(q.Coordinates.Lat, 'f', 4, 64)},
		"longitude":  {strconv.FormatFloat(q.Coordinates.Lon, 'f', 4, 64)},
		"start_date": {q.Range.Start.String()},
		"end_date":   {q.Range.End.AddDays(-1).String()},
		"daily":      {strings.Join(dailyVariables, ",")},
	}
	fullURL := c.baseURL + "?" + params.Encode()

	if body, ok := c.cached(ctx, fullURL); ok {
		return parseDaily(body)
	}

	body, err := c.fetch(ctx, fullURL)
	if err != nil {
		return domain.DailySeries{}, err
	}
	series, err := parseDaily(body)
	if err != nil {
		return domain.DailySeries{}, err
	}

	// Only bodies that parse are cached.
	if c.cache != nil {
		if err := c.cache.Put(ctx, fullURL, body); err != nil {
			c.logger.Warn("weather cache write failed", "error", err)
		}
	}
	return series, nil
}

func (c *Client) cached(ctx context.Context, fullURL string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	body, ok, err := c.cache.Get(ctx, fullURL)
	if err != nil {
		c.logger.Warn("weather cache read failed", "error", err)
	}
	if ok {
		c.metrics.Cache.WithLabelValues("response", "hit").Inc()
		return body, true
	}
	c.metrics.Cache.WithLabelValues("response", "miss").Inc()
	return nil, false
}

// fetch requests fullURL, retrying throttling and server errors.
func (c *Client) fetch(ctx context.Context, fullURL string) ([]byte, error) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.backoff
	eb.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(max(c.retries, 0))), ctx)

	notify := func(err error, wait time.Duration) {
		c.metrics.WeatherRetries.Inc()
		c.logger.Debug("retrying weather request", "error", err, "wait", wait)
	}
	return backoff.RetryNotifyWithData(func() ([]byte, error) {
		return c.get(ctx, fullURL)
	}, policy, notify)
}

// get performs one attempt. Client errors other than 429 are permanent.
func (c *Client) get(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		return nil, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read weather response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("weather API error: status %d: %s", resp.StatusCode, apiReason(body))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}
	return body, nil
}

type archiveResponse struct {
	Daily struct {
		Time          []string   `json:"time"`
		Precipitation []*float64 `json:"precipitation_sum"`
		Temperature   []*float64 `json:"temperature_2m_mean"`
		Daylight      []*float64 `json:"daylight_duration"`
		WindSpeed     []*float64 `json:"wind_speed_10m_max"`
	} `json:"daily"`
}

func parseDaily(body []byte) (domain.DailySeries, error) {
	var r archiveResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return domain.DailySeries{}, fmt.Errorf("decode weather response: %w", err)
	}
	if len(r.Daily.Time) == 0 {
		return domain.DailySeries{}, errors.New("weather response has no daily data")
	}
	return domain.DailySeries{
		Precipitation: values(r.Daily.Precipitation),
		Temperature:   values(r.Daily.Temperature),
		Daylight:      values(r.Daily.Daylight),
		WindSpeed:     values(r.Daily.WindSpeed),
	}, nil
}

// values maps JSON nulls to NaN.
func values(in []*float64) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		if v == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *v
	}
	return out
}

func apiReason(body []byte) string {
	var e struct {
		Reason string `json:"reason"`
	}
	if json.Unmarshal(body, &e) == nil && e.Reason != "" {
		return e.Reason
	}
	return string(body)
}
