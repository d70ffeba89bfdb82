// Package serpapi queries Google Trends regional interest through SerpAPI.
package serpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/travel-trends-collector/internal/domain"
)

const (
	DefaultBaseURL = "https://serpapi.com/search"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

var (
	ErrHTTPStatus   = errors.New("serpapi: unexpected HTTP status")
	ErrAPI          = errors.New("serpapi: API reported an error")
	ErrEmptyPayload = errors.New("serpapi: empty payload")
)

// Client implements domain.TrendsClient against the google_trends engine.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a SerpAPI client.
func NewClient(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Interest returns city-level interest for q.Keyword in q.GeoCode over
// q.Range. An explicit empty interest_by_region yields an empty slice; a
// response that omits it is ErrEmptyPayload.
func (c *Client) Interest(ctx context.Context, q domain.TrendQuery) ([]domain.RegionalInterest, error) {
	params := url.Values{
		"engine":    {"google_trends"},
		"q":         {q.Keyword},
		"geo":       {q.GeoCode},
		"date":      {q.Range.String()},
		"region":    {"CITY"},
		"data_type": {"GEO_MAP_0"},
		"api_key":   {c.apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trends request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read trends response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrHTTPStatus, resp.StatusCode)
	}

	regions, err := parse(body)
	if err != nil {
		c.logger.Debug("trends payload rejected",
			"keyword", q.Keyword,
			"geo", q.GeoCode,
			"bytes", len(body),
			"error", err,
		)
		return nil, err
	}
	return regions, nil
}

type searchResponse struct {
	Error            string    `json:"error"`
	InterestByRegion *[]region `json:"interest_by_region"`
}

type region struct {
	Location       string          `json:"location"`
	Value          string          `json:"value"`
	ExtractedValue json.RawMessage `json:"extracted_value"`
}

func parse(body []byte) ([]domain.RegionalInterest, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrEmptyPayload
	}

	var r searchResponse
	if err := json.Unmarshal(trimmed, &r); err != nil {
		return nil, fmt.Errorf("decode trends response: %w", err)
	}
	if r.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrAPI, r.Error)
	}
	if r.InterestByRegion == nil {
		return nil, fmt.Errorf("%w: no interest_by_region", ErrEmptyPayload)
	}

	out := make([]domain.RegionalInterest, 0, len(*r.InterestByRegion))
	for _, reg := range *r.InterestByRegion {
		out = append(out, domain.RegionalInterest{Location: reg.Location, Value: reg.value()})
	}
	return out, nil
}

// value reads extracted_value, which may be a number or a numeric string,
// and falls back to the display value. Anything unparseable counts as 0.
func (r region) value() float64 {
	raw := strings.Trim(strings.TrimSpace(string(r.ExtractedValue)), `"`)
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(r.Value), 64); err == nil {
		return v
	}
	return 0
}
