package indicator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/time/rate"

	"CommodityTracker/internal/model"
)

const (
	// DefaultBaseURL is the base URL for the FRED API.
	DefaultBaseURL = "https://api.stlouisfed.org/fred"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRequestsPerMinute matches the FRED API quota.
	DefaultRequestsPerMinute = 120
)

// ErrMissingAPIKey is returned when no FRED key was configured.
var ErrMissingAPIKey = errors.New("FRED API key is not set")

// FREDClient is a FRED observations client.
type FREDClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// ClientOption configures the FREDClient.
type ClientOption func(*FREDClient)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *FREDClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *FREDClient) {
		c.httpClient = httpClient
	}
}

// WithRequestsPerMinute sets a custom rate limit.
func WithRequestsPerMinute(n int) ClientOption {
	return func(c *FREDClient) {
		if n > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(float64(n)/60), max(1, n/60))
		}
	}
}

// NewFREDClient creates a new FRED API client.
func NewFREDClient(apiKey string, opts ...ClientOption) *FREDClient {
	c := &FREDClient{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	WithRequestsPerMinute(DefaultRequestsPerMinute)(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchSeries returns the observations of id in [start, end]. A missing
// value (".") becomes a gap. A zero end leaves the range open.
func (c *FREDClient) FetchSeries(ctx context.Context, id string, start, end time.Time) (model.PriceSeries, error) {
	if c.apiKey == "" {
		return model.PriceSeries{}, ErrMissingAPIKey
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return model.PriceSeries{}, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("series_id", id)
	params.Set("api_key", c.apiKey)
	params.Set("file_type", "json")
	if !start.IsZero() {
		params.Set("observation_start", start.Format(model.DateFormat))
	}
	if !end.IsZero() {
		params.Set("observation_end", end.Format(model.DateFormat))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/series/observations?"+params.Encode(), nil)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("failed to create request: %w", err)
	}
	log.Debug().Str("series", id).Msg("FRED API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		var parsed observationsResponse
		msg := string(body)
		if json.Unmarshal(body, &parsed) == nil && parsed.ErrorMessage != "" {
			msg = parsed.ErrorMessage
		}
		return model.PriceSeries{}, &APIError{StatusCode: resp.StatusCode, Message: msg, SeriesID: id}
	}

	var result observationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return model.PriceSeries{}, fmt.Errorf("failed to decode response: %w", err)
	}

	points := make([]model.Point, 0, len(result.Observations))
	for _, o := range result.Observations {
		day, err := time.Parse(model.DateFormat, o.Date)
		if err != nil {
			continue
		}
		v, err := strconv.ParseFloat(o.Value, 64)
		if err != nil || !model.Finite(v) {
			points = append(points, model.Gap(day))
			continue
		}
		points = append(points, model.At(day, v))
	}
	return model.NewPriceSeries(id, points), nil
}

// StaticSource serves fixed series for tests and offline runs.
type StaticSource struct {
	Series map[string]model.PriceSeries
	Errors map[string]error
}

func (s *StaticSource) FetchSeries(_ context.Context, id string, start, end time.Time) (model.PriceSeries, error) {
	if err := s.Errors[id]; err != nil {
		return model.PriceSeries{}, err
	}
	series, ok := s.Series[id]
	if !ok {
		return model.NewPriceSeries(id, nil), nil
	}
	var out []model.Point
	for _, p := range series.Points() {
		if (!start.IsZero() && p.Date.Before(model.Day(start))) || (!end.IsZero() && p.Date.After(model.Day(end))) {
			continue
		}
		out = append(out, p)
	}
	return model.NewPriceSeries(id, out), nil
}
