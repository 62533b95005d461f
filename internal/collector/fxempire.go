package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"CommodityTracker/internal/model"
)

const fxempireCandlesURL = "https://www.fxempire.com/api/v1/en/commodities/chart/candles"

// FXEmpireFetcher implements Fetcher using the FXEmpire candles endpoint.
type FXEmpireFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewFXEmpireFetcher creates a new fetcher with optional proxy support.
func NewFXEmpireFetcher(proxyURL string, timeout time.Duration) *FXEmpireFetcher {
	return &FXEmpireFetcher{
		BaseURL: fxempireCandlesURL,
		Client:  NewHTTPClient(proxyURL, timeout),
	}
}

func (f *FXEmpireFetcher) Name() string { return "fxempire" }

// fxCandle is the expected JSON shape of one daily candle. Only Date and
// Close are used.
type fxCandle struct {
	Date  interface{} `json:"Date"`
	Close interface{} `json:"Close"`
}

func (f *FXEmpireFetcher) FetchDaily(ctx context.Context, instrument string, from time.Time) ([]model.Point, error) {
	q := url.Values{}
	q.Set("instrument", instrument)
	q.Set("granularity", "D")
	q.Set("from", strconv.FormatInt(model.Day(from).Unix(), 10))
	q.Set("price", "M")
	q.Set("count", "5000")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", "https://www.fxempire.com/commodities/gold")
	req.Header.Set("Sec-Fetch-Mode", "cors")
	req.Header.Set("Sec-Fetch-Site", "same-origin")
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fxempire fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fxempire: status %d, body: %s", resp.StatusCode, string(body))
	}

	var candles []fxCandle
	if err := json.NewDecoder(resp.Body).Decode(&candles); err != nil {
		return nil, fmt.Errorf("fxempire decode: %w", err)
	}
	return candlesToPoints(candles), nil
}

// candlesToPoints drops candles with an unreadable date and turns a
// missing or non-numeric close into a gap.
func candlesToPoints(candles []fxCandle) []model.Point {
	points := make([]model.Point, 0, len(candles))
	for _, c := range candles {
		day, ok := parseDate(c.Date)
		if !ok {
			continue
		}
		if v, ok := toFloat(c.Close); ok {
			points = append(points, model.At(day, v))
		} else {
			points = append(points, model.Gap(day))
		}
	}
	return points
}
