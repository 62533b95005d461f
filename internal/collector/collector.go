package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phuslu/log"

	"CommodityTracker/internal/model"
)

// ErrNoData is returned when a fetch succeeds but yields no records.
var ErrNoData = errors.New("no price data returned")

// StaticFetcher returns fixed data for development and testing.
type StaticFetcher struct {
	Points map[string][]model.Point // keyed by instrument
	Err    error
}

func (m *StaticFetcher) Name() string { return "static" }

func (m *StaticFetcher) FetchDaily(_ context.Context, instrument string, from time.Time) ([]model.Point, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	from = model.Day(from)
	var out []model.Point
	for _, p := range m.Points[instrument] {
		if !p.Date.Before(from) {
			out = append(out, p)
		}
	}
	return out, nil
}

// SyntheticPoints generates a gently trending daily series for offline runs.
func SyntheticPoints(basePrice float64, from time.Time, days int) []model.Point {
	points := make([]model.Point, days)
	for i := 0; i < days; i++ {
		p := basePrice * (1 + float64(i-days/2)*0.001)
		points[i] = model.At(model.Day(from).AddDate(0, 0, i), p)
	}
	return points
}

// Collector fetches a commodity series from a primary source, falling back
// to a secondary one when the primary fails or returns nothing.
type Collector struct {
	Primary  Fetcher
	Fallback Fetcher
}

// NewCollector creates a new Collector. fallback may be nil.
func NewCollector(primary, fallback Fetcher) *Collector {
	return &Collector{Primary: primary, Fallback: fallback}
}

// Collect fetches daily prices for c from the given day onward.
func (c *Collector) Collect(ctx context.Context, commodity model.Commodity, from time.Time) (model.PriceSeries, error) {
	instrument := commodity.Instrument()
	if instrument == "" {
		return model.PriceSeries{}, fmt.Errorf("unknown commodity %q", commodity)
	}

	points, err := fetchNonEmpty(ctx, c.Primary, instrument, from)
	if err != nil && c.Fallback != nil {
		log.Warn().Err(err).Str("source", c.Primary.Name()).Str("fallback", c.Fallback.Name()).
			Str("instrument", instrument).Msg("primary price source failed, trying fallback")
		var ferr error
		points, ferr = fetchNonEmpty(ctx, c.Fallback, instrument, from)
		if ferr != nil {
			return model.PriceSeries{}, fmt.Errorf("fetch %s: %w; fallback also failed: %w", instrument, err, ferr)
		}
		err = nil
	}
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("fetch %s: %w", instrument, err)
	}

	series := model.NewPriceSeries(instrument, points)
	log.Debug().Str("instrument", instrument).Int("points", series.Len()).Msg("collected price series")
	return series, nil
}

func fetchNonEmpty(ctx context.Context, f Fetcher, instrument string, from time.Time) ([]model.Point, error) {
	points, err := f.FetchDaily(ctx, instrument, from)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name(), err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%s: %w", f.Name(), ErrNoData)
	}
	return points, nil
}
