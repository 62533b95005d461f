package recorder

import (
	"context"
	"time"

	"CommodityTracker/internal/model"
)

// FetchRecord describes one stored download of a series.
type FetchRecord struct {
	ID        string
	Symbol    string
	Source    string
	FetchedAt time.Time
	Points    int
	FirstDay  time.Time
	LastDay   time.Time
}

// Recorder persists fetched raw series so later runs can work offline.
// Computed analytics are never stored.
type Recorder interface {
	// SaveSeries upserts every point of series and logs the fetch. A point
	// already stored for the same day is replaced.
	SaveSeries(ctx context.Context, series model.PriceSeries, source string) (FetchRecord, error)
	// LoadSeries returns the stored points of symbol in [start, end]. A zero
	// bound leaves that side open.
	LoadSeries(ctx context.Context, symbol string, start, end time.Time) (model.PriceSeries, error)
	// LastFetch returns the most recent fetch of symbol; ok is false if none.
	LastFetch(ctx context.Context, symbol string) (rec FetchRecord, ok bool, err error)
	Close() error
}
