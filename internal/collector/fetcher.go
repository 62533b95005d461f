package collector

import (
	"context"
	"time"

	"CommodityTracker/internal/model"
)

// Fetcher defines the interface for fetching daily commodity prices.
type Fetcher interface {
	// FetchDaily returns daily closes for instrument (e.g. "XAU/USD") from
	// the given day onward. Records with a missing close come back as gaps.
	FetchDaily(ctx context.Context, instrument string, from time.Time) ([]model.Point, error)
	Name() string
}
