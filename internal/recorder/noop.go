package recorder

import (
	"context"
	"time"

	"CommodityTracker/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) SaveSeries(_ context.Context, s model.PriceSeries, source string) (FetchRecord, error) {
	return FetchRecord{Symbol: s.Symbol, Source: source, Points: s.Len()}, nil
}

func (n *NoopRecorder) LoadSeries(_ context.Context, symbol string, _, _ time.Time) (model.PriceSeries, error) {
	return model.NewPriceSeries(symbol, nil), nil
}

func (n *NoopRecorder) LastFetch(_ context.Context, _ string) (FetchRecord, bool, error) {
	return FetchRecord{}, false, nil
}

func (n *NoopRecorder) Close() error { return nil }
