package calculator

import (
	"time"

	"CommodityTracker/internal/model"
)

// Filter returns the entries of series whose day lies in [start, end],
// both ends inclusive. Gap entries are kept.
func Filter(series model.PriceSeries, start, end time.Time) (model.PriceSeries, error) {
	start, end = model.Day(start), model.Day(end)
	lo, hi := -1, -1
	for i := 0; i < series.Len(); i++ {
		d := series.At(i).Date
		if d.Before(start) || d.After(end) {
			continue
		}
		if lo < 0 {
			lo = i
		}
		hi = i
	}
	if lo < 0 {
		return model.PriceSeries{}, rangeError(ErrEmptyRange, series.Symbol, start, end)
	}
	return series.Slice(lo, hi+1), nil
}
