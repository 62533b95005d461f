package calculator

import (
	"time"

	"CommodityTracker/internal/model"
)

// series builds a gapless daily series beginning at start.
func series(symbol string, start time.Time, values ...float64) model.PriceSeries {
	pts := make([]model.Point, len(values))
	for i, v := range values {
		pts[i] = model.At(start.AddDate(0, 0, i), v)
	}
	return model.NewPriceSeries(symbol, pts)
}

var jan1 = model.Date(2020, time.January, 1)

func threeDay() model.PriceSeries {
	return series("XAU/USD", jan1, 100, 110, 90)
}

