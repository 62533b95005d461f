package calculator

import (
	"math"
	"time"

	"CommodityTracker/internal/model"
)

const daysPerYear = 365.25

// usablePrice reports whether v can serve as a purchase or base price.
func usablePrice(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// yearsBetween returns the elapsed calendar time in years.
func yearsBetween(start, end time.Time) float64 {
	days := math.Round(model.Day(end).Sub(model.Day(start)).Hours() / 24)
	return days / daysPerYear
}

// AnnualizedReturn is the compound yearly growth rate turning invested into
// final over the given number of years. It is 0 when years <= 0.
func AnnualizedReturn(final, invested, years float64) float64 {
	if years <= 0 || invested <= 0 {
		return 0
	}
	return math.Pow(final/invested, 1/years) - 1
}

// extremes scans the valid valuations for the lowest and highest value.
func extremes(t model.Trajectory) (low, high float64) {
	low, high = math.Inf(1), math.Inf(-1)
	for _, v := range t {
		if !v.Valid {
			continue
		}
		if v.Value < low {
			low = v.Value
		}
		if v.Value > high {
			high = v.Value
		}
	}
	if math.IsInf(low, 1) {
		return 0, 0
	}
	return low, high
}

// summarize fills the metrics shared by lump-sum and periodic results.
func summarize(t model.Trajectory, final, invested float64, start, end time.Time) model.Summary {
	low, high := extremes(t)
	years := yearsBetween(start, end)
	return model.Summary{
		Invested:         invested,
		FinalValue:       final,
		TotalReturn:      final - invested,
		AnnualizedReturn: AnnualizedReturn(final, invested, years),
		MinValue:         low,
		MaxValue:         high,
		Start:            model.Day(start),
		End:              model.Day(end),
		Years:            years,
	}
}
