package calculator

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"CommodityTracker/internal/model"
)

// Rolling computes the trailing mean and sample standard deviation over
// window entries, plus the daily percentage return. All outputs are
// parallel to the series; entries are invalid where the window is not yet
// full or contains a gap.
func Rolling(series model.PriceSeries, window int) (model.RollingStats, error) {
	n := series.Len()
	if window < 1 || window > n {
		return model.RollingStats{}, fmt.Errorf("%w: %d for %s with %d entries", ErrInvalidWindow, window, series.Symbol, n)
	}

	rs := model.RollingStats{
		Window:         window,
		Mean:           make([]model.Point, n),
		StdDev:         make([]model.Point, n),
		DailyReturnPct: make([]model.Point, n),
	}
	buf := make([]float64, 0, window)
	for i := 0; i < n; i++ {
		p := series.At(i)
		rs.Mean[i] = model.Gap(p.Date)
		rs.StdDev[i] = model.Gap(p.Date)
		rs.DailyReturnPct[i] = dailyReturn(series, i)

		if i < window-1 {
			continue
		}
		buf = buf[:0]
		for j := i - window + 1; j <= i; j++ {
			q := series.At(j)
			if !q.Valid {
				buf = buf[:0]
				break
			}
			buf = append(buf, q.Value)
		}
		if len(buf) != window {
			continue
		}
		mean, sd := stat.Mean(buf, nil), 0.0
		if window > 1 {
			sd = stat.StdDev(buf, nil)
		}
		rs.Mean[i] = model.At(p.Date, mean)
		rs.StdDev[i] = model.At(p.Date, sd)
	}
	return rs, nil
}

func dailyReturn(series model.PriceSeries, i int) model.Point {
	cur := series.At(i)
	if i == 0 {
		return model.Gap(cur.Date)
	}
	prev := series.At(i - 1)
	if !cur.Valid || !prev.Valid || prev.Value == 0 {
		return model.Gap(cur.Date)
	}
	return model.At(cur.Date, (cur.Value/prev.Value-1)*100)
}
