package calculator

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"CommodityTracker/internal/model"
)

// MonthlyReturnHeatmap averages the defined daily returns per calendar
// month. Months without any defined return stay invalid.
func MonthlyReturnHeatmap(rs model.RollingStats) model.Heatmap {
	type key struct {
		year  int
		month int
	}
	buckets := make(map[key][]float64)
	years := make(map[int]bool)
	for _, p := range rs.DailyReturnPct {
		y := p.Date.Year()
		years[y] = true
		if !p.Valid {
			continue
		}
		k := key{y, int(p.Date.Month()) - 1}
		buckets[k] = append(buckets[k], p.Value)
	}

	hm := model.Heatmap{Cells: make(map[int][12]model.Point, len(years))}
	for y := range years {
		hm.Years = append(hm.Years, y)
	}
	sort.Ints(hm.Years)
	for _, y := range hm.Years {
		var row [12]model.Point
		for m := 0; m < 12; m++ {
			first := model.Date(y, 1, 1).AddDate(0, m, 0)
			row[m] = model.Gap(first)
			if vals := buckets[key{y, m}]; len(vals) > 0 {
				row[m] = model.At(first, stat.Mean(vals, nil))
			}
		}
		hm.Cells[y] = row
	}
	return hm
}
