package calculator

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"CommodityTracker/internal/model"
)

// Skip reasons reported in model.Ranking.Skipped.
const (
	ReasonNoData       = "no observations"
	ReasonFewOverlap   = "insufficient overlap"
	ReasonZeroVariance = "constant series"
)

// RankCorrelations computes the Spearman correlation of commodity against
// every indicator and returns the topN strongest positive and negative
// relationships. An indicator that cannot be correlated is recorded in
// Skipped and never aborts the batch.
func RankCorrelations(commodity model.PriceSeries, indicators map[string]model.PriceSeries, topN int) (model.Ranking, error) {
	if topN < 1 {
		return model.Ranking{}, fmt.Errorf("%w: got %d", ErrInvalidTopN, topN)
	}

	ids := make([]string, 0, len(indicators))
	for id := range indicators {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var (
		ranking model.Ranking
		entries []model.CorrelationEntry
	)
	for _, id := range ids {
		ind := indicators[id]
		if ind.Empty() {
			ranking.Skipped = append(ranking.Skipped, model.SkippedIndicator{SeriesID: id, Reason: ReasonNoData})
			continue
		}
		x, y := Align(commodity, ind)
		if len(x) < 2 {
			ranking.Skipped = append(ranking.Skipped, model.SkippedIndicator{SeriesID: id, Reason: ReasonFewOverlap})
			continue
		}
		rho, ok := Spearman(x, y)
		if !ok {
			ranking.Skipped = append(ranking.Skipped, model.SkippedIndicator{SeriesID: id, Reason: ReasonZeroVariance})
			continue
		}
		entries = append(entries, model.CorrelationEntry{SeriesID: id, Coefficient: rho, Observations: len(x)})
	}

	inc := make([]model.CorrelationEntry, len(entries))
	copy(inc, entries)
	sort.SliceStable(inc, func(i, j int) bool {
		if inc[i].Coefficient != inc[j].Coefficient {
			return inc[i].Coefficient > inc[j].Coefficient
		}
		return inc[i].SeriesID < inc[j].SeriesID
	})
	dec := make([]model.CorrelationEntry, len(entries))
	copy(dec, entries)
	sort.SliceStable(dec, func(i, j int) bool {
		if dec[i].Coefficient != dec[j].Coefficient {
			return dec[i].Coefficient < dec[j].Coefficient
		}
		return dec[i].SeriesID < dec[j].SeriesID
	})

	ranking.TopIncreasing = inc[:min(topN, len(inc))]
	ranking.TopDecreasing = dec[:min(topN, len(dec))]
	return ranking, nil
}

// Align inner-joins two series on the days where both have a value.
func Align(a, b model.PriceSeries) (x, y []float64) {
	other := make(map[time.Time]float64, b.Len())
	for _, p := range b.Valid() {
		other[p.Date] = p.Value
	}
	for _, p := range a.Valid() {
		if v, ok := other[p.Date]; ok {
			x = append(x, p.Value)
			y = append(y, v)
		}
	}
	return x, y
}

// Spearman returns the rank correlation of x and y. ok is false when the
// coefficient is undefined (mismatched lengths, fewer than two points, or
// a constant input).
func Spearman(x, y []float64) (rho float64, ok bool) {
	if len(x) != len(y) || len(x) < 2 {
		return 0, false
	}
	rx, ry := Ranks(x), Ranks(y)
	if stat.Variance(rx, nil) == 0 || stat.Variance(ry, nil) == 0 {
		return 0, false
	}
	rho = stat.Correlation(rx, ry, nil)
	if math.IsNaN(rho) {
		return 0, false
	}
	return math.Max(-1, math.Min(1, rho)), true
}

// Ranks assigns 1-based ranks; tied values share their average rank.
func Ranks(values []float64) []float64 {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	ranks := make([]float64, len(values))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}
