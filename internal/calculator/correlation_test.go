package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CommodityTracker/internal/model"
)

func TestRanks_Ties(t *testing.T) {
	assert.Equal(t, []float64{1, 2.5, 2.5, 4}, Ranks([]float64{1, 2, 2, 3}))
	assert.Equal(t, []float64{3, 1, 2}, Ranks([]float64{30, 10, 20}))
	assert.Equal(t, []float64{2, 2, 2}, Ranks([]float64{7, 7, 7}))
}

func TestSpearman(t *testing.T) {
	tests := []struct {
		name string
		x, y []float64
		want float64
		ok   bool
	}{
		{"monotonic increasing", []float64{1, 2, 3, 4}, []float64{10, 100, 1000, 10000}, 1, true},
		{"monotonic decreasing", []float64{1, 2, 3, 4}, []float64{4, 3, 2, 1}, -1, true},
		{"two points", []float64{1, 2}, []float64{5, 3}, -1, true},
		{"constant", []float64{1, 2, 3}, []float64{5, 5, 5}, 0, false},
		{"single point", []float64{1}, []float64{1}, 0, false},
		{"length mismatch", []float64{1, 2}, []float64{1}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rho, ok := Spearman(tt.x, tt.y)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, rho, 1e-12)
		})
	}
}

func TestSpearman_Bounded(t *testing.T) {
	x := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3}
	y := []float64{2, 7, 1, 8, 2, 8, 1, 8, 2, 8}
	rho, ok := Spearman(x, y)
	require.True(t, ok)
	assert.GreaterOrEqual(t, rho, -1.0)
	assert.LessOrEqual(t, rho, 1.0)

	back, _ := Spearman(y, x)
	assert.InDelta(t, rho, back, 1e-12)
}

func TestAlign_InnerJoinOnValidDays(t *testing.T) {
	a := series("XAU/USD", jan1, 1, 2, 3, 4)
	b := model.NewPriceSeries("DGS10", []model.Point{
		model.At(jan1.AddDate(0, 0, 1), 20),
		model.Gap(jan1.AddDate(0, 0, 2)),
		model.At(jan1.AddDate(0, 0, 3), 40),
		model.At(jan1.AddDate(0, 0, 9), 90),
	})
	x, y := Align(a, b)
	assert.Equal(t, []float64{2, 4}, x)
	assert.Equal(t, []float64{20, 40}, y)
}

func TestRankCorrelations_SkipsEmptyIndicator(t *testing.T) {
	gold := series("XAU/USD", jan1, 1, 2, 3, 4, 5)
	indicators := map[string]model.PriceSeries{
		"UP":    series("UP", jan1, 10, 20, 30, 40, 50),
		"DOWN":  series("DOWN", jan1, 5, 4, 3, 2, 1),
		"EMPTY": model.NewPriceSeries("EMPTY", nil),
	}
	r, err := RankCorrelations(gold, indicators, 10)
	require.NoError(t, err)

	require.Len(t, r.TopIncreasing, 2)
	require.Len(t, r.TopDecreasing, 2)
	assert.Equal(t, "UP", r.TopIncreasing[0].SeriesID)
	assert.InDelta(t, 1, r.TopIncreasing[0].Coefficient, 1e-12)
	assert.Equal(t, 5, r.TopIncreasing[0].Observations)
	assert.Equal(t, "DOWN", r.TopDecreasing[0].SeriesID)
	assert.InDelta(t, -1, r.TopDecreasing[0].Coefficient, 1e-12)

	require.Len(t, r.Skipped, 1)
	assert.Equal(t, model.SkippedIndicator{SeriesID: "EMPTY", Reason: ReasonNoData}, r.Skipped[0])
}

func TestRankCorrelations_SkipReasons(t *testing.T) {
	gold := series("XAU/USD", jan1, 1, 2, 3)
	indicators := map[string]model.PriceSeries{
		"FLAT":    series("FLAT", jan1, 7, 7, 7),
		"OVERLAP": series("OVERLAP", jan1.AddDate(0, 0, 2), 1, 2, 3),
	}
	r, err := RankCorrelations(gold, indicators, 3)
	require.NoError(t, err)
	assert.Empty(t, r.TopIncreasing)
	assert.Empty(t, r.TopDecreasing)
	assert.Equal(t, []model.SkippedIndicator{
		{SeriesID: "FLAT", Reason: ReasonZeroVariance},
		{SeriesID: "OVERLAP", Reason: ReasonFewOverlap},
	}, r.Skipped)
}

func TestRankCorrelations_OrderingAndTruncation(t *testing.T) {
	gold := series("XAU/USD", jan1, 1, 2, 3, 4)
	indicators := map[string]model.PriceSeries{
		"B": series("B", jan1, 1, 2, 3, 4),
		"A": series("A", jan1, 2, 3, 4, 5),
		"C": series("C", jan1, 1, 3, 2, 4),
		"D": series("D", jan1, 4, 3, 2, 1),
	}
	r, err := RankCorrelations(gold, indicators, 2)
	require.NoError(t, err)

	require.Len(t, r.TopIncreasing, 2)
	assert.Equal(t, "A", r.TopIncreasing[0].SeriesID, "ties broken by id")
	assert.Equal(t, "B", r.TopIncreasing[1].SeriesID)

	require.Len(t, r.TopDecreasing, 2)
	assert.Equal(t, "D", r.TopDecreasing[0].SeriesID)
	assert.Equal(t, "C", r.TopDecreasing[1].SeriesID)

	for i := 1; i < len(r.TopIncreasing); i++ {
		assert.GreaterOrEqual(t, r.TopIncreasing[i-1].Coefficient, r.TopIncreasing[i].Coefficient)
	}
}

func TestRankCorrelations_EmptyAndInvalidTopN(t *testing.T) {
	r, err := RankCorrelations(threeDay(), nil, 5)
	require.NoError(t, err)
	assert.Empty(t, r.TopIncreasing)
	assert.Empty(t, r.Skipped)

	_, err = RankCorrelations(threeDay(), nil, 0)
	require.ErrorIs(t, err, ErrInvalidTopN)
}
