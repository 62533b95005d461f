package analysis

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CommodityTracker/internal/calculator"
	"CommodityTracker/internal/collector"
	"CommodityTracker/internal/indicator"
	"CommodityTracker/internal/model"
	"CommodityTracker/internal/recorder"
)

var start = model.Date(2023, time.January, 2)

func daily(from time.Time, values ...float64) []model.Point {
	pts := make([]model.Point, len(values))
	for i, v := range values {
		pts[i] = model.At(from.AddDate(0, 0, i), v)
	}
	return pts
}

func newAnalyzer(t *testing.T, src indicator.Source) (*Analyzer, *collector.StaticFetcher) {
	t.Helper()
	f := &collector.StaticFetcher{Points: map[string][]model.Point{
		"XAU/USD": daily(start, 100, 110, 90, 95, 105),
		"XAG/USD": daily(start, 20, 21, 19, 22, 24),
	}}
	return New(collector.NewCollector(f, nil), src, nil, 2), f
}

func TestAnalyzer_LumpSum(t *testing.T) {
	a, _ := newAnalyzer(t, nil)
	res, err := a.LumpSum(context.Background(), model.Gold, 100, start, start.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.InDelta(t, 90, res.Summary.FinalValue, 1e-9)
	assert.Len(t, res.Trajectory, 3)
	assert.Equal(t, model.Gold, res.Commodity)
}

func TestAnalyzer_Periodic(t *testing.T) {
	a, _ := newAnalyzer(t, nil)
	plan := calculator.Plan{Start: start, End: start.AddDate(0, 0, 4), IntervalDays: 2, Amount: 10}
	res, err := a.Periodic(context.Background(), model.Silver, plan)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Position.Contributions)
	assert.InDelta(t, 30, res.Summary.Invested, 1e-9)
}

func TestAnalyzer_RollingAndHeatmap(t *testing.T) {
	a, _ := newAnalyzer(t, nil)
	res, err := a.Rolling(context.Background(), model.Gold, 2, start, start.AddDate(0, 0, 4))
	require.NoError(t, err)
	assert.Equal(t, 5, res.Series.Len())
	assert.InDelta(t, 105, res.Stats.Mean[1].Value, 1e-9)
	assert.Equal(t, []int{2023}, res.Heatmap.Years)
	assert.True(t, res.Heatmap.Cells[2023][0].Valid)

	_, err = a.Rolling(context.Background(), model.Gold, 9, start, start.AddDate(0, 0, 4))
	require.ErrorIs(t, err, calculator.ErrInvalidWindow)
}

func TestAnalyzer_Compare(t *testing.T) {
	a, _ := newAnalyzer(t, nil)
	cmp, err := a.Compare(context.Background(), model.Gold, model.Silver, start, start.AddDate(0, 0, 4))
	require.NoError(t, err)
	assert.Equal(t, "XAU/USD", cmp.SymbolA)
	assert.Equal(t, "XAG/USD", cmp.SymbolB)
	assert.InDelta(t, 5, cmp.ReturnA, 1e-9)
	assert.InDelta(t, 20, cmp.ReturnB, 1e-9)
}

func TestAnalyzer_CorrelateIsolatesFailures(t *testing.T) {
	src := &indicator.StaticSource{
		Series: map[string]model.PriceSeries{
			"UP":   model.NewPriceSeries("UP", daily(start, 3, 5, 1, 2, 4)),
			"DOWN": model.NewPriceSeries("DOWN", daily(start, 3, 1, 5, 4, 2)),
		},
		Errors: map[string]error{"BROKEN": errors.New("status 500")},
	}
	a, _ := newAnalyzer(t, src)

	r, err := a.Correlate(context.Background(), model.Gold, []string{"UP", "DOWN", "BROKEN", "EMPTY", "UP"}, 10, start, start.AddDate(0, 0, 4))
	require.NoError(t, err)

	require.Len(t, r.TopIncreasing, 2)
	assert.Equal(t, "UP", r.TopIncreasing[0].SeriesID)
	assert.InDelta(t, 1, r.TopIncreasing[0].Coefficient, 1e-12)
	assert.Equal(t, "DOWN", r.TopDecreasing[0].SeriesID)
	assert.InDelta(t, -1, r.TopDecreasing[0].Coefficient, 1e-12)

	require.Len(t, r.Skipped, 2)
	assert.Equal(t, "BROKEN", r.Skipped[0].SeriesID)
	assert.Contains(t, r.Skipped[0].Reason, "500")
	assert.Equal(t, model.SkippedIndicator{SeriesID: "EMPTY", Reason: calculator.ReasonNoData}, r.Skipped[1])
}

func TestAnalyzer_Index(t *testing.T) {
	src := &indicator.StaticSource{Series: map[string]model.PriceSeries{
		"CPIAUCSL": model.NewPriceSeries("CPIAUCSL", []model.Point{model.At(start, 300), model.At(start.AddDate(0, 0, 3), 303)}),
	}}
	a, _ := newAnalyzer(t, src)
	cmp, err := a.Index(context.Background(), model.Gold, "CPIAUCSL", start, start.AddDate(0, 0, 4))
	require.NoError(t, err)
	require.Len(t, cmp.B, 5)
	assert.InDelta(t, 100, cmp.B[2].Value, 1e-9)
	assert.InDelta(t, 101, cmp.B[4].Value, 1e-9)

	_, err = a.Index(context.Background(), model.Gold, "MISSING", start, start.AddDate(0, 0, 4))
	require.ErrorIs(t, err, calculator.ErrEmptyRange)
}

func TestAnalyzer_SeriesFallsBackToStore(t *testing.T) {
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer rec.Close()

	f := &collector.StaticFetcher{Points: map[string][]model.Point{
		"XAU/USD": daily(start, 1, 2, 3),
	}}
	a := New(collector.NewCollector(f, nil), nil, rec, 1)

	_, err = a.Series(context.Background(), model.Gold, start)
	require.NoError(t, err)

	f.Err = errors.New("offline")
	s, err := a.Series(context.Background(), model.Gold, start)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())

	_, err = a.Series(context.Background(), model.Silver, start)
	require.Error(t, err)
}
