package chart

import (
	"errors"
	"fmt"
	"math"

	"github.com/vicanso/go-charts/v2"

	"CommodityTracker/internal/model"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("no data to chart")

const (
	width  = 1000
	height = 600
)

// Trajectory draws an investment's value and cumulative cash invested.
func Trajectory(title string, t model.Trajectory) ([]byte, error) {
	var (
		labels          []string
		value, invested []float64
	)
	for _, v := range t {
		if !v.Valid {
			continue
		}
		labels = append(labels, v.Date.Format(model.DateFormat))
		value = append(value, v.Value)
		invested = append(invested, v.Invested)
	}
	if len(value) == 0 {
		return nil, ErrNoData
	}
	return renderLines(title, "USD", labels, []string{"Value", "Invested"}, [][]float64{value, invested}, false)
}

// Comparison draws two series rebased to 100.
func Comparison(cmp model.Comparison) ([]byte, error) {
	if len(cmp.A) == 0 {
		return nil, ErrNoData
	}
	labels := make([]string, len(cmp.A))
	a := make([]float64, len(cmp.A))
	b := make([]float64, len(cmp.B))
	for i := range cmp.A {
		labels[i] = cmp.A[i].Date.Format(model.DateFormat)
		a[i] = cmp.A[i].Value
		b[i] = cmp.B[i].Value
	}
	title := fmt.Sprintf("%s vs %s", cmp.SymbolA, cmp.SymbolB)
	sub := fmt.Sprintf("base = 100 • %+.2f%% vs %+.2f%%", cmp.ReturnA, cmp.ReturnB)
	return renderLines(title, sub, labels, []string{cmp.SymbolA, cmp.SymbolB}, [][]float64{a, b}, false)
}

// Rolling draws the rolling mean (left axis) and standard deviation
// (right axis) over the days where both are defined.
func Rolling(symbol string, rs model.RollingStats) ([]byte, error) {
	var (
		labels    []string
		mean, std []float64
	)
	for i := range rs.Mean {
		if !rs.Mean[i].Valid || !rs.StdDev[i].Valid {
			continue
		}
		labels = append(labels, rs.Mean[i].Date.Format(model.DateFormat))
		mean = append(mean, rs.Mean[i].Value)
		std = append(std, rs.StdDev[i].Value)
	}
	if len(mean) == 0 {
		return nil, ErrNoData
	}
	title := fmt.Sprintf("%s rolling mean and std dev", symbol)
	sub := fmt.Sprintf("%d-day window", rs.Window)
	return renderLines(title, sub, labels, []string{"Rolling Mean", "Rolling Std Dev"}, [][]float64{mean, std}, true)
}

// Correlations draws the strongest positive and negative coefficients.
func Correlations(symbol string, r model.Ranking) ([]byte, error) {
	var (
		labels []string
		coeffs []float64
	)
	seen := make(map[string]bool)
	for _, list := range [][]model.CorrelationEntry{r.TopIncreasing, r.TopDecreasing} {
		for _, e := range list {
			if seen[e.SeriesID] {
				continue
			}
			seen[e.SeriesID] = true
			labels = append(labels, e.SeriesID)
			coeffs = append(coeffs, e.Coefficient)
		}
	}
	if len(coeffs) == 0 {
		return nil, ErrNoData
	}

	yMin, yMax := -1.0, 1.0
	p, err := charts.BarRender(
		[][]float64{coeffs},
		charts.TitleTextOptionFunc(fmt.Sprintf("%s Spearman correlation", symbol), "top increasing and decreasing"),
		charts.XAxisDataOptionFunc(labels),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 4}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(width),
		charts.HeightOptionFunc(height),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return p.Bytes()
}

func renderLines(title, subtitle string, labels, names []string, values [][]float64, dualAxis bool) ([]byte, error) {
	seriesList := charts.NewSeriesListDataFromValues(values, charts.ChartTypeLine)
	for i := range seriesList {
		seriesList[i].Name = names[i]
		if dualAxis {
			seriesList[i].AxisIndex = i % 2
		}
	}

	var yAxes []charts.YAxisOption
	if dualAxis {
		lMin, lMax := bounds(values[0])
		rMin, rMax := bounds(values[1])
		yAxes = []charts.YAxisOption{
			{Min: &lMin, Max: &lMax, DivideCount: 5},
			{Min: &rMin, Max: &rMax, DivideCount: 5, Position: charts.PositionRight},
		}
	} else {
		lo, hi := bounds(values...)
		yAxes = []charts.YAxisOption{{Min: &lo, Max: &hi, DivideCount: 5}}
	}

	p, err := charts.Render(charts.ChartOption{SeriesList: seriesList},
		charts.TitleTextOptionFunc(title, subtitle),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: labels, BoundaryGap: charts.FalseFlag(), SplitNumber: splitNumber(len(labels))}),
		charts.YAxisOptionFunc(yAxes...),
		charts.LegendOptionFunc(charts.LegendOption{Data: names}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(width),
		charts.HeightOptionFunc(height),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return p.Bytes()
}

// bounds returns a padded [min, max] over all values.
func bounds(values ...[]float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, vs := range values {
		for _, v := range vs {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.01, 1)
	}
	return lo - pad, hi + pad
}

func splitNumber(n int) int {
	if n <= 30 {
		return max(3, n/3)
	}
	return 10
}
