package calculator

import (
	"fmt"
	"time"

	"CommodityTracker/internal/model"
)

// Compare rebases two series to 100 on their first common day within
// [start, end]. Only days where both series have a value are used.
// Returns are computed from the raw values.
func Compare(a, b model.PriceSeries, start, end time.Time) (model.Comparison, error) {
	start, end = model.Day(start), model.Day(end)
	other := make(map[time.Time]float64, b.Len())
	for _, p := range b.Valid() {
		other[p.Date] = p.Value
	}

	var ra, rb []model.Point
	for _, p := range a.Valid() {
		if p.Date.Before(start) || p.Date.After(end) {
			continue
		}
		if v, ok := other[p.Date]; ok {
			ra = append(ra, p)
			rb = append(rb, model.At(p.Date, v))
		}
	}
	if len(ra) == 0 {
		return model.Comparison{}, rangeError(ErrEmptyRange, a.Symbol+"/"+b.Symbol, start, end)
	}
	return rebase(a.Symbol, b.Symbol, ra, rb)
}

// IndexAgainstIndicator aligns an indicator onto the commodity's trading
// days, carrying the latest observation forward, and rebases both to 100
// on the first aligned day. Days before the first observation are dropped.
func IndexAgainstIndicator(commodity, indicator model.PriceSeries) (model.Comparison, error) {
	obs := indicator.Valid()
	var ra, rb []model.Point
	j := -1
	for _, p := range commodity.Valid() {
		for j+1 < len(obs) && !obs[j+1].Date.After(p.Date) {
			j++
		}
		if j < 0 {
			continue
		}
		ra = append(ra, p)
		rb = append(rb, model.At(p.Date, obs[j].Value))
	}
	if len(ra) == 0 {
		s, e := commodity.Span()
		return model.Comparison{}, rangeError(ErrEmptyRange, commodity.Symbol+"/"+indicator.Symbol, s, e)
	}
	return rebase(commodity.Symbol, indicator.Symbol, ra, rb)
}

func rebase(symA, symB string, a, b []model.Point) (model.Comparison, error) {
	a0, b0 := a[0], b[0]
	if !usablePrice(a0.Value) || !usablePrice(b0.Value) {
		return model.Comparison{}, fmt.Errorf("%w: %s/%s on %s", ErrInvalidPrice, symA, symB,
			a0.Date.Format(model.DateFormat))
	}
	cmp := model.Comparison{
		SymbolA: symA,
		SymbolB: symB,
		A:       make([]model.Point, len(a)),
		B:       make([]model.Point, len(b)),
	}
	for i := range a {
		cmp.A[i] = model.At(a[i].Date, a[i].Value/a0.Value*100)
		cmp.B[i] = model.At(b[i].Date, b[i].Value/b0.Value*100)
	}
	cmp.A[0].Value, cmp.B[0].Value = 100, 100
	last := len(a) - 1
	cmp.ReturnA = (a[last].Value - a0.Value) / a0.Value * 100
	cmp.ReturnB = (b[last].Value - b0.Value) / b0.Value * 100
	return cmp, nil
}
