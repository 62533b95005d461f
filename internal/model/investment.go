package model

import "time"

// Valuation is the mark-to-market value of a position on one day.
type Valuation struct {
	Date     time.Time
	Value    float64
	Invested float64 // cumulative cash put in up to Date
	Valid    bool
}

// Trajectory is a date-ordered sequence of valuations.
type Trajectory []Valuation

// Values returns the valid values in order.
func (t Trajectory) Values() []float64 {
	out := make([]float64, 0, len(t))
	for _, v := range t {
		if v.Valid {
			out = append(out, v.Value)
		}
	}
	return out
}

// Summary holds the headline metrics of an investment simulation.
type Summary struct {
	Invested         float64
	FinalValue       float64
	TotalReturn      float64
	AnnualizedReturn float64 // 0 when Years <= 0
	MinValue         float64
	MaxValue         float64
	Start            time.Time
	End              time.Time
	Years            float64
}

// ReturnPct returns TotalReturn relative to Invested, in percent.
func (s Summary) ReturnPct() float64 {
	if s.Invested == 0 {
		return 0
	}
	return s.TotalReturn / s.Invested * 100
}

// Position is the running state of a periodic investment plan.
type Position struct {
	UnitsHeld     float64
	TotalInvested float64
	Contributions int
}

// AverageCost returns the mean price paid per unit.
func (p Position) AverageCost() float64 {
	if p.UnitsHeld == 0 {
		return 0
	}
	return p.TotalInvested / p.UnitsHeld
}
