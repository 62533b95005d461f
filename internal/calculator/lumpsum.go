package calculator

import (
	"fmt"
	"time"

	"CommodityTracker/internal/model"
)

// LumpSum buys initial worth of the instrument on the first entry at or
// after start and tracks the position until end. A zero end means today.
func LumpSum(series model.PriceSeries, initial float64, start, end time.Time) (model.Trajectory, model.Summary, error) {
	if end.IsZero() {
		end = model.Today()
	}
	if initial <= 0 {
		return nil, model.Summary{}, fmt.Errorf("%w: got %.2f", ErrInvalidAmount, initial)
	}
	window, err := Filter(series, start, end)
	if err != nil {
		return nil, model.Summary{}, err
	}

	base, _ := window.First()
	if !base.Valid || !usablePrice(base.Value) {
		return nil, model.Summary{}, fmt.Errorf("%w: %s on %s", ErrInvalidPrice,
			series.Symbol, base.Date.Format(model.DateFormat))
	}
	units := initial / base.Value

	traj := make(model.Trajectory, window.Len())
	for i := range traj {
		p := window.At(i)
		traj[i] = model.Valuation{Date: p.Date, Invested: initial, Valid: p.Valid}
		if p.Valid {
			traj[i].Value = units * p.Value
		}
	}

	last, _ := window.LastValid()
	return traj, summarize(traj, units*last.Value, initial, start, end), nil
}
