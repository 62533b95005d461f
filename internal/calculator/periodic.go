package calculator

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"CommodityTracker/internal/model"
)

// MatchPolicy decides how a scheduled day without a price is handled.
type MatchPolicy int

const (
	// MatchExact skips scheduled days that have no price of their own.
	MatchExact MatchPolicy = iota
	// MatchNextAvailable buys at the first price on or after the scheduled
	// day, provided it comes before the next scheduled day.
	MatchNextAvailable
)

// ParseMatchPolicy accepts "exact" (or "") and "next".
func ParseMatchPolicy(s string) (MatchPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exact":
		return MatchExact, nil
	case "next", "next_available":
		return MatchNextAvailable, nil
	}
	return MatchExact, fmt.Errorf("unknown match policy %q", s)
}

func (m MatchPolicy) String() string {
	if m == MatchNextAvailable {
		return "next"
	}
	return "exact"
}

// Plan describes a periodic investment.
type Plan struct {
	Start        time.Time
	End          time.Time
	IntervalDays int
	Amount       float64
	Match        MatchPolicy
	// Schedule, when set, replaces the fixed interval (e.g. a monthly cron
	// expression parsed with cron.ParseStandard).
	Schedule cron.Schedule
}

// ContributionDays lists the scheduled days in [Start, End].
func (p Plan) ContributionDays() ([]time.Time, error) {
	start, end := model.Day(p.Start), model.Day(p.End)
	if p.Schedule == nil && p.IntervalDays <= 0 {
		return nil, fmt.Errorf("%w: interval must be at least one day, got %d", ErrInvalidSchedule, p.IntervalDays)
	}
	if p.Amount <= 0 {
		return nil, fmt.Errorf("%w: contribution must be positive, got %.2f", ErrInvalidSchedule, p.Amount)
	}

	var days []time.Time
	if p.Schedule == nil {
		for d := start; !d.After(end); d = d.AddDate(0, 0, p.IntervalDays) {
			days = append(days, d)
		}
		return days, nil
	}

	seen := make(map[time.Time]bool)
	for t := p.Schedule.Next(start.Add(-time.Second)); !t.IsZero() && !t.After(end.Add(24*time.Hour-time.Second)); t = p.Schedule.Next(t) {
		d := model.Day(t)
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	return days, nil
}

// SimulatePeriodic buys Amount worth of the instrument on every scheduled
// day that can be matched to a price and values the accumulated position.
// The trajectory holds one valuation per contribution.
func SimulatePeriodic(series model.PriceSeries, plan Plan) (model.Trajectory, model.Summary, model.Position, error) {
	window, err := Filter(series, plan.Start, plan.End)
	if err != nil {
		return nil, model.Summary{}, model.Position{}, err
	}
	days, err := plan.ContributionDays()
	if err != nil {
		return nil, model.Summary{}, model.Position{}, err
	}

	var (
		pos  model.Position
		traj model.Trajectory
	)
	for i, day := range days {
		var until time.Time
		if i+1 < len(days) {
			until = days[i+1]
		}
		p, ok := matchPrice(window, day, until, plan.Match)
		if !ok {
			continue
		}
		pos.UnitsHeld += plan.Amount / p.Value
		pos.TotalInvested += plan.Amount
		pos.Contributions++
		traj = append(traj, model.Valuation{
			Date:     p.Date,
			Value:    pos.UnitsHeld * p.Value,
			Invested: pos.TotalInvested,
			Valid:    true,
		})
	}
	if pos.Contributions == 0 {
		return nil, model.Summary{}, pos, rangeError(ErrNoContributions, series.Symbol, plan.Start, plan.End)
	}

	last, _ := window.LastValid()
	final := pos.UnitsHeld * last.Value
	return traj, summarize(traj, final, pos.TotalInvested, plan.Start, plan.End), pos, nil
}

// matchPrice finds the price used for a contribution scheduled on day.
// until is the next scheduled day (zero for the last one).
func matchPrice(window model.PriceSeries, day, until time.Time, policy MatchPolicy) (model.Point, bool) {
	if policy == MatchExact {
		p, ok := window.Lookup(day)
		if !ok || !p.Valid || !usablePrice(p.Value) {
			return model.Point{}, false
		}
		return p, true
	}
	for i := 0; i < window.Len(); i++ {
		p := window.At(i)
		if p.Date.Before(day) {
			continue
		}
		if !until.IsZero() && !p.Date.Before(until) {
			break
		}
		if p.Valid && usablePrice(p.Value) {
			return p, true
		}
	}
	return model.Point{}, false
}
