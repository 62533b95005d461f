package analysis

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/sync/errgroup"

	"CommodityTracker/internal/calculator"
	"CommodityTracker/internal/collector"
	"CommodityTracker/internal/indicator"
	"CommodityTracker/internal/model"
	"CommodityTracker/internal/recorder"
)

// Analyzer fetches the inputs of each analysis and hands them to the
// calculator. It holds no per-analysis state.
type Analyzer struct {
	Collector   *collector.Collector
	Indicators  indicator.Source
	Recorder    recorder.Recorder
	Concurrency int
}

// New creates an Analyzer. rec may be nil.
func New(c *collector.Collector, src indicator.Source, rec recorder.Recorder, concurrency int) *Analyzer {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Analyzer{Collector: c, Indicators: src, Recorder: rec, Concurrency: concurrency}
}

// Series fetches the daily prices of commodity from the given day onward
// and stores them. When every source fails the stored copy is used.
func (a *Analyzer) Series(ctx context.Context, commodity model.Commodity, from time.Time) (model.PriceSeries, error) {
	series, err := a.Collector.Collect(ctx, commodity, from)
	if err == nil {
		source := a.Collector.Primary.Name()
		if _, serr := a.Recorder.SaveSeries(ctx, series, source); serr != nil {
			log.Warn().Err(serr).Str("symbol", series.Symbol).Msg("failed to store price series")
		}
		return series, nil
	}

	cached, cerr := a.Recorder.LoadSeries(ctx, commodity.Instrument(), from, time.Time{})
	if cerr != nil || cached.Empty() {
		return model.PriceSeries{}, err
	}
	log.Warn().Err(err).Str("symbol", cached.Symbol).Int("points", cached.Len()).
		Msg("price fetch failed, using stored series")
	return cached, nil
}

// LumpSumResult is a lump-sum simulation with its input series.
type LumpSumResult struct {
	Commodity  model.Commodity
	Series     model.PriceSeries
	Trajectory model.Trajectory
	Summary    model.Summary
}

// LumpSum simulates a single purchase of initial on start held until end.
func (a *Analyzer) LumpSum(ctx context.Context, commodity model.Commodity, initial float64, start, end time.Time) (*LumpSumResult, error) {
	series, err := a.Series(ctx, commodity, start)
	if err != nil {
		return nil, err
	}
	traj, sum, err := calculator.LumpSum(series, initial, start, end)
	if err != nil {
		return nil, err
	}
	return &LumpSumResult{Commodity: commodity, Series: series, Trajectory: traj, Summary: sum}, nil
}

// PeriodicResult is a periodic-investment simulation with its input series.
type PeriodicResult struct {
	Commodity  model.Commodity
	Plan       calculator.Plan
	Series     model.PriceSeries
	Trajectory model.Trajectory
	Summary    model.Summary
	Position   model.Position
}

// Periodic simulates plan on commodity.
func (a *Analyzer) Periodic(ctx context.Context, commodity model.Commodity, plan calculator.Plan) (*PeriodicResult, error) {
	if plan.End.IsZero() {
		plan.End = model.Today()
	}
	series, err := a.Series(ctx, commodity, plan.Start)
	if err != nil {
		return nil, err
	}
	traj, sum, pos, err := calculator.SimulatePeriodic(series, plan)
	if err != nil {
		return nil, err
	}
	return &PeriodicResult{Commodity: commodity, Plan: plan, Series: series, Trajectory: traj, Summary: sum, Position: pos}, nil
}

// RollingResult holds rolling statistics and the monthly return heatmap.
type RollingResult struct {
	Commodity model.Commodity
	Series    model.PriceSeries
	Stats     model.RollingStats
	Heatmap   model.Heatmap
}

// Rolling computes window-day statistics over [start, end].
func (a *Analyzer) Rolling(ctx context.Context, commodity model.Commodity, window int, start, end time.Time) (*RollingResult, error) {
	if end.IsZero() {
		end = model.Today()
	}
	full, err := a.Series(ctx, commodity, start)
	if err != nil {
		return nil, err
	}
	series, err := calculator.Filter(full, start, end)
	if err != nil {
		return nil, err
	}
	stats, err := calculator.Rolling(series, window)
	if err != nil {
		return nil, err
	}
	return &RollingResult{
		Commodity: commodity,
		Series:    series,
		Stats:     stats,
		Heatmap:   calculator.MonthlyReturnHeatmap(stats),
	}, nil
}

// Compare fetches both commodities and rebases them over [start, end].
func (a *Analyzer) Compare(ctx context.Context, first, second model.Commodity, start, end time.Time) (model.Comparison, error) {
	if end.IsZero() {
		end = model.Today()
	}
	sa, err := a.Series(ctx, first, start)
	if err != nil {
		return model.Comparison{}, err
	}
	sb, err := a.Series(ctx, second, start)
	if err != nil {
		return model.Comparison{}, err
	}
	return calculator.Compare(sa, sb, start, end)
}

// Correlate ranks the indicators ids by rank correlation with commodity
// over [start, end]. An indicator that fails to download is reported in
// Ranking.Skipped alongside the ones the calculator could not use.
func (a *Analyzer) Correlate(ctx context.Context, commodity model.Commodity, ids []string, topN int, start, end time.Time) (model.Ranking, error) {
	if end.IsZero() {
		end = model.Today()
	}
	full, err := a.Series(ctx, commodity, start)
	if err != nil {
		return model.Ranking{}, err
	}
	series, err := calculator.Filter(full, start, end)
	if err != nil {
		return model.Ranking{}, err
	}

	fetched, failed := a.fetchIndicators(ctx, ids, start, end)
	ranking, err := calculator.RankCorrelations(series, fetched, topN)
	if err != nil {
		return model.Ranking{}, err
	}
	ranked := len(fetched) - len(ranking.Skipped)
	ranking.Skipped = append(ranking.Skipped, failed...)
	sort.SliceStable(ranking.Skipped, func(i, j int) bool {
		return ranking.Skipped[i].SeriesID < ranking.Skipped[j].SeriesID
	})
	for _, s := range ranking.Skipped {
		log.Warn().Str("series", s.SeriesID).Str("reason", s.Reason).Msg("indicator skipped")
	}
	log.Info().Str("symbol", series.Symbol).Int("ranked", ranked).
		Int("skipped", len(ranking.Skipped)).Msg("correlation ranking complete")
	return ranking, ctx.Err()
}

// Index rebases commodity against indicator id, carrying indicator values
// forward onto trading days.
func (a *Analyzer) Index(ctx context.Context, commodity model.Commodity, id string, start, end time.Time) (model.Comparison, error) {
	if end.IsZero() {
		end = model.Today()
	}
	full, err := a.Series(ctx, commodity, start)
	if err != nil {
		return model.Comparison{}, err
	}
	series, err := calculator.Filter(full, start, end)
	if err != nil {
		return model.Comparison{}, err
	}
	ind, err := a.Indicators.FetchSeries(ctx, id, start, end)
	if err != nil {
		return model.Comparison{}, fmt.Errorf("fetch indicator %s: %w", id, err)
	}
	if ind.Empty() {
		return model.Comparison{}, fmt.Errorf("%w: indicator %s returned no observations", calculator.ErrEmptyRange, id)
	}
	return calculator.IndexAgainstIndicator(series, ind)
}

// fetchIndicators downloads every id concurrently. A failed download is
// recorded and never cancels the others.
func (a *Analyzer) fetchIndicators(ctx context.Context, ids []string, start, end time.Time) (map[string]model.PriceSeries, []model.SkippedIndicator) {
	var (
		mu     sync.Mutex
		out    = make(map[string]model.PriceSeries, len(ids))
		failed []model.SkippedIndicator
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.Concurrency)
	for _, id := range dedupe(ids) {
		g.Go(func() error {
			s, err := a.Indicators.FetchSeries(gctx, id, start, end)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, model.SkippedIndicator{SeriesID: id, Reason: err.Error()})
				return nil
			}
			out[id] = s
			return nil
		})
	}
	_ = g.Wait()
	return out, failed
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
