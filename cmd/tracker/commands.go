package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"CommodityTracker/internal/analysis"
	"CommodityTracker/internal/calculator"
	"CommodityTracker/internal/chart"
	"CommodityTracker/internal/model"
	"CommodityTracker/internal/notifier"
)

var plain = notifier.Formatter{}

// --- Fetch Command ---

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download daily prices into the local store",
	RunE: func(cmd *cobra.Command, args []string) error {
		commodity, err := commodityFlag(cmd, "commodity")
		if err != nil {
			return err
		}
		start, end, err := dateRange(cmd)
		if err != nil {
			return err
		}
		full, err := analyzer.Series(cmd.Context(), commodity, start)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", commodity, err)
		}
		series, err := calculator.Filter(full, start, end)
		if err != nil {
			return err
		}

		if asCSV, _ := cmd.Flags().GetBool("csv"); asCSV {
			return writeCSV(os.Stdout, commodity, series)
		}
		first, _ := series.First()
		last, _ := series.LastValid()
		fmt.Printf("%s: %d days from %s to %s, last close %s\n", commodity.Title(), series.Len(),
			first.Date.Format(model.DateFormat), last.Date.Format(model.DateFormat), notifier.Money(last.Value))
		if fr, ok, err := rec.LastFetch(cmd.Context(), commodity.Instrument()); err == nil && ok {
			fmt.Printf("stored batch %s from %s (%d points)\n", fr.ID, fr.Source, fr.Points)
		}
		return nil
	},
}

func init() {
	addCommonFlags(fetchCmd)
	fetchCmd.Flags().Bool("csv", false, "write the series as CSV to stdout")
}

// --- Lump Sum Command ---

var lumpSumCmd = &cobra.Command{
	Use:   "lumpsum",
	Short: "Simulate a single purchase held until the end date",
	RunE: func(cmd *cobra.Command, args []string) error {
		commodity, err := commodityFlag(cmd, "commodity")
		if err != nil {
			return err
		}
		start, end, err := dateRange(cmd)
		if err != nil {
			return err
		}
		amount, _ := cmd.Flags().GetFloat64("amount")
		if amount == 0 {
			amount = cfg.Analysis.InitialInvestment
		}

		res, err := analyzer.LumpSum(cmd.Context(), commodity, amount, start, end)
		if err != nil {
			return fmt.Errorf("lump sum: %w", err)
		}
		fmt.Print(plain.LumpSum(commodity, res.Summary))
		writeChart(cmd, func() ([]byte, error) {
			return chart.Trajectory(commodity.Title()+" lump sum", res.Trajectory)
		})
		return nil
	},
}

func init() {
	addCommonFlags(lumpSumCmd)
	lumpSumCmd.Flags().Float64P("amount", "a", 0, "initial investment in USD (default: analysis.initial_investment)")
}

// --- Periodic Command ---

var periodicCmd = &cobra.Command{
	Use:     "periodic",
	Aliases: []string{"dca"},
	Short:   "Simulate investing a fixed amount on a schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		commodity, err := commodityFlag(cmd, "commodity")
		if err != nil {
			return err
		}
		start, end, err := dateRange(cmd)
		if err != nil {
			return err
		}
		plan := calculator.Plan{
			Start:        start,
			End:          end,
			IntervalDays: cfg.Plan.IntervalDays,
			Amount:       cfg.Plan.Amount,
		}
		if plan.Match, err = calculator.ParseMatchPolicy(cfg.Plan.Match); err != nil {
			return err
		}
		if plan.Schedule, err = cfg.PlanSchedule(); err != nil {
			return err
		}
		if cmd.Flags().Changed("interval") {
			plan.IntervalDays, _ = cmd.Flags().GetInt("interval")
			plan.Schedule = nil
		}
		if cmd.Flags().Changed("amount") {
			plan.Amount, _ = cmd.Flags().GetFloat64("amount")
		}
		if cmd.Flags().Changed("match") {
			m, _ := cmd.Flags().GetString("match")
			if plan.Match, err = calculator.ParseMatchPolicy(m); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("cron") {
			expr, _ := cmd.Flags().GetString("cron")
			if plan.Schedule, err = cron.ParseStandard(expr); err != nil {
				return fmt.Errorf("--cron: %w", err)
			}
		}

		res, err := analyzer.Periodic(cmd.Context(), commodity, plan)
		if err != nil {
			return fmt.Errorf("periodic investment: %w", err)
		}
		fmt.Print(plain.Periodic(commodity, res.Plan, res.Summary, res.Position))
		writeChart(cmd, func() ([]byte, error) {
			return chart.Trajectory(commodity.Title()+" periodic investment", res.Trajectory)
		})
		return nil
	},
}

func init() {
	addCommonFlags(periodicCmd)
	periodicCmd.Flags().IntP("interval", "i", 0, "days between contributions (default: plan.interval_days)")
	periodicCmd.Flags().Float64P("amount", "a", 0, "USD per contribution (default: plan.amount)")
	periodicCmd.Flags().String("match", "", "price matching for days without a quote: exact or next")
	periodicCmd.Flags().String("cron", "", "contribution schedule as a five-field cron expression, e.g. \"0 0 1 * *\"")
}

// --- Rolling Command ---

var rollingCmd = &cobra.Command{
	Use:   "rolling",
	Short: "Trailing mean, standard deviation and daily return",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := runRolling(cmd)
		if err != nil {
			return err
		}
		fmt.Print(plain.Rolling(res.Series.Symbol, res.Stats))
		fmt.Println()
		fmt.Print(plain.Heatmap(res.Series.Symbol, res.Heatmap))
		writeChart(cmd, func() ([]byte, error) {
			return chart.Rolling(res.Series.Symbol, res.Stats)
		})
		return nil
	},
}

// --- Heatmap Command ---

var heatmapCmd = &cobra.Command{
	Use:   "heatmap",
	Short: "Mean daily return per calendar month",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := runRolling(cmd)
		if err != nil {
			return err
		}
		fmt.Print(plain.Heatmap(res.Series.Symbol, res.Heatmap))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{rollingCmd, heatmapCmd} {
		addCommonFlags(c)
		c.Flags().IntP("window", "w", 0, "rolling window in days (default: analysis.rolling_window)")
	}
}

func runRolling(cmd *cobra.Command) (*analysis.RollingResult, error) {
	commodity, err := commodityFlag(cmd, "commodity")
	if err != nil {
		return nil, err
	}
	start, end, err := dateRange(cmd)
	if err != nil {
		return nil, err
	}
	window, _ := cmd.Flags().GetInt("window")
	if window == 0 {
		window = cfg.Analysis.RollingWindow
	}
	res, err := analyzer.Rolling(cmd.Context(), commodity, window, start, end)
	if err != nil {
		return nil, fmt.Errorf("rolling statistics: %w", err)
	}
	return res, nil
}

// --- Compare Command ---

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Rebase two commodities to 100 and compare their returns",
	RunE: func(cmd *cobra.Command, args []string) error {
		first, err := commodityFlag(cmd, "commodity")
		if err != nil {
			return err
		}
		second, err := commodityFlag(cmd, "against")
		if err != nil {
			return err
		}
		start, end, err := dateRange(cmd)
		if err != nil {
			return err
		}
		cmp, err := analyzer.Compare(cmd.Context(), first, second, start, end)
		if err != nil {
			return fmt.Errorf("compare: %w", err)
		}
		fmt.Print(plain.Comparison(cmp))
		writeChart(cmd, func() ([]byte, error) { return chart.Comparison(cmp) })
		return nil
	},
}

func init() {
	addCommonFlags(compareCmd)
	compareCmd.Flags().String("against", "silver", "second commodity")
}

// --- Correlate Command ---

var correlateCmd = &cobra.Command{
	Use:   "correlate [SERIES_ID...]",
	Short: "Rank economic indicators by rank correlation with a commodity",
	Long: `Rank FRED series by Spearman correlation with the commodity's price.
With no series ids the configured fred.indicators list is used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		commodity, err := commodityFlag(cmd, "commodity")
		if err != nil {
			return err
		}
		start, end, err := dateRange(cmd)
		if err != nil {
			return err
		}
		ids := cfg.FRED.Indicators
		if len(args) > 0 {
			ids = args
		}
		topN, _ := cmd.Flags().GetInt("top")
		if topN == 0 {
			topN = cfg.Analysis.TopN
		}

		ranking, err := analyzer.Correlate(cmd.Context(), commodity, upper(ids), topN, start, end)
		if err != nil {
			return fmt.Errorf("correlate: %w", err)
		}
		fmt.Print(plain.Ranking(commodity.Instrument(), ranking))
		writeChart(cmd, func() ([]byte, error) { return chart.Correlations(commodity.Instrument(), ranking) })
		return nil
	},
}

func init() {
	addCommonFlags(correlateCmd)
	correlateCmd.Flags().IntP("top", "n", 0, "entries per direction (default: analysis.top_n)")
}

// --- Index Command ---

var indexCmd = &cobra.Command{
	Use:   "index SERIES_ID",
	Short: "Rebase a commodity and one indicator to 100",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		commodity, err := commodityFlag(cmd, "commodity")
		if err != nil {
			return err
		}
		start, end, err := dateRange(cmd)
		if err != nil {
			return err
		}
		id := strings.ToUpper(args[0])
		cmp, err := analyzer.Index(cmd.Context(), commodity, id, start, end)
		if err != nil {
			return fmt.Errorf("index against %s: %w", id, err)
		}
		fmt.Print(plain.Comparison(cmp))
		writeChart(cmd, func() ([]byte, error) { return chart.Comparison(cmp) })
		return nil
	},
}

func init() {
	addCommonFlags(indexCmd)
}

func upper(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strings.ToUpper(strings.TrimSpace(id))
	}
	return out
}
