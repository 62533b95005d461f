package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"CommodityTracker/internal/calculator"
	"CommodityTracker/internal/model"
)

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Formatter renders analysis results as text. With HTML set the output
// uses Telegram's HTML subset; otherwise it is plain text for a terminal.
type Formatter struct {
	HTML bool
}

func (f Formatter) bold(s string) string {
	if f.HTML {
		return "<b>" + html.EscapeString(s) + "</b>"
	}
	return s
}

func (f Formatter) pre(s string) string {
	if f.HTML {
		return "<pre>" + html.EscapeString(s) + "</pre>"
	}
	return s
}

func (f Formatter) esc(s string) string {
	if f.HTML {
		return html.EscapeString(s)
	}
	return s
}

// Money formats v as US dollars with thousands separators.
func Money(v float64) string {
	if v < 0 {
		return "-$" + humanize.CommafWithDigits(-v, 2)
	}
	return "$" + humanize.CommafWithDigits(v, 2)
}

func pct(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}

func day(t time.Time) string {
	return t.Format(model.DateFormat)
}

// LumpSum formats a lump-sum simulation.
func (f Formatter) LumpSum(c model.Commodity, s model.Summary) string {
	var b strings.Builder
	b.WriteString(f.bold(fmt.Sprintf("%s lump sum | %s → %s", c.Title(), day(s.Start), day(s.End))) + "\n\n")
	b.WriteString(fmt.Sprintf("Initial investment: %s\n", Money(s.Invested)))
	f.writeSummary(&b, s)
	return b.String()
}

// Periodic formats a periodic-investment simulation.
func (f Formatter) Periodic(c model.Commodity, plan calculator.Plan, s model.Summary, pos model.Position) string {
	var b strings.Builder
	b.WriteString(f.bold(fmt.Sprintf("%s periodic investment | %s → %s", c.Title(), day(s.Start), day(s.End))) + "\n\n")
	if plan.Schedule != nil {
		b.WriteString(fmt.Sprintf("Contribution: %s on schedule (%s match)\n", Money(plan.Amount), plan.Match))
	} else {
		b.WriteString(fmt.Sprintf("Contribution: %s every %d days (%s match)\n", Money(plan.Amount), plan.IntervalDays, plan.Match))
	}
	b.WriteString(fmt.Sprintf("Contributions made: %d\n", pos.Contributions))
	b.WriteString(fmt.Sprintf("Total invested: %s\n", Money(pos.TotalInvested)))
	b.WriteString(fmt.Sprintf("Units held: %.4f (avg cost %s)\n", pos.UnitsHeld, Money(pos.AverageCost())))
	f.writeSummary(&b, s)
	return b.String()
}

func (f Formatter) writeSummary(b *strings.Builder, s model.Summary) {
	b.WriteString(fmt.Sprintf("Minimum value: %s\n", Money(s.MinValue)))
	b.WriteString(fmt.Sprintf("Maximum value: %s\n", Money(s.MaxValue)))
	b.WriteString(fmt.Sprintf("Final value: %s\n", Money(s.FinalValue)))
	b.WriteString(fmt.Sprintf("Total return: %s (%s)\n", Money(s.TotalReturn), pct(s.ReturnPct())))
	if s.Years > 0 {
		b.WriteString(fmt.Sprintf("Annualized return: %s over %.2f years\n", pct(s.AnnualizedReturn*100), s.Years))
	} else {
		b.WriteString("Annualized return: n/a\n")
	}
}

// Comparison formats a rebased two-series comparison.
func (f Formatter) Comparison(cmp model.Comparison) string {
	if len(cmp.A) == 0 {
		return "No common trading days\n"
	}
	var b strings.Builder
	first, last := cmp.A[0].Date, cmp.A[len(cmp.A)-1].Date
	b.WriteString(f.bold(fmt.Sprintf("%s vs %s | %s → %s", cmp.SymbolA, cmp.SymbolB, day(first), day(last))) + "\n\n")
	b.WriteString(fmt.Sprintf("%s: %s (index %.2f)\n", f.esc(cmp.SymbolA), pct(cmp.ReturnA), cmp.A[len(cmp.A)-1].Value))
	b.WriteString(fmt.Sprintf("%s: %s (index %.2f)\n", f.esc(cmp.SymbolB), pct(cmp.ReturnB), cmp.B[len(cmp.B)-1].Value))
	b.WriteString(fmt.Sprintf("Common trading days: %d\n", len(cmp.A)))
	switch {
	case cmp.ReturnA > cmp.ReturnB:
		b.WriteString(fmt.Sprintf("%s outperformed by %.2f points\n", f.esc(cmp.SymbolA), cmp.ReturnA-cmp.ReturnB))
	case cmp.ReturnB > cmp.ReturnA:
		b.WriteString(fmt.Sprintf("%s outperformed by %.2f points\n", f.esc(cmp.SymbolB), cmp.ReturnB-cmp.ReturnA))
	default:
		b.WriteString("Both performed equally\n")
	}
	return b.String()
}

// Ranking formats a correlation ranking.
func (f Formatter) Ranking(symbol string, r model.Ranking) string {
	var b strings.Builder
	b.WriteString(f.bold(fmt.Sprintf("%s vs economic indicators (Spearman)", symbol)) + "\n\n")
	writeEntries := func(title string, entries []model.CorrelationEntry) {
		b.WriteString(f.bold(title) + "\n")
		if len(entries) == 0 {
			b.WriteString("  none\n")
		}
		for i, e := range entries {
			b.WriteString(fmt.Sprintf("  %2d. %-12s %+.4f (n=%d)\n", i+1, f.esc(e.SeriesID), e.Coefficient, e.Observations))
		}
	}
	writeEntries("Top increasing relationships", r.TopIncreasing)
	b.WriteString("\n")
	writeEntries("Top decreasing relationships", r.TopDecreasing)
	if len(r.Skipped) > 0 {
		b.WriteString("\n" + f.bold("Skipped") + "\n")
		for _, s := range r.Skipped {
			b.WriteString(fmt.Sprintf("  %s: %s\n", f.esc(s.SeriesID), f.esc(s.Reason)))
		}
	}
	return b.String()
}

// Rolling formats the latest defined rolling statistics.
func (f Formatter) Rolling(symbol string, rs model.RollingStats) string {
	var b strings.Builder
	b.WriteString(f.bold(fmt.Sprintf("%s %d-day rolling statistics", symbol, rs.Window)) + "\n\n")
	defined := 0
	for i := len(rs.Mean) - 1; i >= 0; i-- {
		if rs.Mean[i].Valid {
			if defined == 0 {
				b.WriteString(fmt.Sprintf("Latest (%s): mean %s, std dev %s\n",
					day(rs.Mean[i].Date), Money(rs.Mean[i].Value), Money(rs.StdDev[i].Value)))
			}
			defined++
		}
	}
	if defined == 0 {
		b.WriteString("No complete window in range\n")
	}
	b.WriteString(fmt.Sprintf("Defined windows: %d of %d days\n", defined, len(rs.Mean)))
	return b.String()
}

// Heatmap formats the monthly mean daily return table.
func (f Formatter) Heatmap(symbol string, hm model.Heatmap) string {
	var t strings.Builder
	t.WriteString("Year ")
	for _, m := range monthNames {
		t.WriteString(fmt.Sprintf("%7s", m))
	}
	t.WriteString("\n")
	for _, y := range hm.Years {
		t.WriteString(fmt.Sprintf("%-5d", y))
		for _, cell := range hm.Cells[y] {
			if cell.Valid {
				t.WriteString(fmt.Sprintf("%7.2f", cell.Value))
			} else {
				t.WriteString(fmt.Sprintf("%7s", "-"))
			}
		}
		t.WriteString("\n")
	}
	return f.bold(fmt.Sprintf("%s mean daily return by month (%%)", symbol)) + "\n" + f.pre(t.String())
}

// Help lists the bot commands.
func (f Formatter) Help() string {
	var b strings.Builder
	b.WriteString(f.bold("Commands") + "\n\n")
	b.WriteString("/lumpsum gold|silver START [AMOUNT] - lump-sum simulation up to today\n")
	b.WriteString("/dca gold|silver START INTERVAL_DAYS AMOUNT - periodic investment\n")
	b.WriteString("/compare START [END] - gold vs silver, base 100\n")
	b.WriteString("/report - configured plan report\n")
	b.WriteString("/help - this message\n")
	b.WriteString("\nDates: yyyy-mm-dd or dd-mm-yyyy")
	return b.String()
}
