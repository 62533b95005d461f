package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"CommodityTracker/internal/model"
)

// defaultLookbackYears sets the start date used when --start is omitted.
const defaultLookbackYears = 1

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("commodity", "c", "gold", "commodity to analyse (gold or silver)")
	cmd.Flags().StringP("start", "s", "", "start date, yyyy-mm-dd or dd-mm-yyyy (default: one year ago)")
	cmd.Flags().StringP("end", "e", "", "end date, yyyy-mm-dd or dd-mm-yyyy (default: today)")
	cmd.Flags().String("chart", "", "write a PNG chart to this path")
}

// commodityFlag parses a commodity-valued flag.
func commodityFlag(cmd *cobra.Command, name string) (model.Commodity, error) {
	v, _ := cmd.Flags().GetString(name)
	return model.ParseCommodity(v)
}

// dateRange reads --start and --end, applying the defaults relative to today.
func dateRange(cmd *cobra.Command) (start, end time.Time, err error) {
	s, _ := cmd.Flags().GetString("start")
	e, _ := cmd.Flags().GetString("end")
	return resolveRange(s, e, model.Today())
}

func resolveRange(s, e string, today time.Time) (start, end time.Time, err error) {
	end = today
	if e != "" {
		if end, err = model.ParseDay(e); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--end: %w", err)
		}
	}
	start = end.AddDate(-defaultLookbackYears, 0, 0)
	if s != "" {
		if start, err = model.ParseDay(s); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--start: %w", err)
		}
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start %s is after end %s",
			start.Format(model.DateFormat), end.Format(model.DateFormat))
	}
	return start, end, nil
}

// writeChart renders a chart when --chart is set. A chart failure never
// fails the analysis that produced it.
func writeChart(cmd *cobra.Command, render func() ([]byte, error)) {
	path, _ := cmd.Flags().GetString("chart")
	if path == "" {
		return
	}
	img, err := render()
	if err != nil {
		log.Warn().Err(err).Msg("chart rendering failed")
		return
	}
	if err := os.WriteFile(path, img, 0o644); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("write chart failed")
		return
	}
	log.Info().Str("path", path).Int("bytes", len(img)).Msg("chart written")
}

// writeCSV exports a series as Date,<Commodity>_USD_Price rows. Gaps are
// written with an empty price.
func writeCSV(w io.Writer, c model.Commodity, s model.PriceSeries) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", c.PriceLabel()}); err != nil {
		return err
	}
	for _, p := range s.Points() {
		price := ""
		if p.Valid {
			price = strconv.FormatFloat(p.Value, 'f', -1, 64)
		}
		if err := cw.Write([]string{p.Date.Format(model.DateFormat), price}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
