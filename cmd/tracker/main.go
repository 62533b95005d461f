// CommodityTracker analyses gold and silver as investments: lump-sum and
// periodic simulations, rolling statistics, correlation against economic
// indicators and a cron-driven Telegram watch mode.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"CommodityTracker/internal/analysis"
	"CommodityTracker/internal/collector"
	"CommodityTracker/internal/config"
	"CommodityTracker/internal/indicator"
	"CommodityTracker/internal/model"
	"CommodityTracker/internal/recorder"
)

var (
	cfg      *config.Config
	rec      recorder.Recorder
	analyzer *analysis.Analyzer
)

func main() {
	if err := execute(rootCmd); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// execute runs cmd and closes the series store whether or not it failed.
func execute(cmd *cobra.Command) error {
	err := cmd.Execute()
	if rec != nil {
		if cerr := rec.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("close recorder")
		}
		rec = nil
	}
	return err
}

var rootCmd = &cobra.Command{
	Use:           "tracker",
	Short:         "Gold and silver investment analytics",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		if path == "" {
			path = "configs/config.yaml"
			if v := os.Getenv("CONFIG_PATH"); v != "" {
				path = v
			}
		}
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		setupLogger(cfg.Logging.Level)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config validation: %w", err)
		}
		analyzer = buildAnalyzer(cfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: $CONFIG_PATH or configs/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(lumpSumCmd)
	rootCmd.AddCommand(periodicCmd)
	rootCmd.AddCommand(rollingCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(correlateCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(heatmapCmd)
	rootCmd.AddCommand(watchCmd)
}

func setupLogger(level string) {
	log.DefaultLogger = log.Logger{
		Level:      log.ParseLevel(level),
		TimeFormat: "15:04:05",
		Writer: &log.ConsoleWriter{
			Writer:         os.Stderr,
			ColorOutput:    true,
			EndWithMessage: true,
		},
	}
}

// buildAnalyzer wires the price sources, indicator client and series store.
func buildAnalyzer(cfg *config.Config) *analysis.Analyzer {
	primary := newFetcher(cfg.DataSource.Provider, cfg)
	var fallback collector.Fetcher
	if cfg.DataSource.Fallback != "" && cfg.DataSource.Fallback != "none" && cfg.DataSource.Fallback != cfg.DataSource.Provider {
		fallback = newFetcher(cfg.DataSource.Fallback, cfg)
	}
	log.Info().Str("primary", primary.Name()).Str("fallback", fetcherName(fallback)).Msg("price sources ready")

	var src indicator.Source = indicator.NewFREDClient(cfg.FRED.APIKey,
		indicator.WithHTTPClient(collector.NewHTTPClient(cfg.Proxy, cfg.Timeout())),
		indicator.WithRequestsPerMinute(cfg.FRED.RequestsPerMinute),
	)

	rec = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.Database.SQLitePath).Msg("init sqlite recorder failed, using noop")
		} else {
			rec = sr
		}
	}

	return analysis.New(collector.NewCollector(primary, fallback), src, rec, cfg.FRED.Concurrency)
}

func newFetcher(provider string, cfg *config.Config) collector.Fetcher {
	switch provider {
	case "yahoo":
		return collector.NewYahooFetcher(cfg.Proxy, cfg.Timeout())
	case "static":
		from := model.Today().AddDate(-5, 0, 0)
		days := int(model.Today().Sub(from)/(24*time.Hour)) + 1
		return &collector.StaticFetcher{Points: map[string][]model.Point{
			model.Gold.Instrument():   collector.SyntheticPoints(2000, from, days),
			model.Silver.Instrument(): collector.SyntheticPoints(25, from, days),
		}}
	default:
		return collector.NewFXEmpireFetcher(cfg.Proxy, cfg.Timeout())
	}
}

func fetcherName(f collector.Fetcher) string {
	if f == nil {
		return "none"
	}
	return f.Name()
}
