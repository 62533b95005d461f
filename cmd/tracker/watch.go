package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"CommodityTracker/internal/notifier"
	"CommodityTracker/internal/scheduler"
)

// --- Watch Command ---

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Refresh prices on a schedule and report the plan to Telegram",
	Long: `Runs until interrupted. Prices are refreshed on schedule.refresh_cron,
the configured plan is reported on schedule.report_cron and bot commands
(/lumpsum, /dca, /compare, /report) are answered in the configured chat.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateWatch(); err != nil {
			return fmt.Errorf("config validation: %w", err)
		}

		tn, err := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		sched := scheduler.NewScheduler(ctx, analyzer, tn, cfg)
		if err := sched.RegisterAll(cfg.Schedule.RefreshCron, cfg.Schedule.ReportCron); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()

		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")

		runNow, _ := cmd.Flags().GetBool("run-now")
		if runNow || os.Getenv("RUN_ON_START") == "true" {
			log.Info().Msg("running plan report on start")
			go sched.RunReportNow()
		}

		log.Info().Str("refresh", cfg.Schedule.RefreshCron).Str("report", cfg.Schedule.ReportCron).
			Msg("CommodityTracker is running, press Ctrl+C to stop")
		<-ctx.Done()
		log.Info().Msg("shutdown signal received, stopping")
		return nil
	},
}

func init() {
	watchCmd.Flags().Bool("run-now", false, "send the plan report immediately (also RUN_ON_START=true)")
}
