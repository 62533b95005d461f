package scheduler

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/phuslu/log"
	"github.com/robfig/cron/v3"

	"CommodityTracker/internal/analysis"
	"CommodityTracker/internal/calculator"
	"CommodityTracker/internal/chart"
	"CommodityTracker/internal/config"
	"CommodityTracker/internal/model"
	"CommodityTracker/internal/notifier"
)

// refreshLookback is how far back a refresh fetches when no plan start is set.
const refreshLookback = 5 * 365 * 24 * time.Hour

// Scheduler manages the watch-mode cron tasks and bot commands.
type Scheduler struct {
	Cron     *cron.Cron
	Analyzer *analysis.Analyzer
	Notifier notifier.Notifier
	Config   *config.Config
	Format   notifier.Formatter
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, a *analysis.Analyzer, n notifier.Notifier, cfg *config.Config) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Analyzer: a,
		Notifier: n,
		Config:   cfg,
		Format:   notifier.Formatter{HTML: true},
		Ctx:      ctx,
	}
}

// RegisterAll registers the price refresh and plan report tasks.
func (s *Scheduler) RegisterAll(refreshCron, reportCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if _, err := s.Cron.AddFunc(reportCron, s.reportTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunReportNow executes the report task immediately.
func (s *Scheduler) RunReportNow() {
	s.reportTask()
}

func (s *Scheduler) refreshFrom() time.Time {
	if start, err := model.ParseDay(s.Config.Plan.StartDate); err == nil {
		return start
	}
	return model.Day(time.Now().Add(-refreshLookback))
}

func (s *Scheduler) refreshTask() {
	log.Info().Msg("running price refresh")
	from := s.refreshFrom()
	for _, c := range model.Commodities {
		series, err := s.Analyzer.Series(s.Ctx, c, from)
		if err != nil {
			log.Error().Err(err).Str("commodity", string(c)).Msg("price refresh failed")
			continue
		}
		last, _ := series.LastValid()
		log.Info().Str("symbol", series.Symbol).Int("points", series.Len()).
			Str("last", last.Date.Format(model.DateFormat)).Float64("close", last.Value).Msg("prices refreshed")
	}
}

func (s *Scheduler) reportTask() {
	log.Info().Msg("running plan report")
	reply := s.planReport(s.Ctx)
	s.trySend(reply.Text)
	if len(reply.Image) > 0 {
		if err := s.Notifier.SendPhoto(reply.ImageName, reply.Image, ""); err != nil {
			log.Error().Err(err).Msg("send report chart")
		}
	}
}

func (s *Scheduler) planReport(ctx context.Context) notifier.Reply {
	commodity, err := model.ParseCommodity(s.Config.Plan.Commodity)
	if err != nil {
		return errorReply("plan", err)
	}
	plan, err := s.Config.BuildPlan(model.Today())
	if err != nil {
		return errorReply("plan", err)
	}
	res, err := s.Analyzer.Periodic(ctx, commodity, plan)
	if err != nil {
		log.Error().Err(err).Msg("plan report failed")
		return errorReply("plan report", err)
	}
	return s.withChart(s.Format.Periodic(commodity, res.Plan, res.Summary, res.Position),
		string(commodity)+"_plan.png", func() ([]byte, error) {
			return chart.Trajectory(commodity.Title()+" periodic investment", res.Trajectory)
		})
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) notifier.Reply {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.Reply{Text: s.Format.Help()}
	}
	name := strings.ToLower(strings.SplitN(fields[0], "@", 2)[0])
	args := fields[1:]

	switch name {
	case "/lumpsum":
		return s.lumpSumCommand(ctx, args)
	case "/dca":
		return s.periodicCommand(ctx, args)
	case "/compare":
		return s.compareCommand(ctx, args)
	case "/report":
		return s.planReport(ctx)
	default:
		return notifier.Reply{Text: s.Format.Help()}
	}
}

func (s *Scheduler) lumpSumCommand(ctx context.Context, args []string) notifier.Reply {
	if len(args) < 2 {
		return notifier.Reply{Text: "Usage: /lumpsum gold|silver START [AMOUNT]"}
	}
	commodity, err := model.ParseCommodity(args[0])
	if err != nil {
		return errorReply("lumpsum", err)
	}
	start, err := model.ParseDay(args[1])
	if err != nil {
		return errorReply("lumpsum", err)
	}
	amount := s.Config.Analysis.InitialInvestment
	if len(args) > 2 {
		if amount, err = strconv.ParseFloat(args[2], 64); err != nil {
			return errorReply("lumpsum", fmt.Errorf("invalid amount %q", args[2]))
		}
	}

	res, err := s.Analyzer.LumpSum(ctx, commodity, amount, start, model.Today())
	if err != nil {
		return errorReply("lumpsum", err)
	}
	return s.withChart(s.Format.LumpSum(commodity, res.Summary), string(commodity)+"_lumpsum.png", func() ([]byte, error) {
		return chart.Trajectory(commodity.Title()+" lump sum", res.Trajectory)
	})
}

func (s *Scheduler) periodicCommand(ctx context.Context, args []string) notifier.Reply {
	if len(args) < 4 {
		return notifier.Reply{Text: "Usage: /dca gold|silver START INTERVAL_DAYS AMOUNT"}
	}
	commodity, err := model.ParseCommodity(args[0])
	if err != nil {
		return errorReply("dca", err)
	}
	start, err := model.ParseDay(args[1])
	if err != nil {
		return errorReply("dca", err)
	}
	interval, err := strconv.Atoi(args[2])
	if err != nil {
		return errorReply("dca", fmt.Errorf("invalid interval %q", args[2]))
	}
	amount, err := strconv.ParseFloat(args[3], 64)
	if err != nil {
		return errorReply("dca", fmt.Errorf("invalid amount %q", args[3]))
	}
	match, _ := calculator.ParseMatchPolicy(s.Config.Plan.Match)

	plan := calculator.Plan{Start: start, End: model.Today(), IntervalDays: interval, Amount: amount, Match: match}
	res, err := s.Analyzer.Periodic(ctx, commodity, plan)
	if err != nil {
		return errorReply("dca", err)
	}
	return s.withChart(s.Format.Periodic(commodity, res.Plan, res.Summary, res.Position), string(commodity)+"_dca.png", func() ([]byte, error) {
		return chart.Trajectory(commodity.Title()+" periodic investment", res.Trajectory)
	})
}

func (s *Scheduler) compareCommand(ctx context.Context, args []string) notifier.Reply {
	if len(args) < 1 {
		return notifier.Reply{Text: "Usage: /compare START [END]"}
	}
	start, err := model.ParseDay(args[0])
	if err != nil {
		return errorReply("compare", err)
	}
	end := model.Today()
	if len(args) > 1 {
		if end, err = model.ParseDay(args[1]); err != nil {
			return errorReply("compare", err)
		}
	}
	cmp, err := s.Analyzer.Compare(ctx, model.Gold, model.Silver, start, end)
	if err != nil {
		return errorReply("compare", err)
	}
	return s.withChart(s.Format.Comparison(cmp), "gold_silver.png", func() ([]byte, error) {
		return chart.Comparison(cmp)
	})
}

// withChart attaches a rendered chart; a render failure only drops the image.
func (s *Scheduler) withChart(text, name string, render func() ([]byte, error)) notifier.Reply {
	img, err := render()
	if err != nil {
		log.Warn().Err(err).Str("chart", name).Msg("chart render failed")
		return notifier.Reply{Text: text}
	}
	return notifier.Reply{Text: text, Image: img, ImageName: name}
}

func errorReply(op string, err error) notifier.Reply {
	return notifier.Reply{Text: fmt.Sprintf("❌ %s failed: %s", op, html.EscapeString(err.Error()))}
}

func (s *Scheduler) trySend(text string) {
	if err := notifier.SendWithRetry(s.Ctx, s.Notifier, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
