package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"CommodityTracker/internal/calculator"
	"CommodityTracker/internal/indicator"
	"CommodityTracker/internal/model"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Provider       string `yaml:"provider"` // fxempire | yahoo | static
		Fallback       string `yaml:"fallback"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"data_source"`
	FRED struct {
		APIKey            string   `yaml:"api_key"`
		RequestsPerMinute int      `yaml:"requests_per_minute"`
		Concurrency       int      `yaml:"concurrency"`
		Indicators        []string `yaml:"indicators"`
	} `yaml:"fred"`
	Analysis struct {
		RollingWindow     int     `yaml:"rolling_window"`
		TopN              int     `yaml:"top_n"`
		InitialInvestment float64 `yaml:"initial_investment"`
	} `yaml:"analysis"`
	Plan struct {
		Commodity    string  `yaml:"commodity"`
		StartDate    string  `yaml:"start_date"`
		IntervalDays int     `yaml:"interval_days"`
		Amount       float64 `yaml:"amount"`
		Cron         string  `yaml:"cron"`
		Match        string  `yaml:"match"`
	} `yaml:"plan"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
		ReportCron  string `yaml:"report_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("FRED_API_KEY"); v != "" {
		cfg.FRED.APIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("PRICE_SOURCE"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "fxempire"
	}
	if c.DataSource.Fallback == "" && c.DataSource.Provider == "fxempire" {
		c.DataSource.Fallback = "yahoo"
	}
	if c.DataSource.TimeoutSeconds == 0 {
		c.DataSource.TimeoutSeconds = 30
	}
	if c.FRED.RequestsPerMinute == 0 {
		c.FRED.RequestsPerMinute = indicator.DefaultRequestsPerMinute
	}
	if c.FRED.Concurrency == 0 {
		c.FRED.Concurrency = 4
	}
	if len(c.FRED.Indicators) == 0 {
		c.FRED.Indicators = append([]string(nil), indicator.DefaultSeries...)
	}
	if c.Analysis.RollingWindow == 0 {
		c.Analysis.RollingWindow = 30
	}
	if c.Analysis.TopN == 0 {
		c.Analysis.TopN = 10
	}
	if c.Analysis.InitialInvestment == 0 {
		c.Analysis.InitialInvestment = 100
	}
	if c.Plan.Commodity == "" {
		c.Plan.Commodity = string(model.Gold)
	}
	if c.Plan.IntervalDays == 0 && c.Plan.Cron == "" {
		c.Plan.IntervalDays = 30
	}
	if c.Plan.Amount == 0 {
		c.Plan.Amount = 100
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "0 0 23 * * 1-5"
	}
	if c.Schedule.ReportCron == "" {
		c.Schedule.ReportCron = "0 0 8 * * 1"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/commodity_tracker.db"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Timeout returns the HTTP timeout for price sources.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.DataSource.TimeoutSeconds) * time.Second
}

// Validate checks that analysis and plan settings are usable.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "fxempire", "yahoo", "static":
	default:
		return fmt.Errorf("data_source.provider must be fxempire, yahoo or static, got %q", c.DataSource.Provider)
	}
	switch c.DataSource.Fallback {
	case "", "none", "fxempire", "yahoo":
	default:
		return fmt.Errorf("data_source.fallback must be fxempire, yahoo or none, got %q", c.DataSource.Fallback)
	}
	if c.FRED.Concurrency < 1 {
		return fmt.Errorf("fred.concurrency must be positive")
	}
	if c.Analysis.RollingWindow < 1 {
		return fmt.Errorf("analysis.rolling_window must be positive")
	}
	if c.Analysis.TopN < 1 {
		return fmt.Errorf("analysis.top_n must be positive")
	}
	if c.Analysis.InitialInvestment <= 0 {
		return fmt.Errorf("analysis.initial_investment must be positive")
	}
	if _, err := model.ParseCommodity(c.Plan.Commodity); err != nil {
		return fmt.Errorf("plan.commodity: %w", err)
	}
	if c.Plan.StartDate != "" {
		if _, err := model.ParseDay(c.Plan.StartDate); err != nil {
			return fmt.Errorf("plan.start_date: %w", err)
		}
	}
	if c.Plan.Amount <= 0 {
		return fmt.Errorf("plan.amount must be positive")
	}
	if c.Plan.Cron == "" && c.Plan.IntervalDays < 1 {
		return fmt.Errorf("plan.interval_days must be positive")
	}
	if _, err := c.PlanSchedule(); err != nil {
		return err
	}
	if _, err := calculator.ParseMatchPolicy(c.Plan.Match); err != nil {
		return fmt.Errorf("plan.match: %w", err)
	}
	return nil
}

// ValidateWatch additionally checks the settings needed by watch mode.
func (c *Config) ValidateWatch() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if _, err := strconv.ParseInt(c.Telegram.ChatID, 10, 64); err != nil {
		return fmt.Errorf("telegram.chat_id must be numeric: %w", err)
	}
	if c.Plan.StartDate == "" {
		return fmt.Errorf("plan.start_date is required for reports")
	}
	return nil
}

// PlanSchedule parses plan.cron (standard five-field syntax). It returns
// nil when no cron expression is configured.
func (c *Config) PlanSchedule() (cron.Schedule, error) {
	if c.Plan.Cron == "" {
		return nil, nil
	}
	s, err := cron.ParseStandard(c.Plan.Cron)
	if err != nil {
		return nil, fmt.Errorf("plan.cron: %w", err)
	}
	return s, nil
}

// BuildPlan turns the plan section into a calculator.Plan ending at end.
func (c *Config) BuildPlan(end time.Time) (calculator.Plan, error) {
	start, err := model.ParseDay(c.Plan.StartDate)
	if err != nil {
		return calculator.Plan{}, fmt.Errorf("plan.start_date: %w", err)
	}
	sched, err := c.PlanSchedule()
	if err != nil {
		return calculator.Plan{}, err
	}
	match, err := calculator.ParseMatchPolicy(c.Plan.Match)
	if err != nil {
		return calculator.Plan{}, fmt.Errorf("plan.match: %w", err)
	}
	return calculator.Plan{
		Start:        start,
		End:          end,
		IntervalDays: c.Plan.IntervalDays,
		Amount:       c.Plan.Amount,
		Match:        match,
		Schedule:     sched,
	}, nil
}
