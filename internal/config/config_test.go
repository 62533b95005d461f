package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CommodityTracker/internal/calculator"
	"CommodityTracker/internal/indicator"
	"CommodityTracker/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// loadDefaults loads a config with no file and no environment overrides.
func loadDefaults(t *testing.T) *Config {
	t.Helper()
	for _, k := range []string{"FRED_API_KEY", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "HTTPS_PROXY", "SQLITE_PATH", "PRICE_SOURCE", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	return cfg
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg := loadDefaults(t)

	assert.Equal(t, "fxempire", cfg.DataSource.Provider)
	assert.Equal(t, "yahoo", cfg.DataSource.Fallback)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.Equal(t, 120, cfg.FRED.RequestsPerMinute)
	assert.Equal(t, 4, cfg.FRED.Concurrency)
	assert.Equal(t, indicator.DefaultSeries, cfg.FRED.Indicators)
	assert.Equal(t, 30, cfg.Analysis.RollingWindow)
	assert.Equal(t, 10, cfg.Analysis.TopN)
	assert.Equal(t, 100.0, cfg.Analysis.InitialInvestment)
	assert.Equal(t, "gold", cfg.Plan.Commodity)
	assert.Equal(t, "info", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
data_source:
  provider: yahoo
fred:
  api_key: from-file
  indicators: [DGS10, CPIAUCSL]
analysis:
  rolling_window: 20
plan:
  commodity: silver
  start_date: 01-06-2020
  cron: "0 0 1 * *"
  amount: 250
  match: next
`)
	t.Setenv("PRICE_SOURCE", "")
	t.Setenv("FRED_API_KEY", "from-env")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "yahoo", cfg.DataSource.Provider)
	assert.Empty(t, cfg.DataSource.Fallback)
	assert.Equal(t, "from-env", cfg.FRED.APIKey)
	assert.Equal(t, []string{"DGS10", "CPIAUCSL"}, cfg.FRED.Indicators)
	assert.Equal(t, 20, cfg.Analysis.RollingWindow)
	assert.Equal(t, "/tmp/x.db", cfg.Database.SQLitePath)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Zero(t, cfg.Plan.IntervalDays, "cron plans get no default interval")
	require.NoError(t, cfg.Validate())

	end := model.Date(2020, time.September, 30)
	plan, err := cfg.BuildPlan(end)
	require.NoError(t, err)
	assert.Equal(t, model.Date(2020, time.June, 1), plan.Start)
	assert.Equal(t, end, plan.End)
	assert.Equal(t, calculator.MatchNextAvailable, plan.Match)
	assert.Equal(t, 250.0, plan.Amount)

	days, err := plan.ContributionDays()
	require.NoError(t, err)
	assert.Len(t, days, 4)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "plan: [unclosed"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }, "data_source.provider"},
		{"commodity", func(c *Config) { c.Plan.Commodity = "copper" }, "plan.commodity"},
		{"date", func(c *Config) { c.Plan.StartDate = "June 1st" }, "plan.start_date"},
		{"cron", func(c *Config) { c.Plan.Cron = "every monday" }, "plan.cron"},
		{"match", func(c *Config) { c.Plan.Match = "previous" }, "plan.match"},
		{"top_n", func(c *Config) { c.Analysis.TopN = -1 }, "analysis.top_n"},
		{"window", func(c *Config) { c.Analysis.RollingWindow = -5 }, "analysis.rolling_window"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadDefaults(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateWatch(t *testing.T) {
	cfg := loadDefaults(t)
	require.Error(t, cfg.ValidateWatch())

	cfg.Telegram.BotToken = "123:abc"
	cfg.Telegram.ChatID = "not-a-number"
	cfg.Plan.StartDate = "2020-01-01"
	require.Error(t, cfg.ValidateWatch())

	cfg.Telegram.ChatID = "-100123"
	require.NoError(t, cfg.ValidateWatch())
}
