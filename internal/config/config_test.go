package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataSource.Type != "yahoo" || cfg.DataSource.Symbol != "SPX500" {
		t.Errorf("data source defaults: %+v", cfg.DataSource)
	}
	if cfg.Indicators.MAShort != 7 || cfg.Indicators.MALong != 14 || cfg.Indicators.RSICom != 14 {
		t.Errorf("indicator defaults: %+v", cfg.Indicators)
	}
	if cfg.Estimator.TrainRatio != 0.7 || cfg.Estimator.Folds != 5 || len(cfg.Estimator.Regressor.Alphas) != 5 {
		t.Errorf("estimator defaults: %+v", cfg.Estimator)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if cfg.TelegramEnabled() {
		t.Error("telegram should be disabled by default")
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
data_source:
  csv_path: data/spx.csv
  symbol: SPX
indicators:
  ma_short: 5
  ma_long: 20
estimator:
  folds: 3
  classifier:
    neighbors: [5]
    weightings: [distance]
telegram:
  bot_token: file-token
  chat_id: "100"
`)
	t.Setenv("SIGNALBENCH_SYMBOL", "NDX")
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("TRAIN_RATIO", "0.8")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataSource.Type != "csv" || cfg.DataSource.CSVPath != "data/spx.csv" {
		t.Errorf("csv source not inferred: %+v", cfg.DataSource)
	}
	if cfg.DataSource.Symbol != "NDX" || cfg.Telegram.BotToken != "env-token" || cfg.Estimator.TrainRatio != 0.8 {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
	if cfg.Indicators.MAShort != 5 || cfg.Indicators.RSICom != 14 {
		t.Errorf("indicators: %+v", cfg.Indicators)
	}
	if len(cfg.Estimator.Classifier.Neighbors) != 1 || cfg.Estimator.Classifier.Weightings[0] != "distance" {
		t.Errorf("classifier grid: %+v", cfg.Estimator.Classifier)
	}
	if !cfg.TelegramEnabled() {
		t.Error("telegram should be enabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "indicators: [1, 2")); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"short above long", func(c *Config) { c.Indicators.MAShort = 30 }, "ma_short"},
		{"ratio one", func(c *Config) { c.Estimator.TrainRatio = 1 }, "train_ratio"},
		{"one fold", func(c *Config) { c.Estimator.Folds = 1 }, "folds"},
		{"bad weighting", func(c *Config) { c.Estimator.Classifier.Weightings = []string{"cosine"} }, "weightings"},
		{"csv without path", func(c *Config) { c.DataSource.Type = "csv" }, "csv_path"},
		{"rest without url", func(c *Config) { c.DataSource.Type = "rest" }, "base_url"},
		{"unknown source", func(c *Config) { c.DataSource.Type = "ftp" }, "data_source.type"},
		{"half telegram", func(c *Config) { c.Telegram.ChatID = "1" }, "telegram"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.applyDefaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
