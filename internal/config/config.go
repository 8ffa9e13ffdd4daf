package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Type    string `yaml:"type"` // csv, yahoo, rest or mock
		CSVPath string `yaml:"csv_path"`
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		Symbol  string `yaml:"symbol"`
		Days    int    `yaml:"days"`
	} `yaml:"data_source"`
	Indicators struct {
		MAShort int     `yaml:"ma_short"`
		MALong  int     `yaml:"ma_long"`
		RSICom  float64 `yaml:"rsi_com"`
	} `yaml:"indicators"`
	Estimator struct {
		TrainRatio float64 `yaml:"train_ratio"`
		Folds      int     `yaml:"folds"`
		Workers    int     `yaml:"workers"`
		Classifier struct {
			Neighbors  []int    `yaml:"neighbors"`
			Weightings []string `yaml:"weightings"`
		} `yaml:"classifier"`
		Regressor struct {
			Alphas []float64 `yaml:"alphas"`
		} `yaml:"regressor"`
	} `yaml:"estimator"`
	Output struct {
		CSVPath string `yaml:"csv_path"`
	} `yaml:"output"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
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
	if v := os.Getenv("SIGNALBENCH_CSV"); v != "" {
		cfg.DataSource.Type = "csv"
		cfg.DataSource.CSVPath = v
	}
	if v := os.Getenv("SIGNALBENCH_SYMBOL"); v != "" {
		cfg.DataSource.Symbol = v
	}
	if v := os.Getenv("SIGNALBENCH_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
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
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("TRAIN_RATIO"); v != "" {
		if ratio, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Estimator.TrainRatio = ratio
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DataSource.Type == "" {
		c.DataSource.Type = "yahoo"
		if c.DataSource.CSVPath != "" {
			c.DataSource.Type = "csv"
		}
	}
	if c.DataSource.Symbol == "" {
		c.DataSource.Symbol = "SPX500"
	}
	if c.DataSource.Days == 0 {
		c.DataSource.Days = 730
	}
	if c.Indicators.MAShort == 0 {
		c.Indicators.MAShort = 7
	}
	if c.Indicators.MALong == 0 {
		c.Indicators.MALong = 14
	}
	if c.Indicators.RSICom == 0 {
		c.Indicators.RSICom = 14
	}
	if c.Estimator.TrainRatio == 0 {
		c.Estimator.TrainRatio = 0.7
	}
	if c.Estimator.Folds == 0 {
		c.Estimator.Folds = 5
	}
	if c.Estimator.Workers == 0 {
		c.Estimator.Workers = 4
	}
	if len(c.Estimator.Classifier.Neighbors) == 0 {
		c.Estimator.Classifier.Neighbors = []int{3, 5, 7, 9, 15}
	}
	if len(c.Estimator.Classifier.Weightings) == 0 {
		c.Estimator.Classifier.Weightings = []string{"uniform", "distance"}
	}
	if len(c.Estimator.Regressor.Alphas) == 0 {
		c.Estimator.Regressor.Alphas = []float64{0.01, 0.1, 1, 10, 100}
	}
	if c.Output.CSVPath == "" {
		c.Output.CSVPath = "data/records.csv"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/signalbench.db"
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = "0 30 22 * * 1-5"
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.DataSource.Type {
	case "csv":
		if c.DataSource.CSVPath == "" {
			return fmt.Errorf("data_source.csv_path is required for csv source")
		}
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for rest source")
		}
	case "yahoo", "mock":
	default:
		return fmt.Errorf("unknown data_source.type %q", c.DataSource.Type)
	}
	if c.DataSource.Days < 0 {
		return fmt.Errorf("data_source.days must not be negative")
	}
	if c.Indicators.MAShort <= 0 || c.Indicators.MALong <= 0 {
		return fmt.Errorf("indicators windows must be positive")
	}
	if c.Indicators.MAShort > c.Indicators.MALong {
		return fmt.Errorf("indicators.ma_short must not exceed ma_long")
	}
	if c.Indicators.RSICom <= 0 {
		return fmt.Errorf("indicators.rsi_com must be positive")
	}
	if c.Estimator.TrainRatio <= 0 || c.Estimator.TrainRatio >= 1 {
		return fmt.Errorf("estimator.train_ratio must be in (0, 1)")
	}
	if c.Estimator.Folds < 2 {
		return fmt.Errorf("estimator.folds must be at least 2")
	}
	for _, k := range c.Estimator.Classifier.Neighbors {
		if k <= 0 {
			return fmt.Errorf("estimator.classifier.neighbors must be positive, got %d", k)
		}
	}
	for _, w := range c.Estimator.Classifier.Weightings {
		if w != "uniform" && w != "distance" {
			return fmt.Errorf("unknown estimator.classifier.weightings value %q", w)
		}
	}
	for _, a := range c.Estimator.Regressor.Alphas {
		if a < 0 {
			return fmt.Errorf("estimator.regressor.alphas must not be negative")
		}
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// TelegramEnabled reports whether run reports should be sent.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
