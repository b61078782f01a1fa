package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"PairSentinel/internal/comparison"
)

// WatchPair is a pair compared on the watchlist schedule.
type WatchPair struct {
	Stock1 string `yaml:"stock1"`
	Stock2 string `yaml:"stock2"`
	Period string `yaml:"period"`
}

// cronParser accepts the same six-field specs as the scheduler.
var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Port      int    `yaml:"port"`
		StaticDir string `yaml:"static_dir"`
		DevMode   bool   `yaml:"dev_mode"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	DataSource struct {
		BaseURL        string `yaml:"base_url"`
		APIKey         string `yaml:"api_key"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"data_source"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Watchlist struct {
		Cron  string      `yaml:"cron"`
		Pairs []WatchPair `yaml:"pairs"`
	} `yaml:"watchlist"`
	Proxy string `yaml:"proxy"`
}

// Load reads an optional .env file and an optional YAML file, then applies
// environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

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
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("STATIC_DIR"); v != "" {
		cfg.Server.StaticDir = v
	}
	if v := os.Getenv("DEV_MODE"); v != "" {
		cfg.Server.DevMode, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_PRETTY"); v != "" {
		cfg.Log.Pretty, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("DATA_SOURCE_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_SOURCE_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("WATCH_CRON"); v != "" {
		cfg.Watchlist.Cron = v
	}

	// Defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.StaticDir == "" {
		cfg.Server.StaticDir = "frontend/build"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.DataSource.TimeoutSeconds == 0 {
		cfg.DataSource.TimeoutSeconds = 30
	}
	if cfg.Watchlist.Cron == "" {
		cfg.Watchlist.Cron = "0 30 22 * * 1-5"
	}
	for i := range cfg.Watchlist.Pairs {
		if cfg.Watchlist.Pairs[i].Period == "" {
			cfg.Watchlist.Pairs[i].Period = "1y"
		}
	}

	return cfg, nil
}

// FetchTimeout returns the market-data HTTP timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.DataSource.TimeoutSeconds) * time.Second
}

// Validate checks that the loaded values are usable.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.DataSource.TimeoutSeconds < 0 {
		return fmt.Errorf("data_source.timeout_seconds must not be negative")
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	if len(c.Watchlist.Pairs) > 0 {
		if _, err := cronParser.Parse(c.Watchlist.Cron); err != nil {
			return fmt.Errorf("watchlist.cron %q: %w", c.Watchlist.Cron, err)
		}
	}
	for i, p := range c.Watchlist.Pairs {
		if p.Stock1 == "" || p.Stock2 == "" {
			return fmt.Errorf("watchlist.pairs[%d]: stock1 and stock2 are required", i)
		}
		if !comparison.ValidPeriod(p.Period) {
			return fmt.Errorf("watchlist.pairs[%d]: invalid period %q", i, p.Period)
		}
	}
	return nil
}
