package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Discord struct {
		BotToken       string `yaml:"bot_token"`
		ControlChannel string `yaml:"control_channel"`
	} `yaml:"discord"`
	DataSource struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"data_source"`
	Market struct {
		Timezone  string `yaml:"timezone"`
		OpenHour  int    `yaml:"open_hour"`
		CloseHour int    `yaml:"close_hour"`
	} `yaml:"market"`
	Tracking struct {
		PortfolioInterval string `yaml:"portfolio_interval"`
		FollowInterval    string `yaml:"follow_interval"`
		TopMovers         int    `yaml:"top_movers"`
	} `yaml:"tracking"`
	Storage struct {
		Backend    string `yaml:"backend"` // "chat" or "sqlite"
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"storage"`
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
	if v := os.Getenv("DISCORD_BOT_TOKEN"); v != "" {
		cfg.Discord.BotToken = v
	}
	if v := os.Getenv("DISCORD_CONTROL_CHANNEL"); v != "" {
		cfg.Discord.ControlChannel = v
	}
	if v := os.Getenv("STOCK_API_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("PORTFOLIO_INTERVAL"); v != "" {
		cfg.Tracking.PortfolioInterval = v
	}
	if v := os.Getenv("FOLLOW_INTERVAL"); v != "" {
		cfg.Tracking.FollowInterval = v
	}
	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}

	// Defaults
	if cfg.DataSource.BaseURL == "" {
		cfg.DataSource.BaseURL = "https://apipubaws.tcbs.com.vn/stock-insight/v2/stock"
	}
	if cfg.Market.Timezone == "" {
		cfg.Market.Timezone = "Asia/Ho_Chi_Minh"
	}
	if cfg.Market.OpenHour == 0 {
		cfg.Market.OpenHour = 9
	}
	if cfg.Market.CloseHour == 0 {
		cfg.Market.CloseHour = 15
	}
	if cfg.Tracking.PortfolioInterval == "" {
		cfg.Tracking.PortfolioInterval = "5m"
	}
	if cfg.Tracking.FollowInterval == "" {
		cfg.Tracking.FollowInterval = "2m"
	}
	if cfg.Tracking.TopMovers == 0 {
		cfg.Tracking.TopMovers = 3
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "chat"
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "data/stocksentry.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are set and parseable.
func (c *Config) Validate() error {
	if c.Discord.BotToken == "" {
		return fmt.Errorf("discord.bot_token is required")
	}
	if c.Discord.ControlChannel == "" {
		return fmt.Errorf("discord.control_channel is required")
	}
	if c.Market.OpenHour < 0 || c.Market.CloseHour > 24 || c.Market.OpenHour >= c.Market.CloseHour {
		return fmt.Errorf("invalid market hours [%d, %d)", c.Market.OpenHour, c.Market.CloseHour)
	}
	if _, err := time.ParseDuration(c.Tracking.PortfolioInterval); err != nil {
		return fmt.Errorf("tracking.portfolio_interval: %w", err)
	}
	if _, err := time.ParseDuration(c.Tracking.FollowInterval); err != nil {
		return fmt.Errorf("tracking.follow_interval: %w", err)
	}
	if c.Tracking.TopMovers <= 0 {
		return fmt.Errorf("tracking.top_movers must be positive")
	}
	if c.Storage.Backend != "chat" && c.Storage.Backend != "sqlite" {
		return fmt.Errorf("storage.backend must be \"chat\" or \"sqlite\", got %q", c.Storage.Backend)
	}
	return nil
}

// PortfolioInterval returns the parsed portfolio tick interval. Call after
// Validate.
func (c *Config) PortfolioInterval() time.Duration {
	d, _ := time.ParseDuration(c.Tracking.PortfolioInterval)
	return d
}

// FollowInterval returns the parsed follow tick interval. Call after
// Validate.
func (c *Config) FollowInterval() time.Duration {
	d, _ := time.ParseDuration(c.Tracking.FollowInterval)
	return d
}
