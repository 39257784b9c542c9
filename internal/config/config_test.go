package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Market.Timezone != "Asia/Ho_Chi_Minh" {
		t.Errorf("timezone = %q", cfg.Market.Timezone)
	}
	if cfg.Market.OpenHour != 9 || cfg.Market.CloseHour != 15 {
		t.Errorf("market hours = [%d, %d), want [9, 15)", cfg.Market.OpenHour, cfg.Market.CloseHour)
	}
	if cfg.Tracking.PortfolioInterval != "5m" || cfg.Tracking.FollowInterval != "2m" {
		t.Errorf("intervals = %q/%q, want 5m/2m", cfg.Tracking.PortfolioInterval, cfg.Tracking.FollowInterval)
	}
	if cfg.Storage.Backend != "chat" {
		t.Errorf("storage backend = %q, want chat", cfg.Storage.Backend)
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `discord:
  bot_token: from-file
  control_channel: ch-control
tracking:
  portfolio_interval: 10m
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DISCORD_BOT_TOKEN", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Discord.BotToken != "from-env" {
		t.Errorf("bot token = %q, want env override", cfg.Discord.BotToken)
	}
	if cfg.Discord.ControlChannel != "ch-control" {
		t.Errorf("control channel = %q, want ch-control", cfg.Discord.ControlChannel)
	}
	if got := cfg.PortfolioInterval(); got != 10*time.Minute {
		t.Errorf("PortfolioInterval() = %v, want 10m", got)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		cfg.Discord.BotToken = "token"
		cfg.Discord.ControlChannel = "ch1"
		return cfg
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing token", func(c *Config) { c.Discord.BotToken = "" }},
		{"missing control channel", func(c *Config) { c.Discord.ControlChannel = "" }},
		{"open after close", func(c *Config) { c.Market.OpenHour = 16 }},
		{"bad interval", func(c *Config) { c.Tracking.PortfolioInterval = "soon" }},
		{"bad backend", func(c *Config) { c.Storage.Backend = "redis" }},
		{"zero top movers", func(c *Config) { c.Tracking.TopMovers = -1 }},
	}
	for _, tt := range tests {
		cfg := valid()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: Validate() = nil, want error", tt.name)
		}
	}
}
