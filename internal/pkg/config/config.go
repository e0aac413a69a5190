package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	VLR      VLRConfig      `yaml:"vlr"`
	Tracker  TrackerConfig  `yaml:"tracker"`
	Session  SessionConfig  `yaml:"session"`
	Redis    RedisConfig    `yaml:"redis"`
	Health   HealthConfig   `yaml:"health"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type TelegramConfig struct {
	Token         string `yaml:"token"`
	UpdateTimeout int    `yaml:"update_timeout"` // long-poll timeout in seconds
}

type VLRConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

type TrackerConfig struct {
	Interval     time.Duration `yaml:"interval"`       // poll cadence per tracker
	NotLiveLimit int           `yaml:"not_live_limit"` // consecutive non-live polls after first LIVE before the tracker gives up
	MaxMatches   int           `yaml:"max_matches"`    // cap on matches offered for selection
	Keywords     []string      `yaml:"keywords"`       // tournament-name substrings worth tracking
}

type SessionConfig struct {
	TTL time.Duration `yaml:"ttl"` // how long an unanswered selection stays open
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type HealthConfig struct {
	Port              int           `yaml:"port"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Telegram.Token == "" {
		c.Telegram.Token = os.Getenv("TELEGRAM_BOT_TOKEN")
	}
	if c.Telegram.UpdateTimeout <= 0 {
		c.Telegram.UpdateTimeout = 60
	}
	if c.VLR.BaseURL == "" {
		c.VLR.BaseURL = "https://vlrggapi.vercel.app"
	}
	if c.VLR.Timeout <= 0 {
		c.VLR.Timeout = 15 * time.Second
	}
	if c.Tracker.Interval <= 0 {
		c.Tracker.Interval = 30 * time.Second
	}
	if c.Tracker.NotLiveLimit <= 0 {
		c.Tracker.NotLiveLimit = 10
	}
	if c.Tracker.MaxMatches <= 0 {
		c.Tracker.MaxMatches = 20
	}
	if len(c.Tracker.Keywords) == 0 {
		c.Tracker.Keywords = []string{"Champions Tour", "Masters", "Champions", "Game Changers"}
	}
	if c.Session.TTL <= 0 {
		c.Session.TTL = 10 * time.Minute
	}
	if c.Health.ReadHeaderTimeout <= 0 {
		c.Health.ReadHeaderTimeout = 5 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
