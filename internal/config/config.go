// Package config loads dicebot settings from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/example/dicebot/internal/apperrors"
)

// Config represents the flat dicebot configuration.
type Config struct {
	DBPath                 string        `env:"DICEBOT_DB_PATH"                  envDefault:"dicebot.db"`
	DiscordToken           string        `env:"DICEBOT_DISCORD_TOKEN"`
	LogLevel               string        `env:"DICEBOT_LOG_LEVEL"                envDefault:"info"`
	MinReplacementInterval time.Duration `env:"DICEBOT_MIN_REPLACEMENT_INTERVAL" envDefault:"1s"`
	TombstoneRetention     time.Duration `env:"DICEBOT_TOMBSTONE_RETENTION"      envDefault:"10s"`
	PurgeInterval          time.Duration `env:"DICEBOT_PURGE_INTERVAL"           envDefault:"1m"`
	MetricsAddr            string        `env:"DICEBOT_METRICS_ADDR"             envDefault:":9090"`
	LegacyMessageLookup    bool          `env:"DICEBOT_LEGACY_MESSAGE_LOOKUP"    envDefault:"true"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return LoadFrom(nil)
}

// LoadFrom reads the configuration from environ, or from the process
// environment when environ is nil.
func LoadFrom(environ map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values the environment parser cannot.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return apperrors.Validation("DICEBOT_DB_PATH", "database path must not be empty")
	}
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return apperrors.Validation("DICEBOT_LOG_LEVEL", fmt.Sprintf("unknown log level %q", c.LogLevel))
	}
	if c.MinReplacementInterval < 0 {
		return apperrors.Validation("DICEBOT_MIN_REPLACEMENT_INTERVAL", "must not be negative")
	}
	if c.TombstoneRetention < 0 {
		return apperrors.Validation("DICEBOT_TOMBSTONE_RETENTION", "must not be negative")
	}
	if c.PurgeInterval <= 0 {
		return apperrors.Validation("DICEBOT_PURGE_INTERVAL", "must be positive")
	}
	return nil
}

// RequireDiscordToken reports an error when no bot token is configured.
// Only commands that connect to Discord need one.
func (c *Config) RequireDiscordToken() error {
	if c.DiscordToken == "" {
		return apperrors.Validation("DICEBOT_DISCORD_TOKEN", "a bot token is required to connect to Discord")
	}
	return nil
}
