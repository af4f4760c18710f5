package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/nisioka/self-money/internal/common"
)

// Config is the resolved application configuration.
type Config struct {
	DatabasePath     string
	EncryptionKey    string
	ServerAddr       string
	CronExpression   string
	FallbackCategory string
	Gemini           GeminiConfig
	PollInterval     time.Duration
}

// GeminiConfig configures the AI classification backend. An empty APIKey
// disables the AI stage.
type GeminiConfig struct {
	APIKey            string
	Model             string
	RequestsPerMinute int
}

// Load resolves configuration with this precedence:
// 1. Viper configuration (config file or MONEY_ env vars)
// 2. Direct environment variables (GEMINI_API_KEY, MONEY_ENCRYPTION_KEY)
// 3. Defaults
func Load() (*Config, error) {
	cfg := &Config{
		DatabasePath:     "$HOME/.local/share/self-money/money.db",
		ServerAddr:       ":8389",
		CronExpression:   "0 3 * * *",
		FallbackCategory: "uncategorized",
		PollInterval:     5 * time.Second,
	}

	if v := viper.GetString("database.path"); v != "" {
		cfg.DatabasePath = v
	}
	cfg.DatabasePath = ExpandPath(cfg.DatabasePath)

	if v := viper.GetString("encryption.key"); v != "" {
		cfg.EncryptionKey = v
	}
	if cfg.EncryptionKey == "" {
		cfg.EncryptionKey = os.Getenv("MONEY_ENCRYPTION_KEY")
	}

	if v := viper.GetString("server.addr"); v != "" {
		cfg.ServerAddr = v
	}
	if v := viper.GetString("scheduler.cron"); v != "" {
		cfg.CronExpression = v
	}
	if v := viper.GetDuration("worker.poll_interval"); v > 0 {
		cfg.PollInterval = v
	}
	if v := viper.GetString("classifier.fallback_category"); v != "" {
		cfg.FallbackCategory = v
	}

	cfg.Gemini.APIKey = viper.GetString("gemini.api_key")
	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	cfg.Gemini.Model = viper.GetString("gemini.model")
	cfg.Gemini.RequestsPerMinute = viper.GetInt("gemini.requests_per_minute")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("%w: database path is empty", common.ErrInvalidConfig)
	}
	if c.EncryptionKey == "" {
		return fmt.Errorf("%w: encryption key is required (set MONEY_ENCRYPTION_KEY)", common.ErrInvalidConfig)
	}
	return nil
}
