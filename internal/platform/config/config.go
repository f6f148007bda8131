package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/pscheid92/tradesbychat/internal/domain"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv string `env:"APP_ENV" default:"development"`
	Port   string `env:"PORT" default:"8080"`

	FeedID               string        `env:"FEED_ID"`
	RoundIntervalSeconds int           `env:"ROUND_INTERVAL_SECONDS" default:"30"`
	PollInterval         time.Duration `env:"POLL_INTERVAL" default:"1s"`
	FeedBatchSize        int           `env:"FEED_BATCH_SIZE" default:"200"`
	FeedTimeout          time.Duration `env:"FEED_TIMEOUT" default:"5s"`

	RedisURL         string `env:"REDIS_URL"`
	DatabaseURL      string `env:"DATABASE_URL"`
	PublishDecisions bool   `env:"PUBLISH_DECISIONS" default:"true"`

	InstanceID  string        `env:"INSTANCE_ID"`
	FeedLockTTL time.Duration `env:"FEED_LOCK_TTL" default:"15s"`

	TradingSymbol     string `env:"TRADING_SYMBOL"`
	TradingAccount    string `env:"TRADING_ACCOUNT"`
	SymbolConnection  string `env:"SYMBOL_CONNECTION"`
	AccountConnection string `env:"ACCOUNT_CONNECTION"`

	LogLevel     string  `env:"LOG_LEVEL" default:"info"`
	LogFormat    string  `env:"LOG_FORMAT" default:"text"`
	APIRateLimit float64 `env:"API_RATE_LIMIT" default:"10"`
}

// rounds longer than a day are rejected, which also keeps the seconds-to-Duration
// conversion far from overflow
const maxRoundIntervalSeconds = 24 * 60 * 60

// RoundInterval returns the configured round length.
func (c *Config) RoundInterval() time.Duration {
	return time.Duration(c.RoundIntervalSeconds) * time.Second
}

// HistoryEnabled reports whether rounds are persisted to PostgreSQL.
func (c *Config) HistoryEnabled() bool {
	return c.DatabaseURL != ""
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := []struct{ name, value string }{
		{"FEED_ID", cfg.FeedID},
		{"REDIS_URL", cfg.RedisURL},
		{"TRADING_SYMBOL", cfg.TradingSymbol},
		{"TRADING_ACCOUNT", cfg.TradingAccount},
		{"SYMBOL_CONNECTION", cfg.SymbolConnection},
		{"ACCOUNT_CONNECTION", cfg.AccountConnection},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%w: %s is required", domain.ErrInvalidConfig, r.name)
		}
	}

	if cfg.SymbolConnection != cfg.AccountConnection {
		return fmt.Errorf("%w: symbol connection %q does not match account connection %q",
			domain.ErrInvalidConfig, cfg.SymbolConnection, cfg.AccountConnection)
	}

	if cfg.RoundIntervalSeconds <= 0 {
		return fmt.Errorf("%w: ROUND_INTERVAL_SECONDS must be positive, got %d", domain.ErrInvalidConfig, cfg.RoundIntervalSeconds)
	}
	if cfg.RoundIntervalSeconds > maxRoundIntervalSeconds {
		return fmt.Errorf("%w: ROUND_INTERVAL_SECONDS must be at most %d (24h), got %d",
			domain.ErrInvalidConfig, maxRoundIntervalSeconds, cfg.RoundIntervalSeconds)
	}
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("%w: POLL_INTERVAL must be positive, got %s", domain.ErrInvalidConfig, cfg.PollInterval)
	}
	if cfg.FeedBatchSize <= 0 {
		return fmt.Errorf("%w: FEED_BATCH_SIZE must be positive, got %d", domain.ErrInvalidConfig, cfg.FeedBatchSize)
	}
	if cfg.FeedTimeout <= 0 {
		return fmt.Errorf("%w: FEED_TIMEOUT must be positive, got %s", domain.ErrInvalidConfig, cfg.FeedTimeout)
	}
	if cfg.FeedLockTTL < 3*time.Second {
		return fmt.Errorf("%w: FEED_LOCK_TTL must be at least 3s, got %s", domain.ErrInvalidConfig, cfg.FeedLockTTL)
	}
	if cfg.APIRateLimit <= 0 {
		return fmt.Errorf("%w: API_RATE_LIMIT must be positive", domain.ErrInvalidConfig)
	}

	return nil
}
