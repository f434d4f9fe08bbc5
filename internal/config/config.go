package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	TelegramBotToken      string `env:"TELEGRAM_BOT_TOKEN,required" validate:"required"`
	TelegramWebhookSecret string `env:"TELEGRAM_WEBHOOK_SECRET,required" validate:"required"`

	OperatorTokenSecret string `env:"OPERATOR_TOKEN_SECRET,required" validate:"required,min=32"`

	DeliveryFeeIQD     int64   `env:"DELIVERY_FEE_IQD" envDefault:"5000" validate:"gte=0"`
	MatchThreshold     float64 `env:"MATCH_THRESHOLD" envDefault:"0.6" validate:"gt=0,lte=1"`
	MaxConcurrentItems int     `env:"MAX_CONCURRENT_ITEMS" envDefault:"4" validate:"gte=1"`

	LexiconFile string `env:"LEXICON_FILE"`

	CacheProvider         string `env:"CACHE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis"`
	RedisConnectionString string `env:"REDIS_CONNECTION_STRING" envDefault:"redis://localhost:6379/0" validate:"required_if=CacheProvider redis"`

	SentryDSN string `env:"SENTRY_DSN"`

	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"text" validate:"omitempty,oneof=text json"`
	Port      string     `env:"PORT" envDefault:"8080"`
}

var configValidator = validator.New()

func Load() (*Config, error) {
	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if err := configValidator.Struct(c); err != nil {
		return err
	}

	// Bot tokens look like "123456789:AAF...". Catch the common mistake of
	// pasting only the secret half.
	if !strings.Contains(c.TelegramBotToken, ":") {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN must include the numeric bot id prefix")
	}

	return nil
}
