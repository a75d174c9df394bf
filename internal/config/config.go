// Package config loads server settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/mmynk/splitroom/internal/lifecycle"
	"github.com/mmynk/splitroom/internal/realtime"
)

type Config struct {
	Port   string `env:"PORT" envDefault:"8080" validate:"required,numeric"`
	DBPath string `env:"DB_PATH" envDefault:"./data/splitroom.db" validate:"required"`

	JWTSecret string        `env:"JWT_SECRET,required" validate:"required,min=16"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"720h" validate:"gt=0"`

	BrokerProvider string `env:"BROKER_PROVIDER" envDefault:"memory" validate:"oneof=memory redis nats"`
	RedisURL       string `env:"REDIS_URL" validate:"required_if=BrokerProvider redis"`
	NATSURL        string `env:"NATS_URL" validate:"required_if=BrokerProvider nats"`

	// GeminiAPIKey enables receipt scanning. Scanning is disabled when empty.
	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	GeminiModel   string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	ScanCacheSize int    `env:"SCAN_CACHE_SIZE" envDefault:"256" validate:"gte=0"`

	EmptyRoomTTL     time.Duration `env:"EMPTY_ROOM_TTL" envDefault:"30m" validate:"gt=0"`
	CompletedRoomTTL time.Duration `env:"COMPLETED_ROOM_TTL" envDefault:"360h" validate:"gt=0"`
	SweepInterval    time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m" validate:"gt=0"`

	DefaultLocale string `env:"DEFAULT_LOCALE" envDefault:"en-US"`

	LogLevel         slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat        string     `env:"LOG_FORMAT" envDefault:"text" validate:"oneof=text json"`
	MetricsNamespace string     `env:"METRICS_NAMESPACE" envDefault:"splitroom" validate:"required"`
}

var configValidator = validator.New()

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	return Parse()
}

// Parse reads the environment only.
func Parse() (*Config, error) {
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
	return configValidator.Struct(c)
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// Policy returns the room expiry policy.
func (c *Config) Policy() lifecycle.Policy {
	return lifecycle.Policy{
		EmptyRoomTTL:     c.EmptyRoomTTL,
		CompletedRoomTTL: c.CompletedRoomTTL,
	}
}

// Broker returns the realtime broker settings.
func (c *Config) Broker() realtime.Config {
	return realtime.Config{
		Provider: c.BrokerProvider,
		RedisURL: c.RedisURL,
		NATSURL:  c.NATSURL,
	}
}

// ScanningEnabled reports whether a receipt scanning backend is configured.
func (c *Config) ScanningEnabled() bool {
	return c.GeminiAPIKey != ""
}
