// Package config loads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Host              string        `env:"HOST"`
	Port              int           `env:"PORT,default=8080" validate:"min=1,max=65535"`
	LogLevel          string        `env:"LOG_LEVEL,default=info" validate:"oneof=debug info warn error"`
	SendBufferSize    int           `env:"SEND_BUFFER_SIZE,default=256" validate:"min=1"`
	MaxMessageSize    int64         `env:"MAX_MESSAGE_SIZE,default=4096" validate:"min=128"`
	TypingTTL         time.Duration `env:"TYPING_TTL,default=10s" validate:"min=0"`
	PresenceRetention time.Duration `env:"PRESENCE_RETENTION,default=24h" validate:"min=0"`
	SweepInterval     time.Duration `env:"SWEEP_INTERVAL,default=5s" validate:"min=0"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s" validate:"gt=0"`
	AllowedOrigins    string        `env:"ALLOWED_ORIGINS"`
}

// Load reads .env when present, then the process environment.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Origins returns the allowed websocket origins. Empty means any origin.
func (c Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
