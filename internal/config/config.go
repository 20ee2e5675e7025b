// Package config loads service settings from defaults, a YAML file,
// a .env file and the environment, in that order of precedence.
package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/active-defence/internal/errors"
)

// Config holds all settings for the active defence service
type Config struct {
	LogLevel string  `yaml:"log_level" env:"LOG_LEVEL"`
	GRPC     GRPC    `yaml:"grpc"`
	Redis    Redis   `yaml:"redis"`
	Dice     Dice    `yaml:"dice"`
	Defence  Defence `yaml:"defence"`
}

// GRPC holds the server listener settings
type GRPC struct {
	Port            int           `yaml:"port" env:"GRPC_PORT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"GRPC_SHUTDOWN_TIMEOUT"`
}

// Redis holds the session store connection. An empty URL selects the
// in-memory store.
type Redis struct {
	URL      string `yaml:"url" env:"REDIS_URL"`
	PoolSize int    `yaml:"pool_size" env:"REDIS_POOL_SIZE"`
	UseTLS   bool   `yaml:"use_tls" env:"REDIS_USE_TLS"`
}

// Dice holds settings for generic formula rolls
type Dice struct {
	SessionTTL time.Duration `yaml:"session_ttl" env:"DICE_SESSION_TTL"`
}

// Defence holds the active defence roll settings
type Defence struct {
	ChatName      string        `yaml:"chat_name" env:"DEFENCE_CHAT_NAME"`
	HistoryTTL    time.Duration `yaml:"history_ttl" env:"DEFENCE_HISTORY_TTL"`
	PublishEvents bool          `yaml:"publish_events" env:"DEFENCE_PUBLISH_EVENTS"`
}

// Default returns the configuration used when nothing overrides it
func Default() Config {
	return Config{
		LogLevel: "info",
		GRPC: GRPC{
			Port:            50051,
			ShutdownTimeout: 30 * time.Second,
		},
		Redis: Redis{
			PoolSize: 10,
		},
		Dice: Dice{
			SessionTTL: 15 * time.Minute,
		},
		Defence: Defence{
			ChatName:   "Defence Roll",
			HistoryTTL: time.Hour,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty or the file does not exist) and environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, errors.Wrapf(err, "parsing config %s", path)
			}
		case os.IsNotExist(err):
			slog.Debug("Config file not found, using defaults", "path", path)
		default:
			return cfg, errors.Wrapf(err, "reading config %s", path)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, errors.Wrap(err, "parse env")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return errors.Wrapf(err, "loading %s", path)
		}
	}
	return nil
}

// Validate checks the configuration for values the service cannot run with
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	errors.ValidateRange("grpc.port", c.GRPC.Port, 1, 65535, vb)
	if c.GRPC.ShutdownTimeout <= 0 {
		vb.Field("grpc.shutdown_timeout", "must be positive")
	}
	if c.Redis.PoolSize < 0 {
		vb.Field("redis.pool_size", "must not be negative")
	}
	if c.Dice.SessionTTL <= 0 {
		vb.Field("dice.session_ttl", "must be positive")
	}
	if c.Defence.HistoryTTL <= 0 {
		vb.Field("defence.history_ttl", "must be positive")
	}
	errors.ValidateRequired("defence.chat_name", c.Defence.ChatName, vb)
	if _, ok := logLevels[strings.ToLower(c.LogLevel)]; !ok {
		vb.Fieldf("log_level", "unknown level %q", c.LogLevel)
	}

	return vb.Build()
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// SlogLevel returns the configured log level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	if level, ok := logLevels[strings.ToLower(c.LogLevel)]; ok {
		return level
	}
	return slog.LevelInfo
}
