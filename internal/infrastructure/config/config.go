package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const devSessionSecret = "dev-only-session-secret"

type Config struct {
	Port     string `env:"PORT,      default=3000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Backend BackendConfig
	Session SessionConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type BackendConfig struct {
	GraphQLURL string        `env:"BACKEND_GRAPHQL_URL, default=http://localhost:8080/query"`
	Timeout    time.Duration `env:"BACKEND_TIMEOUT,     default=10s"`
}

type SessionConfig struct {
	Secret           string        `env:"SESSION_SECRET"`
	TTL              time.Duration `env:"SESSION_TTL,          default=24h"`
	CookieSecure     bool          `env:"COOKIE_SECURE,        default=false"`
	SettleTimeout    time.Duration `env:"GUARD_SETTLE_TIMEOUT, default=1500ms"`
	BootstrapWorkers int           `env:"BOOTSTRAP_WORKERS,    default=4"`
	LoginPerMinute   int           `env:"LOGIN_RATE_PER_MINUTE, default=20"`
	LoginBurst       int           `env:"LOGIN_BURST,          default=5"`
}

// MongoConfig is optional; an empty URI disables the audit collection.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=testdeck_console"`
}

// RedisConfig is optional; an empty address keeps backend cookies in memory.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// IsDevelopment reports whether ENV selects the development profile.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Session.Secret == "" && cfg.IsDevelopment() {
		cfg.Session.Secret = devSessionSecret
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Session.Secret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required outside development"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.Session.SettleTimeout < 0 {
		errs = append(errs, errors.New("GUARD_SETTLE_TIMEOUT must not be negative"))
	}
	if c.Backend.GraphQLURL == "" {
		errs = append(errs, errors.New("BACKEND_GRAPHQL_URL is required"))
	}
	return errors.Join(errs...)
}
