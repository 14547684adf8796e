package config

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// minProductionSecretLen is the shortest JWT secret accepted with ENV=production.
const minProductionSecretLen = 32

type Config struct {
	Port      string `env:"PORT,       default=8080"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	// JWTSecret has no default. A missing secret is a startup error.
	JWTSecret   string `env:"JWT_SECRET, required"`
	TokenIssuer string `env:"TOKEN_ISSUER, default=secure-notes"`
	BcryptCost  int    `env:"BCRYPT_COST,  default=10"`

	// CookieSecure is "true", "false" or empty (secure only in production).
	CookieSecure string `env:"COOKIE_SECURE"`

	StorageDriver string `env:"STORAGE_DRIVER, default=sqlite"`

	SQLite SQLiteConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	Seed   SeedConfig
}

type SQLiteConfig struct {
	Path        string        `env:"SQLITE_PATH,         default=data/notes.db"`
	BusyTimeout time.Duration `env:"SQLITE_BUSY_TIMEOUT, default=2s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=secure_notes"`
}

// RedisConfig is optional. An empty Addr disables idempotency keys.
type RedisConfig struct {
	Addr           string        `env:"REDIS_ADDR"`
	Password       string        `env:"REDIS_PASSWORD"`
	DB             int           `env:"REDIS_DB,        default=0"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL, default=24h"`
}

type SeedConfig struct {
	OnStart  bool   `env:"SEED_ON_START, default=false"`
	Email    string `env:"SEED_EMAIL,    default=admin@miapp.com"`
	Name     string `env:"SEED_NAME,     default=Administrador"`
	Password string `env:"SEED_PASSWORD"`
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through lookuper and validates it.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// SecureCookies reports whether the session cookie carries the Secure flag.
func (c *Config) SecureCookies() bool {
	if v, err := strconv.ParseBool(c.CookieSecure); err == nil {
		return v
	}
	return c.IsProduction()
}

// RedisEnabled reports whether an idempotency store is configured.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.IsProduction() && len(c.JWTSecret) < minProductionSecretLen {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes in production", minProductionSecretLen)
	}
	if c.CookieSecure != "" {
		if _, err := strconv.ParseBool(c.CookieSecure); err != nil {
			return fmt.Errorf("COOKIE_SECURE: %w", err)
		}
	}
	switch c.StorageDriver {
	case "sqlite", "mongo":
	default:
		return fmt.Errorf("STORAGE_DRIVER %q is not one of sqlite, mongo", c.StorageDriver)
	}
	if c.Seed.OnStart && c.Seed.Password == "" {
		return errors.New("SEED_PASSWORD is required when SEED_ON_START is true")
	}
	return nil
}
