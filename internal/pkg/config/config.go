package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/slugboard/slugboard/internal/core/domain"
)

const (
	envProduction = "production"

	// minBcryptCost is the lowest work factor accepted for stored passwords.
	minBcryptCost = 10
)

type Config struct {
	Port            string        `env:"PORT,             default=8080"`
	Env             string        `env:"ENV,              default=development"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	Auth  AuthConfig
	Store StoreConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type AuthConfig struct {
	JWTSecret          string        `env:"JWT_SECRET"`
	SessionTTL         time.Duration `env:"SESSION_TTL,          default=168h"`
	RotationTTL        time.Duration `env:"ROTATION_TTL,         default=168h"`
	BcryptCost         int           `env:"BCRYPT_COST,          default=10"`
	BcryptRotationCost int           `env:"BCRYPT_ROTATION_COST, default=12"`
}

// StoreConfig selects the credential store. Driver is one of postgres, mysql,
// sqlite or mongo.
type StoreConfig struct {
	Driver string `env:"STORE_DRIVER, default=sqlite"`
	DSN    string `env:"STORE_DSN,    default=file:slugboard.db"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=slugboard"`
}

// RedisConfig is optional; an empty Addr disables registration replay.
type RedisConfig struct {
	Addr           string        `env:"REDIS_ADDR"`
	Username       string        `env:"REDIS_USERNAME"`
	Password       string        `env:"REDIS_PASSWORD"`
	DB             int           `env:"REDIS_DB,        default=0"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL, default=24h"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom is Load with an explicit source of variables.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET: %w", domain.ErrMissingSecret)
	}
	if c.Auth.SessionTTL <= 0 || c.Auth.RotationTTL <= 0 {
		return fmt.Errorf("SESSION_TTL and ROTATION_TTL must be positive")
	}
	if c.Auth.BcryptCost < minBcryptCost {
		return fmt.Errorf("BCRYPT_COST must be at least %d, got %d", minBcryptCost, c.Auth.BcryptCost)
	}
	if c.Auth.BcryptRotationCost < c.Auth.BcryptCost {
		return fmt.Errorf("BCRYPT_ROTATION_COST (%d) must not be below BCRYPT_COST (%d)",
			c.Auth.BcryptRotationCost, c.Auth.BcryptCost)
	}
	return nil
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, envProduction)
}

// CookieSecure reports whether the session cookie carries the Secure flag.
func (c *Config) CookieSecure() bool {
	return c.IsProduction()
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}
