package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,          default=8080"`
	Env      string `env:"ENV,           default=development"`
	LogLevel string `env:"LOG_LEVEL,     default=info"`
	Store    string `env:"STORE_BACKEND, default=mongo"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
	Audit AuditConfig
	Seed  SeedConfig
}

// AuthConfig holds token and credential settings. JWTSecret is loaded once at
// startup and never logged.
type AuthConfig struct {
	JWTSecret          string        `env:"JWT_SECRET, required"`
	JWTIssuer          string        `env:"JWT_ISSUER,           default=identity-api"`
	TokenTTL           time.Duration `env:"JWT_TTL,              default=24h"`
	Header             string        `env:"AUTH_HEADER,          default=Authorization"`
	BcryptCost         int           `env:"BCRYPT_COST,          default=10"`
	LoginMaxFailures   int           `env:"LOGIN_MAX_FAILURES,   default=5"`
	LoginFailureWindow time.Duration `env:"LOGIN_FAILURE_WINDOW, default=15m"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=identity"`
}

// RedisConfig locates the login throttle backend. An empty Addr disables
// throttling.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

// SeedConfig controls the default roles and accounts created at startup.
type SeedConfig struct {
	DefaultUsers  bool   `env:"SEED_DEFAULT_USERS,  default=false"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD"`
	AdminEmail    string `env:"SEED_ADMIN_EMAIL,    default=admin@example.com"`
	UserPassword  string `env:"SEED_USER_PASSWORD"`
	UserEmail     string `env:"SEED_USER_EMAIL,     default=user@example.com"`
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
	return &cfg, nil
}

// UseMemoryStore reports whether users and roles live in process memory
// instead of MongoDB.
func (c *Config) UseMemoryStore() bool {
	return c.Store == "memory"
}

// IsDevelopment reports whether human-friendly logging should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
