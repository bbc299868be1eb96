package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth      AuthConfig
	RateLimit RateLimitConfig
	Mongo     MongoConfig
	Redis     RedisConfig
}

// AuthConfig holds the signing secret and token lifetimes. All values are
// supplied at process start; there is no hot reload or runtime rotation.
type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET"`
	SessionTTL time.Duration `env:"SESSION_TTL,      default=1h"`
	ResetTTL   time.Duration `env:"RESET_SECRET_TTL, default=1h"`
}

// RateLimitConfig holds the window/max pair per protected route class.
type RateLimitConfig struct {
	GeneralWindow time.Duration `env:"RATELIMIT_GENERAL_WINDOW, default=15m"`
	GeneralMax    int64         `env:"RATELIMIT_GENERAL_MAX,    default=100"`
	ResetWindow   time.Duration `env:"RATELIMIT_RESET_WINDOW,   default=15m"`
	ResetMax      int64         `env:"RATELIMIT_RESET_MAX,      default=3"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=identity"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET is required")
	}
	return &cfg, nil
}
