package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every externally-provided setting. It is parsed once at
// startup and passed to components at construction; nothing reads the
// environment after that.
type Config struct {
	DatabaseURL     string   `env:"DATABASE_URL" envDefault:"file:todos.db"`
	JWTSecret       string   `env:"JWT_SECRET,required,notEmpty"`
	JWTAlgorithm    string   `env:"JWT_ALGORITHM" envDefault:"HS256"`
	TokenTTLMinutes int      `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"30"`
	Debug           bool     `env:"DEBUG"`
	AllowedOrigins  []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
	Port            string   `env:"PORT" envDefault:"8080"`
}

// Load reads configuration from the environment, after loading a .env file
// if one is present (ok if missing in prod).
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// TokenTTL returns the configured access-token lifetime.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}
