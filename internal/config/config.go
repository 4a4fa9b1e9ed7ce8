package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port                  int    `env:"PORT" envDefault:"8080"`
	DatabaseURL           string `env:"DATABASE_URL,required"`
	RedisURL              string `env:"REDIS_URL,required"`
	SessionTTLHours       int    `env:"SESSION_TTL_HOURS" envDefault:"24"`
	RateLimitPerMin       int    `env:"RATE_LIMIT_PER_MIN" envDefault:"60"`
	RateLimitPublicPerMin int    `env:"RATE_LIMIT_PUBLIC_PER_MIN" envDefault:"10"`
	LogLevel              string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
