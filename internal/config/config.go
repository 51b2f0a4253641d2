package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	DatabaseURL      string `env:"DATABASE_URL,required"`
	MasterPassphrase string `env:"MASTER_PASSPHRASE,required"`
	AdminToken       string `env:"ADMIN_TOKEN,required"`
	Port             int    `env:"PORT,default=8080"`
	LogLevel         string `env:"LOG_LEVEL,default=info"`
	CORSOrigins      []string `env:"CORS_ORIGINS"`

	// Provider validation probes
	ValidationTimeout time.Duration `env:"VALIDATION_TIMEOUT,default=15s"`

	// HTTP server timeouts
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT,default=15s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT,default=30s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT,default=60s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.MasterPassphrase) < 16 {
		return fmt.Errorf("MASTER_PASSPHRASE must be at least 16 characters")
	}

	if len(c.AdminToken) < 16 {
		return fmt.Errorf("ADMIN_TOKEN must be at least 16 characters")
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}

	if c.ValidationTimeout < 10*time.Second || c.ValidationTimeout > 20*time.Second {
		return fmt.Errorf("VALIDATION_TIMEOUT must be between 10s and 20s, got %s", c.ValidationTimeout)
	}

	return nil
}
