// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds everything cmd/server needs to start.
type Config struct {
	Addr             string        `env:"BASTION_ADDR" envDefault:":8080"`
	TemplatesDir     string        `env:"BASTION_TEMPLATES_DIR" envDefault:"templates"`
	StaticDir        string        `env:"BASTION_STATIC_DIR" envDefault:"static"`
	SeedRoster       string        `env:"BASTION_SEED_ROSTER"`
	MaxPortraitBytes int64         `env:"BASTION_MAX_PORTRAIT_BYTES" envDefault:"2097152"`
	SecureCookies    bool          `env:"BASTION_SECURE_COOKIES" envDefault:"false"`
	ShutdownTimeout  time.Duration `env:"BASTION_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// Load parses Config from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.MaxPortraitBytes <= 0 {
		return Config{}, fmt.Errorf("BASTION_MAX_PORTRAIT_BYTES must be positive, got %d", cfg.MaxPortraitBytes)
	}
	return cfg, nil
}
