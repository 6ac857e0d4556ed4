// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port            int    `env:"PORT" envDefault:"8080"`
	DataDir         string `env:"SETTLEMENT_DATA_DIR" envDefault:"./data"`
	LogLevel        string `env:"SETTLEMENT_LOG_LEVEL" envDefault:"info"`
	DocumentVersion string `env:"SETTLEMENT_DOC_VERSION" envDefault:"1.0.0"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses and validates Config.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("data directory is empty")
	}
	if strings.TrimSpace(c.DocumentVersion) == "" {
		return errors.New("document version is empty")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }
