// Package config loads casebook defaults from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds CLI defaults. Command-line flags override every field.
type Config struct {
	Format  string `env:"CASEBOOK_FORMAT"  envDefault:"text"`
	Verbose bool   `env:"CASEBOOK_VERBOSE"`
	DB      string `env:"CASEBOOK_DB"`
	Filter  string `env:"CASEBOOK_FILTER"`
}

// Load parses the CASEBOOK_* environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
