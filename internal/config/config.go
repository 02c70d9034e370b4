// Package config loads CLI defaults from ENVSCHEMA_* environment variables.
package config

import (
	"errors"
	"fmt"

	"github.com/joeshaw/envdecode"
)

// Config holds the defaults for the envschema command. Flags override every field.
type Config struct {
	// Prefix selects the variables to read. ENV: ENVSCHEMA_PREFIX
	Prefix string `env:"ENVSCHEMA_PREFIX"`
	// Schema is the schema file path; empty reads standard input. ENV: ENVSCHEMA_SCHEMA
	Schema string `env:"ENVSCHEMA_SCHEMA"`
	// EnvFile is an optional dotenv file. ENV: ENVSCHEMA_ENV_FILE
	EnvFile string `env:"ENVSCHEMA_ENV_FILE"`
	Debug   bool   `env:"ENVSCHEMA_DEBUG,strict"`
	Partial bool   `env:"ENVSCHEMA_PARTIAL,strict"`
	// Indent is the pretty-print width; 0 prints compact JSON. ENV: ENVSCHEMA_INDENT
	Indent int `env:"ENVSCHEMA_INDENT,default=2,strict"`
	// Lang picks the diagnostic language, en or ja. ENV: ENVSCHEMA_LANG
	Lang string `env:"ENVSCHEMA_LANG,default=en"`
}

// Load decodes Config from the process environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values no flag combination could fix later.
func (c Config) Validate() error {
	if c.Indent < 0 || c.Indent > 16 {
		return fmt.Errorf("config: indent must be between 0 and 16, got %d", c.Indent)
	}
	switch c.Lang {
	case "en", "ja":
	default:
		return fmt.Errorf("config: unsupported language %q (want en or ja)", c.Lang)
	}
	return nil
}
