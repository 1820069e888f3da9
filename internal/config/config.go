// internal/config/config.go
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the service's runtime configuration, parsed from the
// environment. A .env file is loaded by godotenv in main before this runs.
type Config struct {
	// Addr is the listen address for the websocket service.
	Addr string `env:"NOTHX_ADDR" envDefault:":8080"`

	// LogLevel is a logrus level name (debug, info, warn, error).
	LogLevel string `env:"NOTHX_LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
