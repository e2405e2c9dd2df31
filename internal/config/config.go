package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort  string `env:"PORT" envDefault:"8080"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Content generation
	APIKey          string        `env:"API_KEY"`
	Model           string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	Temperature     float32       `env:"GEMINI_TEMPERATURE" envDefault:"0.8"`
	ContentTimeout  time.Duration `env:"CONTENT_TIMEOUT" envDefault:"45s"`
	ContentPackPath string        `env:"CONTENT_PACK_PATH"`
	GenerateRate    int           `env:"GENERATE_RATE" envDefault:"10"`
	GenerateWindow  time.Duration `env:"GENERATE_WINDOW" envDefault:"1m"`
	ShuffleSeed     uint64        `env:"SHUFFLE_SEED" envDefault:"0"`

	// Content archive
	DatabaseType string `env:"DB_TYPE" envDefault:"sqlite"`
	DatabasePath string `env:"DB_PATH" envDefault:"./explorer.db"`
	DatabaseURL  string `env:"DATABASE_URL"`
}

// Load reads configuration from the environment, after merging any .env file
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	// GEMINI_API_KEY is accepted as an alias for API_KEY
	if cfg.APIKey == "" {
		cfg.APIKey = getEnv("GEMINI_API_KEY", "")
	}

	if cfg.GenerateRate <= 0 {
		return nil, fmt.Errorf("GENERATE_RATE must be positive, got %d", cfg.GenerateRate)
	}
	return cfg, nil
}

// ContentConfigured reports whether the content generation credential is present
func (c *Config) ContentConfigured() bool {
	return c.APIKey != ""
}

// IsProduction switches logging to JSON output
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// LogFormat returns the logger encoding for the current environment
func (c *Config) LogFormat() string {
	if c.IsProduction() {
		return "json"
	}
	return "console"
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
