package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Provider    string `yaml:"provider" validate:"oneof=yahoo financego mock"`
	Proxy       string `yaml:"proxy" validate:"omitempty,url"`
	HTTPTimeout int    `yaml:"http_timeout" validate:"gt=0"` // seconds
	Chart       struct {
		Output   string  `yaml:"output" validate:"required"`
		WidthIn  float64 `yaml:"width_in" validate:"gt=0"`
		HeightIn float64 `yaml:"height_in" validate:"gt=0"`
		Open     bool    `yaml:"open"`
	} `yaml:"chart"`
	Journal struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"journal"`
	Log struct {
		Level string `yaml:"level" validate:"oneof=debug info warn error"`
	} `yaml:"log"`
}

// Timeout returns the HTTP timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.HTTPTimeout) * time.Second
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("STOCKCOMPARE_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("STOCKCOMPARE_CHART_OUTPUT"); v != "" {
		cfg.Chart.Output = v
	}
	if v := os.Getenv("STOCKCOMPARE_CHART_OPEN"); v != "" {
		if open, err := strconv.ParseBool(v); err == nil {
			cfg.Chart.Open = open
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Journal.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Defaults
	if cfg.Provider == "" {
		cfg.Provider = "yahoo"
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 30
	}
	if cfg.Chart.Output == "" {
		cfg.Chart.Output = "stock_comparison.png"
	}
	if cfg.Chart.WidthIn == 0 {
		cfg.Chart.WidthIn = 10
	}
	if cfg.Chart.HeightIn == 0 {
		cfg.Chart.HeightIn = 6
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "warn"
	}

	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
