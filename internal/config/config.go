package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level newmap.yaml configuration.
type Config struct {
	// Limits bounds every top-level evaluation.
	Limits Limits `yaml:"limits"`

	// Store selects where session command logs are kept.
	Store Store `yaml:"store"`
}

// Limits bounds evaluation of untrusted input.
type Limits struct {
	// MaxDepth is the maximum nesting of evaluator calls. 0 means the default.
	MaxDepth int `yaml:"max_depth,omitempty"`

	// MaxSteps is the reduction-step budget per command. Negative disables it.
	MaxSteps int `yaml:"max_steps,omitempty"`

	// Timeout is the wall-clock limit per command (e.g. "5s"). 0 means the
	// default.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// Store configures the command log database.
type Store struct {
	// Driver is "sqlite" (default) or "mysql".
	Driver string `yaml:"driver,omitempty"`

	// DSN is passed to sql.Open unchanged.
	DSN string `yaml:"dsn,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses a newmap.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses newmap.yaml content from bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

func (c *Config) validate(path string) error {
	if c.Limits.MaxDepth < 0 {
		return fmt.Errorf("%s: limits.max_depth must not be negative", path)
	}
	if c.Limits.Timeout < 0 {
		return fmt.Errorf("%s: limits.timeout must not be negative", path)
	}
	switch c.Store.Driver {
	case "", DriverSQLite:
	case DriverMySQL:
		if c.Store.DSN == "" {
			return fmt.Errorf("%s: store.dsn is required for driver %q", path, DriverMySQL)
		}
	default:
		return fmt.Errorf("%s: store.driver %q is not supported", path, c.Store.Driver)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Limits.MaxDepth == 0 {
		c.Limits.MaxDepth = DefaultMaxDepth
	}
	if c.Limits.MaxSteps == 0 {
		c.Limits.MaxSteps = DefaultMaxSteps
	}
	if c.Limits.MaxSteps < 0 {
		c.Limits.MaxSteps = 0
	}
	if c.Limits.Timeout == 0 {
		c.Limits.Timeout = DefaultTimeout
	}
	if c.Store.Driver == "" {
		c.Store.Driver = DriverSQLite
	}
	if c.Store.DSN == "" {
		c.Store.DSN = DefaultDSN
	}
}
