package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"colormaker/internal/logging"
)

// Config holds all colormaker configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Durable preference store
	Store StoreConfig `yaml:"store"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Terminal renderer
	UX UXConfig `yaml:"ux"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "colormaker",
		Version: "0.3.0",

		Store: StoreConfig{
			Backend:      BackendSQLite,
			Driver:       DriverPureGo,
			WriteTimeout: "2s",
		},

		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},

		UX: UXConfig{
			Step:           0.01,
			CoarseStep:     0.1,
			NoticeDuration: "2s",
		},
	}
}

// DefaultDir is where colormaker keeps its config and data when no path is
// given: the user config dir, falling back to ./.colormaker.
func DefaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "colormaker")
	}
	return ".colormaker"
}

// DefaultConfigPath returns the path of the default config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if backend := os.Getenv("COLORMAKER_BACKEND"); backend != "" {
		c.Store.Backend = backend
	}
	if driver := os.Getenv("COLORMAKER_DRIVER"); driver != "" {
		c.Store.Driver = driver
	}
	if path := os.Getenv("COLORMAKER_STORE"); path != "" {
		c.Store.Path = path
	}
	if level := os.Getenv("COLORMAKER_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if file := os.Getenv("COLORMAKER_LOG_FILE"); file != "" {
		c.Logging.File = file
	}
}

// GetWriteTimeout returns the per-write persistence timeout.
func (c *Config) GetWriteTimeout() time.Duration {
	d, err := time.ParseDuration(c.Store.WriteTimeout)
	if err != nil || d <= 0 {
		return 2 * time.Second
	}
	return d
}

// GetNoticeDuration returns how long transient notices stay on screen.
func (c *Config) GetNoticeDuration() time.Duration {
	d, err := time.ParseDuration(c.UX.NoticeDuration)
	if err != nil || d <= 0 {
		return 2 * time.Second
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !contains(ValidBackends, c.Store.Backend) {
		return fmt.Errorf("invalid store backend: %s (valid: %v)", c.Store.Backend, ValidBackends)
	}
	if c.Store.Backend == BackendSQLite && !contains(ValidDrivers, c.Store.Driver) {
		return fmt.Errorf("invalid sqlite driver: %s (valid: %v)", c.Store.Driver, ValidDrivers)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging config: %w", err)
	}
	if c.UX.Step <= 0 || c.UX.Step > 1 {
		return fmt.Errorf("invalid ux step %v: must be in (0, 1]", c.UX.Step)
	}
	if c.UX.CoarseStep < c.UX.Step || c.UX.CoarseStep > 1 {
		return fmt.Errorf("invalid ux coarse_step %v: must be in [step, 1]", c.UX.CoarseStep)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
