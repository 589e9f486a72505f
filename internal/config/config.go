// Package config loads the service configuration from an optional YAML file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/erazemk/cssd/internal/collection"
	"github.com/erazemk/cssd/internal/model"
	"github.com/erazemk/cssd/internal/reconcile"
)

// Config is the service configuration.
type Config struct {
	Addr string `yaml:"addr"`
	// DB is the SQLite database backing the local collection store.
	DB string `yaml:"db"`
	// StoreURL points the engines at a remote collection store. Empty means
	// the engines use the local database directly.
	StoreURL      string        `yaml:"store_url"`
	ClientTimeout time.Duration `yaml:"client_timeout"`
	SweepInterval time.Duration `yaml:"sweep_interval"`

	Log LogConfig `yaml:"log"`

	Machines []model.Machine `yaml:"machines"`
	Methods  []model.Method  `yaml:"methods"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Addr:          ":3001",
		DB:            "cssd.sqlite3",
		ClientTimeout: 10 * time.Second,
		SweepInterval: reconcile.DefaultSweepInterval,
		Log:           LogConfig{Level: "info"},
		Machines:      model.DefaultMachines(),
		Methods:       model.DefaultMethods(),
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values Load cannot default.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("config: addr is required")
	}
	if c.StoreURL == "" && strings.TrimSpace(c.DB) == "" {
		return fmt.Errorf("config: db is required when store_url is empty")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("config: sweep_interval must be positive")
	}
	if c.ClientTimeout <= 0 {
		return fmt.Errorf("config: client_timeout must be positive")
	}
	if len(c.Methods) == 0 {
		return fmt.Errorf("config: at least one sterilization method is required")
	}
	for _, m := range c.Methods {
		if strings.TrimSpace(m.Name) == "" || m.Duration <= 0 {
			return fmt.Errorf("config: method %q needs a name and a positive duration", m.ID)
		}
	}
	return nil
}

// Remote reports whether the engines talk to a remote collection store.
func (c *Config) Remote() bool {
	return c.StoreURL != ""
}

// Client returns the remote store client.
func (c *Config) Client() *collection.Client {
	return collection.NewClient(c.StoreURL, c.ClientTimeout)
}
