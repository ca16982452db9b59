// Package config loads bridge process configuration.
package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/viant/firebridge/app"
	"github.com/viant/firebridge/shared"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix = "FIREBRIDGE_"

	defaultListen   = ":8080"
	defaultPath     = "/ws"
	defaultLogLevel = "info"
)

// App represents an app configured up front, DSN uses firebase://<database>?apiKey=.. form
type App struct {
	Name string `yaml:"name"`
	DSN  string `yaml:"dsn"`
}

// Config represents process config
type Config struct {
	Listen       string        `yaml:"listen"`
	Path         string        `yaml:"path"`
	LogLevel     string        `yaml:"logLevel"`
	PollInterval time.Duration `yaml:"pollInterval"`
	Apps         []App         `yaml:"apps"`
}

// Load reads YAML config from path (optional) and applies FIREBRIDGE_* environment overrides
func Load(path string) (*Config, error) {
	ret := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %v: %w", path, err)
		}
		if err = yaml.Unmarshal(data, ret); err != nil {
			return nil, fmt.Errorf("failed to parse config %v: %w", path, err)
		}
	}
	if err := ret.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	ret.Init()
	return ret, ret.Validate()
}

func (c *Config) applyEnv(lookup func(key string) (string, bool)) error {
	env := func(name string) (string, bool) {
		value, ok := lookup(envPrefix + name)
		value = strings.TrimSpace(value)
		return value, ok && value != ""
	}
	if value, ok := env("LISTEN"); ok {
		c.Listen = value
	}
	if value, ok := env("PATH"); ok {
		c.Path = value
	}
	if value, ok := env("LOG_LEVEL"); ok {
		c.LogLevel = value
	}
	if value, ok := env("POLL_INTERVAL"); ok {
		interval, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %vPOLL_INTERVAL: %w", envPrefix, err)
		}
		c.PollInterval = interval
	}
	if value, ok := env("DSN"); ok {
		c.setApp(App{Name: shared.DefaultApp, DSN: value})
	}
	return nil
}

func (c *Config) setApp(candidate App) {
	for i, existing := range c.Apps {
		if existing.Name == candidate.Name {
			c.Apps[i] = candidate
			return
		}
	}
	c.Apps = append(c.Apps, candidate)
}

// Init applies defaults
func (c *Config) Init() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Path == "" {
		c.Path = defaultPath
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	for i := range c.Apps {
		if c.Apps[i].Name == "" {
			c.Apps[i].Name = shared.DefaultApp
		}
	}
}

// Validate checks config
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("invalid path %q: expected leading /", c.Path)
	}
	if c.PollInterval < 0 {
		return fmt.Errorf("invalid pollInterval: %v", c.PollInterval)
	}
	names := map[string]bool{}
	for _, candidate := range c.Apps {
		if candidate.DSN == "" {
			return fmt.Errorf("app %v: dsn was empty", candidate.Name)
		}
		if names[candidate.Name] {
			return fmt.Errorf("app %v: duplicate name", candidate.Name)
		}
		names[candidate.Name] = true
	}
	return nil
}

// Level returns zerolog level
func (c *Config) Level() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid logLevel %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Configure parses app DSNs and registers them with registry
func (c *Config) Configure(ctx context.Context, registry *app.Registry) error {
	for _, candidate := range c.Apps {
		cfg, err := shared.ParseDSNContext(ctx, candidate.DSN)
		if err != nil {
			return fmt.Errorf("app %v: %w", candidate.Name, err)
		}
		cfg.App = candidate.Name
		if c.PollInterval > 0 && !cfg.Values.Has("pollInterval") {
			cfg.PollInterval = c.PollInterval
		}
		registry.Configure(candidate.Name, cfg)
	}
	return nil
}
