package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	Log      LogConfig      `toml:"log"`
	Database DatabaseConfig `toml:"database"`
	Draft    DraftConfig    `toml:"draft"`
	Export   ExportConfig   `toml:"export"`
	Server   ServerConfig   `toml:"server"`
}

type LogConfig struct {
	Level       string `toml:"level"`       // zap level name
	Development bool   `toml:"development"` // human readable console output
}

type DatabaseConfig struct {
	Path        string `toml:"path"`
	BusyTimeout string `toml:"busy_timeout"` // e.g. "5s"
	AutoMigrate bool   `toml:"auto_migrate"`
}

// DraftConfig sizes drafts created from a plain card list.
type DraftConfig struct {
	Seats        int  `toml:"seats"`
	Packs        int  `toml:"packs"`
	CardsPerPack int  `toml:"cards_per_pack"`
	Multiples    bool `toml:"multiples"`
}

type ExportConfig struct {
	Concurrency       int     `toml:"concurrency"`
	PageSize          int     `toml:"page_size"`
	PagesPerSecond    float64 `toml:"pages_per_second"` // 0 = unlimited
	IncludeIncomplete bool    `toml:"include_incomplete"`
}

type ServerConfig struct {
	Port int `toml:"port"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:       "info",
			Development: false,
		},
		Database: DatabaseConfig{
			Path:        "godr4ft.db",
			BusyTimeout: "5s",
			AutoMigrate: true,
		},
		Draft: DraftConfig{
			Seats:        8,
			Packs:        3,
			CardsPerPack: 15,
		},
		Export: ExportConfig{
			Concurrency:    4,
			PageSize:       100,
			PagesPerSecond: 0,
		},
		Server: ServerConfig{
			Port: 8000,
		},
	}
}

// Load reads the TOML file at path over the defaults. An empty path or a
// missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from GODR4FT_LOG_LEVEL, GODR4FT_DB_PATH and
// GODR4FT_PORT when they are set.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("GODR4FT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("GODR4FT_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("GODR4FT_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid GODR4FT_PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	return c.Validate()
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.Database.BusyTimeout); err != nil {
		return fmt.Errorf("invalid busy timeout %q: %w", c.Database.BusyTimeout, err)
	}
	if c.Draft.Seats < 2 {
		return fmt.Errorf("draft needs at least 2 seats, got %d", c.Draft.Seats)
	}
	if c.Draft.Packs < 1 || c.Draft.CardsPerPack < 1 {
		return fmt.Errorf("draft needs at least one pack of one card, got %d packs of %d", c.Draft.Packs, c.Draft.CardsPerPack)
	}
	if c.Export.Concurrency < 1 {
		return fmt.Errorf("export concurrency must be positive, got %d", c.Export.Concurrency)
	}
	if c.Export.PagesPerSecond < 0 {
		return fmt.Errorf("export pages per second cannot be negative")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	return nil
}

// BusyTimeout returns the parsed database busy timeout.
func (c *Config) BusyTimeout() time.Duration {
	d, err := time.ParseDuration(c.Database.BusyTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}
