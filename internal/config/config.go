package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Budget  BudgetConfig  `toml:"budget"`
	Sync    SyncConfig    `toml:"sync"`
	Server  ServerConfig  `toml:"server"`
	View    ViewConfig    `toml:"view"`
	Logging LoggingConfig `toml:"logging"`
	Script  ScriptConfig  `toml:"script"`
}

type BudgetConfig struct {
	CapacityKB    int    `toml:"capacity_kb"`
	DefaultCostKB int    `toml:"default_cost_kb"`
	CostTable     string `toml:"cost_table"` // optional YAML file; empty = built-in table
}

type SyncConfig struct {
	PollInterval      time.Duration `toml:"poll_interval"`
	TickRate          time.Duration `toml:"tick_rate"` // headless loop only; the window ticks at 60 Hz
	PushNotifications bool          `toml:"push_notifications"`
}

// ObserverInterval is the poll period for a remote observer. A zero
// PollInterval means every tick, so it falls back to TickRate.
func (c SyncConfig) ObserverInterval() time.Duration {
	return max(c.PollInterval, c.TickRate)
}

type ServerConfig struct {
	Listen       string        `toml:"listen"` // empty = no websocket server
	Path         string        `toml:"path"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

type ViewConfig struct {
	Width  int     `toml:"width"`
	Height int     `toml:"height"`
	Title  string  `toml:"title"`
	Zoom   float32 `toml:"zoom"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type ScriptConfig struct {
	Path string `toml:"path"`
}

// Load reads a TOML file over the defaults. Keys missing from the file keep
// their default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return defaults()
}

// Validate rejects values the workbench cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Budget.CapacityKB <= 0 {
		errs = append(errs, fmt.Errorf("budget.capacity_kb must be positive, got %d", c.Budget.CapacityKB))
	}
	if c.Budget.DefaultCostKB < 0 {
		errs = append(errs, fmt.Errorf("budget.default_cost_kb must not be negative, got %d", c.Budget.DefaultCostKB))
	}
	if c.Sync.PollInterval < 0 {
		errs = append(errs, fmt.Errorf("sync.poll_interval must not be negative, got %s", c.Sync.PollInterval))
	}
	if c.Sync.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("sync.tick_rate must be positive, got %s", c.Sync.TickRate))
	}
	if c.View.Width <= 0 || c.View.Height <= 0 {
		errs = append(errs, fmt.Errorf("view size must be positive, got %dx%d", c.View.Width, c.View.Height))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}

func defaults() *Config {
	return &Config{
		Budget: BudgetConfig{
			CapacityKB:    400 * 1024,
			DefaultCostKB: 10,
		},
		Sync: SyncConfig{
			PollInterval: 250 * time.Millisecond,
			TickRate:     16 * time.Millisecond,
		},
		Server: ServerConfig{
			Path:         "/ws",
			WriteTimeout: 10 * time.Second,
		},
		View: ViewConfig{
			Width:  1280,
			Height: 720,
			Title:  "Orbrya Student Workbench",
			Zoom:   2.0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
