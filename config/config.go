// Package config holds the configuration of the budget command line.
//
// The configuration is read from $XDG_CONFIG_HOME/budget/config.toml, then overridden by BUDGET_*
// environment variables (a .env file in the working directory is loaded first), then by flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Backends lists the supported storage backends.
var Backends = []string{"folder", "sqlite"}

// Config holds all budget configuration.
type Config struct {
	Data      DataConfig      `toml:"data"`
	Log       LogConfig       `toml:"log"`
	Display   DisplayConfig   `toml:"display"`
	Assistant AssistantConfig `toml:"assistant"`
}

// DataConfig selects where the budget is stored.
type DataConfig struct {
	Backend string `toml:"backend"`
	Folder  string `toml:"folder"`
	SQLite  string `toml:"sqlite_path,omitempty"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // text or json
}

// DisplayConfig holds terminal rendering preferences.
type DisplayConfig struct {
	Style string `toml:"style"` // glamour style: auto, dark, light, notty
	Width int    `toml:"width"`
}

// AssistantConfig holds the AI assistant settings.
type AssistantConfig struct {
	Model  string `toml:"model"`
	APIKey string `toml:"api_key,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Data: DataConfig{
			Backend: "folder",
			Folder:  filepath.Join(DataDir(), "data"),
		},
		Log: LogConfig{
			Level:  "warning",
			Format: "text",
		},
		Display: DisplayConfig{
			Style: "auto",
			Width: 100,
		},
		Assistant: AssistantConfig{
			Model: "gemini-2.5-flash",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "budget")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "budget")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "budget")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "budget")
}

// Path returns the full path to the default config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file at path (the default path if empty), returning defaults if it doesn't
// exist. Environment overrides are applied.
func Load(path string) (Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("reading config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %q: %w", path, err)
		}
	}

	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

// Save writes the config at path (the default path if empty).
func Save(path string, cfg Config) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// LoadDotEnv loads environment variables from the given files, ".env" if none. Missing files are
// ignored, existing variables are not overridden.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// ApplyEnv overrides the configuration with BUDGET_* variables. lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set("BUDGET_BACKEND", &c.Data.Backend)
	set("BUDGET_DATA", &c.Data.Folder)
	set("BUDGET_SQLITE_PATH", &c.Data.SQLite)
	set("BUDGET_LOG_LEVEL", &c.Log.Level)
	set("BUDGET_LOG_FORMAT", &c.Log.Format)
	set("BUDGET_STYLE", &c.Display.Style)
	set("BUDGET_MODEL", &c.Assistant.Model)
	set("GEMINI_API_KEY", &c.Assistant.APIKey)
}

// SQLitePath returns the database file, by default "budget.db" in the data folder.
func (c Config) SQLitePath() string {
	if c.Data.SQLite != "" {
		return c.Data.SQLite
	}
	return filepath.Join(c.Data.Folder, "budget.db")
}

// Validate reports every problem of the configuration.
func (c Config) Validate() error {
	var errs []error
	if !slices.Contains(Backends, c.Data.Backend) {
		errs = append(errs, fmt.Errorf("invalid data backend %q: must be one of %v", c.Data.Backend, Backends))
	}
	if strings.TrimSpace(c.Data.Folder) == "" {
		errs = append(errs, errors.New("data folder cannot be empty"))
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Log.Level))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("invalid log format %q: must be text or json", c.Log.Format))
	}
	if c.Display.Width < 0 {
		errs = append(errs, fmt.Errorf("invalid display width %d", c.Display.Width))
	}
	return errors.Join(errs...)
}

// NewLogger creates the logger described by the configuration, writing to w.
func (c Config) NewLogger(w io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(w)
	if c.Log.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return log, fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	log.SetLevel(level)
	return log, nil
}
