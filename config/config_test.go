package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("BUDGET_BACKEND", "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Data.Backend != "folder" || cfg.Log.Level != "warning" {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budget", "config.toml")
	cfg := DefaultConfig()
	cfg.Data.Backend = "sqlite"
	cfg.Data.SQLite = "/tmp/budget.db"
	cfg.Log.Format = "json"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Data != cfg.Data || got.Log != cfg.Log {
		t.Errorf("Load() = %+v, want %+v", got, cfg)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[data]
backend = "sqlite"
folder = "/srv/budget"

[display]
style = "dark"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Data.Backend != "sqlite" || cfg.Display.Style != "dark" {
		t.Errorf("Load() = %+v", cfg)
	}
	// unset keys keep their default.
	if cfg.Display.Width != 100 {
		t.Errorf("Display.Width = %d, want 100", cfg.Display.Width)
	}
	if got, want := cfg.SQLitePath(), filepath.Join("/srv/budget", "budget.db"); got != want {
		t.Errorf("SQLitePath() = %q, want %q", got, want)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[data\nbackend="), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() succeeded on an invalid file")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"BUDGET_BACKEND":   "sqlite",
		"BUDGET_LOG_LEVEL": "debug",
		"BUDGET_DATA":      "",
	}
	cfg := DefaultConfig()
	folder := cfg.Data.Folder
	cfg.ApplyEnv(func(k string) (string, bool) { v, ok := env[k]; return v, ok })
	if cfg.Data.Backend != "sqlite" || cfg.Log.Level != "debug" {
		t.Errorf("ApplyEnv() = %+v", cfg)
	}
	if cfg.Data.Folder != folder {
		t.Errorf("an empty variable overrode the folder: %q", cfg.Data.Folder)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	if err := os.WriteFile(file, []byte("BUDGET_STYLE=light\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BUDGET_STYLE", "")
	os.Unsetenv("BUDGET_STYLE")
	if err := LoadDotEnv(file, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("BUDGET_STYLE"); got != "light" {
		t.Errorf("BUDGET_STYLE = %q, want light", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		edit    func(*Config)
		wantErr []string
	}{
		{"valid", func(*Config) {}, nil},
		{"backend", func(c *Config) { c.Data.Backend = "sheets" }, []string{`invalid data backend "sheets"`}},
		{"all", func(c *Config) {
			c.Data.Folder = " "
			c.Log.Level = "loud"
			c.Log.Format = "xml"
		}, []string{"data folder cannot be empty", `invalid log level "loud"`, `invalid log format "xml"`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.edit(&cfg)
			err := cfg.Validate()
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() succeeded, want %v", tt.wantErr)
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("Validate() = %v, want it to contain %q", err, want)
				}
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Log.Format = "json"
	cfg.Log.Level = "info"
	log, err := cfg.NewLogger(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if log.GetLevel() != logrus.InfoLevel {
		t.Errorf("level = %v, want info", log.GetLevel())
	}
	log.WithField("dataset", "planner").Info("loaded")
	if !strings.Contains(buf.String(), `"dataset":"planner"`) {
		t.Errorf("json log = %q", buf.String())
	}
}
