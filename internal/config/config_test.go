package config

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devbush/batchinfer/internal/domain"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Input.Path != "data/input.csv" {
		t.Errorf("Default input = %s, want data/input.csv", cfg.Input.Path)
	}
	if cfg.Output.Path != "output/predictions.csv" {
		t.Errorf("Default output = %s, want output/predictions.csv", cfg.Output.Path)
	}
	if cfg.Model.BatchSize != 32 || cfg.Model.MaxLen != 256 {
		t.Errorf("Default batch/maxlen = %d/%d, want 32/256", cfg.Model.BatchSize, cfg.Model.MaxLen)
	}
	if cfg.Input.MaxRows != 0 {
		t.Errorf("Default max rows = %d, want 0", cfg.Input.MaxRows)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestConfig_Save_Load(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "sub", "batchinfer.yaml")

	cfg := DefaultConfig()
	cfg.Model.BatchSize = 8
	idx := 2
	cfg.Input.GroupColIndex = &idx

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.Model.BatchSize != 8 {
		t.Errorf("Loaded batch size = %d, want 8", loaded.Model.BatchSize)
	}
	if loaded.Input.GroupColIndex == nil || *loaded.Input.GroupColIndex != 2 {
		t.Errorf("Loaded group index = %v, want 2", loaded.Input.GroupColIndex)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Model.BatchSize != 32 {
		t.Errorf("BatchSize = %d, want 32", cfg.Model.BatchSize)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"INPUT_CSV":       "in.csv",
		"OUTPUT_CSV":      "out.csv",
		"CSV_MODE":        "HEADERLESS",
		"TEXT_COL_INDEX":  "1",
		"GROUP_COL_INDEX": "0",
		"BATCH_SIZE":      "4",
		"MAX_ROWS":        "10",
		"MODEL_NAME":      " custom ",
		"TEXT_COL":        "",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}

	if cfg.Input.Path != "in.csv" || cfg.Output.Path != "out.csv" {
		t.Errorf("paths = %s, %s", cfg.Input.Path, cfg.Output.Path)
	}
	if cfg.Input.Mode != ModeHeaderless {
		t.Errorf("Mode = %s, want headerless", cfg.Input.Mode)
	}
	if *cfg.Input.TextColIndex != 1 || *cfg.Input.GroupColIndex != 0 {
		t.Errorf("indexes = %d, %d", *cfg.Input.TextColIndex, *cfg.Input.GroupColIndex)
	}
	if cfg.Model.BatchSize != 4 || cfg.Input.MaxRows != 10 {
		t.Errorf("batch/max = %d/%d", cfg.Model.BatchSize, cfg.Input.MaxRows)
	}
	if cfg.Model.Name != "custom" {
		t.Errorf("Name = %q, want custom", cfg.Model.Name)
	}
	if cfg.Input.TextCol != "Text" {
		t.Errorf("empty TEXT_COL should keep default, got %q", cfg.Input.TextCol)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestApplyEnv_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		mention string
	}{
		{"zero batch size", map[string]string{"BATCH_SIZE": "0"}, "BATCH_SIZE"},
		{"zero max rows", map[string]string{"MAX_ROWS": "0"}, "MAX_ROWS"},
		{"non-numeric max len", map[string]string{"MAX_LEN": "lots"}, "MAX_LEN"},
		{"negative text index", map[string]string{"TEXT_COL_INDEX": "-1"}, "TEXT_COL_INDEX"},
		{"negative group index", map[string]string{"GROUP_COL_INDEX": "-2"}, "GROUP_COL_INDEX"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := DefaultConfig().ApplyEnv(envMap(tt.env))
			if err == nil {
				t.Fatal("ApplyEnv() error = nil, want error")
			}
			if !errors.Is(err, domain.ErrConfiguration) {
				t.Errorf("error %v is not a configuration error", err)
			}
			if !strings.Contains(err.Error(), tt.mention) {
				t.Errorf("error %q does not mention %s", err, tt.mention)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	neg := -1
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad mode", func(c *Config) { c.Input.Mode = "nope" }},
		{"headerless without index", func(c *Config) { c.Input.Mode = ModeHeaderless }},
		{"zero batch size", func(c *Config) { c.Model.BatchSize = 0 }},
		{"zero max len", func(c *Config) { c.Model.MaxLen = 0 }},
		{"negative max rows", func(c *Config) { c.Input.MaxRows = -1 }},
		{"negative group index", func(c *Config) { c.Input.GroupColIndex = &neg }},
		{"http without endpoint", func(c *Config) { c.Model.Backend = BackendHTTP }},
		{"command without command", func(c *Config) { c.Model.Backend = BackendCommand }},
		{"unknown backend", func(c *Config) { c.Model.Backend = "torch" }},
		{"bad timeout", func(c *Config) { c.Model.Timeout = "soon" }},
		{"empty output", func(c *Config) { c.Output.Path = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() error = nil, want error")
			}
			if !errors.Is(err, domain.ErrConfiguration) {
				t.Errorf("error %v is not a configuration error", err)
			}
		})
	}
}
