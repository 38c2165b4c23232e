package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/devbush/batchinfer/internal/domain"
)

// CSV modes
const (
	ModeHeader     = "header"
	ModeHeaderless = "headerless"
)

// Predictor backends
const (
	BackendLexicon = "lexicon"
	BackendHTTP    = "http"
	BackendCommand = "command"
)

// Config represents the application configuration
type Config struct {
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Model   ModelConfig   `yaml:"model"`
	Logging LoggingConfig `yaml:"logging"`
}

// InputConfig describes the CSV to score
type InputConfig struct {
	Path          string `yaml:"path"`
	Mode          string `yaml:"mode"`
	TextCol       string `yaml:"text_col"`
	TextColIndex  *int   `yaml:"text_col_index,omitempty"`
	IDCol         string `yaml:"id_col,omitempty"`
	GroupCol      string `yaml:"group_col,omitempty"`
	GroupColIndex *int   `yaml:"group_col_index,omitempty"`
	MaxRows       int    `yaml:"max_rows"` // 0 means unlimited
}

// OutputConfig holds output and tracking paths
type OutputConfig struct {
	Path        string `yaml:"path"`
	LivePath    string `yaml:"live_path"`
	HistoryPath string `yaml:"history_path"`
	HistoryDB   string `yaml:"history_db,omitempty"` // optional SQLite history
}

// ModelConfig selects and tunes the predictor
type ModelConfig struct {
	Backend   string   `yaml:"backend"`
	Name      string   `yaml:"name"`
	Endpoint  string   `yaml:"endpoint,omitempty"`
	Command   string   `yaml:"command,omitempty"`
	Args      []string `yaml:"args,omitempty"`
	BatchSize int      `yaml:"batch_size"`
	MaxLen    int      `yaml:"max_len"`
	Timeout   string   `yaml:"timeout"`
	Retries   int      `yaml:"retries"`
	CacheSize int      `yaml:"cache_size"`
}

// LoggingConfig configures the logger
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			Path:    "data/input.csv",
			Mode:    ModeHeader,
			TextCol: "Text",
		},
		Output: OutputConfig{
			Path:        "output/predictions.csv",
			LivePath:    "output/live_metrics.json",
			HistoryPath: "output/run_history.jsonl",
		},
		Model: ModelConfig{
			Backend:   BackendLexicon,
			Name:      "distilbert-base-uncased-finetuned-sst-2-english",
			BatchSize: 32,
			MaxLen:    256,
			Timeout:   "30s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// DefaultPath is the config file looked up in the working directory
const DefaultPath = "batchinfer.yaml"

// Load reads config from file, returns default if not exists
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", domain.ErrConfiguration, err)
	}

	return cfg, nil
}

// Save writes config to file
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ApplyEnv overlays environment variables on c. lookup is usually os.LookupEnv.
// Empty values are treated as unset.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(name)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	strs := []struct {
		name string
		dst  *string
	}{
		{"INPUT_CSV", &c.Input.Path},
		{"TEXT_COL", &c.Input.TextCol},
		{"ID_COL", &c.Input.IDCol},
		{"GROUP_COL", &c.Input.GroupCol},
		{"OUTPUT_CSV", &c.Output.Path},
		{"RUN_LIVE_PATH", &c.Output.LivePath},
		{"RUN_HISTORY_PATH", &c.Output.HistoryPath},
		{"RUN_HISTORY_DB", &c.Output.HistoryDB},
		{"MODEL_BACKEND", &c.Model.Backend},
		{"MODEL_NAME", &c.Model.Name},
		{"MODEL_ENDPOINT", &c.Model.Endpoint},
		{"MODEL_COMMAND", &c.Model.Command},
		{"MODEL_TIMEOUT", &c.Model.Timeout},
		{"LOG_LEVEL", &c.Logging.Level},
		{"LOG_FORMAT", &c.Logging.Format},
	}
	for _, s := range strs {
		if v, ok := get(s.name); ok {
			*s.dst = v
		}
	}
	if v, ok := get("CSV_MODE"); ok {
		c.Input.Mode = strings.ToLower(v)
	}

	ints := []struct {
		name string
		dst  *int
		min  int
	}{
		{"BATCH_SIZE", &c.Model.BatchSize, 1},
		{"MAX_LEN", &c.Model.MaxLen, 1},
		{"MAX_ROWS", &c.Input.MaxRows, 1},
		{"MODEL_RETRIES", &c.Model.Retries, 0},
		{"MODEL_CACHE_SIZE", &c.Model.CacheSize, 0},
	}
	for _, i := range ints {
		v, ok := get(i.name)
		if !ok {
			continue
		}
		n, err := parseInt(i.name, v, i.min)
		if err != nil {
			return err
		}
		*i.dst = n
	}

	indexes := []struct {
		name string
		dst  **int
	}{
		{"TEXT_COL_INDEX", &c.Input.TextColIndex},
		{"GROUP_COL_INDEX", &c.Input.GroupColIndex},
	}
	for _, i := range indexes {
		v, ok := get(i.name)
		if !ok {
			continue
		}
		n, err := parseInt(i.name, v, 0)
		if err != nil {
			return err
		}
		*i.dst = &n
	}

	return nil
}

func parseInt(name, value string, min int) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", domain.ErrConfiguration, name, value)
	}
	if n < min {
		if min == 0 {
			return 0, fmt.Errorf("%w: %s must be >= 0, got %d", domain.ErrConfiguration, name, n)
		}
		return 0, fmt.Errorf("%w: %s must be > %d, got %d", domain.ErrConfiguration, name, min-1, n)
	}
	return n, nil
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: "+format, append([]any{domain.ErrConfiguration}, args...)...)
	}

	switch c.Input.Mode {
	case ModeHeader:
	case ModeHeaderless:
		if c.Input.TextColIndex == nil {
			return invalid("TEXT_COL_INDEX is required when CSV_MODE=headerless")
		}
	default:
		return invalid("CSV_MODE must be 'header' or 'headerless', got %q", c.Input.Mode)
	}

	if c.Input.Path == "" {
		return invalid("INPUT_CSV must be set")
	}
	if c.Output.Path == "" {
		return invalid("OUTPUT_CSV must be set")
	}
	if c.Input.TextColIndex != nil && *c.Input.TextColIndex < 0 {
		return invalid("TEXT_COL_INDEX must be >= 0")
	}
	if c.Input.GroupColIndex != nil && *c.Input.GroupColIndex < 0 {
		return invalid("GROUP_COL_INDEX must be >= 0")
	}
	if c.Input.MaxRows < 0 {
		return invalid("MAX_ROWS must be >= 0")
	}
	if c.Model.BatchSize <= 0 {
		return invalid("BATCH_SIZE must be > 0")
	}
	if c.Model.MaxLen <= 0 {
		return invalid("MAX_LEN must be > 0")
	}
	if c.Model.Retries < 0 {
		return invalid("MODEL_RETRIES must be >= 0")
	}
	if c.Model.CacheSize < 0 {
		return invalid("MODEL_CACHE_SIZE must be >= 0")
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return invalid("MODEL_TIMEOUT: %v", err)
	}

	switch c.Model.Backend {
	case BackendLexicon:
	case BackendHTTP:
		if c.Model.Endpoint == "" {
			return invalid("MODEL_ENDPOINT is required for the http backend")
		}
	case BackendCommand:
		if c.Model.Command == "" {
			return invalid("MODEL_COMMAND is required for the command backend")
		}
	default:
		return invalid("MODEL_BACKEND must be one of lexicon, http, command, got %q", c.Model.Backend)
	}

	return nil
}

// TimeoutDuration returns the per-batch predictor timeout. Zero disables it.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Model.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Model.Timeout)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("timeout must not be negative")
	}
	return d, nil
}
