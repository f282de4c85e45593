package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the listpick configuration.
type Config struct {
	Picker PickerConfig `yaml:"picker"`
	Log    LogConfig    `yaml:"log"`
}

// PickerConfig holds picker behaviour settings.
type PickerConfig struct {
	Size          int    `yaml:"size"`            // Visible rows
	PageSize      int    `yaml:"page_size"`       // Items requested per page in search mode
	DebounceMs    int    `yaml:"debounce_ms"`     // Delay after the last keystroke before filtering
	Cache         bool   `yaml:"cache"`           // Remember results per query for the session
	Fuzzy         bool   `yaml:"fuzzy"`           // Fuzzy filtering of datasets
	FuzzyOnSearch bool   `yaml:"fuzzy_on_search"` // Fuzzy scoring of search results
	Prompt        string `yaml:"prompt"`          // Input prompt
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `yaml:"level"`        // debug, info, warn, error
	Format     string `yaml:"format"`       // text or json
	File       string `yaml:"file"`         // Log file path (empty = no logging)
	MaxSizeMB  int    `yaml:"max_size_mb"`  // Rotate after this size
	MaxBackups int    `yaml:"max_backups"`  // Rotated files to keep
	MaxAgeDays int    `yaml:"max_age_days"` // Days to keep rotated files
	Compress   bool   `yaml:"compress"`     // Gzip rotated files
}

// Page size and row limits enforced by Validate and Set.
const (
	minPageSize = 10
	maxPageSize = 500
	minSize     = 1
	maxSize     = 100
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Picker: PickerConfig{
			Size:          10,
			PageSize:      50,
			DebounceMs:    100,
			Cache:         true,
			Fuzzy:         true,
			FuzzyOnSearch: false,
			Prompt:        "> ",
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			File:       "", // Logging is off unless a file is configured
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Compress:   false,
		},
	}
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	paths := DefaultPaths()
	return LoadFromFile(paths.ConfigFile())
}

// LoadFromFile loads configuration from the specified file.
// If the file doesn't exist, returns default configuration.
// Environment variable overrides are applied after file loading.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnvOverrides()
			return cfg, nil // Return defaults if file doesn't exist
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	paths := DefaultPaths()
	return c.SaveToFile(paths.ConfigFile())
}

// SaveToFile saves the configuration to the specified file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
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

// Get retrieves a configuration value by dot-separated key.
// For example: "picker.page_size" or "log.level"
func (c *Config) Get(key string) (string, error) {
	section, field, err := splitKey(key)
	if err != nil {
		return "", err
	}

	switch section {
	case "picker":
		return c.getPickerField(field)
	case "log":
		return c.getLogField(field)
	default:
		return "", fmt.Errorf("unknown section: %s", section)
	}
}

// Set sets a configuration value by dot-separated key.
func (c *Config) Set(key, value string) error {
	section, field, err := splitKey(key)
	if err != nil {
		return err
	}

	switch section {
	case "picker":
		return c.setPickerField(field, value)
	case "log":
		return c.setLogField(field, value)
	default:
		return fmt.Errorf("unknown section: %s", section)
	}
}

func splitKey(key string) (section, field string, err error) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return "", "", errors.New("key must be in format 'section.key'")
	}
	return parts[0], parts[1], nil
}

func (c *Config) getPickerField(field string) (string, error) {
	switch field {
	case "size":
		return strconv.Itoa(c.Picker.Size), nil
	case "page_size":
		return strconv.Itoa(c.Picker.PageSize), nil
	case "debounce_ms":
		return strconv.Itoa(c.Picker.DebounceMs), nil
	case "cache":
		return strconv.FormatBool(c.Picker.Cache), nil
	case "fuzzy":
		return strconv.FormatBool(c.Picker.Fuzzy), nil
	case "fuzzy_on_search":
		return strconv.FormatBool(c.Picker.FuzzyOnSearch), nil
	case "prompt":
		return c.Picker.Prompt, nil
	default:
		return "", fmt.Errorf("unknown field: picker.%s", field)
	}
}

func (c *Config) setPickerField(field, value string) error {
	switch field {
	case "size":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for size: %w", err)
		}
		c.Picker.Size = clampInt(v, minSize, maxSize)
	case "page_size":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for page_size: %w", err)
		}
		c.Picker.PageSize = clampInt(v, minPageSize, maxPageSize)
	case "debounce_ms":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for debounce_ms: %w", err)
		}
		if v < 0 {
			return errors.New("debounce_ms must be >= 0")
		}
		c.Picker.DebounceMs = v
	case "cache":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for cache: %w", err)
		}
		c.Picker.Cache = v
	case "fuzzy":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for fuzzy: %w", err)
		}
		c.Picker.Fuzzy = v
	case "fuzzy_on_search":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for fuzzy_on_search: %w", err)
		}
		c.Picker.FuzzyOnSearch = v
	case "prompt":
		c.Picker.Prompt = value
	default:
		return fmt.Errorf("unknown field: picker.%s", field)
	}
	return nil
}

func (c *Config) getLogField(field string) (string, error) {
	switch field {
	case "level":
		return c.Log.Level, nil
	case "format":
		return c.Log.Format, nil
	case "file":
		return c.Log.File, nil
	case "max_size_mb":
		return strconv.Itoa(c.Log.MaxSizeMB), nil
	case "max_backups":
		return strconv.Itoa(c.Log.MaxBackups), nil
	case "max_age_days":
		return strconv.Itoa(c.Log.MaxAgeDays), nil
	case "compress":
		return strconv.FormatBool(c.Log.Compress), nil
	default:
		return "", fmt.Errorf("unknown field: log.%s", field)
	}
}

func (c *Config) setLogField(field, value string) error {
	switch field {
	case "level":
		if !isValidLogLevel(value) {
			return fmt.Errorf("invalid level: %s (must be debug, info, warn, or error)", value)
		}
		c.Log.Level = value
	case "format":
		if !isValidLogFormat(value) {
			return fmt.Errorf("invalid format: %s (must be text or json)", value)
		}
		c.Log.Format = value
	case "file":
		c.Log.File = value
	case "max_size_mb", "max_backups", "max_age_days":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", field, err)
		}
		if v < 0 {
			return fmt.Errorf("%s must be >= 0", field)
		}
		switch field {
		case "max_size_mb":
			c.Log.MaxSizeMB = v
		case "max_backups":
			c.Log.MaxBackups = v
		default:
			c.Log.MaxAgeDays = v
		}
	case "compress":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for compress: %w", err)
		}
		c.Log.Compress = v
	default:
		return fmt.Errorf("unknown field: log.%s", field)
	}
	return nil
}

// Validate validates the configuration. Out-of-range sizes are clamped
// rather than rejected.
func (c *Config) Validate() error {
	c.Picker.Size = clampInt(c.Picker.Size, minSize, maxSize)
	c.Picker.PageSize = clampInt(c.Picker.PageSize, minPageSize, maxPageSize)

	if c.Picker.DebounceMs < 0 {
		return errors.New("picker.debounce_ms must be >= 0")
	}

	if !isValidLogLevel(c.Log.Level) {
		return fmt.Errorf("log.level must be debug, info, warn, or error (got: %s)", c.Log.Level)
	}

	if !isValidLogFormat(c.Log.Format) {
		return fmt.Errorf("log.format must be text or json (got: %s)", c.Log.Format)
	}

	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return errors.New("log rotation settings must be >= 0")
	}

	return nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func isValidLogFormat(format string) bool {
	return format == "text" || format == "json"
}

// ApplyEnvOverrides applies environment variable overrides to the config.
// LISTPICK_DEBUG also turns logging on at the default log path.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("LISTPICK_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && b {
			c.Log.Level = "debug"
			if c.Log.File == "" {
				c.Log.File = DefaultPaths().LogFile()
			}
		}
	}
	if v := os.Getenv("LISTPICK_LOG_LEVEL"); v != "" {
		if isValidLogLevel(v) {
			c.Log.Level = v
		}
	}
	if v := os.Getenv("LISTPICK_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("LISTPICK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Picker.Size = clampInt(n, minSize, maxSize)
		}
	}
}

// ListKeys returns user-facing configuration keys.
func ListKeys() []string {
	return []string{
		"picker.size",
		"picker.page_size",
		"picker.debounce_ms",
		"picker.cache",
		"picker.fuzzy",
		"picker.fuzzy_on_search",
		"picker.prompt",
		"log.level",
		"log.format",
		"log.file",
		"log.max_size_mb",
		"log.max_backups",
		"log.max_age_days",
		"log.compress",
	}
}
