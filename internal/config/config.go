// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/people-crossref/internal/observability"
)

const (
	DefaultPages      = 3
	MinPages          = 1
	MaxPages          = 10
	DefaultSessionDir = ".crossref"
	DefaultOutputDir  = "output"
	DefaultFormat     = "csv"
	DefaultLogLevel   = "info"
	DefaultSettle     = "2s"
)

// DefaultKeywords is the keyword list used when none is configured.
var DefaultKeywords = []string{
	"university of chicago booth",
	"coast guard academy",
	"mckinsey",
	"u.s. coast guard",
	"navy",
	"army",
	"marines",
	"air force",
	"breakline",
}

// Config represents the CLI configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Run
	Company  string   `json:"company,omitempty" yaml:"company,omitempty"`
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Pages    int      `json:"pages,omitempty" yaml:"pages,omitempty"` // Pages per keyword (1-10)

	// Browser
	Headless    *bool  `json:"headless,omitempty" yaml:"headless,omitempty"`
	ChromePath  string `json:"chrome_path,omitempty" yaml:"chrome_path,omitempty"`
	SettleDelay string `json:"settle_delay,omitempty" yaml:"settle_delay,omitempty"` // Go duration, e.g. "2s"

	// Storage
	SessionDir string `json:"session_dir,omitempty" yaml:"session_dir,omitempty"`
	OutputDir  string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	Format     string `json:"format,omitempty" yaml:"format,omitempty"` // csv or sqlite

	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	headless := true
	return Config{
		Keywords:    append([]string(nil), DefaultKeywords...),
		Pages:       DefaultPages,
		Headless:    &headless,
		SettleDelay: DefaultSettle,
		SessionDir:  DefaultSessionDir,
		OutputDir:   DefaultOutputDir,
		Format:      DefaultFormat,
		LogLevel:    DefaultLogLevel,
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields or the page bound since those
// are handled by run parameter validation after merging.
func (c *Config) Validate() error {
	if c.Format != "" {
		switch strings.ToLower(c.Format) {
		case "csv", "sqlite":
		default:
			return &ConfigurationError{Field: "format", Message: fmt.Sprintf("unsupported format %q (want csv or sqlite)", c.Format)}
		}
	}

	if c.SettleDelay != "" {
		d, err := time.ParseDuration(c.SettleDelay)
		if err != nil {
			return &ConfigurationError{Field: "settle_delay", Message: err.Error()}
		}
		if d < 0 {
			return &ConfigurationError{Field: "settle_delay", Message: "must be non-negative"}
		}
	}

	if c.LogLevel != "" {
		if _, err := observability.ParseLevel(c.LogLevel); err != nil {
			return &ConfigurationError{Field: "log_level", Message: err.Error()}
		}
	}

	return nil
}

// Settle returns the parsed settle delay, or the default when unset.
func (c *Config) Settle() time.Duration {
	if d, err := time.ParseDuration(c.SettleDelay); err == nil && d >= 0 {
		return d
	}
	d, _ := time.ParseDuration(DefaultSettle)
	return d
}

// HeadlessEnabled reports the headless setting, defaulting to true.
func (c *Config) HeadlessEnabled() bool {
	return c.Headless == nil || *c.Headless
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Company == "" {
		result.Company = defaults.Company
	}
	if result.ChromePath == "" {
		result.ChromePath = defaults.ChromePath
	}
	if result.SettleDelay == "" {
		result.SettleDelay = defaults.SettleDelay
	}
	if result.SessionDir == "" {
		result.SessionDir = defaults.SessionDir
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.Format == "" {
		result.Format = defaults.Format
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}

	if len(result.Keywords) == 0 {
		result.Keywords = append([]string(nil), defaults.Keywords...)
	}

	// Int fields: use default if zero
	if result.Pages == 0 {
		result.Pages = defaults.Pages
	}

	// Bool pointers distinguish unset from false
	if result.Headless == nil {
		result.Headless = defaults.Headless
	}

	return result
}
