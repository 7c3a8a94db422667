package main

import (
	"fmt"
	"io"
	"os"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"github.com/jonathan/people-crossref/internal/config"
	"github.com/jonathan/people-crossref/internal/observability"
	"github.com/jonathan/people-crossref/internal/session"
)

// loadSettings reads the config file (if any), applies explicitly set
// persistent flags and fills the rest from defaults. Command-specific flags
// are applied by the caller before merging.
func loadSettings(cmd *cobra.Command, overrides func(*config.Config)) (config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("session-dir") {
		cfg.SessionDir = sessionDir
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if overrides != nil {
		overrides(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg.MergeWithDefaults(config.Defaults()), nil
}

func newLogger(cfg config.Config, w io.Writer) *log.Logger {
	color := false
	if f, ok := w.(*os.File); ok {
		color = log.IsTerminal(f.Fd())
	}
	return observability.NewLogger(cfg.LogLevel, w, color)
}

func newStore(cfg config.Config, logger *log.Logger) *session.FileStore {
	return session.NewFileStore(cfg.SessionDir, logger)
}
