// Package main provides the entry point for the crossref CLI, which
// cross-references one company against a list of keywords on the
// people-search site and exports the profiles found.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "crossref",
	Short: "Cross-reference a company against keywords in people search",
	Long: `crossref logs in to the people-search site (reusing a stored session when possible),
searches "<company> <keyword>" for every keyword, and exports each person found with the
keywords they matched.

Credentials are read from CROSSREF_USER / CROSSREF_PASS (or a .env file); the secret may
instead be stored in the OS keychain with 'crossref credentials set'.`,
	SilenceUsage: true,
}

var (
	configPath string
	sessionDir string
	logLevel   string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a .json or .yaml config file (values can be overridden by other flags)")
	rootCmd.PersistentFlags().StringVar(&sessionDir, "session-dir", "", "Directory holding the stored session (default .crossref)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error (default info)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
