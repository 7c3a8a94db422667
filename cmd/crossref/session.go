package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/people-crossref/internal/observability"
)

var sessionCommand = &cobra.Command{
	Use:   "session",
	Short: "Inspect or remove the stored session",
}

var sessionStatusCommand = &cobra.Command{
	Use:   "status",
	Short: "Show whether a session is stored",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadSettings(cmd, nil)
		if err != nil {
			return err
		}
		info, err := newStore(cfg, observability.NopLogger()).Info()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch {
		case !info.Exists:
			_, _ = fmt.Fprintf(out, "No stored session at %s\n", info.Path)
		case !info.Valid:
			_, _ = fmt.Fprintf(out, "Stored session at %s is unreadable and will be replaced on next login\n", info.Path)
		default:
			_, _ = fmt.Fprintf(out, "Stored session at %s: %d cookies, saved %s\n",
				info.Path, info.Cookies, info.Modified.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

var sessionClearCommand = &cobra.Command{
	Use:   "clear",
	Short: "Delete the stored session so the next run logs in again",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadSettings(cmd, nil)
		if err != nil {
			return err
		}
		store := newStore(cfg, observability.NopLogger())
		if err := store.Clear(); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Cleared stored session at %s\n", store.Path())
		return nil
	},
}

func init() {
	sessionCommand.AddCommand(sessionStatusCommand, sessionClearCommand)
	rootCmd.AddCommand(sessionCommand)
}
