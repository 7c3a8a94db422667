package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jonathan/people-crossref/internal/config"
	"github.com/jonathan/people-crossref/internal/observability"
)

var loginCommand = &cobra.Command{
	Use:   "login",
	Short: "Authenticate and store the session without crawling",
	Long:  "Establishes a session (answering any two-factor challenge interactively) so later runs can reuse it.",
	RunE:  runLoginCmd,
}

var loginHeadless bool

func init() {
	loginCommand.Flags().BoolVar(&loginHeadless, "headless", true, "Run the browser without a window")
	rootCmd.AddCommand(loginCommand)
}

func runLoginCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cfg, err := loadSettings(cmd, func(c *config.Config) {
		if cmd.Flags().Changed("headless") {
			h := loginHeadless
			c.Headless = &h
		}
	})
	if err != nil {
		return err
	}

	res, err := authenticate(ctx, cmd, cfg)
	if err != nil {
		return err
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintAuthResult(res.UsedStoredSession)
	return nil
}
