package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/people-crossref/internal/browser"
	"github.com/jonathan/people-crossref/internal/config"
	"github.com/jonathan/people-crossref/internal/crawling"
	"github.com/jonathan/people-crossref/internal/extract"
	"github.com/jonathan/people-crossref/internal/observability"
	"github.com/jonathan/people-crossref/internal/pipeline"
	"github.com/jonathan/people-crossref/internal/report"
	"github.com/jonathan/people-crossref/internal/session"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Search every keyword for the company and export the profiles found",
	Long: `Authenticates (reusing the stored session when it is still valid), searches
"<company> <keyword>" for each keyword, visits up to --pages result pages per keyword,
and writes one row per person with the keywords they matched.

Configuration can be loaded from a JSON or YAML file using --config. Command-line arguments override config file values.`,
	RunE: runCrossrefCmd,
}

var (
	runCompany    string
	runKeywords   []string
	runPages      int
	runHeadless   bool
	runFormat     string
	runOutputDir  string
	runSettle     time.Duration
	runChromePath string
	runNoPrompt   bool
)

func init() {
	runCommand.Flags().StringVarP(&runCompany, "company", "c", "", "Company to cross-reference (prompted for if omitted)")
	runCommand.Flags().StringSliceVarP(&runKeywords, "keyword", "k", nil, "Keyword to search with the company (repeatable; defaults to the built-in list)")
	runCommand.Flags().IntVarP(&runPages, "pages", "p", config.DefaultPages, "Result pages per keyword (1-10)")
	runCommand.Flags().BoolVar(&runHeadless, "headless", true, "Run the browser without a window")
	runCommand.Flags().StringVarP(&runFormat, "format", "f", config.DefaultFormat, "Output format: csv or sqlite")
	runCommand.Flags().StringVarP(&runOutputDir, "out", "o", config.DefaultOutputDir, "Output directory")
	runCommand.Flags().DurationVar(&runSettle, "settle-delay", 2*time.Second, "Pause after each navigation or click")
	runCommand.Flags().StringVar(&runChromePath, "chrome-path", "", "Path to the Chrome/Chromium executable")
	runCommand.Flags().BoolVar(&runNoPrompt, "no-prompt", false, "Fail instead of prompting for a missing company")

	rootCmd.AddCommand(runCommand)
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("company") {
		cfg.Company = runCompany
	}
	if flags.Changed("keyword") {
		cfg.Keywords = runKeywords
	}
	if flags.Changed("pages") {
		cfg.Pages = runPages
	}
	if flags.Changed("headless") {
		h := runHeadless
		cfg.Headless = &h
	}
	if flags.Changed("format") {
		cfg.Format = runFormat
	}
	if flags.Changed("out") {
		cfg.OutputDir = runOutputDir
	}
	if flags.Changed("settle-delay") {
		cfg.SettleDelay = runSettle.String()
	}
	if flags.Changed("chrome-path") {
		cfg.ChromePath = runChromePath
	}
}

func runCrossrefCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cfg, err := loadSettings(cmd, func(c *config.Config) { applyRunFlags(cmd, c) })
	if err != nil {
		return err
	}

	prompt := newConsolePrompt(cmd.InOrStdin(), cmd.OutOrStdout())
	if cfg.Company == "" {
		if runNoPrompt {
			return &config.ConfigurationError{Field: "company", Message: "is required (use --company or the config file)"}
		}
		if cfg.Company, err = prompt.Company(ctx); err != nil {
			return err
		}
	}

	params, err := config.NewRunParams(cfg.Company, cfg.Keywords, cfg.Pages)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	// Credentials are checked before any browser is launched.
	creds, err := config.LoadCredentials()
	if err != nil {
		return err
	}

	logger := newLogger(cfg, os.Stderr)
	printer := observability.NewPrinter(cmd.OutOrStdout())
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Searching %d keyword(s) for %q, %d page(s) each.\n", len(params.Keywords), params.Company, params.Pages)

	opts := browser.DefaultOptions()
	opts.Headless = cfg.HeadlessEnabled()
	opts.ExecPath = cfg.ChromePath
	opts.Logger = logger
	drv, err := browser.NewChrome(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer func() { _ = drv.Close() }()

	mgr := session.NewManager(creds, newStore(cfg, logger), prompt,
		session.WithSettleDelay(cfg.Settle()),
		session.WithLogger(logger),
	)
	engine := crawling.NewEngine(
		crawling.WithSettleDelay(cfg.Settle()),
		crawling.WithLogger(logger),
		crawling.WithExtractor(extract.New(extract.WithLogger(logger))),
	)

	out, runErr := pipeline.Run(ctx, drv, pipeline.Options{
		Company:         params.Company,
		Keywords:        params.Keywords,
		PagesPerKeyword: params.Pages,
		Auth:            mgr,
		Crawler:         engine,
		OutputDir:       cfg.OutputDir,
		Format:          format,
		Logger:          logger,
		OnProgress: func(e pipeline.ProgressEvent) {
			if e.Step == pipeline.StepAuthenticate {
				return
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "→ %s\n", e.Message)
		},
	})
	if out == nil {
		return runErr
	}

	printer.PrintAuthResult(out.Auth.UsedStoredSession)
	printer.PrintRunSummary(observability.RunSummary{
		Company:  params.Company,
		Keywords: out.Keywords,
		Profiles: out.Profiles,
		Output:   out.Path,
		Elapsed:  out.Elapsed,
		Partial:  out.Partial,
	})
	if out.Profiles > 0 {
		printer.PrintTopProfiles(out.Entries)
	}
	return runErr
}

// authenticate runs only the session step; shared by login.
func authenticate(ctx context.Context, cmd *cobra.Command, cfg config.Config) (session.Result, error) {
	creds, err := config.LoadCredentials()
	if err != nil {
		return session.Result{}, err
	}
	logger := newLogger(cfg, os.Stderr)

	opts := browser.DefaultOptions()
	opts.Headless = cfg.HeadlessEnabled()
	opts.ExecPath = cfg.ChromePath
	opts.Logger = logger
	drv, err := browser.NewChrome(ctx, opts)
	if err != nil {
		return session.Result{}, fmt.Errorf("failed to start browser: %w", err)
	}
	defer func() { _ = drv.Close() }()

	prompt := newConsolePrompt(cmd.InOrStdin(), cmd.OutOrStdout())
	mgr := session.NewManager(creds, newStore(cfg, logger), prompt,
		session.WithSettleDelay(cfg.Settle()),
		session.WithLogger(logger),
	)
	return mgr.Authenticate(ctx, drv)
}
