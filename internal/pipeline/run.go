// Package pipeline runs one authenticated crawl end to end: authenticate,
// crawl every keyword, aggregate, export.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"github.com/jonathan/people-crossref/internal/aggregate"
	"github.com/jonathan/people-crossref/internal/browser"
	"github.com/jonathan/people-crossref/internal/crawling"
	"github.com/jonathan/people-crossref/internal/observability"
	"github.com/jonathan/people-crossref/internal/report"
	"github.com/jonathan/people-crossref/internal/session"
	"github.com/jonathan/people-crossref/internal/types"
)

// Step names reported in progress events.
const (
	StepAuthenticate = "authenticate"
	StepCrawl        = "crawl"
	StepExport       = "export"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Authenticator establishes the session on a driver.
type Authenticator interface {
	Authenticate(ctx context.Context, drv browser.Driver) (session.Result, error)
}

// Crawler yields result batches for a run.
type Crawler interface {
	Crawl(ctx context.Context, drv browser.Driver, params crawling.Params) iter.Seq2[types.Batch, error]
}

// Options holds configuration for running the pipeline
type Options struct {
	Company         string
	Keywords        []string
	PagesPerKeyword int

	Auth    Authenticator
	Crawler Crawler

	OutputDir string
	Format    report.Format

	Logger     *log.Logger
	OnProgress ProgressCallback
	// Now defaults to time.Now.
	Now func() time.Time
}

// Outcome summarizes a run. It is returned alongside a crawl or export error
// so the caller can still report what was collected.
type Outcome struct {
	RunID    string
	Auth     session.Result
	Profiles int
	Batches  int
	Path     string
	Partial  bool
	Entries  []aggregate.Entry
	Keywords []observability.KeywordStat
	Elapsed  time.Duration
}

func emitProgress(opts *Options, runID, step, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Step:    step,
			Message: message,
			RunID:   runID,
			Content: content,
		})
	}
}

// Run authenticates drv, crawls every keyword and exports the aggregate.
//
// An authentication failure returns before anything is crawled or written.
// A crawl failure stops crawling; whatever was aggregated is still exported
// and the crawl error is returned with the Outcome.
func Run(ctx context.Context, drv browser.Driver, opts Options) (*Outcome, error) {
	if opts.Auth == nil || opts.Crawler == nil {
		return nil, fmt.Errorf("pipeline requires an authenticator and a crawler")
	}
	logger := opts.Logger
	if logger == nil {
		logger = observability.NopLogger()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	started := now()
	out := &Outcome{RunID: uuid.NewString()}
	logger.Info().Str("run_id", out.RunID).Str("company", opts.Company).
		Int("keywords", len(opts.Keywords)).Int("pages", opts.PagesPerKeyword).Msg("run started")

	res, err := opts.Auth.Authenticate(ctx, drv)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	out.Auth = res
	emitProgress(&opts, out.RunID, StepAuthenticate, authMessage(res), res)

	agg := aggregate.New()
	stats := make(map[string]*observability.KeywordStat, len(opts.Keywords))
	for _, kw := range opts.Keywords {
		if _, ok := stats[kw]; !ok {
			stats[kw] = &observability.KeywordStat{Keyword: kw}
			out.Keywords = append(out.Keywords, observability.KeywordStat{Keyword: kw})
		}
	}

	params := crawling.Params{Company: opts.Company, Keywords: opts.Keywords, PagesPerKeyword: opts.PagesPerKeyword}
	var crawlErr error
	for batch, err := range opts.Crawler.Crawl(ctx, drv, params) {
		if err != nil {
			crawlErr = err
			break
		}
		agg.Merge(batch.Records, batch.Keyword)
		out.Batches++
		if st, ok := stats[batch.Keyword]; ok {
			st.Pages++
			st.Records += len(batch.Records)
		}
		emitProgress(&opts, out.RunID, StepCrawl,
			fmt.Sprintf("%s page %d: %d cards, %d unique so far", batch.Keyword, batch.Page, len(batch.Records), agg.Len()), batch)
	}
	for i := range out.Keywords {
		out.Keywords[i] = *stats[out.Keywords[i].Keyword]
	}

	out.Partial = crawlErr != nil
	out.Entries = agg.Entries()
	out.Profiles = len(out.Entries)

	meta := report.RunMeta{
		ID:         out.RunID,
		Company:    opts.Company,
		Keywords:   opts.Keywords,
		StartedAt:  started,
		FinishedAt: now(),
		Partial:    out.Partial,
	}
	// The crawl context may already be cancelled; the partial export still runs.
	path, exportErr := report.Export(context.WithoutCancel(ctx), opts.OutputDir, opts.Format, meta, out.Entries, logger)
	out.Path = path
	out.Elapsed = meta.FinishedAt.Sub(started)
	if exportErr != nil {
		exportErr = fmt.Errorf("export failed: %w", exportErr)
	} else {
		emitProgress(&opts, out.RunID, StepExport, exportMessage(out), path)
	}

	logger.Info().Str("run_id", out.RunID).Int("profiles", out.Profiles).Int("batches", out.Batches).
		Bool("partial", out.Partial).Str("path", out.Path).Msg("run finished")

	return out, errors.Join(crawlErr, exportErr)
}

func authMessage(res session.Result) string {
	if res.UsedStoredSession {
		return "reused stored session"
	}
	return "logged in with credentials"
}

func exportMessage(out *Outcome) string {
	if out.Path == "" {
		return "no profiles collected, nothing written"
	}
	return fmt.Sprintf("wrote %d profiles to %s", out.Profiles, out.Path)
}
