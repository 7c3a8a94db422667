package crawling

import (
	"context"
	"iter"
	"time"

	"github.com/phuslu/log"

	"github.com/jonathan/people-crossref/internal/browser"
	"github.com/jonathan/people-crossref/internal/extract"
	"github.com/jonathan/people-crossref/internal/observability"
	"github.com/jonathan/people-crossref/internal/types"
)

const (
	// DefaultSearchBase is the people-search results page.
	DefaultSearchBase = "https://www.linkedin.com/search/results/people/"
	// DefaultSettleDelay is the pause after each navigation, scroll and click.
	DefaultSettleDelay = 2 * time.Second
	// NextSelector matches the pagination control.
	NextSelector = `button[aria-label="Next"]`
	// ScrollScript scrolls to the bottom so lazily rendered cards load.
	ScrollScript = "window.scrollTo(0, document.body.scrollHeight);"
)

// Params describes one crawl.
type Params struct {
	Company         string
	Keywords        []string
	PagesPerKeyword int
}

// Engine drives the browser through the result pages of each keyword.
type Engine struct {
	searchBase string
	settle     time.Duration
	sleep      browser.Sleeper
	extractor  *extract.Extractor
	logger     *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSearchBase overrides DefaultSearchBase.
func WithSearchBase(base string) Option {
	return func(e *Engine) { e.searchBase = base }
}

// WithSettleDelay overrides DefaultSettleDelay.
func WithSettleDelay(d time.Duration) Option {
	return func(e *Engine) { e.settle = d }
}

// WithSleeper replaces the pause function.
func WithSleeper(s browser.Sleeper) Option {
	return func(e *Engine) { e.sleep = s }
}

// WithExtractor replaces the default extractor.
func WithExtractor(x *extract.Extractor) Option {
	return func(e *Engine) { e.extractor = x }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine returns an Engine with default settings.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		searchBase: DefaultSearchBase,
		settle:     DefaultSettleDelay,
		sleep:      browser.Sleep,
		logger:     observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.extractor == nil {
		e.extractor = extract.New(extract.WithLogger(e.logger))
	}
	return e
}

// Crawl yields one batch per rendered results page, keyword by keyword and
// page by page. At most PagesPerKeyword pages are visited per keyword; a
// keyword ends early when no Next control can be clicked. A browser failure
// yields a single *CrawlError and ends the sequence.
//
// The driver must already be authenticated and is used by one crawl at a time.
func (e *Engine) Crawl(ctx context.Context, drv browser.Driver, params Params) iter.Seq2[types.Batch, error] {
	pages := max(params.PagesPerKeyword, 1)

	return func(yield func(types.Batch, error) bool) {
		for _, kw := range params.Keywords {
			q := types.SearchQuery{Company: params.Company, Keyword: kw}
			if !e.crawlKeyword(ctx, drv, q, pages, yield) {
				return
			}
		}
	}
}

// crawlKeyword returns false when the sequence must stop.
func (e *Engine) crawlKeyword(ctx context.Context, drv browser.Driver, q types.SearchQuery, pages int, yield func(types.Batch, error) bool) bool {
	fail := func(page int, err error) bool {
		e.logger.Error().Err(err).Str("keyword", q.Keyword).Int("page", page).Msg("crawl stopped")
		yield(types.Batch{}, &CrawlError{Keyword: q.Keyword, Page: page, Cause: err})
		return false
	}

	target := q.SearchURL(e.searchBase)
	e.logger.Info().Str("keyword", q.Keyword).Str("query", q.Combined()).Msg("searching")

	if err := drv.Navigate(ctx, target); err != nil {
		return fail(1, err)
	}
	if err := e.sleep(ctx, e.settle); err != nil {
		return fail(1, err)
	}

	for page := 1; ; page++ {
		if err := drv.ExecuteScript(ctx, ScrollScript, nil); err != nil {
			return fail(page, err)
		}
		if err := e.sleep(ctx, e.settle); err != nil {
			return fail(page, err)
		}

		records, err := e.extractor.Page(ctx, drv)
		if err != nil {
			return fail(page, err)
		}
		e.logger.Debug().Str("keyword", q.Keyword).Int("page", page).Int("records", len(records)).Msg("page extracted")

		if !yield(types.Batch{Keyword: q.Keyword, Page: page, Records: records}, nil) {
			return false
		}
		if page >= pages {
			return true
		}

		if !e.next(ctx, drv, q.Keyword, page) {
			if err := ctx.Err(); err != nil {
				return fail(page, err)
			}
			return true
		}
		if err := e.sleep(ctx, e.settle); err != nil {
			return fail(page+1, err)
		}
	}
}

// next clicks the pagination control. It reports false when there is no
// further page to visit.
func (e *Engine) next(ctx context.Context, drv browser.Driver, keyword string, page int) bool {
	ok, err := drv.Exists(ctx, NextSelector)
	if err != nil {
		e.logger.Warn().Err(err).Str("keyword", keyword).Int("page", page).Msg("could not look for next page")
		return false
	}
	if !ok {
		e.logger.Info().Str("keyword", keyword).Int("page", page).Msg("no more pages")
		return false
	}
	if err := drv.Click(ctx, NextSelector); err != nil {
		e.logger.Warn().Err(err).Str("keyword", keyword).Int("page", page).Msg("could not open next page")
		return false
	}
	return true
}
