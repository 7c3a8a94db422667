// Package extract turns a rendered search results page into result records.
package extract

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/phuslu/log"

	"github.com/jonathan/people-crossref/internal/browser"
	"github.com/jonathan/people-crossref/internal/observability"
	"github.com/jonathan/people-crossref/internal/types"
)

// DefaultBase resolves relative profile links.
const DefaultBase = "https://www.linkedin.com"

// Selectors identify the parts of a result card. Headline and Location are
// tried in order and the first match inside the card wins.
type Selectors struct {
	ProfileLink string
	Name        string
	Container   string
	Headline    []string
	Location    []string
}

// DefaultSelectors returns the selectors for the current results markup.
// The obfuscated class names change when the site redeploys; the
// entity-result fallbacks cover the older layout.
func DefaultSelectors() Selectors {
	return Selectors{
		ProfileLink: `a[href*="/in/"]`,
		Name:        `span[aria-hidden="true"]`,
		Container:   `div[data-chameleon-result-urn]`,
		Headline:    []string{"div.fPKHunLoPKXcFGoTXEqoYXAPnXixUiYhgek", ".entity-result__primary-subtitle"},
		Location:    []string{"div.WkjuHgoDAETDiNPzrVDpDLnexwXRWPettk", ".entity-result__secondary-subtitle"},
	}
}

// Records extracts one record per profile link in html. Links without a name,
// a usable profile URL or an enclosing result card are skipped; a skip never
// affects the other links. Duplicates are kept.
func Records(html string, base *url.URL, sel Selectors) []types.ResultRecord {
	recs, _ := records(html, base, sel)
	return recs
}

func records(html string, base *url.URL, sel Selectors) ([]types.ResultRecord, int) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return []types.ResultRecord{}, 0
	}

	out := make([]types.ResultRecord, 0)
	skipped := 0

	doc.Find(sel.ProfileLink).Each(func(_ int, a *goquery.Selection) {
		name := normalize(a.Find(sel.Name).First().Text())
		if name == "" {
			skipped++
			return
		}

		href, _ := a.Attr("href")
		id := types.NewIdentity(href, base)
		if !id.Valid() {
			skipped++
			return
		}

		card := a.Closest(sel.Container)
		if card.Length() == 0 {
			skipped++
			return
		}

		out = append(out, types.ResultRecord{
			Identity:    id,
			DisplayName: name,
			Headline:    firstText(card, sel.Headline),
			Location:    firstText(card, sel.Location),
		})
	})

	return out, skipped
}

func firstText(card *goquery.Selection, selectors []string) string {
	for _, s := range selectors {
		if found := card.Find(s).First(); found.Length() > 0 {
			return normalize(found.Text())
		}
	}
	return ""
}

// normalize collapses runs of whitespace and trims the ends.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Extractor reads the current page from a driver and extracts its records.
type Extractor struct {
	sel    Selectors
	base   *url.URL
	logger *log.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithSelectors overrides DefaultSelectors.
func WithSelectors(sel Selectors) Option {
	return func(e *Extractor) { e.sel = sel }
}

// WithBase sets the URL relative profile links resolve against.
func WithBase(base *url.URL) Option {
	return func(e *Extractor) { e.base = base }
}

// WithLogger sets the logger used for skip counts.
func WithLogger(l *log.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// New returns an Extractor using the default selectors and base.
func New(opts ...Option) *Extractor {
	base, _ := url.Parse(DefaultBase)
	e := &Extractor{
		sel:    DefaultSelectors(),
		base:   base,
		logger: observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Page extracts records from the page currently rendered by drv. Only reading
// the markup can fail.
func (e *Extractor) Page(ctx context.Context, drv browser.Driver) ([]types.ResultRecord, error) {
	html, err := drv.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read page markup: %w", err)
	}

	recs, skipped := records(html, e.base, e.sel)
	if skipped > 0 {
		e.logger.Debug().Int("records", len(recs)).Int("skipped", skipped).Msg("result cards skipped")
	}
	return recs, nil
}
