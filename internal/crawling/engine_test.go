package crawling

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/people-crossref/internal/browser"
	"github.com/jonathan/people-crossref/internal/browser/browsertest"
	"github.com/jonathan/people-crossref/internal/types"
)

// resultsSite scripts a driver that renders one card per page, identified by
// the keyword and page number, and advances a page on each Next click.
type resultsSite struct {
	*browsertest.Driver
	keyword string
	page    int
}

func newResultsSite() *resultsSite {
	s := &resultsSite{Driver: browsertest.New()}
	s.Present[NextSelector] = true
	s.OnNavigate = func(_ *browsertest.Driver, url string) error {
		s.keyword = keywordOf(url)
		s.page = 1
		return nil
	}
	s.OnClick = func(_ *browsertest.Driver, selector string) error {
		if selector == NextSelector {
			s.page++
		}
		return nil
	}
	s.OnHTML = func(*browsertest.Driver) (string, error) {
		slug := fmt.Sprintf("%s-%d", strings.ReplaceAll(s.keyword, " ", "-"), s.page)
		return `<div data-chameleon-result-urn="urn:` + slug + `">` +
			`<a href="/in/` + slug + `?trk=x"><span aria-hidden="true">Person ` + slug + `</span></a></div>`, nil
	}
	return s
}

func keywordOf(url string) string {
	_, q, _ := strings.Cut(url, "keywords=Acme%20")
	kw, _, _ := strings.Cut(q, "&")
	return strings.ReplaceAll(kw, "%20", " ")
}

func collect(seq iter.Seq2[types.Batch, error]) ([]types.Batch, []error) {
	var batches []types.Batch
	var errs []error
	for b, err := range seq {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		batches = append(batches, b)
	}
	return batches, errs
}

func testEngine() *Engine {
	return NewEngine(WithSleeper(browser.NoSleep))
}

func clicks(d *browsertest.Driver, selector string) int {
	n := 0
	for _, c := range d.Clicks {
		if c == selector {
			n++
		}
	}
	return n
}

func TestCrawl_UpperBoundWithNextAlwaysPresent(t *testing.T) {
	site := newResultsSite()
	params := Params{Company: "Acme", Keywords: []string{"navy", "army"}, PagesPerKeyword: 3}

	batches, errs := collect(testEngine().Crawl(context.Background(), site, params))

	require.Empty(t, errs)
	require.Len(t, batches, 6)
	for i, b := range batches {
		wantKeyword := params.Keywords[i/3]
		assert.Equal(t, wantKeyword, b.Keyword)
		assert.Equal(t, i%3+1, b.Page)
		require.Len(t, b.Records, 1)
		assert.Equal(t, types.Identity(fmt.Sprintf("https://www.linkedin.com/in/%s-%d", wantKeyword, i%3+1)), b.Records[0].Identity)
	}
	// no click after the last allowed page
	assert.Equal(t, 4, clicks(site.Driver, NextSelector))
}

func TestCrawl_NextAbsentEndsKeyword(t *testing.T) {
	site := newResultsSite()
	site.OnClick = func(_ *browsertest.Driver, _ string) error {
		site.page++
		if site.keyword == "navy" {
			site.Present[NextSelector] = false
		}
		return nil
	}
	site.OnNavigate = func(_ *browsertest.Driver, url string) error {
		site.keyword = keywordOf(url)
		site.page = 1
		site.Present[NextSelector] = true
		return nil
	}
	params := Params{Company: "Acme", Keywords: []string{"navy", "army"}, PagesPerKeyword: 5}

	batches, errs := collect(testEngine().Crawl(context.Background(), site, params))

	require.Empty(t, errs)
	var navy, army int
	for _, b := range batches {
		switch b.Keyword {
		case "navy":
			navy++
		case "army":
			army++
		}
	}
	assert.Equal(t, 2, navy)
	assert.Equal(t, 5, army)
}

func TestCrawl_NextClickFailureEndsKeyword(t *testing.T) {
	site := newResultsSite()
	site.OnClick = func(_ *browsertest.Driver, _ string) error {
		return errors.New("element is not clickable")
	}
	params := Params{Company: "Acme", Keywords: []string{"navy", "army"}, PagesPerKeyword: 3}

	batches, errs := collect(testEngine().Crawl(context.Background(), site, params))

	require.Empty(t, errs)
	require.Len(t, batches, 2)
	assert.Equal(t, "navy", batches[0].Keyword)
	assert.Equal(t, "army", batches[1].Keyword)
}

func TestCrawl_DriverFailureEndsSequence(t *testing.T) {
	tests := []struct {
		name        string
		failAt      func(s *resultsSite) bool
		method      string
		wantBatches int
		wantKeyword string
		wantPage    int
	}{
		{
			name:        "markup read fails on second keyword",
			method:      "HTML",
			failAt:      func(s *resultsSite) bool { return s.keyword == "army" && s.page == 2 },
			wantBatches: 3,
			wantKeyword: "army",
			wantPage:    2,
		},
		{
			name:        "first navigation fails",
			method:      "Navigate",
			failAt:      func(*resultsSite) bool { return true },
			wantBatches: 0,
			wantKeyword: "navy",
			wantPage:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site := newResultsSite()
			render := site.OnHTML
			site.OnHTML = func(d *browsertest.Driver) (string, error) {
				if tt.method == "HTML" && tt.failAt(site) {
					return "", errors.New("target closed")
				}
				return render(d)
			}
			if tt.method == "Navigate" {
				site.Fail["Navigate"] = errors.New("browser gone")
			}
			params := Params{Company: "Acme", Keywords: []string{"navy", "army", "marines"}, PagesPerKeyword: 2}

			batches, errs := collect(testEngine().Crawl(context.Background(), site, params))

			assert.Len(t, batches, tt.wantBatches)
			require.Len(t, errs, 1)
			var crawlErr *CrawlError
			require.ErrorAs(t, errs[0], &crawlErr)
			assert.Equal(t, tt.wantKeyword, crawlErr.Keyword)
			assert.Equal(t, tt.wantPage, crawlErr.Page)
			for _, b := range batches {
				assert.NotEqual(t, "marines", b.Keyword)
			}
		})
	}
}

func TestCrawl_ScriptFailure(t *testing.T) {
	site := newResultsSite()
	site.Fail["ExecuteScript"] = errors.New("execution context destroyed")

	batches, errs := collect(testEngine().Crawl(context.Background(), site, Params{Company: "Acme", Keywords: []string{"navy"}, PagesPerKeyword: 3}))

	assert.Empty(t, batches)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "execution context destroyed")
}

func TestCrawl_ConsumerBreakStopsImmediately(t *testing.T) {
	site := newResultsSite()
	params := Params{Company: "Acme", Keywords: []string{"navy", "army"}, PagesPerKeyword: 3}

	for range testEngine().Crawl(context.Background(), site, params) {
		break
	}

	assert.Equal(t, 0, clicks(site.Driver, NextSelector))
	navigations := 0
	for _, c := range site.Calls {
		if strings.HasPrefix(c, "Navigate ") {
			navigations++
		}
	}
	assert.Equal(t, 1, navigations)
}

func TestCrawl_ContextCancelledIsDriverFailure(t *testing.T) {
	site := newResultsSite()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var batches []types.Batch
	var errs []error
	for b, err := range testEngine().Crawl(ctx, site, Params{Company: "Acme", Keywords: []string{"navy", "army"}, PagesPerKeyword: 3}) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		batches = append(batches, b)
		cancel()
	}

	assert.Len(t, batches, 1)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], context.Canceled)
}

func TestCrawl_SearchURLAndScroll(t *testing.T) {
	site := newResultsSite()
	e := NewEngine(WithSleeper(browser.NoSleep), WithSearchBase("https://example.test/search/"))

	_, errs := collect(e.Crawl(context.Background(), site, Params{Company: "Acme", Keywords: []string{"u.s. coast guard"}, PagesPerKeyword: 1}))

	require.Empty(t, errs)
	assert.Contains(t, site.Calls, "Navigate https://example.test/search/?keywords=Acme%20u.s.%20coast%20guard&origin=GLOBAL_SEARCH_HEADER")
	require.Len(t, site.Scripts, 1)
	assert.Equal(t, ScrollScript, site.Scripts[0])
}

func TestCrawl_NonPositivePagesVisitsOnePage(t *testing.T) {
	site := newResultsSite()

	batches, errs := collect(testEngine().Crawl(context.Background(), site, Params{Company: "Acme", Keywords: []string{"navy"}, PagesPerKeyword: 0}))

	require.Empty(t, errs)
	assert.Len(t, batches, 1)
}

func TestCrawl_NoKeywords(t *testing.T) {
	site := newResultsSite()

	batches, errs := collect(testEngine().Crawl(context.Background(), site, Params{Company: "Acme", PagesPerKeyword: 3}))

	assert.Empty(t, batches)
	assert.Empty(t, errs)
	assert.Empty(t, site.Calls)
}

func TestCrawlError(t *testing.T) {
	cause := errors.New("boom")
	err := &CrawlError{Keyword: "navy", Page: 2, Cause: cause}

	assert.Equal(t, `crawl error: keyword "navy" page 2: boom`, err.Error())
	assert.ErrorIs(t, err, cause)
}
