// Package crawling walks people-search results for each keyword of a run and
// yields one batch of extracted records per rendered page.
package crawling

import "fmt"

// CrawlError is a browser failure while crawling. It ends the run's crawl;
// batches yielded before it remain valid.
type CrawlError struct {
	Keyword string
	Page    int
	Cause   error
}

func (e *CrawlError) Error() string {
	return fmt.Sprintf("crawl error: keyword %q page %d: %v", e.Keyword, e.Page, e.Cause)
}

func (e *CrawlError) Unwrap() error {
	return e.Cause
}
