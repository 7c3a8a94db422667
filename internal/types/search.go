package types

import (
	"net/url"
	"strings"
)

// SearchOrigin is the origin marker the site attaches to header searches.
const SearchOrigin = "GLOBAL_SEARCH_HEADER"

// SearchQuery pairs the fixed company of a run with one keyword.
type SearchQuery struct {
	Company string `json:"company"`
	Keyword string `json:"keyword"`
}

// Combined joins company and keyword into the text sent to the search box.
func (q SearchQuery) Combined() string {
	return strings.TrimSpace(strings.TrimSpace(q.Company) + " " + strings.TrimSpace(q.Keyword))
}

// SearchURL builds the people-search results URL for the query on top of
// base (for example https://www.linkedin.com/search/results/people/).
func (q SearchQuery) SearchURL(base string) string {
	params := url.Values{}
	params.Set("keywords", q.Combined())
	params.Set("origin", SearchOrigin)
	// url.Values encodes spaces as '+'; the site expects %20.
	encoded := strings.ReplaceAll(params.Encode(), "+", "%20")

	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + encoded
}
