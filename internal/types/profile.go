package types

import (
	"net/url"
	"strings"
)

// Identity is the canonical profile URL (query and fragment stripped) that
// uniquely identifies a person across all keyword passes.
type Identity string

// NewIdentity derives an Identity from a profile link target. Relative links
// are resolved against base when base is non-nil. An empty Identity is
// returned when href cannot be parsed or has no path.
func NewIdentity(href string, base *url.URL) Identity {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil && !u.IsAbs() {
		u = base.ResolveReference(u)
	}

	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""

	if u.Path == "" || u.Path == "/" {
		return ""
	}
	return Identity(u.String())
}

// String returns the identity as a URL string.
func (id Identity) String() string {
	return string(id)
}

// Valid reports whether the identity is non-empty.
func (id Identity) Valid() bool {
	return id != ""
}

// ResultRecord is a single person extracted from one rendered results page.
// Headline and Location are optional and may be empty.
type ResultRecord struct {
	Identity    Identity `json:"identity"`
	DisplayName string   `json:"display_name"`
	Headline    string   `json:"headline,omitempty"`
	Location    string   `json:"location,omitempty"`
}

// Batch is the set of records extracted from a single page view, tagged with
// the keyword and page number that produced it.
type Batch struct {
	Keyword string         `json:"keyword"`
	Page    int            `json:"page"`
	Records []ResultRecord `json:"records"`
}
