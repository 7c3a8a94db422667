package extract

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/people-crossref/internal/browser/browsertest"
	"github.com/jonathan/people-crossref/internal/types"
)

func testBase(t *testing.T) *url.URL {
	t.Helper()
	u, err := url.Parse(DefaultBase)
	require.NoError(t, err)
	return u
}

func card(urn, href, name, headline, location string) string {
	html := `<li><div data-chameleon-result-urn="` + urn + `"><div class="entity-result">`
	html += `<a class="app-aware-link" href="` + href + `">`
	if name != "" {
		html += `<span dir="ltr"><span aria-hidden="true">` + name + `</span><span class="visually-hidden">View profile</span></span>`
	}
	html += `</a>`
	if headline != "" {
		html += `<div class="fPKHunLoPKXcFGoTXEqoYXAPnXixUiYhgek t-14 t-black">` + headline + `</div>`
	}
	if location != "" {
		html += `<div class="WkjuHgoDAETDiNPzrVDpDLnexwXRWPettk t-14 t-normal">` + location + `</div>`
	}
	html += `</div></div></li>`
	return html
}

func page(cards ...string) string {
	html := `<html><body><ul class="reusable-search__entity-result-list">`
	for _, c := range cards {
		html += c
	}
	return html + `</ul></body></html>`
}

func TestRecords_FiveAnchorsOneMissingName(t *testing.T) {
	html := page(
		card("urn:li:member:1", "https://www.linkedin.com/in/alice?miniProfileUrn=abc", "Alice Adams", "Engagement Manager at McKinsey", "Chicago, IL"),
		card("urn:li:member:2", "/in/bob/", "Bob Brown", "Consultant", "New York, NY"),
		card("urn:li:member:3", "/in/carol", "", "Analyst", "Boston, MA"),
		card("urn:li:member:4", "/in/dan", "Dan Diaz", "", ""),
		card("urn:li:member:5", "/in/erin", "Erin Evans", "Partner", ""),
	)

	recs := Records(html, testBase(t), DefaultSelectors())

	require.Len(t, recs, 4)
	assert.Equal(t, types.ResultRecord{
		Identity:    "https://www.linkedin.com/in/alice",
		DisplayName: "Alice Adams",
		Headline:    "Engagement Manager at McKinsey",
		Location:    "Chicago, IL",
	}, recs[0])
	assert.Equal(t, types.Identity("https://www.linkedin.com/in/bob/"), recs[1].Identity)
	assert.Equal(t, "Dan Diaz", recs[2].DisplayName)
	assert.Empty(t, recs[2].Headline)
	assert.Empty(t, recs[2].Location)
	assert.Equal(t, "Partner", recs[3].Headline)
}

func TestRecords_ContainerIsolation(t *testing.T) {
	// headline and location come from the anchor's own card, never a neighbor's
	html := page(
		card("urn:1", "/in/first", "First Person", "", ""),
		card("urn:2", "/in/second", "Second Person", "Second headline", "Second location"),
	)

	recs := Records(html, testBase(t), DefaultSelectors())

	require.Len(t, recs, 2)
	assert.Empty(t, recs[0].Headline)
	assert.Empty(t, recs[0].Location)
	assert.Equal(t, "Second headline", recs[1].Headline)
	assert.Equal(t, "Second location", recs[1].Location)
}

func TestRecords_Skips(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{
			name: "anchor outside any card",
			html: `<div><a href="/in/loose"><span aria-hidden="true">Loose Link</span></a></div>`,
		},
		{
			name: "whitespace-only name",
			html: page(card("urn:1", "/in/blank", "   \n ", "x", "y")),
		},
		{
			name: "no profile links",
			html: `<div data-chameleon-result-urn="urn:1"><a href="/company/acme">Acme</a></div>`,
		},
		{
			name: "empty document",
			html: ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := Records(tt.html, testBase(t), DefaultSelectors())
			assert.NotNil(t, recs)
			assert.Empty(t, recs)
		})
	}
}

func TestRecords_WhitespaceNormalized(t *testing.T) {
	html := page(card("urn:1", "/in/x", "\n   Jane \t  Doe  ", "  Director\n of   Ops ", " Chicago,\n IL "))

	recs := Records(html, testBase(t), DefaultSelectors())

	require.Len(t, recs, 1)
	assert.Equal(t, "Jane Doe", recs[0].DisplayName)
	assert.Equal(t, "Director of Ops", recs[0].Headline)
	assert.Equal(t, "Chicago, IL", recs[0].Location)
}

func TestRecords_DuplicatesKept(t *testing.T) {
	html := page(
		card("urn:1", "/in/same?trk=a", "Same Person", "A", ""),
		card("urn:2", "/in/same?trk=b", "Same Person", "B", ""),
	)

	recs := Records(html, testBase(t), DefaultSelectors())

	require.Len(t, recs, 2)
	assert.Equal(t, recs[0].Identity, recs[1].Identity)
}

func TestRecords_FallbackSelectors(t *testing.T) {
	html := `<div data-chameleon-result-urn="urn:1">
		<a href="/in/old"><span aria-hidden="true">Old Layout</span></a>
		<div class="entity-result__primary-subtitle">Legacy headline</div>
		<div class="entity-result__secondary-subtitle">Legacy location</div>
	</div>`

	recs := Records(html, testBase(t), DefaultSelectors())

	require.Len(t, recs, 1)
	assert.Equal(t, "Legacy headline", recs[0].Headline)
	assert.Equal(t, "Legacy location", recs[0].Location)
}

func TestRecords_NilBaseKeepsAbsoluteLinks(t *testing.T) {
	html := page(
		card("urn:1", "https://www.linkedin.com/in/abs", "Absolute", "", ""),
		card("urn:2", "/in/rel", "Relative", "", ""),
	)

	recs := Records(html, nil, DefaultSelectors())

	require.Len(t, recs, 2)
	assert.Equal(t, types.Identity("https://www.linkedin.com/in/abs"), recs[0].Identity)
	assert.Equal(t, types.Identity("/in/rel"), recs[1].Identity)
}

func TestExtractor_Page(t *testing.T) {
	d := browsertest.New()
	d.Page = page(
		card("urn:1", "/in/one", "One", "", ""),
		card("urn:2", "/in/two", "", "", ""),
	)

	recs, err := New().Page(context.Background(), d)

	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, types.Identity("https://www.linkedin.com/in/one"), recs[0].Identity)
}

func TestExtractor_PageReadFails(t *testing.T) {
	d := browsertest.New()
	d.Fail["HTML"] = errors.New("target closed")

	recs, err := New().Page(context.Background(), d)

	require.Error(t, err)
	assert.Nil(t, recs)
	assert.Contains(t, err.Error(), "target closed")
}

func TestExtractor_CustomSelectors(t *testing.T) {
	d := browsertest.New()
	d.Page = `<section class="hit"><a href="/in/z"><b>Zed</b></a><p class="role">Role</p></section>`
	base, _ := url.Parse("https://example.test")

	ex := New(
		WithBase(base),
		WithSelectors(Selectors{
			ProfileLink: `a[href*="/in/"]`,
			Name:        "b",
			Container:   "section.hit",
			Headline:    []string{"p.role"},
		}),
	)
	recs, err := ex.Page(context.Background(), d)

	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, types.Identity("https://example.test/in/z"), recs[0].Identity)
	assert.Equal(t, "Role", recs[0].Headline)
	assert.Empty(t, recs[0].Location)
}
