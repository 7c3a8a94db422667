// Package aggregate folds per-page result batches into one identity-keyed
// collection, collecting the set of keywords under which each person appeared.
package aggregate

import (
	"maps"
	"slices"
	"strings"

	"github.com/jonathan/people-crossref/internal/types"
)

// Entry is the aggregated view of one person.
type Entry struct {
	Identity    types.Identity
	DisplayName string
	Headline    string
	Location    string
	Keywords    map[string]struct{}
}

// SortedKeywords returns the matched keywords in lexicographic order.
func (e Entry) SortedKeywords() []string {
	return slices.Sorted(maps.Keys(e.Keywords))
}

// KeywordList renders the matched keywords sorted and comma-joined.
func (e Entry) KeywordList() string {
	return strings.Join(e.SortedKeywords(), ", ")
}

// HasKeyword reports whether the entry matched keyword.
func (e Entry) HasKeyword(keyword string) bool {
	_, ok := e.Keywords[keyword]
	return ok
}

func (e Entry) clone() Entry {
	e.Keywords = maps.Clone(e.Keywords)
	return e
}

// Aggregate owns the identity map for a run. Merge is its only mutator; entries
// are never removed and keyword sets only grow.
//
// Field policy: the first sighting of an identity wins. A later sighting only
// fills fields that are still empty.
type Aggregate struct {
	entries map[types.Identity]*Entry
	order   []types.Identity
}

// New returns an empty Aggregate.
func New() *Aggregate {
	return &Aggregate{entries: make(map[types.Identity]*Entry)}
}

// Merge folds batch into the aggregate under keyword. Records with an empty
// identity are ignored. Merging the same batch twice is a no-op the second time.
func (a *Aggregate) Merge(batch []types.ResultRecord, keyword string) {
	for _, rec := range batch {
		if !rec.Identity.Valid() {
			continue
		}

		entry, ok := a.entries[rec.Identity]
		if !ok {
			a.entries[rec.Identity] = &Entry{
				Identity:    rec.Identity,
				DisplayName: rec.DisplayName,
				Headline:    rec.Headline,
				Location:    rec.Location,
				Keywords:    map[string]struct{}{keyword: {}},
			}
			a.order = append(a.order, rec.Identity)
			continue
		}

		entry.Keywords[keyword] = struct{}{}
		backfill(&entry.DisplayName, rec.DisplayName)
		backfill(&entry.Headline, rec.Headline)
		backfill(&entry.Location, rec.Location)
	}
}

func backfill(dst *string, src string) {
	if *dst == "" && src != "" {
		*dst = src
	}
}

// Len returns the number of distinct identities.
func (a *Aggregate) Len() int {
	return len(a.entries)
}

// Get returns a copy of the entry for id.
func (a *Aggregate) Get(id types.Identity) (Entry, bool) {
	entry, ok := a.entries[id]
	if !ok {
		return Entry{}, false
	}
	return entry.clone(), true
}

// Entries returns copies of all entries in first-sighting order.
func (a *Aggregate) Entries() []Entry {
	out := make([]Entry, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.entries[id].clone())
	}
	return out
}

// ByKeywordCount returns entries ordered by descending number of matched
// keywords. Ties keep their input order.
func ByKeywordCount(entries []Entry) []Entry {
	ranked := slices.Clone(entries)
	slices.SortStableFunc(ranked, func(a, b Entry) int {
		return len(b.Keywords) - len(a.Keywords)
	})
	return ranked
}
