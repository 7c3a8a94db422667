// Package observability provides logging setup and formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/people-crossref/internal/aggregate"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for run summaries
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		line = truncate(line, boxWidth-4)
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintAuthResult reports how the session was established.
func (p *Printer) PrintAuthResult(usedStoredSession bool) {
	var sb strings.Builder
	if usedStoredSession {
		sb.WriteString("Reused stored session cookies.\n")
		sb.WriteString("No credentials were submitted.")
	} else {
		sb.WriteString("Logged in with credentials.\n")
		sb.WriteString("Fresh session cookies saved.")
	}
	p.printBox("AUTHENTICATED", sb.String())
}

// KeywordStat counts what one keyword produced during a run.
type KeywordStat struct {
	Keyword string
	Pages   int
	Records int
}

// RunSummary is the input to PrintRunSummary.
type RunSummary struct {
	Company  string
	Keywords []KeywordStat
	Profiles int
	Output   string
	Elapsed  time.Duration
	Partial  bool
}

// PrintRunSummary outputs per-keyword counts and where the report went.
func (p *Printer) PrintRunSummary(s RunSummary) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Company:  %s\n", s.Company))
	sb.WriteString(fmt.Sprintf("Profiles: %d unique\n", s.Profiles))
	if s.Elapsed > 0 {
		sb.WriteString(fmt.Sprintf("Elapsed:  %s\n", s.Elapsed.Round(time.Second)))
	}
	sb.WriteString("\n")

	if len(s.Keywords) > 0 {
		sb.WriteString("Keywords:\n")
		for _, k := range s.Keywords {
			sb.WriteString(fmt.Sprintf("  • %s: %d cards / %d pages\n", k.Keyword, k.Records, k.Pages))
		}
		sb.WriteString("\n")
	}

	switch {
	case s.Output != "":
		sb.WriteString(fmt.Sprintf("Saved to: %s\n", s.Output))
	case s.Profiles == 0:
		sb.WriteString("No profiles were collected. Check markup or login status.\n")
	}
	if s.Partial {
		sb.WriteString("⚠ Run stopped early; results are partial.\n")
	}

	p.printBox("RUN SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTopProfiles outputs the profiles that matched the most keywords.
func (p *Printer) PrintTopProfiles(entries []aggregate.Entry) {
	if len(entries) == 0 {
		return
	}

	ranked := aggregate.ByKeywordCount(entries)

	var sb strings.Builder
	count := min(len(ranked), maxItemsToShow)
	for i := 0; i < count; i++ {
		e := ranked[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, e.DisplayName))
		sb.WriteString(fmt.Sprintf("    %s\n", e.KeywordList()))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(ranked) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more profiles", len(ranked)-maxItemsToShow))
	}

	p.printBox("MOST CROSS-REFERENCED", sb.String())
}
