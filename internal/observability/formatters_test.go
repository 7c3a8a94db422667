package observability

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/people-crossref/internal/aggregate"
	"github.com/jonathan/people-crossref/internal/types"
)

func TestPrintAuthResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintAuthResult(true)
	assert.Contains(t, buf.String(), "AUTHENTICATED")
	assert.Contains(t, buf.String(), "Reused stored session")

	buf.Reset()
	p.PrintAuthResult(false)
	assert.Contains(t, buf.String(), "Logged in with credentials")
}

func TestPrintRunSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRunSummary(RunSummary{
		Company: "breakline",
		Keywords: []KeywordStat{
			{Keyword: "navy", Pages: 2, Records: 14},
			{Keyword: "army", Pages: 1, Records: 3},
		},
		Profiles: 12,
		Output:   "output/breakline_20250101_120000.csv",
		Elapsed:  95 * time.Second,
	})
	output := buf.String()

	assert.Contains(t, output, "RUN SUMMARY")
	assert.Contains(t, output, "breakline")
	assert.Contains(t, output, "12 unique")
	assert.Contains(t, output, "navy: 14 cards / 2 pages")
	assert.Contains(t, output, "1m35s")
	assert.Contains(t, output, "Saved to:")
	assert.NotContains(t, output, "partial")
}

func TestPrintRunSummary_EmptyAndPartial(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRunSummary(RunSummary{Company: "breakline", Partial: true})
	output := buf.String()

	assert.Contains(t, output, "No profiles were collected")
	assert.Contains(t, output, "partial")
}

func TestPrintTopProfiles(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	agg := aggregate.New()
	for i := 0; i < 7; i++ {
		id := types.Identity(fmt.Sprintf("https://www.linkedin.com/in/p%d", i))
		agg.Merge([]types.ResultRecord{{Identity: id, DisplayName: fmt.Sprintf("Person %d", i)}}, "navy")
	}
	agg.Merge([]types.ResultRecord{{Identity: "https://www.linkedin.com/in/p6", DisplayName: "Person 6"}}, "army")

	p.PrintTopProfiles(agg.Entries())
	output := buf.String()

	assert.Contains(t, output, "MOST CROSS-REFERENCED")
	assert.Contains(t, output, "#1  Person 6")
	assert.Contains(t, output, "army, navy")
	assert.Contains(t, output, "... and 2 more profiles")
}

func TestPrintTopProfiles_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintTopProfiles(nil)

	assert.Empty(t, buf.String())
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("x", 200))

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
	assert.Contains(t, buf.String(), "...")
}
