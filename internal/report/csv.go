package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/people-crossref/internal/aggregate"
)

// CSVHeader is the column order of the CSV report.
var CSVHeader = []string{"name", "headline", "location", "profile_url", "matched_keywords"}

// CSVWriter writes one row per entry to Path, replacing any existing file.
type CSVWriter struct {
	Path string
}

// Write implements Writer.
func (w *CSVWriter) Write(_ context.Context, _ RunMeta, entries []aggregate.Entry) (err error) {
	if err := os.MkdirAll(filepath.Dir(w.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(w.Path)
	if err != nil {
		return fmt.Errorf("failed to create report %s: %w", w.Path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close report: %w", cerr)
		}
	}()

	cw := csv.NewWriter(f)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}
	for _, e := range entries {
		row := []string{e.DisplayName, e.Headline, e.Location, e.Identity.String(), e.KeywordList()}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}
	return nil
}
