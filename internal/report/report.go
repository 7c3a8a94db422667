// Package report writes the aggregated profiles of a run to disk.
package report

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/phuslu/log"

	"github.com/jonathan/people-crossref/internal/aggregate"
	"github.com/jonathan/people-crossref/internal/observability"
)

// Format selects the output writer.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatSQLite Format = "sqlite"
)

// DatabaseFileName is the cumulative SQLite file inside the output directory.
const DatabaseFileName = "crossref.db"

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatCSV, FormatSQLite:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want csv or sqlite)", name)
	}
}

// RunMeta identifies the run that produced a report.
type RunMeta struct {
	ID         string
	Company    string
	Keywords   []string
	StartedAt  time.Time
	FinishedAt time.Time
	Partial    bool
}

// Writer persists a run's entries.
type Writer interface {
	Write(ctx context.Context, meta RunMeta, entries []aggregate.Entry) error
}

// New returns the writer for format targeting path.
func New(format Format, path string) (Writer, error) {
	switch format {
	case FormatCSV:
		return &CSVWriter{Path: path}, nil
	case FormatSQLite:
		return &SQLiteWriter{Path: path}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// fileSafe maps spaces and path separators in a company name to underscores.
var fileSafe = strings.NewReplacer(" ", "_", "/", "_", `\`, "_")

// OutputPath returns dir/<company>_<YYYYMMDD_HHMMSS>.<ext>. The company name
// never escapes dir.
func OutputPath(dir, company string, now time.Time, ext string) string {
	name := fmt.Sprintf("%s_%s.%s", fileSafe.Replace(company), now.Format("20060102_150405"), ext)
	return filepath.Join(dir, name)
}

// Destination is where a run with meta is written for format. CSV gets one
// file per run; SQLite runs share one database.
func Destination(dir string, format Format, meta RunMeta) string {
	if format == FormatSQLite {
		return filepath.Join(dir, DatabaseFileName)
	}
	return OutputPath(dir, meta.Company, meta.StartedAt, string(format))
}

// Export writes entries and returns the path written. Nothing is written for
// an empty run and the returned path is empty.
func Export(ctx context.Context, dir string, format Format, meta RunMeta, entries []aggregate.Entry, logger *log.Logger) (string, error) {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if len(entries) == 0 {
		logger.Warn().Str("company", meta.Company).Msg("no profiles collected, nothing exported")
		return "", nil
	}

	path := Destination(dir, format, meta)
	w, err := New(format, path)
	if err != nil {
		return "", err
	}
	if err := w.Write(ctx, meta, entries); err != nil {
		return "", err
	}

	logger.Info().Str("path", path).Int("profiles", len(entries)).Msg("report written")
	return path, nil
}
