package report

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jonathan/people-crossref/internal/aggregate"
)

const schemaVersion = 1

// SQLiteWriter appends a run and its profiles to the database at Path.
type SQLiteWriter struct {
	Path string
}

// Open opens (creating if needed) the report database and applies the schema.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	// modernc sqlite DSN: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open report database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&v); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if v >= schemaVersion {
		return tx.Commit()
	}

	stmts := []string{`
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  company TEXT NOT NULL,
  keywords TEXT NOT NULL DEFAULT '',
  started_at TEXT NOT NULL,
  finished_at TEXT NOT NULL,
  partial INTEGER NOT NULL DEFAULT 0,
  profiles INTEGER NOT NULL DEFAULT 0
);`, `
CREATE TABLE IF NOT EXISTS profiles (
  run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  identity TEXT NOT NULL,
  name TEXT NOT NULL,
  headline TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  keywords TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (run_id, identity)
);`, `
CREATE INDEX IF NOT EXISTS idx_profiles_identity ON profiles(identity);`,
		fmt.Sprintf(`PRAGMA user_version = %d;`, schemaVersion),
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return tx.Commit()
}

// Write implements Writer. The run row and its profiles commit together.
func (w *SQLiteWriter) Write(ctx context.Context, meta RunMeta, entries []aggregate.Entry) error {
	if meta.ID == "" {
		return fmt.Errorf("run ID is required for the SQLite report")
	}

	db, err := Open(ctx, w.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin report transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO runs (id, company, keywords, started_at, finished_at, partial, profiles)
VALUES (?, ?, ?, ?, ?, ?, ?);`,
		meta.ID, meta.Company, strings.Join(meta.Keywords, ", "),
		meta.StartedAt.UTC().Format(time.RFC3339), meta.FinishedAt.UTC().Format(time.RFC3339),
		meta.Partial, len(entries),
	); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO profiles (run_id, identity, name, headline, location, keywords)
VALUES (?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return fmt.Errorf("failed to prepare profile insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, meta.ID, e.Identity.String(), e.DisplayName, e.Headline, e.Location, e.KeywordList()); err != nil {
			return fmt.Errorf("failed to record profile %s: %w", e.Identity, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit report: %w", err)
	}
	return nil
}
