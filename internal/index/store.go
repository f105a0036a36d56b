// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index persists extracted labels in a SQLite database with FTS5
// full-text search over label text. The index is incremental: unchanged
// source files are skipped on rebuild, changed ones are re-ingested in a
// transaction that replaces their old rows.
package index

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/tagtrace/internal/label"
	"github.com/pdiddy/tagtrace/internal/walk"
	"github.com/pdiddy/tagtrace/pkg/types"
)

const (
	defaultIndexDir   = ".tagtrace"
	dbFile            = "tagtrace.db"
	defaultMaxResults = 20
)

// Store manages the label index SQLite database.
type Store struct {
	db         *sql.DB
	indexDir   string
	maxResults int
}

// NewStore opens or creates the index database at indexDir/tagtrace.db,
// creating the schema if it does not exist.
func NewStore(cfg types.IndexConfig) (*Store, error) {
	indexDir := cfg.IndexDir
	if indexDir == "" {
		indexDir = defaultIndexDir
	}
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(indexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{
		db:         db,
		indexDir:   indexDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sources (
			path TEXT PRIMARY KEY,
			mod_time TEXT NOT NULL,
			label_count INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS labels (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			text TEXT NOT NULL,
			source TEXT NOT NULL REFERENCES sources(path),
			line INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_labels_source ON labels(source)`,
		`CREATE INDEX IF NOT EXISTS idx_labels_kind ON labels(kind)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='labels_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE labels_fts USING fts5(text, content=labels, content_rowid=rowid)`,
			`CREATE TRIGGER labels_ai AFTER INSERT ON labels BEGIN
				INSERT INTO labels_fts(rowid, text) VALUES (new.rowid, new.text);
			END`,
			`CREATE TRIGGER labels_ad AFTER DELETE ON labels BEGIN
				INSERT INTO labels_fts(labels_fts, rowid, text) VALUES('delete', old.rowid, old.text);
			END`,
			`CREATE TRIGGER labels_au AFTER UPDATE ON labels BEGIN
				INSERT INTO labels_fts(labels_fts, rowid, text) VALUES('delete', old.rowid, old.text);
				INSERT INTO labels_fts(rowid, text) VALUES (new.rowid, new.text);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// BuildSummary holds counts from one index build.
type BuildSummary struct {
	Indexed int
	Updated int
	Skipped int
	Removed int
	Failed  int
}

// Total returns the number of source files processed.
func (s BuildSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Build walks the tree described by cfg and ingests each file's labels.
// Files whose mod time is unchanged since the last build are skipped;
// changed files are re-ingested; sources no longer present in the tree
// are removed. Progress lines go to w.
func (s *Store) Build(ctx context.Context, cfg types.ScanConfig, p label.Patterns, w io.Writer) (BuildSummary, error) {
	files, err := walk.Files(cfg)
	if err != nil {
		return BuildSummary{}, err
	}

	root := cfg.Root
	if root == "" {
		root = "."
	}

	var summary BuildSummary
	present := make(map[string]bool, len(files))

	for _, rel := range files {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		present[rel] = true
		path := filepath.Join(root, filepath.FromSlash(rel))

		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", rel, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT mod_time FROM sources WHERE path = ?`, rel,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", rel, err)
			summary.Failed++
			continue
		}

		cat := label.Parse(p, rel, bytes.NewReader(data))

		if err := s.ingestSource(ctx, rel, cat, modTime, isUpdate); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", rel, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d labels)\n", rel, cat.Total())
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexed %s (%d labels)\n", rel, cat.Total())
			summary.Indexed++
		}
	}

	removed, err := s.removeStale(ctx, present)
	if err != nil {
		return summary, err
	}
	summary.Removed = removed

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, removed: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Removed, summary.Failed)

	return summary, nil
}

func (s *Store) ingestSource(ctx context.Context, rel string, cat types.Catalogue, modTime string, isUpdate bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM labels WHERE source = ?`, rel); err != nil {
			return fmt.Errorf("deleting old labels: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sources (path, mod_time, label_count) VALUES (?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET mod_time=excluded.mod_time, label_count=excluded.label_count`,
		rel, modTime, cat.Total(),
	)
	if err != nil {
		return fmt.Errorf("upserting source: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO labels (kind, text, source, line) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, l := range cat.All() {
		if _, err := stmt.ExecContext(ctx, string(l.Kind), l.Text, l.Source, l.Line); err != nil {
			return fmt.Errorf("inserting label %s: %w", l, err)
		}
	}

	return tx.Commit()
}

// removeStale deletes sources (and their labels) that are no longer part
// of the scanned tree.
func (s *Store) removeStale(ctx context.Context, present map[string]bool) (int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path FROM sources`)
	if err != nil {
		return 0, fmt.Errorf("listing sources: %w", err)
	}
	defer rows.Close()

	var stale []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return 0, err
		}
		if !present[path] {
			stale = append(stale, path)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, path := range stale {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM labels WHERE source = ?`, path); err != nil {
			return 0, fmt.Errorf("removing labels for %s: %w", path, err)
		}
		if _, err := s.db.ExecContext(ctx, `DELETE FROM sources WHERE path = ?`, path); err != nil {
			return 0, fmt.Errorf("removing source %s: %w", path, err)
		}
	}

	return len(stale), nil
}
