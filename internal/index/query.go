// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/tagtrace/pkg/types"
)

// QueryOptions holds parameters for index queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string over label text.
	Query string

	// Kind filters by label kind.
	Kind types.Kind

	// Source filters by source path.
	Source string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Kind == "" && q.Source == ""
}

// Query searches the index with optional full-text search and structured
// filters. Full-text results are ranked by relevance; structured-only
// results are ordered by source, line, insertion order.
func (s *Store) Query(ctx context.Context, opts QueryOptions) ([]types.Label, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT l.kind, l.text, l.source, l.line
			FROM labels_fts
			JOIN labels l ON l.rowid = labels_fts.rowid
			WHERE labels_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT l.kind, l.text, l.source, l.line
			FROM labels l
			WHERE 1=1`)
	}

	if opts.Kind != "" {
		qb.WriteString(` AND l.kind = ?`)
		args = append(args, string(opts.Kind))
	}

	if opts.Source != "" {
		qb.WriteString(` AND l.source = ?`)
		args = append(args, opts.Source)
	}

	if useFTS {
		qb.WriteString(` ORDER BY labels_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY l.source, l.line, l.rowid`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var results []types.Label
	for rows.Next() {
		var (
			l    types.Label
			kind string
		)
		if err := rows.Scan(&kind, &l.Text, &l.Source, &l.Line); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		l.Kind = types.Kind(kind)
		results = append(results, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}

	return results, nil
}

const exportLimit = 1000000

// Catalogue reassembles the stored labels into a Catalogue, grouped by
// kind with each group ordered by source, line, insertion order.
func (s *Store) Catalogue(ctx context.Context) (types.Catalogue, error) {
	labels, err := s.Query(ctx, QueryOptions{MaxResults: exportLimit})
	if err != nil {
		return types.Catalogue{}, err
	}

	var cat types.Catalogue
	for _, l := range labels {
		switch l.Kind {
		case types.KindTag:
			cat.Tags = append(cat.Tags, l)
		case types.KindRef:
			cat.Refs = append(cat.Refs, l)
		case types.KindFile:
			cat.Files = append(cat.Files, l)
		case types.KindDir:
			cat.Dirs = append(cat.Dirs, l)
		}
	}
	return cat, nil
}

// ExportYAML writes the full index to indexDir/export.yaml and returns
// the written path.
func (s *Store) ExportYAML(ctx context.Context) (string, error) {
	cat, err := s.Catalogue(ctx)
	if err != nil {
		return "", fmt.Errorf("querying for export: %w", err)
	}

	path := filepath.Join(s.indexDir, "export.yaml")
	data, err := yaml.Marshal(cat)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return path, os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the full index to indexDir/export.json and returns
// the written path.
func (s *Store) ExportJSON(ctx context.Context) (string, error) {
	cat, err := s.Catalogue(ctx)
	if err != nil {
		return "", fmt.Errorf("querying for export: %w", err)
	}

	path := filepath.Join(s.indexDir, "export.json")
	data, err := json.MarshalIndent(cat, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return path, os.WriteFile(path, data, 0o644)
}
