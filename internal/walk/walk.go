// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package walk traverses a source tree and feeds each text file to the
// label extraction engine, merging the per-file catalogues in traversal
// order. Traversal is best effort: unreadable files produce a warning and
// are skipped, never a failed scan.
package walk

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/pdiddy/tagtrace/internal/label"
	"github.com/pdiddy/tagtrace/pkg/types"
)

// defaultExcludes are directory names never descended into.
var defaultExcludes = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	".tagtrace":    true,
}

// binarySniffBytes is how much of a file is inspected for a NUL byte
// before it is treated as binary and skipped.
const binarySniffBytes = 8 * 1024

// Result holds the merged catalogue and per-file counts from one scan.
type Result struct {
	// Catalogue is the combined catalogue across all scanned files, with
	// each label's Source set to the file's root-relative slash path.
	Catalogue types.Catalogue

	// Scanned counts files fed to the extractor.
	Scanned int

	// Skipped counts files left out: probable binaries and unreadable files.
	Skipped int
}

// Files lists the scannable files under cfg.Root as root-relative slash
// paths, in traversal order. Include patterns (when present) must match a
// file for it to be listed; exclude patterns drop files and prune whole
// directories. Patterns use doublestar syntax against the relative path.
func Files(cfg types.ScanConfig) ([]string, error) {
	root := rootDir(cfg)

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			return rerr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if defaultExcludes[d.Name()] || matchAny(cfg.Exclude, rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if matchAny(cfg.Exclude, rel) {
			return nil
		}
		if len(cfg.Include) > 0 && !matchAny(cfg.Include, rel) {
			return nil
		}

		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	return files, nil
}

// Scan extracts labels from every scannable file under cfg.Root. Warnings
// for unreadable files go to w.
func Scan(cfg types.ScanConfig, p label.Patterns, w io.Writer) (Result, error) {
	files, err := Files(cfg)
	if err != nil {
		return Result{}, err
	}
	root := rootDir(cfg)

	var res Result
	for _, rel := range files {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			fmt.Fprintf(w, "warning: could not read %s: %v\n", rel, err)
			res.Skipped++
			continue
		}
		if isBinary(data) {
			res.Skipped++
			continue
		}

		res.Catalogue.Merge(label.Parse(p, rel, bytes.NewReader(data)))
		res.Scanned++
	}

	return res, nil
}

// ExcludedDir reports whether a directory name is one of the built-in
// excludes. The watch package uses this to keep its watch list aligned
// with the scan set.
func ExcludedDir(name string) bool {
	return defaultExcludes[name]
}

// rootDir returns cfg.Root, defaulting to the current directory.
func rootDir(cfg types.ScanConfig) string {
	if cfg.Root == "" {
		return "."
	}
	return cfg.Root
}

// matchAny reports whether rel matches any of the doublestar patterns.
// Malformed patterns match nothing.
func matchAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// isBinary sniffs for a NUL byte in the first 8 KiB of data.
func isBinary(data []byte) bool {
	n := min(len(data), binarySniffBytes)
	return bytes.IndexByte(data[:n], 0) >= 0
}
