// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package check validates cross-reference consistency over an extracted
// label catalogue: tags must be unique, refs must resolve to a tag, and
// file/dir labels must name existing paths.
package check

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/tagtrace/pkg/types"
)

// FindingKind categorizes a consistency violation.
type FindingKind string

const (
	FindingDuplicateTag FindingKind = "duplicate-tag"
	FindingDanglingRef  FindingKind = "dangling-ref"
	FindingMissingFile  FindingKind = "missing-file"
	FindingMissingDir   FindingKind = "missing-dir"
)

// Finding is one consistency violation, anchored at the offending label.
type Finding struct {
	Kind   FindingKind `json:"kind" yaml:"kind"`
	Detail string      `json:"detail" yaml:"detail"`
	Label  types.Label `json:"label" yaml:"label"`
}

// String renders the finding for diagnostics.
func (f Finding) String() string {
	return fmt.Sprintf("%s: %s @ %s:%d", f.Kind, f.Detail, f.Label.Source, f.Label.Line)
}

// Run checks the merged catalogue for consistency violations. Path labels
// are resolved relative to root. Label text comparison is exact and
// case-sensitive: the extractor preserves text verbatim, so "LABEL" and
// "label" are distinct anchors.
//
// Findings are ordered: duplicate tags, then dangling refs, then missing
// files, then missing dirs, each in the catalogue's discovery order.
func Run(cat types.Catalogue, root string) []Finding {
	var findings []Finding

	// First declaration of each tag wins; later ones are duplicates. The
	// surviving index doubles as the anchor set for ref resolution.
	anchors := make(map[string]types.Label, len(cat.Tags))
	for _, tag := range cat.Tags {
		first, dup := anchors[tag.Text]
		if dup {
			findings = append(findings, Finding{
				Kind:   FindingDuplicateTag,
				Detail: fmt.Sprintf("tag %q already declared at %s:%d", tag.Text, first.Source, first.Line),
				Label:  tag,
			})
			continue
		}
		anchors[tag.Text] = tag
	}

	for _, ref := range cat.Refs {
		if _, ok := anchors[ref.Text]; !ok {
			findings = append(findings, Finding{
				Kind:   FindingDanglingRef,
				Detail: fmt.Sprintf("no tag named %q", ref.Text),
				Label:  ref,
			})
		}
	}

	for _, fl := range cat.Files {
		info, err := os.Stat(resolve(root, fl.Text))
		if err != nil || !info.Mode().IsRegular() {
			findings = append(findings, Finding{
				Kind:   FindingMissingFile,
				Detail: fmt.Sprintf("no file at %q", fl.Text),
				Label:  fl,
			})
		}
	}

	for _, dl := range cat.Dirs {
		info, err := os.Stat(resolve(root, dl.Text))
		if err != nil || !info.IsDir() {
			findings = append(findings, Finding{
				Kind:   FindingMissingDir,
				Detail: fmt.Sprintf("no directory at %q", dl.Text),
				Label:  dl,
			})
		}
	}

	return findings
}

// resolve maps a slash-separated label path to a filesystem path under root.
// Absolute label paths are taken as-is.
func resolve(root, labelPath string) string {
	p := filepath.FromSlash(labelPath)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
