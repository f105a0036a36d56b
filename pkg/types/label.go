// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// Kind categorizes a traceability label occurrence. The set is closed:
// a tag declares a named anchor, a ref points at a tag, and file/dir
// labels name filesystem paths.
type Kind string

const (
	KindTag  Kind = "tag"
	KindRef  Kind = "ref"
	KindFile Kind = "file"
	KindDir  Kind = "dir"
)

// Label is one matched marker occurrence in a scanned input. A Label is
// a plain value with no identity beyond its four fields; Text is the
// captured label string exactly as it appeared in the source.
type Label struct {
	// Kind is the marker variant.
	Kind Kind `json:"kind" yaml:"kind"`

	// Text is the label string, case preserved.
	Text string `json:"text" yaml:"text"`

	// Source identifies the input the label was found in (e.g. a file path).
	Source string `json:"source" yaml:"source"`

	// Line is the 1-based physical line number within the input.
	Line int `json:"line" yaml:"line"`
}

// String renders the label for diagnostics as "[kind:text] @ source:line".
func (l Label) String() string {
	return fmt.Sprintf("[%s:%s] @ %s:%d", l.Kind, l.Text, l.Source, l.Line)
}

// Catalogue is the classified result of one extraction run: four ordered
// sequences, one per label kind. Ordering within each sequence is discovery
// order (line order, then left-to-right within a line) and is independent
// across the four sequences. Duplicates are preserved; deduplication is the
// checker's concern, not the extractor's.
type Catalogue struct {
	Tags  []Label `json:"tags" yaml:"tags"`
	Refs  []Label `json:"refs" yaml:"refs"`
	Files []Label `json:"files" yaml:"files"`
	Dirs  []Label `json:"dirs" yaml:"dirs"`

	// SkippedLines counts physical lines that could not be decoded as text
	// and therefore contributed no labels. Those lines still consume their
	// line-number slots, so reported line numbers stay aligned with the file.
	SkippedLines int `json:"skipped_lines,omitempty" yaml:"skipped_lines,omitempty"`
}

// Merge appends another catalogue's sequences, preserving their order.
// Merging per-file catalogues in traversal order yields one combined
// catalogue for a whole tree.
func (c *Catalogue) Merge(other Catalogue) {
	c.Tags = append(c.Tags, other.Tags...)
	c.Refs = append(c.Refs, other.Refs...)
	c.Files = append(c.Files, other.Files...)
	c.Dirs = append(c.Dirs, other.Dirs...)
	c.SkippedLines += other.SkippedLines
}

// Total returns the number of labels across all four sequences.
func (c Catalogue) Total() int {
	return len(c.Tags) + len(c.Refs) + len(c.Files) + len(c.Dirs)
}

// IsEmpty reports whether the catalogue holds no labels.
func (c Catalogue) IsEmpty() bool {
	return c.Total() == 0
}

// All returns every label in one slice, grouped by kind in declaration
// order (tags, refs, files, dirs). Each group keeps its discovery order.
func (c Catalogue) All() []Label {
	all := make([]Label, 0, c.Total())
	all = append(all, c.Tags...)
	all = append(all, c.Refs...)
	all = append(all, c.Files...)
	all = append(all, c.Dirs...)
	return all
}
