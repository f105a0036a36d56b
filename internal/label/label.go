// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package label extracts bracketed traceability markers from line-oriented
// text. The marker grammar is "[" keyword ":" label-text "]" with a fixed
// keyword set (tag, ref, file, dir), case-insensitive on the keyword and
// whitespace-tolerant around the delimiters. Label text cannot contain
// whitespace or "]".
//
// Extraction is a single forward pass with no carried state other than the
// line counter; the engine does not judge marker correctness (the check
// package does that over the combined catalogue).
package label

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/tagtrace/pkg/types"
)

// ErrInvalidPattern reports a marker pattern that could not be compiled or
// that lacks the required single capture group. It can only occur at
// configuration time, before any input is scanned.
var ErrInvalidPattern = errors.New("invalid marker pattern")

// Default marker pattern sources, one per kind. The single capture group
// yields the label text, so delimiting whitespace never reaches the capture.
const (
	DefaultTagPattern  = `(?i)\[\s*tag\s*:\s*([^\]\s]+)\s*\]`
	DefaultRefPattern  = `(?i)\[\s*ref\s*:\s*([^\]\s]+)\s*\]`
	DefaultFilePattern = `(?i)\[\s*file\s*:\s*([^\]\s]+)\s*\]`
	DefaultDirPattern  = `(?i)\[\s*dir\s*:\s*([^\]\s]+)\s*\]`
)

// maxLineBytes bounds the length of a physical line that is matched
// against the patterns. A longer line contributes no labels but still
// consumes its line-number slot, like an undecodable one.
const maxLineBytes = 1024 * 1024

// Patterns holds the four compiled marker patterns. A Patterns value is
// read-only after construction; it is safe to share across concurrent
// Parse calls.
type Patterns struct {
	Tag  *regexp.Regexp
	Ref  *regexp.Regexp
	File *regexp.Regexp
	Dir  *regexp.Regexp
}

// DefaultPatterns returns the four standard marker patterns.
func DefaultPatterns() Patterns {
	return Patterns{
		Tag:  regexp.MustCompile(DefaultTagPattern),
		Ref:  regexp.MustCompile(DefaultRefPattern),
		File: regexp.MustCompile(DefaultFilePattern),
		Dir:  regexp.MustCompile(DefaultDirPattern),
	}
}

// Compile builds Patterns from the pattern overrides in cfg. Empty overrides
// fall back to the defaults. Each source must compile and contain exactly one
// capture group for the label text; anything else fails with ErrInvalidPattern.
func Compile(cfg types.ScanConfig) (Patterns, error) {
	var p Patterns
	var err error

	if p.Tag, err = compileOne(types.KindTag, cfg.TagPattern, DefaultTagPattern); err != nil {
		return Patterns{}, err
	}
	if p.Ref, err = compileOne(types.KindRef, cfg.RefPattern, DefaultRefPattern); err != nil {
		return Patterns{}, err
	}
	if p.File, err = compileOne(types.KindFile, cfg.FilePattern, DefaultFilePattern); err != nil {
		return Patterns{}, err
	}
	if p.Dir, err = compileOne(types.KindDir, cfg.DirPattern, DefaultDirPattern); err != nil {
		return Patterns{}, err
	}

	return p, nil
}

func compileOne(kind types.Kind, expr, fallback string) (*regexp.Regexp, error) {
	if expr == "" {
		expr = fallback
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s pattern %q: %v", ErrInvalidPattern, kind, expr, err)
	}
	if n := re.NumSubexp(); n != 1 {
		return nil, fmt.Errorf("%w: %s pattern %q: want exactly 1 capture group, have %d", ErrInvalidPattern, kind, expr, n)
	}
	return re, nil
}

// Parse scans the reader line by line and returns every marker occurrence,
// classified by kind in discovery order (line order, then left-to-right
// within a line). Line numbers are 1-based and count every physical line;
// a line that is not valid UTF-8, or longer than maxLineBytes, contributes
// no labels but still consumes its line-number slot, so one corrupt or
// overlong line does not misalign or discard the rest of the input. The
// four patterns are applied independently to the same original line text.
//
// Parse never fails: a read error truncates the scan at the lines already
// seen, and the catalogue built so far is returned.
func Parse(p Patterns, source string, r io.Reader) types.Catalogue {
	var cat types.Catalogue

	br := bufio.NewReaderSize(r, 64*1024)

	line := 0
	for {
		text, err := br.ReadString('\n')
		if text == "" && err != nil {
			break
		}
		line++

		text = strings.TrimSuffix(text, "\n")
		text = strings.TrimSuffix(text, "\r")

		if len(text) > maxLineBytes || !utf8.ValidString(text) {
			cat.SkippedLines++
		} else {
			cat.Tags = appendMatches(cat.Tags, p.Tag, types.KindTag, text, source, line)
			cat.Refs = appendMatches(cat.Refs, p.Ref, types.KindRef, text, source, line)
			cat.Files = appendMatches(cat.Files, p.File, types.KindFile, text, source, line)
			cat.Dirs = appendMatches(cat.Dirs, p.Dir, types.KindDir, text, source, line)
		}

		if err != nil {
			break
		}
	}

	return cat
}

// appendMatches appends a label for every non-overlapping match of re on
// text, in left-to-right order. The capture group is guaranteed by pattern
// construction, so m[1] always exists.
func appendMatches(dst []types.Label, re *regexp.Regexp, kind types.Kind, text, source string, line int) []types.Label {
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		dst = append(dst, types.Label{
			Kind:   kind,
			Text:   m[1],
			Source: source,
			Line:   line,
		})
	}
	return dst
}
