// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package label

import (
	"bytes"
	"errors"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"github.com/pdiddy/tagtrace/pkg/types"
)

const testSource = "file.go"

func parseString(t *testing.T, input string) types.Catalogue {
	t.Helper()
	return Parse(DefaultPatterns(), testSource, strings.NewReader(input))
}

func wantLabel(kind types.Kind, text string, line int) types.Label {
	return types.Label{Kind: kind, Text: text, Source: testSource, Line: line}
}

func TestParseEmpty(t *testing.T) {
	cat := parseString(t, "")

	if !cat.IsEmpty() {
		t.Fatalf("want empty catalogue, got %d labels", cat.Total())
	}
	if cat.SkippedLines != 0 {
		t.Errorf("SkippedLines = %d, want 0", cat.SkippedLines)
	}
}

func TestParseSingleMarker(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  types.Label
	}{
		{
			name:  "tag",
			input: "[tag:label]",
			want:  wantLabel(types.KindTag, "label", 1),
		},
		{
			name:  "ref",
			input: "[ref:label]",
			want:  wantLabel(types.KindRef, "label", 1),
		},
		{
			name:  "file",
			input: "[file:foo/bar/baz.txt]",
			want:  wantLabel(types.KindFile, "foo/bar/baz.txt", 1),
		},
		{
			name:  "dir",
			input: "[dir:foo/bar/baz]",
			want:  wantLabel(types.KindDir, "foo/bar/baz", 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := parseString(t, tt.input)

			if cat.Total() != 1 {
				t.Fatalf("total = %d, want 1", cat.Total())
			}
			got := cat.All()[0]
			if got != tt.want {
				t.Errorf("label = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseMultiplePerLine(t *testing.T) {
	cat := parseString(t, "[tag:label][ref:label][file:foo/bar/baz.txt][dir:foo/bar/baz]")

	want := types.Catalogue{
		Tags:  []types.Label{wantLabel(types.KindTag, "label", 1)},
		Refs:  []types.Label{wantLabel(types.KindRef, "label", 1)},
		Files: []types.Label{wantLabel(types.KindFile, "foo/bar/baz.txt", 1)},
		Dirs:  []types.Label{wantLabel(types.KindDir, "foo/bar/baz", 1)},
	}
	if !reflect.DeepEqual(cat, want) {
		t.Errorf("catalogue = %+v, want %+v", cat, want)
	}
}

func TestParseMultipleLines(t *testing.T) {
	input := "[tag:label]\n[ref:label]\n[file:foo/bar/baz.txt]\n[dir:foo/bar/baz]"
	cat := parseString(t, input)

	want := types.Catalogue{
		Tags:  []types.Label{wantLabel(types.KindTag, "label", 1)},
		Refs:  []types.Label{wantLabel(types.KindRef, "label", 2)},
		Files: []types.Label{wantLabel(types.KindFile, "foo/bar/baz.txt", 3)},
		Dirs:  []types.Label{wantLabel(types.KindDir, "foo/bar/baz", 4)},
	}
	if !reflect.DeepEqual(cat, want) {
		t.Errorf("catalogue = %+v, want %+v", cat, want)
	}
}

func TestParseLineNumbersCountBlankLines(t *testing.T) {
	input := "no markers here\n\n// still nothing\n[tag:late]"
	cat := parseString(t, input)

	if len(cat.Tags) != 1 {
		t.Fatalf("tags = %d, want 1", len(cat.Tags))
	}
	if cat.Tags[0].Line != 4 {
		t.Errorf("line = %d, want 4", cat.Tags[0].Line)
	}
}

func TestParseRepeatsOnOneLine(t *testing.T) {
	cat := parseString(t, "[tag:first] text [tag:second] more [tag:first]")

	wantTexts := []string{"first", "second", "first"}
	if len(cat.Tags) != len(wantTexts) {
		t.Fatalf("tags = %d, want %d", len(cat.Tags), len(wantTexts))
	}
	for i, want := range wantTexts {
		if cat.Tags[i].Text != want {
			t.Errorf("tags[%d].Text = %q, want %q", i, cat.Tags[i].Text, want)
		}
		if cat.Tags[i].Line != 1 {
			t.Errorf("tags[%d].Line = %d, want 1", i, cat.Tags[i].Line)
		}
	}
}

func TestParseWhitespace(t *testing.T) {
	input := strings.Join([]string{
		"[  tag   :  label            ]",
		"[  ref   :  label            ]",
		"[  file  :  foo/bar/baz.txt  ]",
		"[  dir   :  foo/bar/baz      ]",
	}, "\n")
	cat := parseString(t, input)

	want := types.Catalogue{
		Tags:  []types.Label{wantLabel(types.KindTag, "label", 1)},
		Refs:  []types.Label{wantLabel(types.KindRef, "label", 2)},
		Files: []types.Label{wantLabel(types.KindFile, "foo/bar/baz.txt", 3)},
		Dirs:  []types.Label{wantLabel(types.KindDir, "foo/bar/baz", 4)},
	}
	if !reflect.DeepEqual(cat, want) {
		t.Errorf("catalogue = %+v, want %+v", cat, want)
	}
}

func TestParseCase(t *testing.T) {
	// Keywords match case-insensitively; label text is preserved verbatim.
	input := strings.Join([]string{
		"[tag:label]",
		"[TAG:LABEL]",
		"[Ref:label]",
		"[REF:LABEL]",
		"[file:foo/bar/baz.txt]",
		"[FILE:FOO/BAR/BAZ.TXT]",
		"[dir:foo/bar/baz]",
		"[DIR:FOO/BAR/BAZ]",
	}, "\n")
	cat := parseString(t, input)

	want := types.Catalogue{
		Tags: []types.Label{
			wantLabel(types.KindTag, "label", 1),
			wantLabel(types.KindTag, "LABEL", 2),
		},
		Refs: []types.Label{
			wantLabel(types.KindRef, "label", 3),
			wantLabel(types.KindRef, "LABEL", 4),
		},
		Files: []types.Label{
			wantLabel(types.KindFile, "foo/bar/baz.txt", 5),
			wantLabel(types.KindFile, "FOO/BAR/BAZ.TXT", 6),
		},
		Dirs: []types.Label{
			wantLabel(types.KindDir, "foo/bar/baz", 7),
			wantLabel(types.KindDir, "FOO/BAR/BAZ", 8),
		},
	}
	if !reflect.DeepEqual(cat, want) {
		t.Errorf("catalogue = %+v, want %+v", cat, want)
	}
}

func TestParseMalformedMarkers(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "missing close bracket", input: "[tag:label"},
		{name: "missing colon", input: "[tag label]"},
		{name: "empty label", input: "[tag:]"},
		{name: "space inside label", input: "[tag:two words]"},
		{name: "unknown keyword", input: "[note:label]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := parseString(t, tt.input)
			if !cat.IsEmpty() {
				t.Errorf("got %d labels from %q, want none", cat.Total(), tt.input)
			}
		})
	}
}

func TestParseSkipsInvalidUTF8Line(t *testing.T) {
	// Line 2 is invalid UTF-8: its marker is dropped, but the line still
	// consumes a line-number slot.
	var buf bytes.Buffer
	buf.WriteString("[tag:before]\n")
	buf.Write([]byte{'[', 't', 'a', 'g', ':', 0xff, 0xfe, ']', '\n'})
	buf.WriteString("[tag:after]\n")

	cat := Parse(DefaultPatterns(), testSource, &buf)

	want := []types.Label{
		wantLabel(types.KindTag, "before", 1),
		wantLabel(types.KindTag, "after", 3),
	}
	if !reflect.DeepEqual(cat.Tags, want) {
		t.Errorf("tags = %+v, want %+v", cat.Tags, want)
	}
	if cat.SkippedLines != 1 {
		t.Errorf("SkippedLines = %d, want 1", cat.SkippedLines)
	}
}

func TestParseContinuesAfterOverlongLine(t *testing.T) {
	// A line longer than maxLineBytes is treated like an undecodable one:
	// it consumes a line-number slot, and the scan keeps going.
	var buf bytes.Buffer
	buf.WriteString("[tag:before]\n")
	buf.WriteString(strings.Repeat("x", maxLineBytes+1))
	buf.WriteString("\n[tag:after]\n")

	cat := Parse(DefaultPatterns(), testSource, &buf)

	want := []types.Label{
		wantLabel(types.KindTag, "before", 1),
		wantLabel(types.KindTag, "after", 3),
	}
	if !reflect.DeepEqual(cat.Tags, want) {
		t.Errorf("tags = %+v, want %+v", cat.Tags, want)
	}
	if cat.SkippedLines != 1 {
		t.Errorf("SkippedLines = %d, want 1", cat.SkippedLines)
	}
}

func TestParseLastLineWithoutNewline(t *testing.T) {
	cat := parseString(t, "line one\n[tag:final]")

	if len(cat.Tags) != 1 || cat.Tags[0].Line != 2 {
		t.Errorf("tags = %+v, want single tag on line 2", cat.Tags)
	}
}

func TestParseIdempotent(t *testing.T) {
	input := "[tag:a][ref:a]\n[file:x.txt]\n[dir:x]"

	first := parseString(t, input)
	second := parseString(t, input)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("catalogues differ:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestLabelString(t *testing.T) {
	l := types.Label{Kind: types.KindRef, Text: "my-id", Source: "src/main.go", Line: 42}

	got := l.String()
	want := "[ref:my-id] @ src/main.go:42"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name    string
		cfg     types.ScanConfig
		wantErr bool
	}{
		{
			name: "defaults",
			cfg:  types.ScanConfig{},
		},
		{
			name: "valid override",
			cfg:  types.ScanConfig{TagPattern: `(?i)<tag\s+(\S+)>`},
		},
		{
			name:    "unparseable override",
			cfg:     types.ScanConfig{RefPattern: `[ref:(`},
			wantErr: true,
		},
		{
			name:    "no capture group",
			cfg:     types.ScanConfig{FilePattern: `\[file:\S+\]`},
			wantErr: true,
		},
		{
			name:    "too many capture groups",
			cfg:     types.ScanConfig{DirPattern: `\[(dir):(\S+)\]`},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.cfg)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPattern) {
					t.Fatalf("err = %v, want ErrInvalidPattern", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			for _, re := range []*regexp.Regexp{p.Tag, p.Ref, p.File, p.Dir} {
				if re == nil {
					t.Fatal("nil compiled pattern")
				}
			}
		})
	}
}

func TestCompileOverrideChangesMatching(t *testing.T) {
	p, err := Compile(types.ScanConfig{TagPattern: `(?i)<tag\s+(\S+)>`})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	cat := Parse(p, testSource, strings.NewReader("<tag anchor-1>\n[tag:ignored-by-override]\n[ref:anchor-1]"))

	if len(cat.Tags) != 1 || cat.Tags[0].Text != "anchor-1" {
		t.Errorf("tags = %+v, want single anchor-1", cat.Tags)
	}
	if len(cat.Refs) != 1 || cat.Refs[0].Line != 3 {
		t.Errorf("refs = %+v, want single ref on line 3", cat.Refs)
	}
}

func TestCatalogueMerge(t *testing.T) {
	a := parseString(t, "[tag:one]\n[ref:one]")
	b := Parse(DefaultPatterns(), "other.go", strings.NewReader("[tag:two]\n[file:a.txt]"))

	var merged types.Catalogue
	merged.Merge(a)
	merged.Merge(b)

	if len(merged.Tags) != 2 || merged.Tags[0].Text != "one" || merged.Tags[1].Text != "two" {
		t.Errorf("merged tags = %+v, want one then two", merged.Tags)
	}
	if len(merged.Refs) != 1 || len(merged.Files) != 1 {
		t.Errorf("merged refs/files = %d/%d, want 1/1", len(merged.Refs), len(merged.Files))
	}
	if merged.Tags[1].Source != "other.go" {
		t.Errorf("second tag source = %q, want other.go", merged.Tags[1].Source)
	}
}
