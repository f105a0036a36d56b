// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package walk

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/tagtrace/internal/label"
	"github.com/pdiddy/tagtrace/pkg/types"
)

// writeTree creates files under root from relative slash paths.
func writeTree(t *testing.T, root string, files map[string][]byte) {
	t.Helper()
	for rel, data := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, data, 0o644))
	}
}

func TestFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string][]byte{
		"a.go":           []byte("[tag:a]"),
		"docs/readme.md": []byte("[ref:a]"),
		".git/config":    []byte("[tag:hidden]"),
		"vendor/dep.go":  []byte("[tag:vendored]"),
		".tagtrace/x.db": []byte("x"),
		"build/out.log":  []byte("[tag:log]"),
		"build/more.go":  []byte("[tag:more]"),
	})

	tests := []struct {
		name string
		cfg  types.ScanConfig
		want []string
	}{
		{
			name: "default excludes prune dot-git vendor and index dir",
			cfg:  types.ScanConfig{Root: root},
			want: []string{"a.go", "build/more.go", "build/out.log", "docs/readme.md"},
		},
		{
			name: "include filter",
			cfg:  types.ScanConfig{Root: root, Include: []string{"**/*.md"}},
			want: []string{"docs/readme.md"},
		},
		{
			name: "exclude glob drops files",
			cfg:  types.ScanConfig{Root: root, Exclude: []string{"**/*.log"}},
			want: []string{"a.go", "build/more.go", "docs/readme.md"},
		},
		{
			name: "exclude glob prunes a directory",
			cfg:  types.ScanConfig{Root: root, Exclude: []string{"build"}},
			want: []string{"a.go", "docs/readme.md"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Files(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilesRootMustBeDirectory(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := Files(types.ScanConfig{Root: file})
	assert.ErrorContains(t, err, "not a directory")

	_, err = Files(types.ScanConfig{Root: filepath.Join(root, "absent")})
	assert.Error(t, err)
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string][]byte{
		"a.go":           []byte("// [tag:alpha]\n// [file:docs/readme.md]"),
		"docs/readme.md": []byte("[ref:alpha]"),
		"blob.bin":       append([]byte("[tag:binary]"), 0x00, 0x01, 0x02),
	})

	var warnings bytes.Buffer
	res, err := Scan(types.ScanConfig{Root: root}, label.DefaultPatterns(), &warnings)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Scanned)
	assert.Equal(t, 1, res.Skipped, "binary file should be skipped")
	assert.Empty(t, warnings.String())

	cat := res.Catalogue
	require.Len(t, cat.Tags, 1)
	assert.Equal(t, types.Label{Kind: types.KindTag, Text: "alpha", Source: "a.go", Line: 1}, cat.Tags[0])
	require.Len(t, cat.Refs, 1)
	assert.Equal(t, "docs/readme.md", cat.Refs[0].Source)
	require.Len(t, cat.Files, 1)
	assert.Equal(t, 2, cat.Files[0].Line)
}

func TestScanSourcesAreRootRelativeSlashPaths(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string][]byte{
		"nested/deep/x.txt": []byte("[tag:deep]"),
	})

	res, err := Scan(types.ScanConfig{Root: root}, label.DefaultPatterns(), os.Stderr)
	require.NoError(t, err)
	require.Len(t, res.Catalogue.Tags, 1)
	assert.Equal(t, "nested/deep/x.txt", res.Catalogue.Tags[0].Source)
}

func TestIsBinary(t *testing.T) {
	assert.False(t, isBinary([]byte("plain text\nwith lines\n")))
	assert.True(t, isBinary([]byte{'a', 0x00, 'b'}))
	assert.False(t, isBinary(nil))
}
