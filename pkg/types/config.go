package types

// ScanConfig holds settings for tree traversal and label extraction.
type ScanConfig struct {
	// Root is the directory to scan. It must exist and be a directory.
	Root string `json:"root" yaml:"root"`

	// Include restricts scanning to files matching at least one of these
	// glob patterns (doublestar syntax, relative to Root). Empty means
	// all files.
	Include []string `json:"include" yaml:"include"`

	// Exclude skips files and directories matching any of these glob
	// patterns. Applied on top of the built-in excludes (.git, vendor,
	// node_modules, the index directory).
	Exclude []string `json:"exclude" yaml:"exclude"`

	// TagPattern, RefPattern, FilePattern, and DirPattern optionally
	// override the marker regular expressions. Each must contain exactly
	// one capture group for the label text. Empty uses the default.
	TagPattern  string `json:"tag_pattern,omitempty" yaml:"tag_pattern,omitempty"`
	RefPattern  string `json:"ref_pattern,omitempty" yaml:"ref_pattern,omitempty"`
	FilePattern string `json:"file_pattern,omitempty" yaml:"file_pattern,omitempty"`
	DirPattern  string `json:"dir_pattern,omitempty" yaml:"dir_pattern,omitempty"`
}

// IndexConfig holds settings for the label index store.
type IndexConfig struct {
	// IndexDir is the directory holding the SQLite database
	// (default ".tagtrace").
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
