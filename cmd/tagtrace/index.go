// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/tagtrace/internal/index"
	"github.com/pdiddy/tagtrace/internal/label"
	"github.com/pdiddy/tagtrace/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Maintain and query the label index (build, query, export)",
	Long: `Index manages a local SQLite database of extracted labels with
full-text search over label text. Use subcommands to build the index
from a tree, query it, or export it.`,
}

// --- build subcommand ---

var indexBuildCmd = &cobra.Command{
	Use:   "build [path]",
	Short: "Scan a tree and ingest its labels into the index",
	Long: `Build walks the tree rooted at path (default ".") and ingests every
extracted label into the index database. Unchanged files are skipped on
subsequent runs; files removed from the tree are dropped from the index.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndexBuild,
}

func runIndexBuild(cmd *cobra.Command, args []string) error {
	scanCfg := scanConfigFromCmd(cmd, args)

	patterns, err := label.Compile(scanCfg)
	if err != nil {
		return err
	}

	store, err := index.NewStore(indexConfigFromCmd(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Build(context.Background(), scanCfg, patterns, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d file(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- query subcommand ---

var indexQueryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Query the label index with full-text search and filters",
	Long: `Query searches the index using FTS5 full-text search over label text,
structured filters (kind, source), or a combination of both.`,
	RunE: runIndexQuery,
}

func runIndexQuery(cmd *cobra.Command, args []string) error {
	store, err := index.NewStore(indexConfigFromCmd(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide search text, --kind, or --source")
	}

	results, err := store.Query(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatQueryOutput(results, jsonOutput)
}

func formatQueryOutput(results []types.Label, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-6s  %-40s  %-40s  %s\n", "Kind", "Label", "Source", "Line")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 96))

	for _, l := range results {
		fmt.Fprintf(os.Stdout, "%-6s  %-40s  %-40s  %d\n",
			l.Kind, truncate(l.Text, 40), truncate(l.Source, 40), l.Line)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// truncate shortens s to at most width runes, never splitting a rune.
func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

// --- export subcommand ---

var indexExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the label index to YAML or JSON",
	Long: `Export writes the full index as a classified catalogue to
export.yaml or export.json in the index directory.`,
	RunE: runIndexExport,
}

func runIndexExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := index.NewStore(indexConfigFromCmd(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(context.Background())
	case "json":
		path, err = store.ExportJSON(context.Background())
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}

	fmt.Println("Exported to", path)
	return nil
}

// --- shared helpers ---

func indexConfigFromCmd(cmd *cobra.Command) types.IndexConfig {
	indexDir := stringSetting(cmd, "index-dir", "index_dir")
	maxResults, _ := cmd.Flags().GetInt("max-results")

	return types.IndexConfig{
		IndexDir:   indexDir,
		MaxResults: maxResults,
	}
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) index.QueryOptions {
	queryText := strings.Join(args, " ")
	kind, _ := cmd.Flags().GetString("kind")
	source, _ := cmd.Flags().GetString("source")
	limit, _ := cmd.Flags().GetInt("limit")

	return index.QueryOptions{
		Query:      queryText,
		Kind:       types.Kind(kind),
		Source:     source,
		MaxResults: limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	indexCmd.PersistentFlags().String("index-dir", ".tagtrace", "directory holding the index database")
	indexCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")

	// Build flags.
	addScanFlags(indexBuildCmd)

	// Query flags.
	indexQueryCmd.Flags().String("kind", "", "filter by label kind: tag, ref, file, dir")
	indexQueryCmd.Flags().String("source", "", "filter by source path")
	indexQueryCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	indexQueryCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	indexExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	// Wire subcommands.
	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexQueryCmd)
	indexCmd.AddCommand(indexExportCmd)

	rootCmd.AddCommand(indexCmd)
}
