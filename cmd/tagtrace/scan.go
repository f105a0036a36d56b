package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/tagtrace/internal/label"
	"github.com/pdiddy/tagtrace/internal/walk"
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Extract traceability labels from a source tree",
	Long: `Scan walks the tree rooted at path (default ".") and prints every
traceability label it finds, in discovery order, without judging
consistency. Use --format yaml or --format json for machine-readable
output.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg := scanConfigFromCmd(cmd, args)

	patterns, err := label.Compile(cfg)
	if err != nil {
		return err
	}

	res, err := walk.Scan(cfg, patterns, os.Stderr)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "text", "":
		for _, l := range res.Catalogue.All() {
			fmt.Println(l)
		}
		fmt.Printf("\n%d labels in %d files (%d files skipped)\n",
			res.Catalogue.Total(), res.Scanned, res.Skipped)
		if showSkipped, _ := cmd.Flags().GetBool("skipped"); showSkipped {
			fmt.Printf("%d undecodable lines skipped\n", res.Catalogue.SkippedLines)
		}
	case "yaml":
		data, err := yaml.Marshal(res.Catalogue)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		os.Stdout.Write(data)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Catalogue)
	default:
		return fmt.Errorf("unsupported format %q: use text, yaml, or json", format)
	}

	return nil
}

func init() {
	addScanFlags(scanCmd)
	scanCmd.Flags().String("format", "text", "output format: text, yaml, or json")
	scanCmd.Flags().Bool("skipped", false, "also report the count of undecodable lines")

	rootCmd.AddCommand(scanCmd)
}
