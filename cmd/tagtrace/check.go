package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/tagtrace/internal/check"
	"github.com/pdiddy/tagtrace/internal/label"
	"github.com/pdiddy/tagtrace/internal/walk"
)

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Validate label cross-references in a source tree",
	Long: `Check extracts every traceability label under path (default ".") and
validates consistency: duplicated tags, refs with no matching tag, and
file/dir labels naming paths that do not exist. It exits non-zero when
any finding is reported.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := scanConfigFromCmd(cmd, args)

	patterns, err := label.Compile(cfg)
	if err != nil {
		return err
	}

	res, err := walk.Scan(cfg, patterns, os.Stderr)
	if err != nil {
		return err
	}

	findings := check.Run(res.Catalogue, cfg.Root)
	for _, f := range findings {
		fmt.Println(f)
	}

	if len(findings) > 0 {
		return fmt.Errorf("%d finding(s)", len(findings))
	}

	fmt.Printf("ok: %d labels in %d files\n", res.Catalogue.Total(), res.Scanned)
	return nil
}

func init() {
	addScanFlags(checkCmd)

	rootCmd.AddCommand(checkCmd)
}
