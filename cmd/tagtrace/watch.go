package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/tagtrace/internal/check"
	"github.com/pdiddy/tagtrace/internal/label"
	"github.com/pdiddy/tagtrace/internal/watch"
	"github.com/pdiddy/tagtrace/pkg/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Re-check label cross-references whenever files change",
	Long: `Watch runs an initial check of the tree rooted at path (default ".")
and then re-checks after every burst of file changes, printing findings
as they appear. Stop with Ctrl-C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := scanConfigFromCmd(cmd, args)

	patterns, err := label.Compile(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "watching %s\n", cfg.Root)

	return watch.Run(ctx, cfg, patterns, os.Stderr, func(cat types.Catalogue, findings []check.Finding) {
		if len(findings) == 0 {
			fmt.Printf("ok: %d labels\n", cat.Total())
			return
		}
		for _, f := range findings {
			fmt.Println(f)
		}
		fmt.Printf("%d finding(s)\n", len(findings))
	})
}

func init() {
	addScanFlags(watchCmd)

	rootCmd.AddCommand(watchCmd)
}
