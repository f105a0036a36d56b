package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/tagtrace/pkg/types"
)

// scanConfigFromCmd assembles a ScanConfig from the positional root
// argument and the scan flags. An explicitly set flag wins over the
// config file and environment; otherwise viper's value is used when
// present, falling back to the flag default.
func scanConfigFromCmd(cmd *cobra.Command, args []string) types.ScanConfig {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	return types.ScanConfig{
		Root:        root,
		Include:     sliceSetting(cmd, "include", "include"),
		Exclude:     sliceSetting(cmd, "exclude", "exclude"),
		TagPattern:  stringSetting(cmd, "tag-pattern", "tag_pattern"),
		RefPattern:  stringSetting(cmd, "ref-pattern", "ref_pattern"),
		FilePattern: stringSetting(cmd, "file-pattern", "file_pattern"),
		DirPattern:  stringSetting(cmd, "dir-pattern", "dir_pattern"),
	}
}

// addScanFlags registers the flags shared by every command that walks
// the tree.
func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("include", nil, "only scan files matching these glob patterns")
	cmd.Flags().StringSlice("exclude", nil, "skip files and directories matching these glob patterns")
	cmd.Flags().String("tag-pattern", "", "override the tag marker regular expression")
	cmd.Flags().String("ref-pattern", "", "override the ref marker regular expression")
	cmd.Flags().String("file-pattern", "", "override the file marker regular expression")
	cmd.Flags().String("dir-pattern", "", "override the dir marker regular expression")
}

func stringSetting(cmd *cobra.Command, flag, key string) string {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetString(flag)
		return v
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	v, _ := cmd.Flags().GetString(flag)
	return v
}

func sliceSetting(cmd *cobra.Command, flag, key string) []string {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetStringSlice(flag)
		return v
	}
	if viper.IsSet(key) {
		return viper.GetStringSlice(key)
	}
	v, _ := cmd.Flags().GetStringSlice(flag)
	return v
}
