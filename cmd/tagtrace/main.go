// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the tagtrace CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the tagtrace CLI.
var rootCmd = &cobra.Command{
	Use:   "tagtrace",
	Short: "Check cross-references between traceability labels in source text",
	Long: `tagtrace extracts bracketed traceability labels ([tag:...], [ref:...],
[file:...], [dir:...]) from the files of a source tree and checks their
consistency: every ref must resolve to a unique tag, and every file or
dir label must name an existing path.

Use scan to list labels, check to validate them, index to maintain a
searchable label database, and watch to re-check continuously on change.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./tagtrace.yaml or ~/.config/tagtrace/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("tagtrace")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "tagtrace"))
		}
	}

	viper.SetEnvPrefix("TAGTRACE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
