// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Command jsdeps checks goog.require declarations and generates bundle
// loader scripts for Closure-style JavaScript codebases.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:          "jsdeps",
		Short:        "Namespace dependency checker and bundle loader generator",
		Long:         "jsdeps reports missing and unnecessary goog.require calls and writes a self-loading bootstrap script for each bundle of a module manifest.",
		SilenceUsage: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().String("workdir", ".", "Base directory for relative paths")
	rootCmd.PersistentFlags().Int("concurrency", 0, "Parallel parsers and renderers (0 = number of CPUs)")
	rootCmd.PersistentFlags().String("cache-file", ".jsdeps-cache.json", "Parse cache location (empty disables caching)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	// Bind flags to viper.
	viper.BindPFlag("workdir", rootCmd.PersistentFlags().Lookup("workdir"))
	viper.BindPFlag("concurrency", rootCmd.PersistentFlags().Lookup("concurrency"))
	viper.BindPFlag("cache-file", rootCmd.PersistentFlags().Lookup("cache-file"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Env vars: JSDEPS_WORKDIR, JSDEPS_CACHE_FILE, etc.
	viper.SetEnvPrefix("JSDEPS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Config file.
	viper.SetConfigName(".jsdeps")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.ReadInConfig() // Ignore error; config file is optional.

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger returns a text logger on stderr, at debug level when verbose.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newVersionCmd creates the "version" command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print jsdeps version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "jsdeps %s\n", version)
		},
	}
}
