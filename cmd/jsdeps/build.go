// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/petar-djukic/jsdeps/pkg/jsdeps"
	"github.com/petar-djukic/jsdeps/pkg/types"
)

// newBuildCmd creates the "build" command.
func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [roots...]",
		Short: "Write a loader script for every bundle of a module manifest",
		Long:  "Build resolves the manifest's bundles against the source roots (default: the work directory) and writes one bootstrap script per bundle, parents before children.",
		RunE:  runBuild,
	}

	cmd.Flags().StringP("manifest", "m", "", "Module manifest (YAML or JSON)")
	cmd.Flags().String("strategy", "", "Override the manifest load strategy (sync or async)")
	cmd.Flags().String("output-prefix", "", "Override the manifest output path prefix")
	cmd.Flags().StringArrayP("define", "D", nil, "Define NAME=VALUE for the root loader (repeatable)")
	cmd.Flags().Bool("dry-run", false, "Print a diff of each loader instead of writing it")

	viper.BindPFlag("manifest", cmd.Flags().Lookup("manifest"))
	viper.BindPFlag("strategy", cmd.Flags().Lookup("strategy"))

	return cmd
}

// runBuild generates the loaders.
func runBuild(cmd *cobra.Command, args []string) error {
	prefix, _ := cmd.Flags().GetString("output-prefix")
	rawDefines, _ := cmd.Flags().GetStringArray("define")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	defines, err := parseDefines(rawDefines)
	if err != nil {
		return err
	}

	cfg := jsdeps.BuildConfig{
		WorkDir:          viper.GetString("workdir"),
		Manifest:         viper.GetString("manifest"),
		Roots:            args,
		Strategy:         types.Strategy(viper.GetString("strategy")),
		OutputPathPrefix: prefix,
		Defines:          defines,
		DryRun:           dryRun,
		DiffOut:          cmd.OutOrStdout(),
		CacheFile:        viper.GetString("cache-file"),
		Concurrency:      viper.GetInt("concurrency"),
		Logger:           newLogger(),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := jsdeps.Build(ctx, cfg); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	return nil
}

// parseDefines turns NAME=VALUE pairs into a defines map. Values are read
// as YAML scalars, so true, 42, and 1.5 keep their types and anything else
// is a string.
func parseDefines(pairs []string) (map[string]any, error) {
	defines := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("define %q: want NAME=VALUE", pair)
		}

		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		switch value.(type) {
		case bool, int, float64, string:
		default:
			value = raw
		}
		defines[name] = value
	}
	return defines, nil
}
