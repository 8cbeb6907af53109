// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petar-djukic/jsdeps/internal/requires"
	"github.com/petar-djukic/jsdeps/pkg/jsdeps"
)

// newCheckCmd creates the "check" command.
func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Report missing and unnecessary requires",
		Long:  "Check parses the given files or directories (default: the work directory) and lists, per file, the namespaces it uses without requiring them and the requires it never uses. Exits non-zero when anything is flagged.",
		RunE:  runCheck,
	}

	cmd.Flags().StringSlice("extern", nil, "Files or directories whose provides are known but not checked")
	cmd.Flags().StringSlice("exclude", nil, "Namespaces never offered as candidates")
	cmd.Flags().Bool("changed", false, "Check only files git reports as changed")
	cmd.Flags().Bool("print", true, "Print the report to stdout")

	viper.BindPFlag("extern", cmd.Flags().Lookup("extern"))
	viper.BindPFlag("exclude", cmd.Flags().Lookup("exclude"))

	return cmd
}

// runCheck runs the require check and prints the report to stdout.
func runCheck(cmd *cobra.Command, args []string) error {
	changed, _ := cmd.Flags().GetBool("changed")
	printReport, _ := cmd.Flags().GetBool("print")

	cfg := jsdeps.CheckConfig{
		WorkDir:     viper.GetString("workdir"),
		JSPaths:     args,
		ExternPaths: viper.GetStringSlice("extern"),
		Exclude:     viper.GetStringSlice("exclude"),
		ChangedOnly: changed,
		CacheFile:   viper.GetString("cache-file"),
		Concurrency: viper.GetInt("concurrency"),
		Logger:      newLogger(),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	result, err := jsdeps.Check(ctx, cfg)
	if err != nil && !errors.Is(err, jsdeps.ErrFindings) {
		return fmt.Errorf("check failed: %w", err)
	}

	if printReport {
		if werr := requires.WriteReport(cmd.OutOrStdout(), result); werr != nil {
			return fmt.Errorf("writing report: %w", werr)
		}
	}
	return err
}
