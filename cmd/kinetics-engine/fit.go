// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/kinetics-engine/internal/archive"
	"github.com/pdiddy/kinetics-engine/internal/fit"
	"github.com/pdiddy/kinetics-engine/internal/results"
)

var fitCmd = &cobra.Command{
	Use:   "fit [archive] [initials]",
	Short: "Run a fitting engine against an archive",
	Long: `Fit hands an archive and its initial-value file to an external fitting
engine (copasise or pscfit), reads the engine's report, and records the
run in the results store. With --write-document the fitted values are
substituted back into a copy of the archive.

The engine is auto-detected unless --engine names one explicitly.`,
	Args: cobra.ExactArgs(2),
	RunE: runFit,
}

func runFit(cmd *cobra.Command, args []string) error {
	cfg := fitConfig()
	if name, _ := cmd.Flags().GetString("engine"); name != "" {
		cfg.Engine = name
	}
	if method, _ := cmd.Flags().GetString("method"); method != "" {
		cfg.Method = method
	}

	engine, err := fit.DetectEngine(cfg.Engine, os.Stderr)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Using engine: %s\n", engine.Name())

	session, err := fit.NewSession(engine, args[0], args[1], cfg.WorkDir)
	if err != nil {
		return err
	}

	ctx := context.Background()
	result, err := session.Optimize(ctx, cfg.Method)
	if err != nil {
		return err
	}

	fmt.Printf("Objective: %g\n\n", result.Objective)
	fmt.Printf("%-10s  %-10s  %12s  %10s  %s\n", "Reaction", "Parameter", "Value", "StdDev", "Unit")
	fmt.Println(strings.Repeat("-", 56))
	for _, e := range result.Estimates {
		fmt.Printf("%-10s  %-10s  %12.6g  %10.3g  %s\n",
			e.ReactionID, e.Parameter, e.Value, e.StdDev, e.Unit)
	}

	if noRecord, _ := cmd.Flags().GetBool("no-record"); !noRecord {
		store, err := results.NewStore(resultsConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		runID, err := store.Record(ctx, result)
		if err != nil {
			return err
		}
		fmt.Printf("\nRecorded run %s\n", runID)
	}

	if writeDoc, _ := cmd.Flags().GetBool("write-document"); writeDoc {
		doc, err := session.WriteDocument()
		if err != nil {
			return err
		}
		fitted := doc.Name() + "-fitted"
		doc.SetName(fitted)
		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			dir = archivesDir()
		}
		path, err := archive.Save(doc, dir, fitted)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
	}
	return nil
}

func init() {
	fitCmd.Flags().String("engine", "", "fitting engine: copasise or pscfit (default: auto-detect)")
	fitCmd.Flags().String("method", "", "optimization method (default: fit.method from config)")
	fitCmd.Flags().Bool("no-record", false, "skip recording the run in the results store")
	fitCmd.Flags().Bool("write-document", false, "write a fitted copy of the archive")
	fitCmd.Flags().String("dir", "", "output directory for the fitted archive")

	rootCmd.AddCommand(fitCmd)
}
