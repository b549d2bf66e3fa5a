// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/kinetics-engine/internal/results"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Query, compare, export, and chart recorded fit runs",
}

func openStore() (*results.Store, error) {
	return results.NewStore(resultsConfig())
}

func queryOptsFromFlags(cmd *cobra.Command) results.QueryOptions {
	var opts results.QueryOptions
	opts.Document, _ = cmd.Flags().GetString("document")
	opts.Engine, _ = cmd.Flags().GetString("engine")
	opts.Method, _ = cmd.Flags().GetString("method")
	opts.Parameter, _ = cmd.Flags().GetString("parameter")
	opts.MaxResults, _ = cmd.Flags().GetInt("limit")
	return opts
}

func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("document", "", "filter by document name")
	cmd.Flags().String("engine", "", "filter by engine")
	cmd.Flags().String("method", "", "filter by method")
	cmd.Flags().String("parameter", "", "filter by estimated parameter")
	cmd.Flags().Int("limit", 0, "maximum runs to return")
}

// --- list subcommand ---

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded fit runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.Retrieve(context.Background(), queryOptsFromFlags(cmd))
		if err != nil {
			return err
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(runs)
		}

		if len(runs) == 0 {
			fmt.Println("No recorded runs.")
			return nil
		}

		fmt.Printf("%-36s  %-20s  %-8s  %-22s  %12s  %s\n",
			"Run", "Document", "Engine", "Method", "Objective", "When")
		fmt.Println(strings.Repeat("-", 116))
		for _, r := range runs {
			fmt.Printf("%-36s  %-20s  %-8s  %-22s  %12.6g  %s\n",
				r.RunID, r.Document, r.Engine, r.Method, r.Objective,
				r.Timestamp.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

// --- compare subcommand ---

var resultsCompareCmd = &cobra.Command{
	Use:   "compare [document]",
	Short: "Pivot a document's estimates into a parameter table",
	Long: `Compare tabulates the latest parameter estimates for one document, one
column per engine/method combination. Differences between columns show how
much the toolchains disagree on the same data.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		cmp, err := store.Compare(context.Background(), args[0])
		if err != nil {
			return err
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(cmp)
		}

		fmt.Printf("Document: %s\n\n", cmp.Document)
		fmt.Printf("%-10s  %-10s  %-10s", "Reaction", "Parameter", "Unit")
		for _, col := range cmp.Columns {
			fmt.Printf("  %24s", col)
		}
		fmt.Println()
		fmt.Println(strings.Repeat("-", 36+26*len(cmp.Columns)))
		for _, row := range cmp.Rows {
			fmt.Printf("%-10s  %-10s  %-10s", row.ReactionID, row.Parameter, row.Unit)
			for _, col := range cmp.Columns {
				if v, ok := row.Values[col]; ok {
					fmt.Printf("  %24.6g", v)
				} else {
					fmt.Printf("  %24s", "-")
				}
			}
			fmt.Println()
		}
		return nil
	},
}

// --- export subcommand ---

var resultsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export matching runs to a YAML or JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		opts := queryOptsFromFlags(cmd)
		format, _ := cmd.Flags().GetString("format")

		var path string
		switch format {
		case "yaml", "":
			path, err = store.ExportYAML(context.Background(), opts)
		case "json":
			path, err = store.ExportJSON(context.Background(), opts)
		default:
			return fmt.Errorf("unknown format %s: use yaml or json", format)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", path)
		return nil
	},
}

// --- chart subcommand ---

var resultsChartCmd = &cobra.Command{
	Use:   "chart [document]",
	Short: "Render a document's estimate comparison as a PNG bar chart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		path, err := store.Chart(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

func init() {
	addQueryFlags(resultsListCmd)
	resultsListCmd.Flags().Bool("json", false, "output as JSON")
	resultsCompareCmd.Flags().Bool("json", false, "output as JSON")
	addQueryFlags(resultsExportCmd)
	resultsExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	resultsCmd.AddCommand(resultsListCmd)
	resultsCmd.AddCommand(resultsCompareCmd)
	resultsCmd.AddCommand(resultsExportCmd)
	resultsCmd.AddCommand(resultsChartCmd)
	rootCmd.AddCommand(resultsCmd)
}
