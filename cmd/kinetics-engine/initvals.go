// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/kinetics-engine/internal/archive"
	"github.com/pdiddy/kinetics-engine/internal/initvals"
)

var initvalsCmd = &cobra.Command{
	Use:   "initvals",
	Short: "Generate and apply initial-value files for fitting",
	Long: `Initvals works with the TOML initial-value files that fitting engines
read. Generate scans an archive's fittable parameters and writes one
section per reaction plus a global section; apply writes edited values
back into the archive.`,
}

var initvalsGenerateCmd = &cobra.Command{
	Use:   "generate [archive]",
	Short: "Write an initial-value TOML file for an archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := archive.Load(args[0])
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = strings.TrimSuffix(args[0], archive.Ext) + "-init.toml"
		}

		values := initvals.Generate(doc)
		if err := initvals.Write(out, values); err != nil {
			return err
		}
		fmt.Printf("Wrote %s (%d sections)\n", out, len(values))
		return nil
	},
}

var initvalsApplyCmd = &cobra.Command{
	Use:   "apply [archive] [toml]",
	Short: "Apply an initial-value file back to an archive",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := archive.Load(args[0])
		if err != nil {
			return err
		}
		values, err := initvals.Read(args[1])
		if err != nil {
			return err
		}
		if err := initvals.Apply(doc, values); err != nil {
			return err
		}
		return saveInPlace(doc, args[0])
	},
}

func init() {
	initvalsGenerateCmd.Flags().String("out", "", "output path (default: <archive>-init.toml)")

	initvalsCmd.AddCommand(initvalsGenerateCmd)
	initvalsCmd.AddCommand(initvalsApplyCmd)
	rootCmd.AddCommand(initvalsCmd)
}
