// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/kinetics-engine/internal/archive"
	"github.com/pdiddy/kinetics-engine/internal/document"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Create and inspect experiment documents (.omex archives)",
	Long: `Document manages experiment archives. An archive holds the species,
reactions, bound rate-law models, global parameters, and measured time
courses for one experiment.`,
}

// --- init subcommand ---

var documentInitCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Create an empty experiment archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentInit,
}

func runDocumentInit(cmd *cobra.Command, args []string) error {
	name := args[0]
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = archivesDir()
	}

	doc := document.New(name)
	path, err := archive.Save(doc, dir, name)
	if err != nil {
		return err
	}
	fmt.Printf("Created %s\n", path)
	return nil
}

// --- show subcommand ---

var documentShowCmd = &cobra.Command{
	Use:   "show [archive]",
	Short: "Print the contents of an experiment archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentShow,
}

func runDocumentShow(cmd *cobra.Command, args []string) error {
	doc, err := archive.Load(args[0])
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return printDocumentJSON(doc)
	}

	fmt.Printf("Document: %s\n\n", doc.Name())

	species := doc.Species()
	fmt.Printf("Species (%d):\n", len(species))
	for _, s := range species {
		line := fmt.Sprintf("  %-12s %s", s.ID, s.Name)
		if s.InitConc != nil {
			line += fmt.Sprintf("  init=%g %s", *s.InitConc, s.Unit)
		}
		if s.CompoundID != "" {
			line += "  cid=" + s.CompoundID
		}
		fmt.Println(line)
	}

	reactions := doc.Reactions()
	fmt.Printf("\nReactions (%d):\n", len(reactions))
	for _, r := range reactions {
		fmt.Printf("  %-12s %s\n", r.ID, r.Name)
		if r.Model != nil {
			fmt.Printf("    model: %s\n", r.Model.Template)
			fmt.Printf("    rate:  %s\n", r.Model.Equation)
		} else {
			fmt.Println("    model: (none)")
		}
	}

	globals := doc.GlobalParameters()
	if len(globals) > 0 {
		fmt.Printf("\nGlobal parameters (%d):\n", len(globals))
		for _, g := range globals {
			line := fmt.Sprintf("  %-12s unit=%s", g.Name, g.Unit)
			if g.Value != nil {
				line += fmt.Sprintf("  value=%g", *g.Value)
			}
			if g.Constant {
				line += "  constant"
			}
			fmt.Println(line)
		}
	}

	measurements := doc.Measurements()
	fmt.Printf("\nMeasurements (%d):\n", len(measurements))
	for _, m := range measurements {
		ids := make([]string, len(m.Series))
		for i, ts := range m.Series {
			ids[i] = ts.SpeciesID
		}
		fmt.Printf("  %-12s %s  [%s]\n", m.ID, m.Name, strings.Join(ids, ", "))
	}
	return nil
}

func printDocumentJSON(doc *document.Document) error {
	out := struct {
		Name         string                     `json:"name"`
		Species      []document.Species         `json:"species"`
		Reactions    []document.Reaction        `json:"reactions"`
		Globals      []document.GlobalParameter `json:"global_parameters,omitempty"`
		Measurements []document.Measurement     `json:"measurements,omitempty"`
	}{
		Name:         doc.Name(),
		Species:      doc.Species(),
		Reactions:    doc.Reactions(),
		Globals:      doc.GlobalParameters(),
		Measurements: doc.Measurements(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// --- check subcommand ---

var documentCheckCmd = &cobra.Command{
	Use:   "check [archive]",
	Short: "Run the consistency check on an archive",
	Long: `Check verifies that every species referenced by a bound model exists
and that shared parameter symbols agree on units and constancy across
reactions and global parameters.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentCheck,
}

func runDocumentCheck(cmd *cobra.Command, args []string) error {
	doc, err := archive.Load(args[0])
	if err != nil {
		return err
	}
	if err := document.Check(doc); err != nil {
		return err
	}
	fmt.Println("OK")
	return nil
}

// --- species subcommand ---

var documentSpeciesCmd = &cobra.Command{
	Use:   "species [archive]",
	Short: "Add or update a species in an archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentSpecies,
}

func runDocumentSpecies(cmd *cobra.Command, args []string) error {
	archivePath := args[0]
	doc, err := archive.Load(archivePath)
	if err != nil {
		return err
	}

	id, _ := cmd.Flags().GetString("id")
	if id == "" {
		return fmt.Errorf("--id is required")
	}
	sp := document.Species{ID: id}
	sp.Name, _ = cmd.Flags().GetString("name")
	sp.Unit, _ = cmd.Flags().GetString("unit")
	sp.Constant, _ = cmd.Flags().GetBool("constant")
	if cmd.Flags().Changed("conc") {
		conc, _ := cmd.Flags().GetFloat64("conc")
		sp.InitConc = &conc
	}

	if err := doc.UpsertSpecies(sp); err != nil {
		return err
	}
	return saveInPlace(doc, archivePath)
}

// saveInPlace rewrites an archive at its current location.
func saveInPlace(doc *document.Document, archivePath string) error {
	dir := filepath.Dir(archivePath)
	name := strings.TrimSuffix(filepath.Base(archivePath), archive.Ext)
	path, err := archive.Save(doc, dir, name)
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func init() {
	documentInitCmd.Flags().String("dir", "", "output directory (default: archives.dir from config)")
	documentShowCmd.Flags().Bool("json", false, "output as JSON")

	documentSpeciesCmd.Flags().String("id", "", "species identifier (required)")
	documentSpeciesCmd.Flags().String("name", "", "display name")
	documentSpeciesCmd.Flags().Float64("conc", 0, "initial concentration")
	documentSpeciesCmd.Flags().String("unit", "", "concentration unit")
	documentSpeciesCmd.Flags().Bool("constant", false, "species concentration is held constant")

	documentCmd.AddCommand(documentInitCmd)
	documentCmd.AddCommand(documentShowCmd)
	documentCmd.AddCommand(documentCheckCmd)
	documentCmd.AddCommand(documentSpeciesCmd)
	rootCmd.AddCommand(documentCmd)
}
