// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/kinetics-engine/internal/archive"
	"github.com/pdiddy/kinetics-engine/internal/compound"
	"github.com/pdiddy/kinetics-engine/pkg/types"
)

var compoundCmd = &cobra.Command{
	Use:   "compound",
	Short: "Resolve species against the compound registry",
}

// --- fetch subcommand ---

var compoundFetchCmd = &cobra.Command{
	Use:   "fetch [name-or-cid]",
	Short: "Look up a compound by name or registry CID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := compoundConfig()
		client := compound.NewClient(cfg, cfg.APIKey)
		ctx := context.Background()

		cmp, err := lookupCompound(ctx, client, args[0])
		if err != nil {
			return err
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(cmp)
		}

		fmt.Printf("CID:              %d\n", cmp.CID)
		fmt.Printf("Name:             %s\n", cmp.Name)
		fmt.Printf("Formula:          %s\n", cmp.Formula)
		fmt.Printf("Molecular weight: %g\n", cmp.MolecularWeight)
		fmt.Printf("InChIKey:         %s\n", cmp.InChIKey)

		if withSynonyms, _ := cmd.Flags().GetBool("synonyms"); withSynonyms {
			syns, err := client.Synonyms(ctx, cmp.CID)
			if err != nil {
				return err
			}
			if len(syns) > 10 {
				syns = syns[:10]
			}
			fmt.Printf("Synonyms:         %s\n", strings.Join(syns, ", "))
		}
		return nil
	},
}

// --- annotate subcommand ---

var compoundAnnotateCmd = &cobra.Command{
	Use:   "annotate [archive]",
	Short: "Annotate an archive species with registry metadata",
	Long: `Annotate resolves a compound and writes its registry CID (and display
name, when the species has none) onto the named species in the archive.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		speciesID, _ := cmd.Flags().GetString("species")
		query, _ := cmd.Flags().GetString("compound")
		if speciesID == "" || query == "" {
			return fmt.Errorf("--species and --compound are required")
		}

		doc, err := archive.Load(args[0])
		if err != nil {
			return err
		}
		sp, ok := doc.SpeciesByID(speciesID)
		if !ok {
			return fmt.Errorf("species %s not found in archive", speciesID)
		}

		cfg := compoundConfig()
		client := compound.NewClient(cfg, cfg.APIKey)
		cmp, err := lookupCompound(context.Background(), client, query)
		if err != nil {
			return err
		}

		compound.Annotate(&sp, cmp)
		if err := doc.UpsertSpecies(sp); err != nil {
			return err
		}

		fmt.Printf("Annotated %s with CID %d (%s)\n", speciesID, cmp.CID, cmp.Name)
		return saveInPlace(doc, args[0])
	},
}

func lookupCompound(ctx context.Context, client *compound.Client, query string) (*types.Compound, error) {
	if cid, convErr := strconv.Atoi(query); convErr == nil {
		return client.LookupCID(ctx, cid)
	}
	return client.LookupName(ctx, query)
}

func init() {
	compoundFetchCmd.Flags().Bool("json", false, "output as JSON")
	compoundFetchCmd.Flags().Bool("synonyms", false, "include registry synonyms")

	compoundAnnotateCmd.Flags().String("species", "", "species ID in the archive (required)")
	compoundAnnotateCmd.Flags().String("compound", "", "compound name or CID to resolve (required)")

	compoundCmd.AddCommand(compoundFetchCmd)
	compoundCmd.AddCommand(compoundAnnotateCmd)
	rootCmd.AddCommand(compoundCmd)
}
