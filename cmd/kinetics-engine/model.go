// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/kinetics-engine/internal/archive"
	"github.com/pdiddy/kinetics-engine/internal/ratelaw"
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "List rate-law templates and bind them to reactions",
	Long: `Model works with the rate-law template library. Templates are symbolic
equations over free variables and declared parameters; binding a template
to a reaction substitutes concrete species identifiers and produces the
reaction's rate equation.`,
}

// --- list subcommand ---

var modelListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the built-in rate-law templates",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%-28s %s\n", "Template", "Equation")
		fmt.Println(strings.Repeat("-", 80))
		for _, t := range ratelaw.Library() {
			fmt.Printf("%-28s %s\n", t.Name(), t.Equation())
		}
	},
}

// --- show subcommand ---

var modelShowCmd = &cobra.Command{
	Use:   "show [template]",
	Short: "Show a template's parameters and free variables",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, ok := ratelaw.Lookup(args[0])
		if !ok {
			return fmt.Errorf("unknown template %s", args[0])
		}

		fmt.Printf("Template: %s\n", t.Name())
		fmt.Printf("Equation: %s\n", t.Equation())
		fmt.Printf("Combine:  %s\n\n", t.Rule())

		fmt.Println("Parameters:")
		for _, p := range t.Parameters() {
			line := fmt.Sprintf("  %-10s unit=%s", p.Name, p.Unit)
			if p.Value != nil {
				line += fmt.Sprintf("  default=%g", *p.Value)
			}
			if p.Constant {
				line += "  constant"
			}
			fmt.Println(line)
		}

		fmt.Println("\nFree variables:")
		for _, v := range t.FreeVariables() {
			fmt.Printf("  %-10s occurrences=%d\n", v, t.Occurrences(v))
		}
		return nil
	},
}

// --- bind subcommand ---

var modelBindCmd = &cobra.Command{
	Use:   "bind [archive]",
	Short: "Bind a rate-law template to a reaction",
	Long: `Bind substitutes species identifiers for a template's free variables and
attaches the resulting model to a reaction. Each --bind takes
variable=speciesID, or variable=id1,id2,... to bind a species list. Use
--map to rename a template parameter (e.g. --map K_m=K_m1) and --rule to
override how species lists combine (sum, product, or positional).

Example:
  kinetics-engine model bind archives/cex.omex --reaction r1 \
    --template michaelis-menten --bind substrate=CEX --map v_max=v1`,
	Args: cobra.ExactArgs(1),
	RunE: runModelBind,
}

func runModelBind(cmd *cobra.Command, args []string) error {
	archivePath := args[0]
	reactionID, _ := cmd.Flags().GetString("reaction")
	templateName, _ := cmd.Flags().GetString("template")
	if reactionID == "" || templateName == "" {
		return fmt.Errorf("--reaction and --template are required")
	}

	t, ok := ratelaw.Lookup(templateName)
	if !ok {
		return fmt.Errorf("unknown template %s", templateName)
	}

	// A rule override rebuilds the template with the requested combine
	// rule; the library defaults stay untouched.
	if rule, _ := cmd.Flags().GetString("rule"); rule != "" {
		var err error
		t, err = ratelaw.New(t.Name(), t.Equation(), t.Parameters(),
			ratelaw.WithCombineRule(ratelaw.CombineRule(rule)))
		if err != nil {
			return err
		}
	}

	bindFlags, _ := cmd.Flags().GetStringSlice("bind")
	bindings := make(map[string]ratelaw.Assignment, len(bindFlags))
	for _, raw := range bindFlags {
		variable, value, ok := strings.Cut(raw, "=")
		if !ok {
			return fmt.Errorf("invalid --bind %q: expected variable=speciesID", raw)
		}
		ids := strings.Split(value, ",")
		if len(ids) == 1 {
			bindings[variable] = ratelaw.ToSpecies(ids[0])
		} else {
			bindings[variable] = ratelaw.ToSpeciesList(ids...)
		}
	}

	mapFlags, _ := cmd.Flags().GetStringSlice("map")
	var mapping map[string]string
	if len(mapFlags) > 0 {
		mapping = make(map[string]string, len(mapFlags))
		for _, raw := range mapFlags {
			from, to, ok := strings.Cut(raw, "=")
			if !ok {
				return fmt.Errorf("invalid --map %q: expected parameter=symbol", raw)
			}
			mapping[from] = to
		}
	}

	model, err := t.Bind(bindings, mapping)
	if err != nil {
		return err
	}

	doc, err := archive.Load(archivePath)
	if err != nil {
		return err
	}
	if err := doc.SetModel(reactionID, model); err != nil {
		return err
	}

	fmt.Printf("Bound %s to %s\n", templateName, reactionID)
	fmt.Printf("Rate equation: %s\n", model.Equation)
	return saveInPlace(doc, archivePath)
}

func init() {
	modelBindCmd.Flags().String("reaction", "", "reaction ID to bind the model to (required)")
	modelBindCmd.Flags().String("template", "", "rate-law template name (required)")
	modelBindCmd.Flags().StringSlice("bind", nil, "variable=speciesID[,speciesID...] (repeatable)")
	modelBindCmd.Flags().StringSlice("map", nil, "parameter=symbol rename (repeatable)")
	modelBindCmd.Flags().String("rule", "", "combine rule for species lists: sum, product, or positional")

	modelCmd.AddCommand(modelListCmd)
	modelCmd.AddCommand(modelShowCmd)
	modelCmd.AddCommand(modelBindCmd)
	rootCmd.AddCommand(modelCmd)
}
