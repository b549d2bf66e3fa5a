// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package initvals reads and writes optimizer initial-value files: TOML
// with one table per reaction and one key per fittable parameter. A blank
// template is generated from a document's declared parameter set; the
// researcher edits the starting values and hands the file to the fitting
// engine. Implements: prd003-fitting § Initial Values.
package initvals

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/pdiddy/kinetics-engine/internal/document"
)

// GlobalSection is the table name for document-level global parameters.
const GlobalSection = "global"

// Values maps reaction ID (or GlobalSection) to parameter symbol to
// starting value.
type Values map[string]map[string]float64

// Generate builds a blank initial-value set from the document's declared
// parameters. Declared default values are carried over; parameters without
// a default start at zero. Constant parameters are fixed inputs, not fit
// targets, and are omitted.
func Generate(doc *document.Document) Values {
	v := make(Values)

	for reactionID, params := range doc.Parameters() {
		for _, p := range params {
			if p.Constant {
				continue
			}
			// Shared symbols live in the global section once promoted.
			if _, isGlobal := doc.GlobalParameter(p.Name); isGlobal {
				continue
			}
			if v[reactionID] == nil {
				v[reactionID] = make(map[string]float64)
			}
			if p.Value != nil {
				v[reactionID][p.Name] = *p.Value
			} else {
				v[reactionID][p.Name] = 0
			}
		}
	}

	for _, g := range doc.GlobalParameters() {
		if g.Constant {
			continue
		}
		if v[GlobalSection] == nil {
			v[GlobalSection] = make(map[string]float64)
		}
		if g.Value != nil {
			v[GlobalSection][g.Name] = *g.Value
		} else {
			v[GlobalSection][g.Name] = 0
		}
	}

	return v
}

// Write saves the values to a TOML file.
func Write(path string, v Values) error {
	data, err := toml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling initial values: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Read loads an initial-value file.
func Read(path string) (Values, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading initial values %s: %w", path, err)
	}
	var v Values
	if err := toml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parsing initial values %s: %w", path, err)
	}
	return v, nil
}

// Apply writes the starting values into the document's parameter defaults,
// so a saved archive records what the fit started from.
func Apply(doc *document.Document, v Values) error {
	for section, params := range v {
		reactionID := section
		if section == GlobalSection {
			reactionID = ""
		}
		for symbol, value := range params {
			if err := doc.ApplyEstimate(reactionID, symbol, value); err != nil {
				return fmt.Errorf("applying %s.%s: %w", section, symbol, err)
			}
		}
	}
	return nil
}
