// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package results

import (
	"context"
	"fmt"
	"sort"
)

// ComparisonRow holds one parameter's estimates across engine/method
// combinations. Values is keyed by "engine/method".
type ComparisonRow struct {
	ReactionID string             `json:"reaction_id,omitempty" yaml:"reaction_id,omitempty"`
	Parameter  string             `json:"parameter" yaml:"parameter"`
	Unit       string             `json:"unit,omitempty" yaml:"unit,omitempty"`
	Values     map[string]float64 `json:"values" yaml:"values"`
}

// Comparison pivots fit estimates for one document into rows of
// parameter values, one column per engine/method combination.
type Comparison struct {
	Document string          `json:"document" yaml:"document"`
	Columns  []string        `json:"columns" yaml:"columns"`
	Rows     []ComparisonRow `json:"rows" yaml:"rows"`
}

// Compare builds a comparison table for the named document. When an
// engine/method combination has more than one recorded run, the latest
// run wins.
func (s *Store) Compare(ctx context.Context, document string) (*Comparison, error) {
	runs, err := s.Retrieve(ctx, QueryOptions{Document: document, MaxResults: s.maxResults})
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("no recorded runs for document %s", document)
	}

	// Retrieve returns newest first, so the first run seen per column
	// is the latest one.
	latest := make(map[string]int)
	var columns []string
	for i, run := range runs {
		col := run.Engine + "/" + run.Method
		if _, ok := latest[col]; ok {
			continue
		}
		latest[col] = i
		columns = append(columns, col)
	}
	sort.Strings(columns)

	rowIndex := make(map[string]*ComparisonRow)
	var order []string
	for col, i := range latest {
		for _, e := range runs[i].Estimates {
			key := e.ReactionID + "\x00" + e.Parameter
			row, ok := rowIndex[key]
			if !ok {
				row = &ComparisonRow{
					ReactionID: e.ReactionID,
					Parameter:  e.Parameter,
					Unit:       e.Unit,
					Values:     make(map[string]float64),
				}
				rowIndex[key] = row
				order = append(order, key)
			}
			row.Values[col] = e.Value
		}
	}
	sort.Strings(order)

	cmp := &Comparison{Document: document, Columns: columns}
	for _, key := range order {
		cmp.Rows = append(cmp.Rows, *rowIndex[key])
	}
	return cmp, nil
}
