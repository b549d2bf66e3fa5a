// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package document

import (
	"fmt"

	"github.com/pdiddy/kinetics-engine/internal/ratelaw"
)

// ConsistencyError reports a symbol or unit conflict detected before
// export. It is fatal: the export is aborted and nothing is written.
type ConsistencyError struct {
	// Symbol is the species identifier or parameter symbol in conflict.
	Symbol string

	// Reason describes the conflict.
	Reason string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("consistency: %s: %s", e.Symbol, e.Reason)
}

// Check verifies that the document can be exported: every species a bound
// model references exists in the species registry, and every resolved
// parameter symbol carries non-conflicting unit/constant attributes across
// the models and the global registry. The first violation aborts the check.
func Check(d *Document) error {
	type symbolUse struct {
		reactionID string
		param      ratelaw.BoundParameter
	}
	seen := make(map[string]symbolUse)

	for _, r := range d.reactions {
		if r.Model == nil {
			continue
		}

		for variable, ids := range r.Model.Variables {
			for _, id := range ids {
				if !d.HasSpecies(id) {
					return &ConsistencyError{
						Symbol: id,
						Reason: fmt.Sprintf("species bound to %q in reaction %q is not registered",
							variable, r.ID),
					}
				}
			}
		}

		for _, p := range r.Model.Parameters {
			if prev, ok := seen[p.Name]; ok {
				if prev.param.Unit != p.Unit || prev.param.Constant != p.Constant {
					return &ConsistencyError{
						Symbol: p.Name,
						Reason: fmt.Sprintf("reactions %q and %q disagree: unit %q/constant %v vs %q/%v",
							prev.reactionID, r.ID,
							prev.param.Unit, prev.param.Constant, p.Unit, p.Constant),
					}
				}
				continue
			}
			seen[p.Name] = symbolUse{reactionID: r.ID, param: p}

			if g, ok := d.GlobalParameter(p.Name); ok {
				if g.Unit != p.Unit || g.Constant != p.Constant {
					return &ConsistencyError{
						Symbol: p.Name,
						Reason: fmt.Sprintf("reaction %q disagrees with global registration: unit %q/constant %v vs %q/%v",
							r.ID, p.Unit, p.Constant, g.Unit, g.Constant),
					}
				}
			}
		}
	}

	return nil
}

// PromoteSharedParameters registers every parameter symbol bound by more
// than one reaction as a GlobalParameter, so the exported document carries
// a single shared definition instead of per-reaction locals. Run after
// Check; assumes the models agree on each symbol's attributes.
func (d *Document) PromoteSharedParameters() error {
	counts := make(map[string]int)
	first := make(map[string]ratelaw.BoundParameter)

	for _, r := range d.reactions {
		if r.Model == nil {
			continue
		}
		for _, p := range r.Model.Parameters {
			counts[p.Name]++
			if _, ok := first[p.Name]; !ok {
				first[p.Name] = p
			} else if first[p.Name].Value == nil && p.Value != nil {
				first[p.Name] = p
			}
		}
	}

	// Iterate reactions again so promotion order follows reaction order,
	// not map order.
	promoted := make(map[string]bool)
	for _, r := range d.reactions {
		if r.Model == nil {
			continue
		}
		for _, p := range r.Model.Parameters {
			if counts[p.Name] < 2 || promoted[p.Name] {
				continue
			}
			promoted[p.Name] = true
			src := first[p.Name]
			if err := d.UpsertGlobalParameter(GlobalParameter{
				Name:     src.Name,
				Unit:     src.Unit,
				Constant: src.Constant,
				Value:    src.Value,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}
