// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ratelaw

import (
	"fmt"
	"sort"
	"strings"
)

// Assignment binds one free variable to a concrete species, or to an
// ordered list of species folded by the template's CombineRule.
type Assignment struct {
	ids  []string
	list bool
}

// ToSpecies binds a variable to a single species identifier. Every textual
// occurrence of the variable is replaced with the identifier.
func ToSpecies(id string) Assignment {
	return Assignment{ids: []string{id}}
}

// ToSpeciesList binds a variable to an ordered list of species identifiers.
// How the list is folded into the equation depends on the template's
// CombineRule.
func ToSpeciesList(ids ...string) Assignment {
	return Assignment{ids: ids, list: true}
}

// IDs returns the bound species identifiers in order.
func (a Assignment) IDs() []string {
	out := make([]string, len(a.ids))
	copy(out, a.ids)
	return out
}

// BoundParameter is a template parameter resolved to a document symbol.
// The unit, constancy, and default value travel from the ParameterSpec.
type BoundParameter struct {
	// Name is the resolved symbol, after mapping.
	Name string `json:"name" yaml:"name"`

	// TemplateName is the parameter's name inside the template equation.
	TemplateName string `json:"template_name" yaml:"template_name"`

	Unit     string   `json:"unit" yaml:"unit"`
	Constant bool     `json:"constant" yaml:"constant"`
	Value    *float64 `json:"value,omitempty" yaml:"value,omitempty"`
}

// BoundModel is a rate law instantiated against concrete species. It is
// produced whole by Bind and attached to exactly one reaction by the caller.
type BoundModel struct {
	// Template is the name of the template the model was bound from.
	Template string `json:"template" yaml:"template"`

	// Equation is the fully substituted rate-law expression.
	Equation string `json:"equation" yaml:"equation"`

	// Parameters lists the resolved parameters in declaration order.
	Parameters []BoundParameter `json:"parameters" yaml:"parameters"`

	// Variables records which species each free variable consumed, for
	// the export-time consistency check.
	Variables map[string][]string `json:"variables" yaml:"variables"`
}

// ParameterTable returns the template-name to resolved-symbol mapping.
// Unmapped parameters resolve to their own name.
func (m *BoundModel) ParameterTable() map[string]string {
	table := make(map[string]string, len(m.Parameters))
	for _, p := range m.Parameters {
		table[p.TemplateName] = p.Name
	}
	return table
}

// Parameter looks up a resolved parameter by symbol.
func (m *BoundModel) Parameter(symbol string) (BoundParameter, bool) {
	for _, p := range m.Parameters {
		if p.Name == symbol {
			return p, true
		}
	}
	return BoundParameter{}, false
}

// SpeciesIDs returns the distinct species identifiers the model references,
// sorted for stable output.
func (m *BoundModel) SpeciesIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, bound := range m.Variables {
		for _, id := range bound {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)
	return ids
}

// Bind instantiates the template against concrete species. bindings must
// cover every free variable of the equation; mapping optionally renames
// template parameters to document-level symbols (identity when absent),
// which is how one global parameter is shared across several reactions.
//
// Bind has no side effects: it either returns a fully resolved BoundModel
// or a *BindingError.
func (t *ModelTemplate) Bind(bindings map[string]Assignment, mapping map[string]string) (*BoundModel, error) {
	for v := range bindings {
		if t.varCounts[v] == 0 {
			return nil, &BindingError{Template: t.name, Token: v, Reason: "not a free variable of the template"}
		}
	}
	for p := range mapping {
		if _, ok := t.paramIndex[p]; !ok {
			return nil, &BindingError{Template: t.name, Token: p, Reason: "not a parameter of the template"}
		}
	}

	for _, v := range t.freeVars {
		a, ok := bindings[v]
		if !ok {
			return nil, &BindingError{Template: t.name, Token: v, Reason: "unbound free variable"}
		}
		if len(a.ids) == 0 {
			return nil, &BindingError{Template: t.name, Token: v, Reason: "empty species binding"}
		}
		for _, id := range a.ids {
			if strings.TrimSpace(id) == "" {
				return nil, &BindingError{Template: t.name, Token: v, Reason: "empty species identifier"}
			}
		}
		if a.list && t.rule == CombinePositional && len(a.ids) != t.varCounts[v] {
			return nil, &BindingError{
				Template: t.name,
				Token:    v,
				Reason: fmt.Sprintf("count mismatch: variable occurs %d times but %d species given",
					t.varCounts[v], len(a.ids)),
			}
		}
	}

	var (
		eq       strings.Builder
		consumed = make(map[string]int)
	)
	for _, seg := range t.segments {
		if !seg.ident || functions[seg.text] {
			eq.WriteString(seg.text)
			continue
		}
		if i, isParam := t.paramIndex[seg.text]; isParam {
			eq.WriteString(resolveSymbol(t.params[i].Name, mapping))
			continue
		}
		a := bindings[seg.text]
		eq.WriteString(substitute(a, t.rule, consumed[seg.text]))
		consumed[seg.text]++
	}

	params := make([]BoundParameter, len(t.params))
	resolved := make(map[string]string, len(t.params))
	for i, p := range t.params {
		symbol := resolveSymbol(p.Name, mapping)
		if prev, dup := resolved[symbol]; dup {
			return nil, &BindingError{
				Template: t.name,
				Token:    symbol,
				Reason:   fmt.Sprintf("parameters %q and %q map to the same symbol", prev, p.Name),
			}
		}
		resolved[symbol] = p.Name
		params[i] = BoundParameter{
			Name:         symbol,
			TemplateName: p.Name,
			Unit:         p.Unit,
			Constant:     p.Constant,
			Value:        p.Value,
		}
	}

	vars := make(map[string][]string, len(t.freeVars))
	for _, v := range t.freeVars {
		vars[v] = bindings[v].IDs()
	}

	return &BoundModel{
		Template:   t.name,
		Equation:   eq.String(),
		Parameters: params,
		Variables:  vars,
	}, nil
}

func resolveSymbol(name string, mapping map[string]string) string {
	if mapped, ok := mapping[name]; ok && mapped != "" {
		return mapped
	}
	return name
}

// substitute renders one occurrence of a bound variable. occurrence is the
// zero-based index of this occurrence in left-to-right scan order.
func substitute(a Assignment, rule CombineRule, occurrence int) string {
	if !a.list || len(a.ids) == 1 {
		return a.ids[0]
	}
	switch rule {
	case CombinePositional:
		return a.ids[occurrence]
	case CombineProduct:
		return "(" + strings.Join(a.ids, " * ") + ")"
	default:
		return "(" + strings.Join(a.ids, " + ") + ")"
	}
}
