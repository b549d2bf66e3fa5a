// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ratelaw builds symbolic kinetic rate laws from reusable equation
// templates. A ModelTemplate declares an equation over parameter tokens and
// free-variable tokens; Bind substitutes concrete species identifiers for
// the free variables and resolves parameter symbols, producing a BoundModel
// that a reaction can carry. Implements: prd001-ratelaw;
//
//	docs/ARCHITECTURE § Rate Laws.
package ratelaw

import (
	"fmt"
	"strings"
)

// ParameterSpec declares one kinetic parameter of a template: its name as
// it appears in the equation, its physical unit, whether the fitter should
// hold it constant, and an optional default starting value.
type ParameterSpec struct {
	Name     string   `json:"name" yaml:"name"`
	Unit     string   `json:"unit" yaml:"unit"`
	Constant bool     `json:"constant" yaml:"constant"`
	Value    *float64 `json:"value,omitempty" yaml:"value,omitempty"`
}

// CombineRule selects how a list-valued species binding is folded into the
// equation when a free variable is bound to more than one species.
type CombineRule string

const (
	// CombineSum replaces every occurrence of the variable with the
	// parenthesized sum of the bound species. This matches mass-action
	// terms over a total concentration and is the default.
	CombineSum CombineRule = "sum"

	// CombineProduct replaces every occurrence with the parenthesized
	// product of the bound species.
	CombineProduct CombineRule = "product"

	// CombinePositional feeds the n-th list element to the n-th textual
	// occurrence of the variable in left-to-right order. The list length
	// must equal the occurrence count.
	CombinePositional CombineRule = "positional"
)

// functions are reserved names that scan as identifiers but are neither
// parameters nor free variables.
var functions = map[string]bool{
	"exp":  true,
	"log":  true,
	"ln":   true,
	"pow":  true,
	"sqrt": true,
	"abs":  true,
}

// ModelTemplate is an immutable rate-law generator. Construct one with New,
// then call Bind once per reaction to produce BoundModels.
type ModelTemplate struct {
	name       string
	equation   string
	params     []ParameterSpec
	paramIndex map[string]int
	freeVars   []string
	varCounts  map[string]int
	rule       CombineRule
	segments   []segment
}

// Option adjusts template construction.
type Option func(*ModelTemplate)

// WithCombineRule sets the list-combination rule for the template.
// The default is CombineSum.
func WithCombineRule(rule CombineRule) Option {
	return func(t *ModelTemplate) { t.rule = rule }
}

// New constructs a ModelTemplate from an equation string and its parameter
// declarations. Every declared parameter must appear as a token in the
// equation; any identifier token that is not a declared parameter (and not
// a reserved function name) is inferred to be a free variable, so the
// common one-substrate case needs no variable declarations at all.
//
// New is pure: it fails with a *TemplateError or returns a value that is
// never mutated afterwards.
func New(name, equation string, params []ParameterSpec, opts ...Option) (*ModelTemplate, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &TemplateError{Reason: "empty template name"}
	}
	if strings.TrimSpace(equation) == "" {
		return nil, &TemplateError{Template: name, Reason: "empty equation"}
	}

	t := &ModelTemplate{
		name:       name,
		equation:   equation,
		params:     make([]ParameterSpec, len(params)),
		paramIndex: make(map[string]int, len(params)),
		varCounts:  make(map[string]int),
		rule:       CombineSum,
	}
	copy(t.params, params)

	for _, opt := range opts {
		opt(t)
	}
	switch t.rule {
	case CombineSum, CombineProduct, CombinePositional:
	default:
		return nil, &TemplateError{Template: name, Reason: fmt.Sprintf("unknown combine rule %q", t.rule)}
	}

	for i, p := range t.params {
		if p.Name == "" {
			return nil, &TemplateError{Template: name, Reason: "parameter with empty name"}
		}
		if _, dup := t.paramIndex[p.Name]; dup {
			return nil, &TemplateError{Template: name, Reason: fmt.Sprintf("parameter %q declared twice", p.Name)}
		}
		t.paramIndex[p.Name] = i
	}

	t.segments = scan(equation)

	seen := make(map[string]bool)
	used := make(map[string]bool)
	for _, seg := range t.segments {
		if !seg.ident || functions[seg.text] {
			continue
		}
		if _, isParam := t.paramIndex[seg.text]; isParam {
			used[seg.text] = true
			continue
		}
		t.varCounts[seg.text]++
		if !seen[seg.text] {
			seen[seg.text] = true
			t.freeVars = append(t.freeVars, seg.text)
		}
	}

	for _, p := range t.params {
		if !used[p.Name] {
			return nil, &TemplateError{
				Template: name,
				Reason:   fmt.Sprintf("declared parameter %q not used in equation", p.Name),
			}
		}
	}

	return t, nil
}

// Name returns the template name.
func (t *ModelTemplate) Name() string { return t.name }

// Equation returns the raw template equation string.
func (t *ModelTemplate) Equation() string { return t.equation }

// Rule returns the list-combination rule.
func (t *ModelTemplate) Rule() CombineRule { return t.rule }

// Parameters returns the parameter declarations in declaration order.
func (t *ModelTemplate) Parameters() []ParameterSpec {
	out := make([]ParameterSpec, len(t.params))
	copy(out, t.params)
	return out
}

// FreeVariables returns the free-variable tokens in first-appearance order.
func (t *ModelTemplate) FreeVariables() []string {
	out := make([]string, len(t.freeVars))
	copy(out, t.freeVars)
	return out
}

// Occurrences returns how many times the named free variable appears in the
// equation. Zero for unknown names.
func (t *ModelTemplate) Occurrences(variable string) int {
	return t.varCounts[variable]
}

// segment is one slice of the equation string: either an identifier token
// or the literal text (operators, numbers, whitespace) between identifiers.
type segment struct {
	text  string
	ident bool
}

// scan splits an equation into segments. Identifiers match
// [A-Za-z_][A-Za-z0-9_]*. Numeric literals (including the exponent form
// "1e-3") are consumed as literals so that the exponent letter is not
// mistaken for an identifier.
func scan(equation string) []segment {
	var segs []segment
	var lit strings.Builder

	flushLit := func() {
		if lit.Len() > 0 {
			segs = append(segs, segment{text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(equation); {
		c := equation[i]
		switch {
		case isIdentStart(c):
			j := i + 1
			for j < len(equation) && isIdentPart(equation[j]) {
				j++
			}
			flushLit()
			segs = append(segs, segment{text: equation[i:j], ident: true})
			i = j
		case c >= '0' && c <= '9':
			j := i + 1
			for j < len(equation) && (equation[j] >= '0' && equation[j] <= '9' || equation[j] == '.') {
				j++
			}
			// Exponent: 1e3, 2.5E-4.
			if j < len(equation) && (equation[j] == 'e' || equation[j] == 'E') {
				k := j + 1
				if k < len(equation) && (equation[k] == '+' || equation[k] == '-') {
					k++
				}
				if k < len(equation) && equation[k] >= '0' && equation[k] <= '9' {
					for k < len(equation) && equation[k] >= '0' && equation[k] <= '9' {
						k++
					}
					j = k
				}
			}
			lit.WriteString(equation[i:j])
			i = j
		default:
			lit.WriteByte(c)
			i++
		}
	}
	flushLit()
	return segs
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}
