// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ratelaw

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func reversible(t *testing.T, opts ...Option) *ModelTemplate {
	t.Helper()
	tmpl, err := New("mass-action-reversible", "K_1 * substrate - K_2 * product",
		[]ParameterSpec{
			{Name: "K_1", Unit: "1/min"},
			{Name: "K_2", Unit: "1/min"},
		}, opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return tmpl
}

func TestBindSingleSpecies(t *testing.T) {
	tmpl := reversible(t)

	m, err := tmpl.Bind(map[string]Assignment{
		"substrate": ToSpecies("pen-g"),
		"product":   ToSpecies("6-apa"),
	}, nil)
	if err != nil {
		t.Fatalf("Bind() error: %v", err)
	}

	if m.Equation != "K_1 * pen-g - K_2 * 6-apa" {
		t.Errorf("equation = %q", m.Equation)
	}
	if m.Template != "mass-action-reversible" {
		t.Errorf("template = %q", m.Template)
	}
}

// The complex-dissociation case: an enzyme-substrate complex on one side,
// its two dissociation products summed on the other.
func TestBindListCombinedBySum(t *testing.T) {
	tmpl := reversible(t)

	m, err := tmpl.Bind(map[string]Assignment{
		"substrate": ToSpecies("E·7-ADCA"),
		"product":   ToSpeciesList("E", "7-ADCA"),
	}, nil)
	if err != nil {
		t.Fatalf("Bind() error: %v", err)
	}

	if m.Equation != "K_1 * E·7-ADCA - K_2 * (E + 7-ADCA)" {
		t.Errorf("equation = %q", m.Equation)
	}
	if got := m.SpeciesIDs(); !reflect.DeepEqual(got, []string{"7-ADCA", "E", "E·7-ADCA"}) {
		t.Errorf("SpeciesIDs() = %v", got)
	}
}

func TestBindListCombinedByProduct(t *testing.T) {
	tmpl, err := New("bi", "k * substrate",
		[]ParameterSpec{{Name: "k", Unit: "1/(mM*min)"}},
		WithCombineRule(CombineProduct))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	m, err := tmpl.Bind(map[string]Assignment{
		"substrate": ToSpeciesList("A", "B"),
	}, nil)
	if err != nil {
		t.Fatalf("Bind() error: %v", err)
	}
	if m.Equation != "k * (A * B)" {
		t.Errorf("equation = %q", m.Equation)
	}
}

func TestBindPositional(t *testing.T) {
	tmpl, err := New("symmetric", "k_f * substrate * substrate",
		[]ParameterSpec{{Name: "k_f", Unit: "1/(mM*min)"}},
		WithCombineRule(CombinePositional))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	m, err := tmpl.Bind(map[string]Assignment{
		"substrate": ToSpeciesList("mono-a", "mono-b"),
	}, nil)
	if err != nil {
		t.Fatalf("Bind() error: %v", err)
	}
	if m.Equation != "k_f * mono-a * mono-b" {
		t.Errorf("equation = %q", m.Equation)
	}

	// Length must match the occurrence count.
	_, err = tmpl.Bind(map[string]Assignment{
		"substrate": ToSpeciesList("mono-a", "mono-b", "mono-c"),
	}, nil)
	var berr *BindingError
	if !errors.As(err, &berr) {
		t.Fatalf("expected *BindingError, got %v", err)
	}
	if !strings.Contains(berr.Reason, "count mismatch") {
		t.Errorf("reason = %q, want count mismatch", berr.Reason)
	}
}

func TestBindParameterMapping(t *testing.T) {
	tmpl := reversible(t)

	m, err := tmpl.Bind(map[string]Assignment{
		"substrate": ToSpecies("s"),
		"product":   ToSpecies("p"),
	}, map[string]string{"K_1": "K_n"})
	if err != nil {
		t.Fatalf("Bind() error: %v", err)
	}

	if m.Equation != "K_n * s - K_2 * p" {
		t.Errorf("equation = %q", m.Equation)
	}

	// Round-trip: the table shows mapping(name) for every declared
	// parameter, defaulting to identity.
	want := map[string]string{"K_1": "K_n", "K_2": "K_2"}
	if got := m.ParameterTable(); !reflect.DeepEqual(got, want) {
		t.Errorf("ParameterTable() = %v, want %v", got, want)
	}

	// Metadata travels with the renamed symbol.
	p, ok := m.Parameter("K_n")
	if !ok {
		t.Fatal("K_n not in parameter table")
	}
	if p.Unit != "1/min" || p.TemplateName != "K_1" {
		t.Errorf("K_n = %+v", p)
	}
}

func TestBindErrors(t *testing.T) {
	tmpl := reversible(t)
	full := map[string]Assignment{
		"substrate": ToSpecies("s"),
		"product":   ToSpecies("p"),
	}

	tests := []struct {
		name     string
		bindings map[string]Assignment
		mapping  map[string]string
		token    string
		reason   string
	}{
		{
			name:     "unbound free variable",
			bindings: map[string]Assignment{"substrate": ToSpecies("s")},
			token:    "product",
			reason:   "unbound free variable",
		},
		{
			name: "binding for unknown variable",
			bindings: map[string]Assignment{
				"substrate": ToSpecies("s"),
				"product":   ToSpecies("p"),
				"inhibitor": ToSpecies("i"),
			},
			token:  "inhibitor",
			reason: "not a free variable",
		},
		{
			name:     "mapping for unknown parameter",
			bindings: full,
			mapping:  map[string]string{"K_9": "K_n"},
			token:    "K_9",
			reason:   "not a parameter",
		},
		{
			name: "empty species identifier",
			bindings: map[string]Assignment{
				"substrate": ToSpecies("  "),
				"product":   ToSpecies("p"),
			},
			token:  "substrate",
			reason: "empty species identifier",
		},
		{
			name:     "two parameters mapped to one symbol",
			bindings: full,
			mapping:  map[string]string{"K_1": "K_x", "K_2": "K_x"},
			token:    "K_x",
			reason:   "same symbol",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tmpl.Bind(tt.bindings, tt.mapping)
			var berr *BindingError
			if !errors.As(err, &berr) {
				t.Fatalf("expected *BindingError, got %v", err)
			}
			if berr.Token != tt.token {
				t.Errorf("token = %q, want %q", berr.Token, tt.token)
			}
			if !strings.Contains(berr.Reason, tt.reason) {
				t.Errorf("reason = %q, want substring %q", berr.Reason, tt.reason)
			}
		})
	}
}

func TestBindHasNoSideEffects(t *testing.T) {
	tmpl := reversible(t)

	first, err := tmpl.Bind(map[string]Assignment{
		"substrate": ToSpecies("a"),
		"product":   ToSpecies("b"),
	}, map[string]string{"K_1": "K_shared"})
	if err != nil {
		t.Fatalf("Bind() error: %v", err)
	}

	second, err := tmpl.Bind(map[string]Assignment{
		"substrate": ToSpecies("c"),
		"product":   ToSpecies("d"),
	}, nil)
	if err != nil {
		t.Fatalf("Bind() error: %v", err)
	}

	if first.Equation != "K_shared * a - K_2 * b" {
		t.Errorf("first equation = %q", first.Equation)
	}
	if second.Equation != "K_1 * c - K_2 * d" {
		t.Errorf("second equation = %q", second.Equation)
	}
}
