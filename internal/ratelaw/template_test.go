// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ratelaw

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestNewValidation(t *testing.T) {
	params := []ParameterSpec{{Name: "k_1", Unit: "1/min"}}

	tests := []struct {
		name     string
		tmplName string
		equation string
		params   []ParameterSpec
		opts     []Option
		errMsg   string
	}{
		{
			name:     "valid single parameter",
			tmplName: "decay",
			equation: "k_1 * substrate",
			params:   params,
		},
		{
			name:     "empty name",
			tmplName: "  ",
			equation: "k_1 * substrate",
			params:   params,
			errMsg:   "empty template name",
		},
		{
			name:     "empty equation",
			tmplName: "decay",
			equation: "",
			params:   params,
			errMsg:   "empty equation",
		},
		{
			name:     "declared parameter never used",
			tmplName: "bad",
			equation: "k_1 * substrate",
			params: []ParameterSpec{
				{Name: "k_1", Unit: "1/min"},
				{Name: "K_3", Unit: "mM"},
			},
			errMsg: `declared parameter "K_3" not used`,
		},
		{
			name:     "duplicate parameter declaration",
			tmplName: "bad",
			equation: "k_1 * substrate",
			params: []ParameterSpec{
				{Name: "k_1", Unit: "1/min"},
				{Name: "k_1", Unit: "1/s"},
			},
			errMsg: `parameter "k_1" declared twice`,
		},
		{
			name:     "unknown combine rule",
			tmplName: "bad",
			equation: "k_1 * substrate",
			params:   params,
			opts:     []Option{WithCombineRule(CombineRule("concat"))},
			errMsg:   "unknown combine rule",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := New(tt.tmplName, tt.equation, tt.params, tt.opts...)
			if tt.errMsg != "" {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				var terr *TemplateError
				if !errors.As(err, &terr) {
					t.Fatalf("expected *TemplateError, got %T", err)
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error = %q, want substring %q", err, tt.errMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			if tmpl.Name() != tt.tmplName {
				t.Errorf("Name() = %q, want %q", tmpl.Name(), tt.tmplName)
			}
		})
	}
}

func TestFreeVariableInference(t *testing.T) {
	tests := []struct {
		name     string
		equation string
		params   []ParameterSpec
		want     []string
	}{
		{
			name:     "one substrate",
			equation: "k_1 * substrate",
			params:   []ParameterSpec{{Name: "k_1"}},
			want:     []string{"substrate"},
		},
		{
			name:     "substrate and product, first-appearance order",
			equation: "k_1 * substrate - k_2 * product",
			params:   []ParameterSpec{{Name: "k_1"}, {Name: "k_2"}},
			want:     []string{"substrate", "product"},
		},
		{
			name:     "repeated variable counted once",
			equation: "v_max * substrate / (K_m + substrate)",
			params:   []ParameterSpec{{Name: "v_max"}, {Name: "K_m"}},
			want:     []string{"substrate"},
		},
		{
			name:     "function names are not variables",
			equation: "k_1 * exp(substrate)",
			params:   []ParameterSpec{{Name: "k_1"}},
			want:     []string{"substrate"},
		},
		{
			name:     "no free variables",
			equation: "k_1 * 2.5",
			params:   []ParameterSpec{{Name: "k_1"}},
			want:     nil,
		},
		{
			name:     "exponent literal is not an identifier",
			equation: "k_1 * 1e-3 * substrate",
			params:   []ParameterSpec{{Name: "k_1"}},
			want:     []string{"substrate"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := New("t", tt.equation, tt.params)
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			var got []string
			if vars := tmpl.FreeVariables(); len(vars) > 0 {
				got = vars
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FreeVariables() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOccurrences(t *testing.T) {
	tmpl, err := New("mm", "v_max * substrate / (K_m + substrate)",
		[]ParameterSpec{{Name: "v_max"}, {Name: "K_m"}})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if got := tmpl.Occurrences("substrate"); got != 2 {
		t.Errorf("Occurrences(substrate) = %d, want 2", got)
	}
	if got := tmpl.Occurrences("inhibitor"); got != 0 {
		t.Errorf("Occurrences(inhibitor) = %d, want 0", got)
	}
}

func TestTemplateIsImmutable(t *testing.T) {
	params := []ParameterSpec{{Name: "k_1", Unit: "1/min"}}
	tmpl, err := New("decay", "k_1 * substrate", params)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	// Mutating the caller's slice or the returned copies must not affect
	// the template.
	params[0].Unit = "1/s"
	tmpl.Parameters()[0].Unit = "1/h"
	tmpl.FreeVariables()[0] = "x"

	if got := tmpl.Parameters()[0].Unit; got != "1/min" {
		t.Errorf("parameter unit = %q, want %q", got, "1/min")
	}
	if got := tmpl.FreeVariables()[0]; got != "substrate" {
		t.Errorf("free variable = %q, want %q", got, "substrate")
	}
}

func TestLibrary(t *testing.T) {
	lib := Library()
	if len(lib) == 0 {
		t.Fatal("Library() returned no templates")
	}

	mm, ok := Lookup("michaelis-menten")
	if !ok {
		t.Fatal("michaelis-menten not in library")
	}
	if got := mm.FreeVariables(); len(got) != 1 || got[0] != "substrate" {
		t.Errorf("michaelis-menten free variables = %v, want [substrate]", got)
	}

	if _, ok := Lookup("no-such-template"); ok {
		t.Error("Lookup should fail for unknown name")
	}
}
