// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ratelaw

// Built-in templates covering the rate laws the fitting workflows use.
// Custom templates are constructed with New directly.

func mustTemplate(name, equation string, params []ParameterSpec, opts ...Option) *ModelTemplate {
	t, err := New(name, equation, params, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

var builtins = []*ModelTemplate{
	mustTemplate("mass-action-irreversible",
		"k_1 * substrate",
		[]ParameterSpec{
			{Name: "k_1", Unit: "1/min"},
		}),
	mustTemplate("mass-action-reversible",
		"k_1 * substrate - k_2 * product",
		[]ParameterSpec{
			{Name: "k_1", Unit: "1/min"},
			{Name: "k_2", Unit: "1/min"},
		}),
	mustTemplate("michaelis-menten",
		"v_max * substrate / (K_m + substrate)",
		[]ParameterSpec{
			{Name: "v_max", Unit: "mM/min"},
			{Name: "K_m", Unit: "mM"},
		}),
	mustTemplate("competitive-inhibition",
		"v_max * substrate / (K_m * (1 + inhibitor / K_i) + substrate)",
		[]ParameterSpec{
			{Name: "v_max", Unit: "mM/min"},
			{Name: "K_m", Unit: "mM"},
			{Name: "K_i", Unit: "mM"},
		}),
}

// Library returns the built-in templates in a stable order.
func Library() []*ModelTemplate {
	out := make([]*ModelTemplate, len(builtins))
	copy(out, builtins)
	return out
}

// Lookup finds a built-in template by name.
func Lookup(name string) (*ModelTemplate, bool) {
	for _, t := range builtins {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}
