// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ratelaw

import "fmt"

// TemplateError reports a malformed template declaration. It is returned at
// construction time; a ModelTemplate that constructs without error is valid
// for the lifetime of the program.
type TemplateError struct {
	// Template is the template name, when known.
	Template string

	// Reason describes the defect.
	Reason string
}

func (e *TemplateError) Error() string {
	if e.Template == "" {
		return "template: " + e.Reason
	}
	return fmt.Sprintf("template %s: %s", e.Template, e.Reason)
}

// BindingError reports a failed Bind call: an unbound or miscounted free
// variable, or a binding/mapping entry that names no template token. A bind
// either produces a fully resolved BoundModel or fails with this error;
// there is no partially bound state.
type BindingError struct {
	// Template is the name of the template being bound.
	Template string

	// Token is the free variable or parameter the error concerns.
	Token string

	// Reason describes the defect.
	Reason string
}

func (e *BindingError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("binding %s: %s", e.Template, e.Reason)
	}
	return fmt.Sprintf("binding %s: %s: %s", e.Template, e.Token, e.Reason)
}
