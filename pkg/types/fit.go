// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the kinetics-engine
// workflow: fitting results, compound registry records, and per-stage
// configuration.
package types

import "time"

// ParameterEstimate is one fitted parameter value reported by an engine run.
type ParameterEstimate struct {
	// ReactionID identifies the reaction the parameter belongs to. Empty
	// for document-level global parameters.
	ReactionID string `json:"reaction_id,omitempty" yaml:"reaction_id,omitempty"`

	// Parameter is the resolved parameter symbol (e.g. "K_m", "v_max").
	Parameter string `json:"parameter" yaml:"parameter"`

	// Value is the fitted value.
	Value float64 `json:"value" yaml:"value"`

	// StdDev is the standard deviation reported by the engine, when the
	// method provides one. Zero otherwise.
	StdDev float64 `json:"std_dev,omitempty" yaml:"std_dev,omitempty"`

	// Unit is the physical unit carried over from the model declaration.
	Unit string `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// FitResult holds the outcome of a single optimization run.
type FitResult struct {
	// RunID is a UUID assigned when the run is recorded.
	RunID string `json:"run_id" yaml:"run_id"`

	// Document is the name of the experiment document that was fitted.
	Document string `json:"document" yaml:"document"`

	// Engine identifies the fitting engine ("copasise", "pscfit").
	Engine string `json:"engine" yaml:"engine"`

	// Method is the optimization method the engine ran.
	Method string `json:"method" yaml:"method"`

	// Objective is the final objective (sum-of-squares) value.
	Objective float64 `json:"objective" yaml:"objective"`

	// Estimates lists the fitted parameter values.
	Estimates []ParameterEstimate `json:"estimates" yaml:"estimates"`

	// Duration is the wall-clock time the engine took.
	Duration time.Duration `json:"duration" yaml:"duration"`

	// Timestamp records when the run finished.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}
