// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package document holds the in-memory experiment document: species,
// reactions, global parameters, and time-course measurements. All mutation
// goes through explicit methods so every change to the document is a
// visible call site. Implements: prd002-document;
//
//	docs/ARCHITECTURE § Experiment Documents.
package document

import (
	"fmt"

	"github.com/pdiddy/kinetics-engine/internal/ratelaw"
)

// Species is a chemical entity tracked by identifier and initial concentration.
type Species struct {
	// ID is the identifier rate-law equations reference (e.g. "pen-g",
	// "E·7-ADCA").
	ID string `json:"id" yaml:"id"`

	// Name is the human-readable name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// InitConc is the initial concentration, when known.
	InitConc *float64 `json:"init_conc,omitempty" yaml:"init_conc,omitempty"`

	// Unit is the concentration unit (e.g. "mM").
	Unit string `json:"unit,omitempty" yaml:"unit,omitempty"`

	// Constant marks species whose concentration the integrator holds fixed.
	Constant bool `json:"constant,omitempty" yaml:"constant,omitempty"`

	// CompoundID links the species to a compound registry record.
	CompoundID string `json:"compound_id,omitempty" yaml:"compound_id,omitempty"`
}

// ReactionElement is one educt or product reference with its stoichiometry.
type ReactionElement struct {
	SpeciesID     string  `json:"species_id" yaml:"species_id"`
	Stoichiometry float64 `json:"stoichiometry" yaml:"stoichiometry"`
}

// Reaction transforms educts into products, optionally carrying a bound
// rate law. The BoundModel is owned exclusively by its reaction.
type Reaction struct {
	ID         string              `json:"id" yaml:"id"`
	Name       string              `json:"name,omitempty" yaml:"name,omitempty"`
	Reversible bool                `json:"reversible,omitempty" yaml:"reversible,omitempty"`
	Educts     []ReactionElement   `json:"educts" yaml:"educts"`
	Products   []ReactionElement   `json:"products" yaml:"products"`
	Model      *ratelaw.BoundModel `json:"model,omitempty" yaml:"model,omitempty"`
}

// GlobalParameter is a parameter symbol shared across reactions. Its
// lifetime matches the document.
type GlobalParameter struct {
	Name     string   `json:"name" yaml:"name"`
	Unit     string   `json:"unit,omitempty" yaml:"unit,omitempty"`
	Constant bool     `json:"constant,omitempty" yaml:"constant,omitempty"`
	Value    *float64 `json:"value,omitempty" yaml:"value,omitempty"`
}

// TimeSeries is one measured concentration course for a single species.
type TimeSeries struct {
	SpeciesID string    `json:"species_id" yaml:"species_id"`
	Time      []float64 `json:"time" yaml:"time"`
	Values    []float64 `json:"values" yaml:"values"`
}

// Measurement groups the time courses recorded in one experiment run.
type Measurement struct {
	ID       string       `json:"id" yaml:"id"`
	Name     string       `json:"name,omitempty" yaml:"name,omitempty"`
	TimeUnit string       `json:"time_unit,omitempty" yaml:"time_unit,omitempty"`
	DataUnit string       `json:"data_unit,omitempty" yaml:"data_unit,omitempty"`
	Series   []TimeSeries `json:"series" yaml:"series"`
}

// Document is the owned, single-threaded experiment document. It is mutated
// in place by one control flow; there is no transactional rollback, a
// failed step leaves the document in its last-mutated state.
type Document struct {
	name         string
	species      []Species
	speciesIdx   map[string]int
	reactions    []Reaction
	reactionIdx  map[string]int
	globals      []GlobalParameter
	globalIdx    map[string]int
	measurements []Measurement
}

// New creates an empty document with the given name.
func New(name string) *Document {
	return &Document{
		name:        name,
		speciesIdx:  make(map[string]int),
		reactionIdx: make(map[string]int),
		globalIdx:   make(map[string]int),
	}
}

// Name returns the document name.
func (d *Document) Name() string { return d.name }

// SetName renames the document.
func (d *Document) SetName(name string) { d.name = name }

// AddSpecies registers a species. The ID must be unique.
func (d *Document) AddSpecies(s Species) error {
	if s.ID == "" {
		return fmt.Errorf("species with empty ID")
	}
	if _, dup := d.speciesIdx[s.ID]; dup {
		return fmt.Errorf("species %q already registered", s.ID)
	}
	d.speciesIdx[s.ID] = len(d.species)
	d.species = append(d.species, s)
	return nil
}

// UpsertSpecies adds the species or replaces the existing record with the
// same ID.
func (d *Document) UpsertSpecies(s Species) error {
	if s.ID == "" {
		return fmt.Errorf("species with empty ID")
	}
	if i, ok := d.speciesIdx[s.ID]; ok {
		d.species[i] = s
		return nil
	}
	return d.AddSpecies(s)
}

// SpeciesByID looks up a species record.
func (d *Document) SpeciesByID(id string) (Species, bool) {
	i, ok := d.speciesIdx[id]
	if !ok {
		return Species{}, false
	}
	return d.species[i], true
}

// HasSpecies reports whether the species is registered.
func (d *Document) HasSpecies(id string) bool {
	_, ok := d.speciesIdx[id]
	return ok
}

// Species returns the species registry in insertion order.
func (d *Document) Species() []Species {
	out := make([]Species, len(d.species))
	copy(out, d.species)
	return out
}

// AddReaction registers a reaction. Every educt and product must reference
// a registered species.
func (d *Document) AddReaction(r Reaction) error {
	if r.ID == "" {
		return fmt.Errorf("reaction with empty ID")
	}
	if _, dup := d.reactionIdx[r.ID]; dup {
		return fmt.Errorf("reaction %q already registered", r.ID)
	}
	for _, el := range append(append([]ReactionElement{}, r.Educts...), r.Products...) {
		if !d.HasSpecies(el.SpeciesID) {
			return fmt.Errorf("reaction %q references unknown species %q", r.ID, el.SpeciesID)
		}
	}
	d.reactionIdx[r.ID] = len(d.reactions)
	d.reactions = append(d.reactions, r)
	return nil
}

// Reaction looks up a reaction by ID.
func (d *Document) Reaction(id string) (Reaction, bool) {
	i, ok := d.reactionIdx[id]
	if !ok {
		return Reaction{}, false
	}
	return d.reactions[i], true
}

// Reactions returns the reactions in insertion order.
func (d *Document) Reactions() []Reaction {
	out := make([]Reaction, len(d.reactions))
	copy(out, d.reactions)
	return out
}

// SetModel attaches a bound rate law to the named reaction, replacing any
// previous model. Structural validity against the species registry is
// verified by the consistency check before export.
func (d *Document) SetModel(reactionID string, m *ratelaw.BoundModel) error {
	i, ok := d.reactionIdx[reactionID]
	if !ok {
		return fmt.Errorf("reaction %q not registered", reactionID)
	}
	d.reactions[i].Model = m
	return nil
}

// UpsertGlobalParameter registers a shared parameter, or updates the value
// of an existing one. Changing the unit or constancy of a registered global
// is a consistency violation.
func (d *Document) UpsertGlobalParameter(p GlobalParameter) error {
	if p.Name == "" {
		return fmt.Errorf("global parameter with empty name")
	}
	i, ok := d.globalIdx[p.Name]
	if !ok {
		d.globalIdx[p.Name] = len(d.globals)
		d.globals = append(d.globals, p)
		return nil
	}
	existing := d.globals[i]
	if existing.Unit != p.Unit || existing.Constant != p.Constant {
		return &ConsistencyError{
			Symbol: p.Name,
			Reason: fmt.Sprintf("conflicting redefinition: unit %q/constant %v vs registered %q/%v",
				p.Unit, p.Constant, existing.Unit, existing.Constant),
		}
	}
	if p.Value == nil {
		p.Value = existing.Value
	}
	d.globals[i] = p
	return nil
}

// GlobalParameter looks up a shared parameter.
func (d *Document) GlobalParameter(name string) (GlobalParameter, bool) {
	i, ok := d.globalIdx[name]
	if !ok {
		return GlobalParameter{}, false
	}
	return d.globals[i], true
}

// GlobalParameters returns the shared parameters in insertion order.
func (d *Document) GlobalParameters() []GlobalParameter {
	out := make([]GlobalParameter, len(d.globals))
	copy(out, d.globals)
	return out
}

// AddMeasurement registers a time-course measurement. Every series must
// reference a registered species and carry matching time/value lengths.
func (d *Document) AddMeasurement(m Measurement) error {
	if m.ID == "" {
		return fmt.Errorf("measurement with empty ID")
	}
	for _, existing := range d.measurements {
		if existing.ID == m.ID {
			return fmt.Errorf("measurement %q already registered", m.ID)
		}
	}
	for _, s := range m.Series {
		if !d.HasSpecies(s.SpeciesID) {
			return fmt.Errorf("measurement %q references unknown species %q", m.ID, s.SpeciesID)
		}
		if len(s.Time) != len(s.Values) {
			return fmt.Errorf("measurement %q series %q: %d time points but %d values",
				m.ID, s.SpeciesID, len(s.Time), len(s.Values))
		}
	}
	d.measurements = append(d.measurements, m)
	return nil
}

// Measurements returns the measurements in insertion order.
func (d *Document) Measurements() []Measurement {
	out := make([]Measurement, len(d.measurements))
	copy(out, d.measurements)
	return out
}

// Parameters returns every parameter declared by the document's bound
// models, keyed by reaction ID, in reaction order. Used to generate blank
// initial-value files.
func (d *Document) Parameters() map[string][]ratelaw.BoundParameter {
	out := make(map[string][]ratelaw.BoundParameter)
	for _, r := range d.reactions {
		if r.Model == nil {
			continue
		}
		params := make([]ratelaw.BoundParameter, len(r.Model.Parameters))
		copy(params, r.Model.Parameters)
		out[r.ID] = params
	}
	return out
}

// ApplyEstimate writes a fitted value into the document: into the global
// parameter when the symbol is global, otherwise into the named reaction's
// model parameter.
func (d *Document) ApplyEstimate(reactionID, symbol string, value float64) error {
	if i, ok := d.globalIdx[symbol]; ok {
		v := value
		d.globals[i].Value = &v
		return nil
	}
	i, ok := d.reactionIdx[reactionID]
	if !ok {
		return fmt.Errorf("reaction %q not registered", reactionID)
	}
	m := d.reactions[i].Model
	if m == nil {
		return fmt.Errorf("reaction %q carries no rate law", reactionID)
	}
	for j := range m.Parameters {
		if m.Parameters[j].Name == symbol {
			v := value
			m.Parameters[j].Value = &v
			return nil
		}
	}
	return fmt.Errorf("parameter %q not found on reaction %q", symbol, reactionID)
}
