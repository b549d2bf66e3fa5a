// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Compound holds the registry record for a chemical compound fetched by
// identifier from the compound database.
type Compound struct {
	// CID is the numeric registry compound identifier (e.g. PubChem CID 5793).
	CID int `json:"cid" yaml:"cid"`

	// Name is the preferred compound name.
	Name string `json:"name" yaml:"name"`

	// Formula is the molecular formula (e.g. "C6H12O6").
	Formula string `json:"formula,omitempty" yaml:"formula,omitempty"`

	// MolecularWeight is the molecular weight in g/mol.
	MolecularWeight float64 `json:"molecular_weight,omitempty" yaml:"molecular_weight,omitempty"`

	// InChIKey is the hashed InChI identifier used for cross-registry matching.
	InChIKey string `json:"inchikey,omitempty" yaml:"inchikey,omitempty"`

	// Synonyms lists alternative names in registry order.
	Synonyms []string `json:"synonyms,omitempty" yaml:"synonyms,omitempty"`
}
