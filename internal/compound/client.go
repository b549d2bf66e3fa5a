// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compound resolves species metadata against a PubChem-style
// compound registry. Lookups annotate document species with registry
// identifiers, formulas, and molecular weights so that archives carry
// unambiguous chemistry. Implements: prd005-compound.
package compound

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pdiddy/kinetics-engine/internal/document"
	"github.com/pdiddy/kinetics-engine/internal/httputil"
	"github.com/pdiddy/kinetics-engine/pkg/types"
)

// registryBase is the PUG REST endpoint. Declared as a var so tests can
// substitute an httptest server.
var registryBase = "https://pubchem.ncbi.nlm.nih.gov/rest/pug"

const propertyList = "Title,MolecularFormula,MolecularWeight,InChIKey"

// Client queries the compound registry.
type Client struct {
	client *http.Client
	cfg    types.CompoundConfig
	apiKey string
}

// NewClient builds a registry client. An empty apiKey is allowed; the
// registry then applies its anonymous rate limits.
func NewClient(cfg types.CompoundConfig, apiKey string) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		client: &http.Client{Timeout: timeout},
		cfg:    cfg,
		apiKey: apiKey,
	}
}

// PUG REST wraps property rows in a table. MolecularWeight arrives as a
// string.
type propertyResponse struct {
	PropertyTable struct {
		Properties []struct {
			CID              int    `json:"CID"`
			Title            string `json:"Title"`
			MolecularFormula string `json:"MolecularFormula"`
			MolecularWeight  string `json:"MolecularWeight"`
			InChIKey         string `json:"InChIKey"`
		} `json:"Properties"`
	} `json:"PropertyTable"`
}

type synonymResponse struct {
	InformationList struct {
		Information []struct {
			CID     int      `json:"CID"`
			Synonym []string `json:"Synonym"`
		} `json:"Information"`
	} `json:"InformationList"`
}

// LookupName resolves a compound by name.
func (c *Client) LookupName(ctx context.Context, name string) (*types.Compound, error) {
	if name == "" {
		return nil, fmt.Errorf("empty compound name")
	}
	path := fmt.Sprintf("%s/compound/name/%s/property/%s/JSON",
		registryBase, url.PathEscape(name), propertyList)
	return c.lookup(ctx, path)
}

// LookupCID resolves a compound by registry CID.
func (c *Client) LookupCID(ctx context.Context, cid int) (*types.Compound, error) {
	if cid <= 0 {
		return nil, fmt.Errorf("invalid CID %d", cid)
	}
	path := fmt.Sprintf("%s/compound/cid/%d/property/%s/JSON",
		registryBase, cid, propertyList)
	return c.lookup(ctx, path)
}

func (c *Client) lookup(ctx context.Context, reqURL string) (*types.Compound, error) {
	var pr propertyResponse
	if err := c.get(ctx, reqURL, &pr); err != nil {
		return nil, err
	}
	if len(pr.PropertyTable.Properties) == 0 {
		return nil, fmt.Errorf("compound not found")
	}

	p := pr.PropertyTable.Properties[0]
	cmp := &types.Compound{
		CID:      p.CID,
		Name:     p.Title,
		Formula:  p.MolecularFormula,
		InChIKey: p.InChIKey,
	}
	if p.MolecularWeight != "" {
		mw, err := strconv.ParseFloat(p.MolecularWeight, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing molecular weight %q: %w", p.MolecularWeight, err)
		}
		cmp.MolecularWeight = mw
	}
	return cmp, nil
}

// Synonyms returns the registry's synonym list for a CID.
func (c *Client) Synonyms(ctx context.Context, cid int) ([]string, error) {
	path := fmt.Sprintf("%s/compound/cid/%d/synonyms/JSON", registryBase, cid)
	var sr synonymResponse
	if err := c.get(ctx, path, &sr); err != nil {
		return nil, err
	}
	if len(sr.InformationList.Information) == 0 {
		return nil, nil
	}
	return sr.InformationList.Information[0].Synonym, nil
}

func (c *Client) get(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := httputil.DoWithRetry(ctx, c.client, req, c.cfg.MaxRetries)
	if err != nil {
		return fmt.Errorf("registry request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("compound not found")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("registry returned HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing registry response: %w", err)
	}
	return nil
}

// Annotate fills species metadata from a resolved compound. The species
// ID and kinetic fields are left alone; only registry-derived fields are
// written.
func Annotate(sp *document.Species, cmp *types.Compound) {
	sp.CompoundID = strconv.Itoa(cmp.CID)
	if sp.Name == "" {
		sp.Name = cmp.Name
	}
}
