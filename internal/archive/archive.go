// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive persists experiment documents as ZIP containers holding a
// YAML model description and CSV measurement data. Saving runs the document
// consistency check first and writes the file in one step, so a failed
// check leaves no partial archive behind. Implements: prd002-document;
//
//	docs/ARCHITECTURE § Document Archives.
package archive

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/kinetics-engine/internal/document"
)

const (
	manifestFile  = "manifest.yaml"
	modelFile     = "model.yaml"
	dataDir       = "data"
	formatName    = "kinetics-archive"
	formatVersion = 1

	// Ext is the archive file extension.
	Ext = ".omex"
)

// manifest describes the archive contents.
type manifest struct {
	Name     string   `yaml:"name"`
	Format   string   `yaml:"format"`
	Version  int      `yaml:"version"`
	Created  string   `yaml:"created"`
	Contents []string `yaml:"contents"`
}

// body is the on-disk form of the document model. Measurement numbers live
// in per-measurement CSV files; the body carries only their metadata.
type body struct {
	Name             string                     `yaml:"name"`
	Species          []document.Species         `yaml:"species"`
	Reactions        []document.Reaction        `yaml:"reactions"`
	GlobalParameters []document.GlobalParameter `yaml:"global_parameters,omitempty"`
	Measurements     []measurementMeta          `yaml:"measurements,omitempty"`
}

type measurementMeta struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name,omitempty"`
	TimeUnit string `yaml:"time_unit,omitempty"`
	DataUnit string `yaml:"data_unit,omitempty"`
}

// Save checks the document, promotes shared parameters to globals, and
// writes the archive to dir/name + ".omex". It returns the written path.
// The archive is assembled fully in memory; a consistency failure aborts
// before anything touches the filesystem.
func Save(doc *document.Document, dir, name string) (string, error) {
	if err := document.Check(doc); err != nil {
		return "", err
	}
	if err := doc.PromoteSharedParameters(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	b := body{
		Name:             doc.Name(),
		Species:          doc.Species(),
		Reactions:        doc.Reactions(),
		GlobalParameters: doc.GlobalParameters(),
	}

	contents := []string{modelFile}
	for _, m := range doc.Measurements() {
		b.Measurements = append(b.Measurements, measurementMeta{
			ID:       m.ID,
			Name:     m.Name,
			TimeUnit: m.TimeUnit,
			DataUnit: m.DataUnit,
		})
		contents = append(contents, path.Join(dataDir, m.ID+".csv"))
	}

	modelData, err := yaml.Marshal(&b)
	if err != nil {
		return "", fmt.Errorf("marshaling model: %w", err)
	}
	if err := writeEntry(zw, modelFile, modelData); err != nil {
		return "", err
	}

	for _, m := range doc.Measurements() {
		csvData, err := marshalMeasurement(m)
		if err != nil {
			return "", fmt.Errorf("encoding measurement %s: %w", m.ID, err)
		}
		if err := writeEntry(zw, path.Join(dataDir, m.ID+".csv"), csvData); err != nil {
			return "", err
		}
	}

	man := manifest{
		Name:     doc.Name(),
		Format:   formatName,
		Version:  formatVersion,
		Created:  time.Now().UTC().Format(time.RFC3339),
		Contents: contents,
	}
	manData, err := yaml.Marshal(&man)
	if err != nil {
		return "", fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := writeEntry(zw, manifestFile, manData); err != nil {
		return "", err
	}

	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("finalizing archive: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	outPath := filepath.Join(dir, name+Ext)
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing archive: %w", err)
	}
	return outPath, nil
}

// Load reads an archive back into a Document.
func Load(archivePath string) (*document.Document, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", archivePath, err)
	}
	defer zr.Close()

	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		entries[f.Name] = f
	}

	modelEntry, ok := entries[modelFile]
	if !ok {
		return nil, fmt.Errorf("archive %s: missing %s", archivePath, modelFile)
	}
	modelData, err := readEntry(modelEntry)
	if err != nil {
		return nil, err
	}

	var b body
	if err := yaml.Unmarshal(modelData, &b); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", modelFile, err)
	}

	doc := document.New(b.Name)
	for _, s := range b.Species {
		if err := doc.AddSpecies(s); err != nil {
			return nil, fmt.Errorf("archive %s: %w", archivePath, err)
		}
	}
	for _, r := range b.Reactions {
		if err := doc.AddReaction(r); err != nil {
			return nil, fmt.Errorf("archive %s: %w", archivePath, err)
		}
	}
	for _, g := range b.GlobalParameters {
		if err := doc.UpsertGlobalParameter(g); err != nil {
			return nil, fmt.Errorf("archive %s: %w", archivePath, err)
		}
	}

	for _, meta := range b.Measurements {
		entry, ok := entries[path.Join(dataDir, meta.ID+".csv")]
		if !ok {
			return nil, fmt.Errorf("archive %s: measurement %s listed but data file missing", archivePath, meta.ID)
		}
		csvData, err := readEntry(entry)
		if err != nil {
			return nil, err
		}
		series, err := unmarshalSeries(csvData)
		if err != nil {
			return nil, fmt.Errorf("measurement %s: %w", meta.ID, err)
		}
		if err := doc.AddMeasurement(document.Measurement{
			ID:       meta.ID,
			Name:     meta.Name,
			TimeUnit: meta.TimeUnit,
			DataUnit: meta.DataUnit,
			Series:   series,
		}); err != nil {
			return nil, fmt.Errorf("archive %s: %w", archivePath, err)
		}
	}

	return doc, nil
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("creating archive entry %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing archive entry %s: %w", name, err)
	}
	return nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening archive entry %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading archive entry %s: %w", f.Name, err)
	}
	return data, nil
}

// marshalMeasurement writes one measurement as long-format CSV:
// time,species,value with one row per data point.
func marshalMeasurement(m document.Measurement) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"time", "species", "value"}); err != nil {
		return nil, err
	}
	for _, s := range m.Series {
		for i := range s.Time {
			row := []string{
				strconv.FormatFloat(s.Time[i], 'g', -1, 64),
				s.SpeciesID,
				strconv.FormatFloat(s.Values[i], 'g', -1, 64),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// unmarshalSeries reads long-format CSV back into per-species series,
// preserving first-appearance order.
func unmarshalSeries(data []byte) ([]document.TimeSeries, error) {
	r := csv.NewReader(bytes.NewReader(data))
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var (
		order []string
		byID  = make(map[string]*document.TimeSeries)
	)
	for i, row := range rows[1:] {
		if len(row) != 3 {
			return nil, fmt.Errorf("row %d: expected 3 columns, got %d", i+2, len(row))
		}
		tv, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad time %q", i+2, row[0])
		}
		vv, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad value %q", i+2, row[2])
		}
		s, ok := byID[row[1]]
		if !ok {
			s = &document.TimeSeries{SpeciesID: row[1]}
			byID[row[1]] = s
			order = append(order, row[1])
		}
		s.Time = append(s.Time, tv)
		s.Values = append(s.Values, vv)
	}

	series := make([]document.TimeSeries, len(order))
	for i, id := range order {
		series[i] = *byID[id]
	}
	return series, nil
}
