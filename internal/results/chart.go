// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package results

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Bar colors cycle per engine/method column.
var barPalette = []drawing.Color{
	drawing.ColorFromHex("2563eb"), // blue-600
	drawing.ColorFromHex("dc2626"), // red-600
	drawing.ColorFromHex("16a34a"), // green-600
	drawing.ColorFromHex("9333ea"), // purple-600
}

// Chart renders the comparison table for a document as a grouped bar
// chart PNG under the results charts directory and returns its path.
// Each parameter contributes one bar per engine/method combination.
func (s *Store) Chart(ctx context.Context, document string) (string, error) {
	cmp, err := s.Compare(ctx, document)
	if err != nil {
		return "", err
	}

	var bars []chart.Value
	for _, row := range cmp.Rows {
		for i, col := range cmp.Columns {
			v, ok := row.Values[col]
			if !ok {
				continue
			}
			bars = append(bars, chart.Value{
				Label: fmt.Sprintf("%s\n%s", row.Parameter, col),
				Value: v,
				Style: chart.Style{
					FillColor:   barPalette[i%len(barPalette)],
					StrokeColor: barPalette[i%len(barPalette)],
				},
			})
		}
	}
	if len(bars) == 0 {
		return "", fmt.Errorf("no estimates to chart for document %s", document)
	}

	width := 120 * len(bars)
	if width < 480 {
		width = 480
	}

	graph := chart.BarChart{
		Title:    fmt.Sprintf("Parameter estimates: %s", document),
		Width:    width,
		Height:   420,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.Style{FontSize: 8},
		Bars:  bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return "", fmt.Errorf("rendering chart: %w", err)
	}

	dir := filepath.Join(s.resultsDir, chartsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating charts directory: %w", err)
	}
	path := filepath.Join(dir, document+".png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing chart: %w", err)
	}
	return path, nil
}
