// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/kinetics-engine/internal/archive"
	"github.com/pdiddy/kinetics-engine/internal/document"
	"github.com/pdiddy/kinetics-engine/pkg/types"
)

// Session binds a fitting engine to one document archive and one
// initial-value file. Optimize may be called several times with different
// methods; WriteDocument substitutes the latest estimates into a fresh
// copy of the document.
type Session struct {
	engine       Engine
	archivePath  string
	initialsPath string
	workDir      string
	last         *types.FitResult
}

// NewSession validates the input paths and prepares a working directory
// for engine reports. An empty workDir uses a per-session temporary
// directory.
func NewSession(engine Engine, archivePath, initialsPath, workDir string) (*Session, error) {
	if _, err := os.Stat(archivePath); err != nil {
		return nil, fmt.Errorf("document archive: %w", err)
	}
	if _, err := os.Stat(initialsPath); err != nil {
		return nil, fmt.Errorf("initial-value file: %w", err)
	}
	if workDir == "" {
		tmp, err := os.MkdirTemp("", "kinetics-fit-")
		if err != nil {
			return nil, fmt.Errorf("creating work directory: %w", err)
		}
		workDir = tmp
	} else if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating work directory: %w", err)
	}

	return &Session{
		engine:       engine,
		archivePath:  archivePath,
		initialsPath: initialsPath,
		workDir:      workDir,
	}, nil
}

// report is the YAML document the engines write.
type report struct {
	Method    string           `yaml:"method"`
	Objective float64          `yaml:"objective"`
	Estimates []reportEstimate `yaml:"estimates"`
}

type reportEstimate struct {
	Reaction  string  `yaml:"reaction,omitempty"`
	Parameter string  `yaml:"parameter"`
	Value     float64 `yaml:"value"`
	StdDev    float64 `yaml:"std_dev,omitempty"`
	Unit      string  `yaml:"unit,omitempty"`
}

// Optimize runs the engine with the given method and returns the parsed
// fit result. The call blocks for the duration of the engine run.
func (s *Session) Optimize(ctx context.Context, method string) (types.FitResult, error) {
	if method == "" {
		return types.FitResult{}, fmt.Errorf("optimization method required")
	}

	reportPath := filepath.Join(s.workDir, "report-"+method+".yaml")
	start := time.Now()

	if err := s.engine.Run(ctx, s.archivePath, s.initialsPath, method, reportPath); err != nil {
		return types.FitResult{}, err
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		return types.FitResult{}, fmt.Errorf("%s produced no report: %w", s.engine.Name(), err)
	}
	var rep report
	if err := yaml.Unmarshal(data, &rep); err != nil {
		return types.FitResult{}, fmt.Errorf("parsing %s report: %w", s.engine.Name(), err)
	}
	if len(rep.Estimates) == 0 {
		return types.FitResult{}, fmt.Errorf("%s report contains no estimates", s.engine.Name())
	}

	result := types.FitResult{
		Document:  documentName(s.archivePath),
		Engine:    s.engine.Name(),
		Method:    method,
		Objective: rep.Objective,
		Duration:  time.Since(start),
		Timestamp: time.Now().UTC(),
	}
	for _, e := range rep.Estimates {
		result.Estimates = append(result.Estimates, types.ParameterEstimate{
			ReactionID: e.Reaction,
			Parameter:  e.Parameter,
			Value:      e.Value,
			StdDev:     e.StdDev,
			Unit:       e.Unit,
		})
	}

	s.last = &result
	return result, nil
}

// WriteDocument loads the session's archive and substitutes the latest
// fitted values for the initial estimates, returning the new document.
// The caller decides where to save it.
func (s *Session) WriteDocument() (*document.Document, error) {
	if s.last == nil {
		return nil, fmt.Errorf("no fit result: call Optimize first")
	}

	doc, err := archive.Load(s.archivePath)
	if err != nil {
		return nil, err
	}
	for _, e := range s.last.Estimates {
		if err := doc.ApplyEstimate(e.ReactionID, e.Parameter, e.Value); err != nil {
			return nil, fmt.Errorf("substituting fitted value: %w", err)
		}
	}
	return doc, nil
}

// documentName derives the document name from the archive filename.
func documentName(archivePath string) string {
	return strings.TrimSuffix(filepath.Base(archivePath), archive.Ext)
}
