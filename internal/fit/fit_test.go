// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fit

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/kinetics-engine/internal/archive"
	"github.com/pdiddy/kinetics-engine/internal/document"
	"github.com/pdiddy/kinetics-engine/internal/ratelaw"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool // binary -> whether LookPath succeeds
	versionOK     map[string]bool // binary -> whether the version probe succeeds
	runFunc       func(name string, args []string) error
	lastArgs      []string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) RunSilent(name string, args ...string) error {
	if m.versionOK[name] {
		return nil
	}
	return errors.New("probe failed: " + name)
}

func (m *mockExecutor) RunContext(_ context.Context, name string, args []string, _ io.Writer) error {
	m.lastArgs = append([]string{name}, args...)
	if m.runFunc != nil {
		return m.runFunc(name, args)
	}
	return nil
}

func TestDetectEngine(t *testing.T) {
	tests := []struct {
		name     string
		exec     *mockExecutor
		request  string
		wantName string
		wantErr  string
	}{
		{
			name: "copasise preferred on auto-detect",
			exec: &mockExecutor{
				availableBins: map[string]bool{"copasise": true, "pscfit": true},
				versionOK:     map[string]bool{"copasise": true, "pscfit": true},
			},
			wantName: "copasise",
		},
		{
			name: "pscfit fallback",
			exec: &mockExecutor{
				availableBins: map[string]bool{"pscfit": true},
				versionOK:     map[string]bool{"pscfit": true},
			},
			wantName: "pscfit",
		},
		{
			name: "binary on PATH but probe fails",
			exec: &mockExecutor{
				availableBins: map[string]bool{"copasise": true, "pscfit": true},
				versionOK:     map[string]bool{"pscfit": true},
			},
			wantName: "pscfit",
		},
		{
			name:    "neither available",
			exec:    &mockExecutor{},
			wantErr: "no fitting engine available",
		},
		{
			name: "explicit request honored",
			exec: &mockExecutor{
				availableBins: map[string]bool{"copasise": true, "pscfit": true},
				versionOK:     map[string]bool{"copasise": true, "pscfit": true},
			},
			request:  "pscfit",
			wantName: "pscfit",
		},
		{
			name: "explicit request for missing engine",
			exec: &mockExecutor{
				availableBins: map[string]bool{"pscfit": true},
				versionOK:     map[string]bool{"pscfit": true},
			},
			request: "copasise",
			wantErr: "not available",
		},
		{
			name:    "unknown engine name",
			exec:    &mockExecutor{},
			request: "gepasi",
			wantErr: "unknown fitting engine",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, err := detectEngine(tt.exec, tt.request, io.Discard)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error = %v, want substring %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("detectEngine() error: %v", err)
			}
			if eng.Name() != tt.wantName {
				t.Errorf("engine = %q, want %q", eng.Name(), tt.wantName)
			}
		})
	}
}

// fixtureArchive writes a minimal one-reaction archive and initial-value
// file and returns their paths.
func fixtureArchive(t *testing.T) (archivePath, initialsPath string) {
	t.Helper()
	dir := t.TempDir()

	d := document.New("cex")
	if err := d.AddSpecies(document.Species{ID: "CEX", Unit: "mM"}); err != nil {
		t.Fatal(err)
	}
	if err := d.AddReaction(document.Reaction{
		ID:     "hydrolysis",
		Educts: []document.ReactionElement{{SpeciesID: "CEX", Stoichiometry: 1}},
	}); err != nil {
		t.Fatal(err)
	}
	tmpl, _ := ratelaw.Lookup("michaelis-menten")
	m, err := tmpl.Bind(map[string]ratelaw.Assignment{
		"substrate": ratelaw.ToSpecies("CEX"),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.SetModel("hydrolysis", m); err != nil {
		t.Fatal(err)
	}

	archivePath, err = archive.Save(d, dir, "cex")
	if err != nil {
		t.Fatal(err)
	}

	initialsPath = filepath.Join(dir, "init.toml")
	if err := os.WriteFile(initialsPath, []byte("[hydrolysis]\nv_max = 1.0\nK_m = 0.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return archivePath, initialsPath
}

const cannedReport = `method: levenberg-marquardt
objective: 0.0042
estimates:
  - reaction: hydrolysis
    parameter: v_max
    value: 1.85
    std_dev: 0.11
    unit: mM/min
  - reaction: hydrolysis
    parameter: K_m
    value: 0.62
    unit: mM
`

// reportWritingExec simulates an engine by writing a canned report to the
// path given in the engine's arguments.
func reportWritingExec(report string) *mockExecutor {
	m := &mockExecutor{
		availableBins: map[string]bool{"copasise": true},
		versionOK:     map[string]bool{"copasise": true},
	}
	m.runFunc = func(_ string, args []string) error {
		// The report path is the argument following --report or -o.
		for i, a := range args {
			if (a == "--report" || a == "-o") && i+1 < len(args) {
				return os.WriteFile(args[i+1], []byte(report), 0o644)
			}
		}
		return errors.New("no report path in args")
	}
	return m
}

func TestOptimize(t *testing.T) {
	archivePath, initialsPath := fixtureArchive(t)
	exec := reportWritingExec(cannedReport)

	eng, err := detectEngine(exec, "copasise", io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	sess, err := NewSession(eng, archivePath, initialsPath, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	result, err := sess.Optimize(context.Background(), "levenberg-marquardt")
	if err != nil {
		t.Fatalf("Optimize() error: %v", err)
	}

	if result.Engine != "copasise" || result.Method != "levenberg-marquardt" {
		t.Errorf("result identity = %s/%s", result.Engine, result.Method)
	}
	if result.Document != "cex" {
		t.Errorf("document = %q, want cex", result.Document)
	}
	if result.Objective != 0.0042 {
		t.Errorf("objective = %v", result.Objective)
	}
	if len(result.Estimates) != 2 {
		t.Fatalf("estimates = %d, want 2", len(result.Estimates))
	}
	if e := result.Estimates[0]; e.Parameter != "v_max" || e.Value != 1.85 || e.StdDev != 0.11 {
		t.Errorf("first estimate = %+v", e)
	}

	// The engine was invoked with the session's inputs.
	joined := strings.Join(exec.lastArgs, " ")
	if !strings.Contains(joined, archivePath) || !strings.Contains(joined, initialsPath) {
		t.Errorf("engine args missing inputs: %v", exec.lastArgs)
	}
}

func TestOptimizeEngineFailure(t *testing.T) {
	archivePath, initialsPath := fixtureArchive(t)
	exec := &mockExecutor{
		availableBins: map[string]bool{"copasise": true},
		versionOK:     map[string]bool{"copasise": true},
		runFunc: func(string, []string) error {
			return errors.New("integration diverged")
		},
	}

	eng, _ := detectEngine(exec, "copasise", io.Discard)
	sess, err := NewSession(eng, archivePath, initialsPath, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	_, err = sess.Optimize(context.Background(), "hooke-jeeves")
	if err == nil || !strings.Contains(err.Error(), "integration diverged") {
		t.Errorf("error = %v, want engine failure", err)
	}
}

func TestOptimizeEmptyReport(t *testing.T) {
	archivePath, initialsPath := fixtureArchive(t)
	exec := reportWritingExec("method: x\nobjective: 0\nestimates: []\n")

	eng, _ := detectEngine(exec, "copasise", io.Discard)
	sess, err := NewSession(eng, archivePath, initialsPath, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	_, err = sess.Optimize(context.Background(), "particle-swarm")
	if err == nil || !strings.Contains(err.Error(), "no estimates") {
		t.Errorf("error = %v, want no-estimates failure", err)
	}
}

func TestWriteDocument(t *testing.T) {
	archivePath, initialsPath := fixtureArchive(t)
	exec := reportWritingExec(cannedReport)

	eng, _ := detectEngine(exec, "copasise", io.Discard)
	sess, err := NewSession(eng, archivePath, initialsPath, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := sess.WriteDocument(); err == nil {
		t.Error("WriteDocument before Optimize should fail")
	}

	if _, err := sess.Optimize(context.Background(), "levenberg-marquardt"); err != nil {
		t.Fatal(err)
	}

	doc, err := sess.WriteDocument()
	if err != nil {
		t.Fatalf("WriteDocument() error: %v", err)
	}

	r, ok := doc.Reaction("hydrolysis")
	if !ok || r.Model == nil {
		t.Fatal("fitted document lost its reaction model")
	}
	p, ok := r.Model.Parameter("v_max")
	if !ok || p.Value == nil || *p.Value != 1.85 {
		t.Errorf("v_max after substitution = %+v", p)
	}
}

func TestNewSessionValidatesInputs(t *testing.T) {
	archivePath, initialsPath := fixtureArchive(t)
	eng := newCopasiEngine(&mockExecutor{}, io.Discard)

	if _, err := NewSession(eng, "missing.omex", initialsPath, ""); err == nil {
		t.Error("missing archive should fail")
	}
	if _, err := NewSession(eng, archivePath, "missing.toml", ""); err == nil {
		t.Error("missing initial-value file should fail")
	}
}
