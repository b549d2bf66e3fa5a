// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fit drives external parameter-fitting engines. The engines are
// opaque CLIs (CopasiSE-style and PySCeS-style fitters) that consume a
// document archive plus an initial-value file and emit a YAML report of
// fitted parameter values. ODE integration and optimization happen entirely
// inside the engine; this package handles invocation, report parsing, and
// writing fitted values back into a document.
// Implements: prd003-fitting; docs/ARCHITECTURE § Fitting.
package fit

import (
	"context"
	"fmt"
	"io"
	"os/exec"
)

const (
	binCopasi = "copasise"
	binPysces = "pscfit"
)

// Engine invokes one external fitting binary.
type Engine interface {
	// Name returns the engine name ("copasise" or "pscfit").
	Name() string

	// Available reports whether the engine binary exists on PATH and
	// responds to a version probe.
	Available() bool

	// Run executes one fit: document archive in, report file out.
	// It blocks until the engine exits; runs may take minutes.
	Run(ctx context.Context, archivePath, initialsPath, method, reportPath string) error
}

// executor abstracts process execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
	RunContext(ctx context.Context, name string, args []string, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func (o *osExecutor) RunContext(ctx context.Context, name string, args []string, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = stderr
	return cmd.Run()
}

// engine implements Engine for a specific fitter binary. Both fitters share
// the same logic; they differ in binary name and argument convention.
type engine struct {
	bin       string
	buildArgs func(archive, initials, method, report string) []string
	exec      executor
	stderr    io.Writer
}

func (e *engine) Name() string { return e.bin }

func (e *engine) Available() bool {
	if _, err := e.exec.LookPath(e.bin); err != nil {
		return false
	}
	return e.exec.RunSilent(e.bin, "--version") == nil
}

func (e *engine) Run(ctx context.Context, archivePath, initialsPath, method, reportPath string) error {
	args := e.buildArgs(archivePath, initialsPath, method, reportPath)
	if err := e.exec.RunContext(ctx, e.bin, args, e.stderr); err != nil {
		return fmt.Errorf("running %s: %w", e.bin, err)
	}
	return nil
}

func newCopasiEngine(exec executor, stderr io.Writer) *engine {
	return &engine{
		bin: binCopasi,
		buildArgs: func(archive, initials, method, report string) []string {
			return []string{"--fit", "--archive", archive, "--initials", initials,
				"--method", method, "--report", report}
		},
		exec:   exec,
		stderr: stderr,
	}
}

func newPyscesEngine(exec executor, stderr io.Writer) *engine {
	return &engine{
		bin: binPysces,
		buildArgs: func(archive, initials, method, report string) []string {
			return []string{"fit", "-a", archive, "-i", initials, "-m", method, "-o", report}
		},
		exec:   exec,
		stderr: stderr,
	}
}

var defaultExec executor = &osExecutor{}

// DetectEngine returns the named engine, or auto-detects when name is
// empty: copasise first, then pscfit. Returns an error when no engine
// is available.
func DetectEngine(name string, stderr io.Writer) (Engine, error) {
	return detectEngine(defaultExec, name, stderr)
}

func detectEngine(exec executor, name string, stderr io.Writer) (Engine, error) {
	copasi := newCopasiEngine(exec, stderr)
	pysces := newPyscesEngine(exec, stderr)

	switch name {
	case "":
		if copasi.Available() {
			return copasi, nil
		}
		if pysces.Available() {
			return pysces, nil
		}
		return nil, fmt.Errorf(
			"no fitting engine available: neither %s nor %s found or operational",
			binCopasi, binPysces,
		)
	case binCopasi:
		if !copasi.Available() {
			return nil, fmt.Errorf("fitting engine %s not available", binCopasi)
		}
		return copasi, nil
	case binPysces:
		if !pysces.Available() {
			return nil, fmt.Errorf("fitting engine %s not available", binPysces)
		}
		return pysces, nil
	default:
		return nil, fmt.Errorf("unknown fitting engine %q: use %s or %s", name, binCopasi, binPysces)
	}
}
