// Package resolver picks the worker's interpreter and entry script from
// ordered candidate lists. First usable candidate wins.
package resolver

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// ErrResolution is returned when a candidate list has no usable entry.
// It is fatal for the session being constructed.
var ErrResolution = errors.New("no usable candidate")

// Resolved holds the chosen paths for one worker session.
type Resolved struct {
	Interpreter string
	Script      string
}

// Resolver selects the first usable interpreter and script from its
// candidate lists.
type Resolver struct {
	ScriptCandidates      []string
	InterpreterCandidates []string

	// Probe checks that an interpreter candidate actually runs. Existence
	// alone is not enough: a binary may be present but broken. Nil means
	// VersionProbe.
	Probe func(path string) error
}

// VersionProbe runs the candidate with --version and reports whether the
// invocation succeeded.
func VersionProbe(path string) error {
	return exec.Command(path, "--version").Run()
}

// Resolve returns the first existing script and the first interpreter whose
// probe succeeds. Either list exhausting fails with ErrResolution.
func (r *Resolver) Resolve() (Resolved, error) {
	script, err := r.resolveScript()
	if err != nil {
		return Resolved{}, err
	}

	interp, err := r.resolveInterpreter()
	if err != nil {
		return Resolved{}, err
	}

	return Resolved{Interpreter: interp, Script: script}, nil
}

func (r *Resolver) resolveScript() (string, error) {
	for _, candidate := range r.ScriptCandidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("worker script (%d candidates): %w", len(r.ScriptCandidates), ErrResolution)
}

func (r *Resolver) resolveInterpreter() (string, error) {
	probe := r.Probe
	if probe == nil {
		probe = VersionProbe
	}

	for _, candidate := range r.InterpreterCandidates {
		if err := probe(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("interpreter (%d candidates): %w", len(r.InterpreterCandidates), ErrResolution)
}
