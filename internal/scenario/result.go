// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package scenario

import "time"

// Status is the outcome of a step.
type Status string

const (
	StatusPassed  Status = "Passed"
	StatusFailed  Status = "Failed"
	StatusErrored Status = "Errored"
	StatusSkipped Status = "Skipped"
)

// Check is a single expectation evaluated by a step.
type Check struct {
	Name     string `json:"name" yaml:"name"`
	Expected string `json:"expected" yaml:"expected"`
	Actual   string `json:"actual" yaml:"actual"`
	Passed   bool   `json:"passed" yaml:"passed"`
}

// StepResult is the record of one executed step.
type StepResult struct {
	Name   string `json:"name" yaml:"name"`
	Action Action `json:"action" yaml:"action"`
	Status Status `json:"status" yaml:"status"`
	// Buffer is the handle of the buffer the step allocated.
	Buffer   string        `json:"buffer,omitempty" yaml:"buffer,omitempty"`
	Lines    []string      `json:"lines,omitempty" yaml:"lines,omitempty"`
	Checks   []Check       `json:"checks,omitempty" yaml:"checks,omitempty"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Result is the record of a scenario run.
type Result struct {
	ID        string        `json:"id" yaml:"id"`
	Scenario  string        `json:"scenario" yaml:"scenario"`
	StartedAt time.Time     `json:"startedAt" yaml:"startedAt"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	Steps     []StepResult  `json:"steps" yaml:"steps"`
	// Aborted is set when a step marked abortOnError did not pass.
	Aborted bool `json:"aborted" yaml:"aborted"`
}

// Counts tallies step results by status.
type Counts struct {
	Passed  int `json:"passed" yaml:"passed"`
	Failed  int `json:"failed" yaml:"failed"`
	Errored int `json:"errored" yaml:"errored"`
	Skipped int `json:"skipped" yaml:"skipped"`
}

// Counts tallies the step results of the run.
func (r *Result) Counts() Counts {
	var c Counts
	for _, s := range r.Steps {
		switch s.Status {
		case StatusPassed:
			c.Passed++
		case StatusFailed:
			c.Failed++
		case StatusErrored:
			c.Errored++
		case StatusSkipped:
			c.Skipped++
		}
	}
	return c
}

// Failed reports whether any step failed or errored.
func (r *Result) Failed() bool {
	c := r.Counts()
	return c.Failed > 0 || c.Errored > 0
}

// Step returns the result of the step with the given name.
func (r *Result) Step(name string) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return StepResult{}, false
}
