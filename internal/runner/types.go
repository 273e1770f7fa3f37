// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package runner

import (
	"time"

	"github.com/tombee/gherkit/internal/gherkin"
	"github.com/tombee/gherkit/internal/steps"
)

// Status is the outcome of a step or scenario.
type Status string

const (
	// StatusPassed indicates the handler returned nil
	StatusPassed Status = "passed"
	// StatusFailed indicates the handler or a hook returned an error
	StatusFailed Status = "failed"
	// StatusUndefined indicates no definition matched the step text
	StatusUndefined Status = "undefined"
	// StatusPending indicates the handler returned steps.ErrPending
	StatusPending Status = "pending"
	// StatusAmbiguous indicates several definitions matched the step text
	StatusAmbiguous Status = "ambiguous"
	// StatusSkipped indicates the step or scenario did not run
	StatusSkipped Status = "skipped"
)

// severity orders scenario outcomes; the highest step severity wins.
var severity = map[Status]int{
	StatusPassed:    0,
	StatusSkipped:   1,
	StatusPending:   2,
	StatusUndefined: 3,
	StatusFailed:    4,
}

// StepResult is the outcome of one step.
type StepResult struct {
	Step     *gherkin.Step
	Status   Status
	Duration time.Duration
	Err      error

	// Definition is the matched definition, nil when undefined or ambiguous.
	Definition *steps.Definition

	// Snippet is set for undefined steps.
	Snippet *steps.Snippet

	FinishedAt time.Time
}

// ScenarioResult is the outcome of one scenario.
type ScenarioResult struct {
	Feature  *gherkin.Feature
	Scenario *gherkin.Scenario
	Status   Status
	Duration time.Duration
	Steps    []*StepResult

	// Err is the first error that decided the status: a step error or a
	// hook error.
	Err error
}

// FailedStep returns the first step that did not pass or skip.
func (r *ScenarioResult) FailedStep() *StepResult {
	for _, s := range r.Steps {
		if s.Status != StatusPassed && s.Status != StatusSkipped {
			return s
		}
	}
	return nil
}

// FeatureResult groups the scenario results of one feature.
type FeatureResult struct {
	Feature   *gherkin.Feature
	Scenarios []*ScenarioResult
	Duration  time.Duration
}

// Status returns the most severe scenario status.
func (r *FeatureResult) Status() Status {
	status := StatusPassed
	for _, s := range r.Scenarios {
		if severity[s.Status] > severity[status] {
			status = s.Status
		}
	}
	return status
}

// Counts tallies outcomes by status.
type Counts struct {
	Total     int `json:"total"`
	Passed    int `json:"passed"`
	Failed    int `json:"failed"`
	Undefined int `json:"undefined"`
	Pending   int `json:"pending"`
	Ambiguous int `json:"ambiguous"`
	Skipped   int `json:"skipped"`
}

// Add records one outcome.
func (c *Counts) Add(status Status) {
	c.Total++
	switch status {
	case StatusPassed:
		c.Passed++
	case StatusFailed:
		c.Failed++
	case StatusUndefined:
		c.Undefined++
	case StatusPending:
		c.Pending++
	case StatusAmbiguous:
		c.Ambiguous++
	case StatusSkipped:
		c.Skipped++
	}
}

// RunInfo describes a run as it starts.
type RunInfo struct {
	ID        string
	StartedAt time.Time
	Features  []*gherkin.Feature
}

// Summary aggregates the results of a run.
type Summary struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration

	Features  []*FeatureResult
	Scenarios Counts
	Steps     Counts

	// Snippets proposes definitions for undefined steps, one per pattern.
	Snippets []steps.Snippet

	// Interrupted is set when the context was cancelled mid-run.
	Interrupted bool
}

// OK reports whether every executed scenario passed.
func (s *Summary) OK() bool {
	c := s.Scenarios
	return !s.Interrupted && c.Failed == 0 && c.Undefined == 0 && c.Pending == 0 && c.Ambiguous == 0
}

// Status is StatusPassed when OK, StatusFailed otherwise.
func (s *Summary) Status() Status {
	if s.OK() {
		return StatusPassed
	}
	return StatusFailed
}
