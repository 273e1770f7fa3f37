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

// Package gherkin loads feature files into runnable scenarios.
//
// Parsing and pickle compilation are delegated to the cucumber parser, so
// Background steps are already prepended, Scenario Outline rows expanded and
// tags inherited by the time a Scenario is built. This package adds back the
// keywords and line numbers the compiled pickles drop.
package gherkin

// Feature is a parsed feature file.
type Feature struct {
	Path        string
	Name        string
	Description string
	Keyword     string
	Language    string
	Tags        []string
	Line        int
	Scenarios   []*Scenario
}

// Scenario is one executable scenario. Each Scenario Outline example row
// becomes its own Scenario.
type Scenario struct {
	ID      string
	Name    string
	Keyword string

	// Rule is the enclosing Rule name, empty outside a Rule.
	Rule string

	// Line is the scenario line, or the example row line for an outline.
	Line int

	// DefinitionLine is the Scenario or Scenario Outline keyword line.
	DefinitionLine int

	Tags  []string
	Steps []*Step
}

// Step is a single step line with its optional argument.
type Step struct {
	ID      string
	Keyword string
	Text    string
	Line    int

	Table     [][]string
	DocString *DocString
}

// DocString is a multi-line text block attached to a step.
type DocString struct {
	Content   string
	MediaType string
}

// HasTag reports whether the scenario carries tag (with its @).
func (s *Scenario) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// StepCount returns the total number of steps across all scenarios.
func (f *Feature) StepCount() int {
	n := 0
	for _, s := range f.Scenarios {
		n += len(s.Steps)
	}
	return n
}

// FilterLines keeps only the scenarios selected by lines. A line selects a
// scenario when it is the scenario line, the outline definition line, or
// falls inside the scenario's span before the next scenario starts.
// FilterLines with no lines is a no-op.
func (f *Feature) FilterLines(lines []int) {
	if len(lines) == 0 {
		return
	}

	var kept []*Scenario
	for _, s := range f.Scenarios {
		for _, line := range lines {
			if f.selects(s, line) {
				kept = append(kept, s)
				break
			}
		}
	}
	f.Scenarios = kept
}

func (f *Feature) selects(s *Scenario, line int) bool {
	if line == s.Line || line == s.DefinitionLine {
		return true
	}
	if line < s.DefinitionLine {
		return false
	}

	// Inside the body: the nearest definition at or above line wins.
	nearest := 0
	for _, other := range f.Scenarios {
		if other.DefinitionLine <= line && other.DefinitionLine > nearest {
			nearest = other.DefinitionLine
		}
	}
	if nearest != s.DefinitionLine {
		return false
	}

	// An outline's example rows are matched exactly above; any other line in
	// its body selects every row.
	return !f.isExampleRow(line)
}

func (f *Feature) isExampleRow(line int) bool {
	for _, s := range f.Scenarios {
		if s.Line != s.DefinitionLine && s.Line == line {
			return true
		}
	}
	return false
}
