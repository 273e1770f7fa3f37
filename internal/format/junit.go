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

package format

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/tombee/gherkit/internal/runner"
)

// JUnit XML schema types
type junitTestSuites struct {
	XMLName  xml.Name         `xml:"testsuites"`
	Name     string           `xml:"name,attr"`
	Tests    int              `xml:"tests,attr"`
	Failures int              `xml:"failures,attr"`
	Skipped  int              `xml:"skipped,attr"`
	Time     string           `xml:"time,attr"`
	Suites   []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Skipped   int             `xml:"skipped,attr"`
	Time      string          `xml:"time,attr"`
	TestCases []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
	Skipped   *struct{}     `xml:"skipped,omitempty"`
	SystemOut string        `xml:"system-out,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Content string `xml:",chardata"`
}

// JUnit writes a JUnit XML report when the run finishes. Features map to
// test suites and scenarios to test cases.
type JUnit struct {
	runner.BaseListener

	w   io.Writer
	err error
}

// NewJUnit returns a JUnit formatter.
func NewJUnit(w io.Writer) *JUnit {
	return &JUnit{w: w}
}

// Err returns the error from writing the report, if any.
func (f *JUnit) Err() error { return f.err }

func (f *JUnit) RunFinished(summary *runner.Summary) {
	f.err = writeJUnit(f.w, summary)
}

func writeJUnit(w io.Writer, summary *runner.Summary) error {
	root := junitTestSuites{
		Name: "gherkit",
		Time: seconds(summary.Duration.Seconds()),
	}

	for _, fr := range summary.Features {
		suite := junitTestSuite{
			Name: fr.Feature.Name,
			Time: seconds(fr.Duration.Seconds()),
		}

		for _, sr := range fr.Scenarios {
			tc := junitTestCase{
				Name:      sr.Scenario.Name,
				Classname: fr.Feature.Name,
				Time:      seconds(sr.Duration.Seconds()),
				SystemOut: stepLog(sr),
			}

			switch sr.Status {
			case runner.StatusPassed:
			case runner.StatusSkipped:
				tc.Skipped = &struct{}{}
				suite.Skipped++
			default:
				tc.Failure = junitFailureFor(sr)
				suite.Failures++
			}

			suite.Tests++
			suite.TestCases = append(suite.TestCases, tc)
		}

		root.Tests += suite.Tests
		root.Failures += suite.Failures
		root.Skipped += suite.Skipped
		root.Suites = append(root.Suites, suite)
	}

	output, err := xml.MarshalIndent(root, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JUnit XML: %w", err)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write JUnit XML: %w", err)
	}
	if _, err := w.Write(output); err != nil {
		return fmt.Errorf("failed to write JUnit XML: %w", err)
	}
	_, err = io.WriteString(w, "\n")
	return err
}

func junitFailureFor(sr *runner.ScenarioResult) *junitFailure {
	failure := &junitFailure{Type: string(sr.Status)}

	step := sr.FailedStep()
	if step == nil {
		if sr.Err != nil {
			failure.Message = sr.Err.Error()
			failure.Content = sr.Err.Error()
		}
		return failure
	}

	failure.Type = string(step.Status)
	failure.Message = fmt.Sprintf("%s %s", step.Step.Keyword, step.Step.Text)
	if step.Err != nil {
		failure.Content = step.Err.Error()
	}
	if step.Snippet != nil {
		failure.Content = "Undefined step. Implement it with:\n\n" + step.Snippet.Code()
	}
	return failure
}

// stepLog lists every step with its outcome, cucumber-junit style.
func stepLog(sr *runner.ScenarioResult) string {
	var b strings.Builder
	for _, st := range sr.Steps {
		text := fmt.Sprintf("%s %s", st.Step.Keyword, st.Step.Text)
		dots := 60 - len(text)
		if dots < 3 {
			dots = 3
		}
		fmt.Fprintf(&b, "%s%s%s\n", text, strings.Repeat(".", dots), st.Status)
	}
	return b.String()
}

func seconds(s float64) string {
	return fmt.Sprintf("%.3f", s)
}
