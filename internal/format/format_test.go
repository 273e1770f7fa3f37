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
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gassert "github.com/tombee/gherkit/internal/assert"
	"github.com/tombee/gherkit/internal/gherkin"
	"github.com/tombee/gherkit/internal/runner"
	"github.com/tombee/gherkit/internal/steps"
	gherkiterrors "github.com/tombee/gherkit/pkg/errors"
)

const mixedFeature = `@calc
Feature: Calculator
  Scenario: Passing
    Given a value of 8
    Then the value is 8

  @wip
  Scenario: Failing
    Given a value of 8
    Then the value is 9
    And the value is 8

  Scenario: Undefined
    Given a value of 1
    When I square it
    Then the value is 1
      | ignored |
`

func testRegistry() *steps.Registry {
	reg := steps.NewRegistry()
	reg.Given("a value of {int}", func(sc *steps.Context, n int) {
		sc.Set("value", n)
	})
	reg.Then("the value is {int}", func(sc *steps.Context, want int) error {
		got, err := sc.Int("value")
		if err != nil {
			return err
		}
		return gassert.Equal(want, got)
	})
	reg.Then("the value is {int}:", func(sc *steps.Context, want int, table *steps.Table) error {
		return nil
	})
	return reg
}

func runWith(t *testing.T, src string, l runner.Listener) *runner.Summary {
	t.Helper()
	f, err := gherkin.Parse(strings.NewReader(src), "features/calc.feature")
	require.NoError(t, err)
	summary, _ := runner.New(testRegistry(), runner.Options{}, l).Run(context.Background(), []*gherkin.Feature{f})
	require.NotNil(t, summary)
	return summary
}

func TestNew(t *testing.T) {
	assert.Equal(t, []string{"json", "junit", "pretty", "progress"}, Names())

	for _, name := range Names() {
		l, err := New(name, &bytes.Buffer{}, Options{})
		require.NoError(t, err)
		assert.NotNil(t, l)
	}

	_, err := New("html", &bytes.Buffer{}, Options{})
	var ve *gherkiterrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Suggestion(), "pretty")

	assert.True(t, IsMachineReadable("junit"))
	assert.False(t, IsMachineReadable("pretty"))
}

func TestPretty_Compact(t *testing.T) {
	var buf bytes.Buffer
	runWith(t, mixedFeature, NewPretty(&buf, Options{Snippets: true}))
	out := buf.String()

	assert.Contains(t, out, "Feature: Calculator")
	assert.Contains(t, out, "  ✓ Passing\n")
	assert.Contains(t, out, "  ✗ Failing # features/calc.feature:8")
	assert.Contains(t, out, "✗ Then the value is 9 (failed)")
	assert.Contains(t, out, "Expected: 9")
	assert.Contains(t, out, "Actual:   8")
	assert.Contains(t, out, "⚠ When I square it (undefined)")
	assert.NotContains(t, out, "Given a value of 8", "passing steps are not printed")

	assert.Contains(t, out, "3 scenarios (1 failed, 1 undefined, 1 passed)")
	assert.Contains(t, out, "8 steps (1 failed, 1 undefined, 2 skipped, 4 passed)")
	assert.Contains(t, out, "You can implement the undefined steps with these snippets:")
	assert.Contains(t, out, "reg.Step(`I square it`, iSquareIt)")
	assert.NotContains(t, out, "\x1b[", "no colour unless enabled")
}

func TestPretty_Verbose(t *testing.T) {
	var buf bytes.Buffer
	runWith(t, mixedFeature, NewPretty(&buf, Options{Verbose: true}))
	out := buf.String()

	assert.Contains(t, out, "  @calc\n  Scenario: Passing # features/calc.feature:3")
	assert.Contains(t, out, "    ✓ Given a value of 8\n")
	assert.Contains(t, out, "    - And the value is 8\n")
	assert.Contains(t, out, "        | ignored |")
	assert.NotContains(t, out, "snippets", "snippets disabled")
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	runWith(t, mixedFeature, NewProgress(&buf, Options{}))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "...F-.U-\n"), "got %q", out)
	assert.Contains(t, out, "Failures:")
	assert.Contains(t, out, "1) Failing # features/calc.feature:8")
	assert.Contains(t, out, "   Then the value is 9")
	assert.Contains(t, out, "3 scenarios")
}

func TestJUnit(t *testing.T) {
	var buf bytes.Buffer
	f := NewJUnit(&buf)
	runWith(t, mixedFeature, f)
	require.NoError(t, f.Err())

	assert.True(t, strings.HasPrefix(buf.String(), `<?xml version="1.0" encoding="UTF-8"?>`))

	var report junitTestSuites
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &report))
	assert.Equal(t, 3, report.Tests)
	assert.Equal(t, 2, report.Failures)
	require.Len(t, report.Suites, 1)

	cases := report.Suites[0].TestCases
	require.Len(t, cases, 3)
	assert.Equal(t, "Passing", cases[0].Name)
	assert.Equal(t, "Calculator", cases[0].Classname)
	assert.Nil(t, cases[0].Failure)

	require.NotNil(t, cases[1].Failure)
	assert.Equal(t, "failed", cases[1].Failure.Type)
	assert.Equal(t, "Then the value is 9", cases[1].Failure.Message)
	assert.Contains(t, cases[1].Failure.Content, "expected 9, got 8")
	assert.Contains(t, cases[1].SystemOut, "And the value is 8")

	require.NotNil(t, cases[2].Failure)
	assert.Equal(t, "undefined", cases[2].Failure.Type)
	assert.Contains(t, cases[2].Failure.Content, "func iSquareIt")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSON(&buf)
	runWith(t, mixedFeature, f)
	require.NoError(t, f.Err())

	var report []jsonFeature
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	require.Len(t, report, 1)

	feature := report[0]
	assert.Equal(t, "features/calc.feature", feature.URI)
	assert.Equal(t, "calculator", feature.ID)
	assert.Equal(t, []jsonTag{{Name: "@calc"}}, feature.Tags)
	require.Len(t, feature.Elements, 3)

	failing := feature.Elements[1]
	assert.Equal(t, "calculator;failing", failing.ID)
	assert.Equal(t, []jsonTag{{Name: "@calc"}, {Name: "@wip"}}, failing.Tags)
	require.Len(t, failing.Steps, 3)
	assert.Equal(t, "Then ", failing.Steps[1].Keyword)
	assert.Equal(t, "failed", failing.Steps[1].Result.Status)
	assert.Equal(t, "expected 9, got 8", failing.Steps[1].Result.ErrorMessage)
	require.NotNil(t, failing.Steps[1].Match)
	assert.Contains(t, failing.Steps[1].Match.Location, "format_test.go:")
	assert.Equal(t, "skipped", failing.Steps[2].Result.Status)

	undefined := feature.Elements[2].Steps[1]
	assert.Equal(t, "undefined", undefined.Result.Status)
	assert.Nil(t, undefined.Match)
	assert.Equal(t, []jsonRow{{Cells: []string{"ignored"}}}, feature.Elements[2].Steps[2].Rows)
}

func TestCountsLine(t *testing.T) {
	p := painter{}
	assert.Equal(t, "0 steps", CountsLine("step", runner.Counts{}, p))
	assert.Equal(t, "1 scenario (1 passed)", CountsLine("scenario", runner.Counts{Total: 1, Passed: 1}, p))
	assert.Equal(t, "4 steps (1 ambiguous, 1 pending, 2 passed)",
		CountsLine("step", runner.Counts{Total: 4, Passed: 2, Pending: 1, Ambiguous: 1}, p))
}

func TestRendering(t *testing.T) {
	assert.Equal(t, "plain red", SanitizeANSI("plain \x1b[31mred\x1b[0m"))
	assert.False(t, IsTTY(&bytes.Buffer{}))

	highlighted := HighlightCode("func main() {}", "go")
	assert.Contains(t, highlighted, "main")

	rendered := RenderMarkdown("# Steps\n\nI add numbers", 80)
	assert.Contains(t, rendered, "I add numbers")
}

func TestSymbol(t *testing.T) {
	assert.Equal(t, SymbolOK, Symbol(runner.StatusPassed))
	assert.Equal(t, SymbolError, Symbol(runner.StatusAmbiguous))
	assert.Equal(t, SymbolWarn, Symbol(runner.StatusPending))
	assert.Equal(t, SymbolSkipped, Symbol(runner.StatusSkipped))
}
