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
	"fmt"
	"io"

	"github.com/tombee/gherkit/internal/gherkin"
	"github.com/tombee/gherkit/internal/runner"
)

var progressChars = map[runner.Status]string{
	runner.StatusPassed:    ".",
	runner.StatusFailed:    "F",
	runner.StatusUndefined: "U",
	runner.StatusPending:   "P",
	runner.StatusAmbiguous: "A",
	runner.StatusSkipped:   "-",
}

// Progress prints one character per step, then the failures and totals.
type Progress struct {
	runner.BaseListener

	w      io.Writer
	opts   Options
	p      painter
	failed []*runner.ScenarioResult
}

// NewProgress returns a progress formatter.
func NewProgress(w io.Writer, opts Options) *Progress {
	return &Progress{w: w, opts: opts, p: painter{color: opts.Color}}
}

func (f *Progress) StepFinished(_ *gherkin.Scenario, res *runner.StepResult) {
	fmt.Fprint(f.w, f.p.status(res.Status, progressChars[res.Status]))
}

func (f *Progress) ScenarioFinished(res *runner.ScenarioResult) {
	if res.Status == runner.StatusFailed {
		f.failed = append(f.failed, res)
	}
}

func (f *Progress) RunFinished(summary *runner.Summary) {
	fmt.Fprint(f.w, "\n\n")

	if len(f.failed) > 0 {
		fmt.Fprintln(f.w, f.p.paint(styleError, "Failures:"))
		fmt.Fprintln(f.w)
		for i, res := range f.failed {
			fmt.Fprintf(f.w, "%d) %s %s\n", i+1, SanitizeANSI(res.Scenario.Name),
				f.p.paint(styleMuted, "# "+location(res.Feature.Path, res.Scenario.Line)))
			if step := res.FailedStep(); step != nil {
				fmt.Fprintf(f.w, "   %s %s\n", step.Step.Keyword, SanitizeANSI(step.Step.Text))
			}
			writeStepError(f.w, "     ", res.Err, f.p)
			fmt.Fprintln(f.w)
		}
	}

	writeSummary(f.w, summary, f.opts, f.p)
}
