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
	"strings"

	"github.com/tombee/gherkit/internal/gherkin"
	"github.com/tombee/gherkit/internal/runner"
)

// Pretty prints features as they run. In verbose mode every step is
// printed with its outcome; otherwise one line per scenario plus the
// details of the step that stopped it.
type Pretty struct {
	runner.BaseListener

	w    io.Writer
	opts Options
	p    painter
}

// NewPretty returns a pretty formatter.
func NewPretty(w io.Writer, opts Options) *Pretty {
	return &Pretty{w: w, opts: opts, p: painter{color: opts.Color}}
}

func (f *Pretty) FeatureStarted(feature *gherkin.Feature) {
	fmt.Fprintf(f.w, "%s %s\n", f.p.paint(styleHeader, feature.Keyword+":"), f.p.paint(styleBold, SanitizeANSI(feature.Name)))
	if f.opts.Verbose && feature.Description != "" {
		for _, line := range strings.Split(feature.Description, "\n") {
			fmt.Fprintf(f.w, "  %s\n", f.p.paint(styleMuted, strings.TrimSpace(line)))
		}
	}
	fmt.Fprintln(f.w)
}

func (f *Pretty) ScenarioStarted(feature *gherkin.Feature, scenario *gherkin.Scenario) {
	if !f.opts.Verbose {
		return
	}
	if len(scenario.Tags) > 0 {
		fmt.Fprintf(f.w, "  %s\n", f.p.paint(styleInfo, strings.Join(scenario.Tags, " ")))
	}
	fmt.Fprintf(f.w, "  %s: %s %s\n",
		scenario.Keyword,
		SanitizeANSI(scenario.Name),
		f.p.paint(styleMuted, "# "+location(feature.Path, scenario.Line)),
	)
}

func (f *Pretty) StepFinished(_ *gherkin.Scenario, res *runner.StepResult) {
	if !f.opts.Verbose {
		return
	}
	f.writeStep("    ", res)
}

func (f *Pretty) ScenarioFinished(res *runner.ScenarioResult) {
	if f.opts.Verbose {
		if res.Err != nil && res.FailedStep() == nil {
			writeStepError(f.w, "      ", res.Err, f.p)
		}
		fmt.Fprintln(f.w)
		return
	}

	fmt.Fprintf(f.w, "  %s %s", f.p.status(res.Status, Symbol(res.Status)), SanitizeANSI(res.Scenario.Name))
	if res.Status != runner.StatusPassed {
		fmt.Fprintf(f.w, " %s", f.p.paint(styleMuted, "# "+location(res.Feature.Path, res.Scenario.Line)))
	}
	fmt.Fprintln(f.w)

	if failed := res.FailedStep(); failed != nil {
		f.writeStep("      ", failed)
	} else if res.Err != nil {
		writeStepError(f.w, "      ", res.Err, f.p)
	}
}

func (f *Pretty) FeatureFinished(*runner.FeatureResult) {
	if !f.opts.Verbose {
		fmt.Fprintln(f.w)
	}
}

func (f *Pretty) RunFinished(summary *runner.Summary) {
	writeSummary(f.w, summary, f.opts, f.p)
}

func (f *Pretty) writeStep(indent string, res *runner.StepResult) {
	step := res.Step
	text := fmt.Sprintf("%s %s", step.Keyword, SanitizeANSI(step.Text))
	line := fmt.Sprintf("%s%s %s", indent, f.p.status(res.Status, Symbol(res.Status)), f.p.status(res.Status, text))
	if res.Status != runner.StatusPassed && res.Status != runner.StatusSkipped {
		line += " " + f.p.paint(styleMuted, "("+string(res.Status)+")")
	}
	fmt.Fprintln(f.w, line)

	if f.opts.Verbose {
		for _, row := range step.Table {
			fmt.Fprintf(f.w, "%s    | %s |\n", indent, strings.Join(row, " | "))
		}
		if step.DocString != nil {
			fmt.Fprintf(f.w, "%s    \"\"\"%s\n", indent, step.DocString.MediaType)
			for _, l := range strings.Split(step.DocString.Content, "\n") {
				fmt.Fprintf(f.w, "%s    %s\n", indent, l)
			}
			fmt.Fprintf(f.w, "%s    \"\"\"\n", indent)
		}
	}

	if res.Status == runner.StatusFailed || res.Status == runner.StatusAmbiguous {
		writeStepError(f.w, indent+"    ", res.Err, f.p)
	}
}
