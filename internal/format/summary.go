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
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tombee/gherkit/internal/assert"
	"github.com/tombee/gherkit/internal/runner"
)

// CountsLine renders counts the way the summary prints them, for example
// "3 scenarios (1 failed, 2 passed)".
func CountsLine(noun string, c runner.Counts, p painter) string {
	if c.Total != 1 {
		noun += "s"
	}
	head := fmt.Sprintf("%d %s", c.Total, noun)
	if c.Total == 0 {
		return head
	}

	parts := []struct {
		n      int
		status runner.Status
	}{
		{c.Failed, runner.StatusFailed},
		{c.Ambiguous, runner.StatusAmbiguous},
		{c.Undefined, runner.StatusUndefined},
		{c.Pending, runner.StatusPending},
		{c.Skipped, runner.StatusSkipped},
		{c.Passed, runner.StatusPassed},
	}
	var out []string
	for _, part := range parts {
		if part.n == 0 {
			continue
		}
		out = append(out, p.status(part.status, fmt.Sprintf("%d %s", part.n, part.status)))
	}
	return head + " (" + strings.Join(out, ", ") + ")"
}

// writeSummary prints the totals, failures recap and snippets shared by the
// pretty and progress formatters.
func writeSummary(w io.Writer, s *runner.Summary, opts Options, p painter) {
	fmt.Fprintln(w, CountsLine("scenario", s.Scenarios, p))
	fmt.Fprintln(w, CountsLine("step", s.Steps, p))
	fmt.Fprintln(w, p.paint(styleMuted, "Finished in "+formatDuration(s.Duration)))
	if s.Interrupted {
		fmt.Fprintln(w, p.paint(styleWarn, "Run interrupted"))
	}

	if opts.Snippets && len(s.Snippets) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, p.paint(styleInfo, "You can implement the undefined steps with these snippets:"))
		fmt.Fprintln(w)
		for _, snippet := range s.Snippets {
			code := snippet.Code()
			if p.color {
				code = HighlightCode(code, "go")
			}
			fmt.Fprintln(w, code)
		}
	}
}

// writeStepError prints a failing step's error indented under the step. An
// assertion failure is split into expected and actual lines.
func writeStepError(w io.Writer, indent string, err error, p painter) {
	if err == nil {
		return
	}

	var failure *assert.Failure
	if errors.As(err, &failure) {
		if failure.Message != "" {
			fmt.Fprintf(w, "%s%s\n", indent, p.paint(styleError, failure.Message))
		}
		fmt.Fprintf(w, "%s%s %s\n", indent, p.paint(styleMuted, "Expected:"), formatValue(failure.Expected))
		fmt.Fprintf(w, "%s%s %s\n", indent, p.paint(styleMuted, "Actual:  "), formatValue(failure.Actual))
		return
	}

	for _, line := range strings.Split(SanitizeANSI(err.Error()), "\n") {
		fmt.Fprintf(w, "%s%s\n", indent, p.paint(styleError, line))
	}
}

// formatValue formats a value for display
func formatValue(v interface{}) string {
	if v == nil {
		return "<nil>"
	}

	switch val := v.(type) {
	case string:
		return fmt.Sprintf("%q", val)
	case float64:
		return fmt.Sprintf("%g", val)
	case error:
		return val.Error()
	default:
		return fmt.Sprintf("%v", val)
	}
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return d.Round(time.Microsecond).String()
	case d < time.Second:
		return d.Round(10 * time.Microsecond).String()
	default:
		return d.Round(time.Millisecond).String()
	}
}

// location renders path:line for a scenario or step.
func location(path string, line int) string {
	if line <= 0 {
		return path
	}
	return fmt.Sprintf("%s:%d", path, line)
}
