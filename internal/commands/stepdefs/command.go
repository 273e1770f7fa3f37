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

// Package stepdefs implements the steps command, which lists the step
// definitions compiled into the binary.
package stepdefs

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tombee/gherkit/internal/commands/shared"
	"github.com/tombee/gherkit/internal/format"
	"github.com/tombee/gherkit/internal/steps"
)

// DefinitionInfo describes one step definition for display.
type DefinitionInfo struct {
	Pattern string `json:"pattern"`
	Source  string `json:"source"`

	// Uses counts matching steps; only set with --usage.
	Uses *int `json:"uses,omitempty"`
}

// Report is the JSON form of the steps command output.
type Report struct {
	shared.JSONResponse
	Definitions []DefinitionInfo `json:"definitions"`
	Undefined   []string         `json:"undefined,omitempty"`
	Ambiguous   []string         `json:"ambiguous,omitempty"`
}

// NewCommand creates the steps command for the definitions in registry.
func NewCommand(registry *steps.Registry) *cobra.Command {
	var usage bool

	cmd := &cobra.Command{
		Use:   "steps [path...]",
		Short: "List step definitions",
		Annotations: map[string]string{
			"group": "execution",
		},
		Long: `List the step definitions registered in this binary with the source
location of each registration.

With --usage, the feature files are loaded and each definition is shown
with the number of steps it matches. Step texts that match no definition,
or more than one, are listed after the table.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			report := Report{
				JSONResponse: shared.JSONResponse{Version: "1.0", Command: "steps", Success: true},
				Definitions:  definitionInfos(registry),
			}
			if usage {
				if err := addUsage(&report, registry, args); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			switch {
			case shared.GetJSON():
				return shared.EmitJSON(out, report)
			case format.IsTTY(out) && !shared.GetNoColor():
				fmt.Fprint(out, format.RenderMarkdown(markdown(report), 100))
				return nil
			}
			return writeTable(out, report)
		},
	}

	cmd.Flags().BoolVar(&usage, "usage", false, "Count how often each definition is used by the feature files")

	return cmd
}

func definitionInfos(registry *steps.Registry) []DefinitionInfo {
	defs := registry.Definitions()
	infos := make([]DefinitionInfo, 0, len(defs))
	for _, d := range defs {
		infos = append(infos, DefinitionInfo{Pattern: d.Pattern, Source: d.Source})
	}
	return infos
}

// addUsage matches every step of the selected features against registry.
func addUsage(report *Report, registry *steps.Registry, args []string) error {
	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}
	features, err := shared.LoadFeatures(cfg, args)
	if err != nil {
		return shared.NewUsageError("", err)
	}

	counts := make(map[string]int)
	seen := make(map[string]bool)
	for _, f := range features {
		for _, s := range f.Scenarios {
			for _, st := range s.Steps {
				m, err := registry.Match(st.Text)
				if err == nil {
					counts[m.Definition.Pattern]++
					continue
				}
				if seen[st.Text] {
					continue
				}
				seen[st.Text] = true

				var ambiguous *steps.AmbiguousStepError
				if errors.As(err, &ambiguous) {
					report.Ambiguous = append(report.Ambiguous, st.Text)
				} else {
					report.Undefined = append(report.Undefined, st.Text)
				}
			}
		}
	}

	for i := range report.Definitions {
		n := counts[report.Definitions[i].Pattern]
		report.Definitions[i].Uses = &n
	}
	return nil
}

func writeTable(w io.Writer, report Report) error {
	if len(report.Definitions) == 0 {
		fmt.Fprintln(w, "No step definitions registered.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	usage := report.Definitions[0].Uses != nil
	if usage {
		fmt.Fprintln(tw, "PATTERN\tUSES\tSOURCE")
	} else {
		fmt.Fprintln(tw, "PATTERN\tSOURCE")
	}
	for _, d := range report.Definitions {
		if usage {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", d.Pattern, *d.Uses, d.Source)
		} else {
			fmt.Fprintf(tw, "%s\t%s\n", d.Pattern, d.Source)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	writeList(w, "Undefined steps", report.Undefined)
	writeList(w, "Ambiguous steps", report.Ambiguous)
	return nil
}

func writeList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  %s\n", item)
	}
}

func markdown(report Report) string {
	var b strings.Builder
	b.WriteString("# Step definitions\n\n")
	if len(report.Definitions) == 0 {
		b.WriteString("No step definitions registered.\n")
		return b.String()
	}

	usage := report.Definitions[0].Uses != nil
	if usage {
		b.WriteString("| Pattern | Uses | Source |\n|---|---:|---|\n")
	} else {
		b.WriteString("| Pattern | Source |\n|---|---|\n")
	}
	for _, d := range report.Definitions {
		pattern := "`" + strings.ReplaceAll(d.Pattern, "|", `\|`) + "`"
		if usage {
			fmt.Fprintf(&b, "| %s | %d | %s |\n", pattern, *d.Uses, d.Source)
		} else {
			fmt.Fprintf(&b, "| %s | %s |\n", pattern, d.Source)
		}
	}

	for _, section := range []struct {
		title string
		items []string
	}{{"Undefined steps", report.Undefined}, {"Ambiguous steps", report.Ambiguous}} {
		if len(section.items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n", section.title)
		for _, item := range section.items {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}
	return b.String()
}
