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

package run

import (
	"github.com/spf13/cobra"

	"github.com/tombee/gherkit/internal/commands/completion"
	"github.com/tombee/gherkit/internal/steps"
)

// options holds the run flags. Flags left unset fall back to gherkit.yaml.
type options struct {
	stopOnFailure bool
	tags          string
	name          string
	format        string
	output        string
	dryRun        bool
	watch         bool
	noHistory     bool
	metricsFile   string
	trace         string
}

// NewCommand creates the run command for the step definitions in registry.
func NewCommand(registry *steps.Registry) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "run [path[:line]...]",
		Short: "Run feature files",
		Annotations: map[string]string{
			"group": "execution",
		},
		Long: `Run executes the scenarios of the given feature files and directories.

With no paths, the directories listed under features.paths in gherkit.yaml
are searched (default: ./features). A path may carry line numbers to run
only the scenarios at those lines:

  gherkit run features/calculator.feature:12

Tag expressions select scenarios by tag:

  gherkit run -t "@smoke and not @slow"

Exit codes:
  0    every scenario passed
  1    a scenario failed or had undefined or pending steps
  2    invalid flags, configuration, paths or feature syntax
  130  interrupted`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeatures(cmd, registry, args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.stopOnFailure, "stop-on-failure", "x", false, "Skip remaining scenarios after the first failure")
	cmd.Flags().StringVarP(&opts.tags, "tags", "t", "", "Only run scenarios matching a tag expression")
	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "Only run scenarios whose name matches a regular expression")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Report format: pretty, progress, junit, json")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the report to a file")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Match steps without running them")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Re-run when feature files change")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "Do not record this run in the history database")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to a textfile after the run")
	cmd.Flags().StringVar(&opts.trace, "trace", "", "Span exporter: none, stdout, otlp-http, otlp-grpc")

	_ = cmd.RegisterFlagCompletionFunc("format", completion.CompleteFormats)
	_ = cmd.RegisterFlagCompletionFunc("tags", completion.CompleteTags)
	_ = cmd.RegisterFlagCompletionFunc("trace", completion.CompleteExporters)

	return cmd
}
