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

// Package management implements commands that inspect and maintain the
// run history.
package management

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/gherkit/internal/commands/completion"
	"github.com/tombee/gherkit/internal/commands/shared"
	"github.com/tombee/gherkit/internal/config"
	"github.com/tombee/gherkit/internal/format"
	"github.com/tombee/gherkit/internal/history"
	"github.com/tombee/gherkit/internal/jq"
	"github.com/tombee/gherkit/internal/runner"
)

const defaultListLimit = 20

// NewHistoryCommand creates the history command group.
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use: "history",
		Annotations: map[string]string{
			"group": "management",
		},
		Short: "View past test runs",
		Long: `Commands for listing, viewing, and pruning recorded test runs.

Every 'gherkit run' is recorded unless history is disabled in gherkit.yaml
or --no-history is given.`,
	}

	cmd.AddCommand(newHistoryListCommand())
	cmd.AddCommand(newHistoryShowCommand())
	cmd.AddCommand(newHistoryPruneCommand())

	return cmd
}

func newHistoryListCommand() *cobra.Command {
	var limit int
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		Long: `List recorded runs, newest first.

See also: gherkit history show, gherkit run`,
		Example: `  # List the last 20 runs
  gherkit history list

  # List failed runs only
  gherkit history list --status failed

  # Get runs as JSON
  gherkit history list --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return historyList(cmd, limit, status)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", defaultListLimit, "Maximum number of runs to list (0 for all)")
	cmd.Flags().StringVar(&status, "status", "", "Only list runs with this status (passed, failed)")
	_ = cmd.RegisterFlagCompletionFunc("status", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"passed", "failed"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func newHistoryShowCommand() *cobra.Command {
	var failed bool
	var query string

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the scenarios of a run",
		Long: `Display the scenario results of a recorded run. Any unique prefix of
the run ID is accepted.

See also: gherkit history list`,
		Example: `  # Show a run
  gherkit history show 3f2a

  # Show only scenarios that did not pass
  gherkit history show 3f2a --failed

  # Extract fields with a jq expression
  gherkit history show 3f2a --jq '.results[] | select(.status != "passed") | .scenario'`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.CompleteRunIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return historyShow(cmd, args[0], failed, query)
		},
	}

	cmd.Flags().BoolVar(&failed, "failed", false, "Only show scenarios that did not pass")
	cmd.Flags().StringVar(&query, "jq", "", "Filter the run JSON with a jq expression")

	return cmd
}

func newHistoryPruneCommand() *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old runs",
		Long: `Delete all but the most recent runs. Without --keep, history.keep
from gherkit.yaml is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return historyPrune(cmd, keep)
		},
	}

	cmd.Flags().IntVar(&keep, "keep", -1, "Number of runs to keep")

	return cmd
}

// openStore loads the configuration and opens the history database.
func openStore() (*history.Store, *config.Config, error) {
	cfg, err := shared.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	if cfg.History.Path != ":memory:" {
		if err := config.EnsureDir(cfg.History.Path); err != nil {
			return nil, nil, err
		}
	}
	store, err := history.Open(history.Config{Path: cfg.History.Path})
	if err != nil {
		return nil, nil, fmt.Errorf("opening history: %w", err)
	}
	return store, cfg, nil
}

func historyList(cmd *cobra.Command, limit int, status string) error {
	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	query := limit
	if status != "" {
		// filtering happens after the query
		query = 0
	}
	runs, err := store.ListRuns(cmd.Context(), query)
	if err != nil {
		return err
	}
	if status != "" {
		runs = filterRuns(runs, status, limit)
	}

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		if runs == nil {
			runs = []*history.Run{}
		}
		return shared.EmitJSON(out, struct {
			shared.JSONResponse
			Runs []*history.Run `json:"runs"`
		}{
			JSONResponse: shared.JSONResponse{Version: "1.0", Command: "history list", Success: true},
			Runs:         runs,
		})
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Run 'gherkit run' to execute your features.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tSTATUS\tSCENARIOS\tPASSED\tFAILED\tDURATION")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			shortID(r.ID),
			r.StartedAt.Local().Format(time.DateTime),
			r.Status,
			r.Scenarios,
			r.Passed,
			r.Failed+r.Undefined+r.Pending,
			r.Duration.Round(time.Millisecond),
		)
	}
	return tw.Flush()
}

func filterRuns(runs []*history.Run, status string, limit int) []*history.Run {
	var out []*history.Run
	for _, r := range runs {
		if r.Status != status {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func historyShow(cmd *cobra.Command, id string, failed bool, query string) error {
	if query != "" {
		if _, err := jq.Compile(query); err != nil {
			return shared.NewUsageError("", err)
		}
	}

	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.GetRun(cmd.Context(), id)
	if err != nil {
		return err
	}
	if failed {
		run.Results = notPassed(run.Results)
	}

	out := cmd.OutOrStdout()
	switch {
	case query != "":
		return writeQuery(cmd.Context(), out, run, query)
	case shared.GetJSON():
		return shared.EmitJSON(out, run)
	}

	writeRun(out, run)
	return nil
}

func notPassed(results []history.ScenarioRecord) []history.ScenarioRecord {
	var out []history.ScenarioRecord
	for _, r := range results {
		if r.Status != string(runner.StatusPassed) {
			out = append(out, r)
		}
	}
	return out
}

// writeQuery prints each jq result on its own line. Strings are printed raw.
func writeQuery(ctx context.Context, w io.Writer, run *history.Run, query string) error {
	results, err := jq.NewExecutor(0, 0).Execute(ctx, query, run)
	if err != nil {
		return err
	}
	for _, r := range results {
		if s, ok := r.(string); ok {
			fmt.Fprintln(w, s)
			continue
		}
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encoding jq result: %w", err)
		}
		fmt.Fprintln(w, string(data))
	}
	return nil
}

func writeRun(w io.Writer, run *history.Run) {
	fmt.Fprintf(w, "%s %s\n", shared.RenderLabel("Run:"), run.ID)
	fmt.Fprintf(w, "%s %s\n", shared.RenderLabel("Started:"), run.StartedAt.Local().Format(time.DateTime))
	fmt.Fprintf(w, "%s %s\n", shared.RenderLabel("Duration:"), run.Duration.Round(time.Millisecond))

	status := run.Status
	if status == string(runner.StatusPassed) {
		status = shared.RenderOK(status)
	} else {
		status = shared.RenderError(status)
	}
	fmt.Fprintf(w, "%s %s\n", shared.RenderLabel("Status:"), status)
	fmt.Fprintf(w, "%s %d total, %d passed, %d failed, %d undefined, %d pending, %d skipped\n",
		shared.RenderLabel("Scenarios:"), run.Scenarios, run.Passed, run.Failed, run.Undefined, run.Pending, run.Skipped)

	if len(run.Results) == 0 {
		return
	}
	fmt.Fprintln(w)

	feature := ""
	for _, r := range run.Results {
		if r.Feature != feature {
			feature = r.Feature
			fmt.Fprintln(w, shared.Header.Render(feature))
		}
		fmt.Fprintf(w, "  %s %s %s\n",
			format.Symbol(runner.Status(r.Status)),
			r.Scenario,
			shared.Muted.Render(fmt.Sprintf("(line %d, %s)", r.Line, r.Duration.Round(time.Millisecond))),
		)
		if r.Error != "" {
			for _, line := range strings.Split(r.Error, "\n") {
				fmt.Fprintf(w, "      %s\n", line)
			}
		}
	}
}

func historyPrune(cmd *cobra.Command, keep int) error {
	store, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if keep < 0 {
		keep = cfg.History.Keep
	}
	if keep <= 0 {
		return shared.NewUsageError("nothing to prune: pass --keep or set history.keep", nil)
	}

	removed, err := store.Prune(cmd.Context(), keep)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		return shared.EmitJSON(out, struct {
			shared.JSONResponse
			Removed int64 `json:"removed"`
			Kept    int   `json:"kept"`
		}{
			JSONResponse: shared.JSONResponse{Version: "1.0", Command: "history prune", Success: true},
			Removed:      removed,
			Kept:         keep,
		})
	}

	fmt.Fprintln(out, shared.RenderOK(fmt.Sprintf("Removed %d run(s), kept the %d most recent.", removed, keep)))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
