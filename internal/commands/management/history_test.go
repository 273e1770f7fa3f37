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

package management

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/gherkit/internal/commands/shared"
	"github.com/tombee/gherkit/internal/history"
)

// seed creates a history database with n runs; the newest is "run-00<n-1>"
// and odd-numbered runs failed.
func seed(t *testing.T, n int) string {
	t.Helper()
	shared.ResetFlags()
	t.Cleanup(shared.ResetFlags)

	dir := t.TempDir()
	t.Chdir(dir)
	db := filepath.Join(dir, "history.db")
	t.Setenv("GHERKIT_HISTORY_DB", db)

	store, err := history.Open(history.Config{Path: db})
	require.NoError(t, err)
	defer store.Close()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		status := "passed"
		results := []history.ScenarioRecord{
			{Feature: "features/calc.feature", Scenario: "Add", Line: 3, Status: "passed"},
		}
		if i%2 == 1 {
			status = "failed"
			results = append(results, history.ScenarioRecord{
				Feature: "features/calc.feature", Scenario: "Divide", Line: 9, Status: "failed", Error: "division by zero",
			})
		}
		require.NoError(t, store.SaveRun(context.Background(), &history.Run{
			ID:        fmt.Sprintf("run-%03d", i),
			StartedAt: base.Add(time.Duration(i) * time.Minute),
			Status:    status,
			Scenarios: len(results),
			Results:   results,
		}))
	}
	return db
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "gherkit", SilenceUsage: true, SilenceErrors: true}
	flags := shared.RegisterFlagPointers()
	root.PersistentFlags().BoolVar(flags.JSON, "json", false, "")
	root.AddCommand(NewHistoryCommand())

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"history"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestHistoryList(t *testing.T) {
	seed(t, 3)

	out, err := execute(t, "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "STATUS")
	assert.Contains(t, lines[1], "run-002")
	assert.Contains(t, lines[3], "run-000")
}

func TestHistoryListJSONFiltered(t *testing.T) {
	seed(t, 5)

	out, err := execute(t, "list", "--json", "--status", "failed", "--limit", "1")
	require.NoError(t, err)

	var resp struct {
		Success bool           `json:"success"`
		Runs    []*history.Run `json:"runs"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Runs, 1)
	assert.Equal(t, "run-003", resp.Runs[0].ID)
}

func TestHistoryListEmpty(t *testing.T) {
	seed(t, 0)

	out, err := execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded.")
}

func TestHistoryShow(t *testing.T) {
	seed(t, 2)

	out, err := execute(t, "show", "run-001")
	require.NoError(t, err)
	assert.Contains(t, out, "run-001")
	assert.Contains(t, out, "features/calc.feature")
	assert.Contains(t, out, "Divide")
	assert.Contains(t, out, "division by zero")

	out, err = execute(t, "show", "run-001", "--failed")
	require.NoError(t, err)
	assert.NotContains(t, out, "Add")
}

func TestHistoryShowJQ(t *testing.T) {
	seed(t, 2)

	out, err := execute(t, "show", "run-001", "--jq", `.results[] | select(.status == "failed") | .scenario`)
	require.NoError(t, err)
	assert.Equal(t, "Divide\n", out)

	out, err = execute(t, "show", "run-001", "--jq", `.results | length`)
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	_, err = execute(t, "show", "run-001", "--jq", `.results[`)
	require.Error(t, err)
	assert.Equal(t, shared.ExitUsage, shared.ExitCode(err))
}

func TestHistoryShowErrors(t *testing.T) {
	seed(t, 2)

	_, err := execute(t, "show", "nope")
	require.Error(t, err)
	assert.Equal(t, shared.ExitUsage, shared.ExitCode(err))

	_, err = execute(t, "show", "run-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")
}

func TestHistoryPrune(t *testing.T) {
	db := seed(t, 5)

	out, err := execute(t, "prune", "--keep", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 3 run(s)")

	store, err := history.Open(history.Config{Path: db})
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-004", runs[0].ID)
}

func TestHistoryPruneNothingToKeep(t *testing.T) {
	seed(t, 1)

	_, err := execute(t, "prune", "--keep", "0")
	require.Error(t, err)
	assert.Equal(t, shared.ExitUsage, shared.ExitCode(err))
}
