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

package completion

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/gherkit/internal/history"
)

func TestSafeCompletionWrapper(t *testing.T) {
	t.Run("recovers from panic", func(t *testing.T) {
		results, directive := SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
			panic("boom")
		})
		assert.Empty(t, results)
		assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
	})

	t.Run("nil results become empty", func(t *testing.T) {
		results, _ := SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		})
		assert.NotNil(t, results)
		assert.Empty(t, results)
	})
}

func TestCompleteFormats(t *testing.T) {
	results, directive := CompleteFormats(nil, nil, "")
	assert.Len(t, results, 4)
	assert.Equal(t, "pretty\tFeatures, scenarios and steps as they run", results[0])
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
}

func TestCompleteTags(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.MkdirAll("features", 0755))
	require.NoError(t, os.WriteFile(filepath.Join("features", "a.feature"), []byte(`@billing
Feature: A
  @smoke
  Scenario: one
    Given x

  @slow @smoke
  Scenario: two
    Given y
`), 0644))

	results, _ := CompleteTags(&cobra.Command{}, nil, "")
	assert.Equal(t, []string{"@billing", "@slow", "@smoke"}, results)

	results, _ = CompleteTags(&cobra.Command{}, nil, "@s")
	assert.Equal(t, []string{"@slow", "@smoke"}, results)

	results, _ = CompleteTags(&cobra.Command{}, nil, "@billing and not (@sm")
	assert.Equal(t, []string{"@billing and not (@smoke"}, results)
}

func TestSplitLastWord(t *testing.T) {
	prefix, word := splitLastWord("@a or @b")
	assert.Equal(t, "@a or ", prefix)
	assert.Equal(t, "@b", word)

	prefix, word = splitLastWord("@a")
	assert.Empty(t, prefix)
	assert.Equal(t, "@a", word)
}

func TestCompleteRunIDs(t *testing.T) {
	runCacheMu.Lock()
	runCache = nil
	runCacheMu.Unlock()

	dir := t.TempDir()
	t.Chdir(dir)
	db := filepath.Join(dir, "history.db")
	t.Setenv("GHERKIT_HISTORY_DB", db)

	store, err := history.Open(history.Config{Path: db})
	require.NoError(t, err)
	require.NoError(t, store.SaveRun(context.Background(), &history.Run{
		ID:        "run-001",
		StartedAt: time.Now(),
		Status:    "passed",
	}))
	require.NoError(t, store.Close())

	results, directive := CompleteRunIDs(&cobra.Command{}, nil, "")
	require.Len(t, results, 1)
	assert.Contains(t, results[0], "run-001\tpassed (")
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
}

func TestCompleteRunIDsMissingDatabase(t *testing.T) {
	runCacheMu.Lock()
	runCache = nil
	runCacheMu.Unlock()

	dir := t.TempDir()
	t.Chdir(dir)
	db := filepath.Join(dir, "none.db")
	t.Setenv("GHERKIT_HISTORY_DB", db)

	results, _ := CompleteRunIDs(&cobra.Command{}, nil, "")
	assert.Empty(t, results)

	_, err := os.Stat(db)
	assert.True(t, os.IsNotExist(err))
}

func TestCompletionCommand(t *testing.T) {
	root := &cobra.Command{Use: "gherkit"}
	root.AddCommand(NewCommand())

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"completion", "bash"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "gherkit")

	root.SetArgs([]string{"completion", "tcsh"})
	assert.Error(t, root.Execute())
}
