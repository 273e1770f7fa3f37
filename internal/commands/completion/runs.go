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
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/gherkit/internal/commands/shared"
	"github.com/tombee/gherkit/internal/config"
	"github.com/tombee/gherkit/internal/history"
)

const (
	runCacheTTL   = 2 * time.Second
	queryTimeout  = 500 * time.Millisecond
	maxRunChoices = 50
)

type runCacheEntry struct {
	path      string
	runs      []string
	expiresAt time.Time
}

var (
	runCache   *runCacheEntry
	runCacheMu sync.RWMutex
)

// CompleteRunIDs completes run IDs from the history database.
func CompleteRunIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		cfg, err := config.Load(shared.GetConfigPath())
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		runs, err := getRunCompletions(cfg.History.Path)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return runs, cobra.ShellCompDirectiveNoFileComp
	})
}

func getRunCompletions(path string) ([]string, error) {
	runCacheMu.RLock()
	if runCache != nil && runCache.path == path && time.Now().Before(runCache.expiresAt) {
		cached := runCache.runs
		runCacheMu.RUnlock()
		return cached, nil
	}
	runCacheMu.RUnlock()

	runs, err := fetchRuns(path)
	if err != nil {
		return nil, err
	}

	runCacheMu.Lock()
	runCache = &runCacheEntry{
		path:      path,
		runs:      runs,
		expiresAt: time.Now().Add(runCacheTTL),
	}
	runCacheMu.Unlock()

	return runs, nil
}

func fetchRuns(path string) ([]string, error) {
	// Opening would create the database.
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	store, err := history.Open(history.Config{Path: path, MaxOpenConns: 1})
	if err != nil {
		return nil, err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	runs, err := store.ListRuns(ctx, maxRunChoices)
	if err != nil {
		return nil, err
	}

	// Format: "runID\tstatus (time)"
	completions := make([]string, 0, len(runs))
	for _, r := range runs {
		completions = append(completions, fmt.Sprintf("%s\t%s (%s)", r.ID, r.Status, r.StartedAt.Local().Format(time.DateTime)))
	}
	return completions, nil
}
