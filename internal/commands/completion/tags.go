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
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tombee/gherkit/internal/commands/shared"
	"github.com/tombee/gherkit/internal/config"
	"github.com/tombee/gherkit/internal/discovery"
	"github.com/tombee/gherkit/internal/gherkin"
)

// CompleteTags completes tag names found in the configured feature paths.
// The last word of a partial expression is completed.
func CompleteTags(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		cfg, err := config.Load(shared.GetConfigPath())
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		paths := args
		if len(paths) == 0 {
			paths = cfg.Features.Paths
		}
		names := collectTags(paths, cfg.Features.Include)

		prefix, word := splitLastWord(toComplete)
		completions := make([]string, 0, len(names))
		for _, name := range names {
			if strings.HasPrefix(name, word) {
				completions = append(completions, prefix+name)
			}
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	})
}

// collectTags returns the sorted, distinct tags of the features under paths.
// Unreadable files are ignored.
func collectTags(paths, include []string) []string {
	targets := make([]discovery.Target, 0, len(paths))
	for _, p := range paths {
		targets = append(targets, discovery.ParseTarget(p))
	}
	found, err := discovery.Discover(targets, discovery.Options{Include: include})
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	for _, t := range found {
		f, err := gherkin.Load(t.Path)
		if err != nil {
			continue
		}
		for _, tag := range f.Tags {
			seen[tag] = true
		}
		for _, s := range f.Scenarios {
			for _, tag := range s.Tags {
				seen[tag] = true
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func splitLastWord(s string) (prefix, word string) {
	i := strings.LastIndexAny(s, " (")
	if i < 0 {
		return "", s
	}
	return s[:i+1], s[i+1:]
}
