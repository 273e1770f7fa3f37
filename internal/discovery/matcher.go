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

package discovery

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultInclude selects feature files at any depth.
const DefaultInclude = "**/*.feature"

// PatternMatcher handles include and exclude glob matching for feature
// paths. Patterns use doublestar syntax, so ** crosses directories.
type PatternMatcher struct {
	includePatterns []string
	excludePatterns []string
}

// NewPatternMatcher validates and stores the patterns. With no include
// patterns every path is included; excludes are applied afterwards.
func NewPatternMatcher(includePatterns, excludePatterns []string) (*PatternMatcher, error) {
	for _, pattern := range includePatterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern %q", pattern)
		}
	}
	for _, pattern := range excludePatterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	return &PatternMatcher{
		includePatterns: includePatterns,
		excludePatterns: excludePatterns,
	}, nil
}

// Match reports whether path is included and not excluded. path should be
// slash-separated and relative to the directory being searched; patterns are
// tried against it and against its base name.
func (pm *PatternMatcher) Match(path string) bool {
	included := len(pm.includePatterns) == 0
	for _, pattern := range pm.includePatterns {
		if matchPattern(pattern, path) {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	return !pm.Excluded(path)
}

// Excluded reports whether path matches an exclude pattern.
func (pm *PatternMatcher) Excluded(path string) bool {
	for _, pattern := range pm.excludePatterns {
		if matchPattern(pattern, path) {
			return true
		}
	}
	return false
}

func matchPattern(pattern, path string) bool {
	if matched, _ := doublestar.Match(pattern, path); matched {
		return true
	}
	matched, _ := doublestar.Match(pattern, filepath.Base(path))
	return matched
}

// DefaultExcludePatterns returns editor temporaries, VCS metadata and vendored
// trees that never hold project features.
func DefaultExcludePatterns() []string {
	return []string{
		// Vim
		"*.swp",
		".*.sw?",
		// Emacs
		"*~",
		".#*",
		// System files
		".DS_Store",
		// Trees
		"**/.git/**",
		"**/node_modules/**",
		"**/vendor/**",
		"**/testdata/**",
	}
}
