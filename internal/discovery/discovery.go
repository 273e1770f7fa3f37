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

// Package discovery resolves command-line paths into the feature files to
// run.
package discovery

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/tombee/gherkit/pkg/errors"
)

// Target is a feature file, optionally narrowed to the scenarios at Lines.
type Target struct {
	Path  string
	Lines []int
}

// String renders the target the way it is written on the command line.
func (t Target) String() string {
	if len(t.Lines) == 0 {
		return t.Path
	}
	var b strings.Builder
	b.WriteString(t.Path)
	for _, l := range t.Lines {
		b.WriteString(":")
		b.WriteString(strconv.Itoa(l))
	}
	return b.String()
}

// ParseTarget splits "path:line[:line...]" into a Target. Arguments without
// numeric suffixes are returned as plain paths.
func ParseTarget(arg string) Target {
	parts := strings.Split(arg, ":")
	end := len(parts)
	var lines []int
	for end > 1 {
		n, err := strconv.Atoi(parts[end-1])
		if err != nil || n <= 0 {
			break
		}
		lines = append([]int{n}, lines...)
		end--
	}
	return Target{Path: strings.Join(parts[:end], ":"), Lines: lines}
}

// Options controls which files inside directories are selected.
type Options struct {
	// Include globs; DefaultInclude when empty
	Include []string

	// Exclude globs; DefaultExcludePatterns when nil
	Exclude []string
}

// Discover expands targets into feature files. Directories are walked
// recursively and filtered through the include and exclude globs; explicit
// files must have a .feature extension. The result is de-duplicated by
// absolute path and sorted.
func Discover(targets []Target, opts Options) ([]Target, error) {
	include := opts.Include
	if len(include) == 0 {
		include = []string{DefaultInclude}
	}
	exclude := opts.Exclude
	if exclude == nil {
		exclude = DefaultExcludePatterns()
	}
	matcher, err := NewPatternMatcher(include, exclude)
	if err != nil {
		return nil, &errors.ValidationError{Field: "features.include", Message: err.Error()}
	}

	found := make(map[string]*Target)
	add := func(path string, lines []int) error {
		abs, err := filepath.Abs(path)
		if err != nil {
			return errors.Wrapf(err, "resolving %s", path)
		}
		if prev, ok := found[abs]; ok {
			// a bare path selects the whole file
			if len(prev.Lines) == 0 || len(lines) == 0 {
				prev.Lines = nil
			} else {
				prev.Lines = append(prev.Lines, lines...)
			}
			return nil
		}
		found[abs] = &Target{Path: filepath.Clean(path), Lines: lines}
		return nil
	}

	var searched []string
	for _, target := range targets {
		searched = append(searched, target.Path)

		info, err := os.Stat(target.Path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, &errors.NotFoundError{Resource: "path", ID: target.Path}
			}
			return nil, errors.Wrapf(err, "checking %s", target.Path)
		}

		if !info.IsDir() {
			if filepath.Ext(target.Path) != ".feature" {
				return nil, &errors.ValidationError{
					Field:       "path",
					Message:     target.Path + " is not a .feature file",
					SuggestText: "Pass a directory or a file ending in .feature",
				}
			}
			if err := add(target.Path, target.Lines); err != nil {
				return nil, err
			}
			continue
		}

		root := target.Path
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)

			if d.IsDir() {
				if path != root && matcher.Excluded(rel+"/") {
					return filepath.SkipDir
				}
				return nil
			}
			if !matcher.Match(rel) {
				return nil
			}
			return add(path, nil)
		})
		if err != nil {
			return nil, errors.Wrapf(err, "searching %s", root)
		}
	}

	if len(found) == 0 {
		return nil, &errors.NotFoundError{Resource: "feature files", ID: strings.Join(searched, ", ")}
	}

	out := make([]Target, 0, len(found))
	for _, t := range found {
		sort.Ints(t.Lines)
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}
