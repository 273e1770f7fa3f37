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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gherkiterrors "github.com/tombee/gherkit/pkg/errors"
)

func writeFiles(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("Feature: x\n"), 0o644))
	}
}

func paths(targets []Target) []string {
	out := make([]string, len(targets))
	for i, t := range targets {
		out[i] = t.Path
	}
	return out
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		arg  string
		want Target
	}{
		{arg: "features", want: Target{Path: "features"}},
		{arg: "features/calc.feature", want: Target{Path: "features/calc.feature"}},
		{arg: "features/calc.feature:12", want: Target{Path: "features/calc.feature", Lines: []int{12}}},
		{arg: "features/calc.feature:12:30", want: Target{Path: "features/calc.feature", Lines: []int{12, 30}}},
		{arg: "odd:name.feature", want: Target{Path: "odd:name.feature"}},
		{arg: "calc.feature:0", want: Target{Path: "calc.feature:0"}},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got := ParseTarget(tt.arg)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.arg, got.String())
		})
	}
}

func TestDiscover_Directory(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"calculator.feature",
		"nested/deeper/temperature.feature",
		"notes.txt",
		"nested/.calculator.feature.swp",
		"node_modules/pkg/vendored.feature",
	)

	got, err := Discover([]Target{{Path: root}}, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "calculator.feature"),
		filepath.Join(root, "nested", "deeper", "temperature.feature"),
	}, paths(got))
}

func TestDiscover_IncludeExclude(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"smoke/a.feature",
		"smoke/b.feature",
		"slow/c.feature",
	)

	got, err := Discover([]Target{{Path: root}}, Options{
		Include: []string{"smoke/**/*.feature"},
		Exclude: []string{"b.feature"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "smoke", "a.feature")}, paths(got))
}

func TestDiscover_FilesAndDeduplication(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.feature", "b.feature")
	a := filepath.Join(root, "a.feature")

	got, err := Discover([]Target{
		{Path: a, Lines: []int{7}},
		{Path: a, Lines: []int{3}},
		{Path: filepath.Join(root, "b.feature"), Lines: []int{4}},
		{Path: root},
	}, Options{})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, a, got[0].Path)
	assert.Nil(t, got[0].Lines, "the directory target selects the whole file")
	assert.Nil(t, got[1].Lines)

	got, err = Discover([]Target{
		{Path: a, Lines: []int{7}},
		{Path: a, Lines: []int{3}},
	}, Options{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []int{3, 7}, got[0].Lines)
}

func TestDiscover_Errors(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "readme.md")

	_, err := Discover([]Target{{Path: filepath.Join(root, "missing")}}, Options{})
	var notFound *gherkiterrors.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "path", notFound.Resource)

	_, err = Discover([]Target{{Path: filepath.Join(root, "readme.md")}}, Options{})
	var validation *gherkiterrors.ValidationError
	require.ErrorAs(t, err, &validation)

	_, err = Discover([]Target{{Path: root}}, Options{})
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "feature files", notFound.Resource)

	_, err = Discover([]Target{{Path: root}}, Options{Include: []string{"[unclosed"}})
	require.ErrorAs(t, err, &validation)
}

func TestPatternMatcher(t *testing.T) {
	pm, err := NewPatternMatcher([]string{DefaultInclude}, DefaultExcludePatterns())
	require.NoError(t, err)

	assert.True(t, pm.Match("calculator.feature"))
	assert.True(t, pm.Match("a/b/calculator.feature"))
	assert.False(t, pm.Match("a/b/calculator.go"))
	assert.False(t, pm.Match("a/.git/x.feature"))
	assert.False(t, pm.Match("a/.calc.feature.swp"))
	assert.True(t, pm.Excluded("vendor/x/y.feature"))

	all, err := NewPatternMatcher(nil, nil)
	require.NoError(t, err)
	assert.True(t, all.Match("anything"))
}
