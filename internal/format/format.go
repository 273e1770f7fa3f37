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

// Package format renders run events as human-readable or machine-readable
// reports.
package format

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/tombee/gherkit/internal/runner"
	"github.com/tombee/gherkit/pkg/errors"
)

// Options controls human-readable output.
type Options struct {
	// Verbose prints every step, not just failing ones
	Verbose bool

	// Color enables terminal styling
	Color bool

	// Snippets prints proposed definitions for undefined steps
	Snippets bool
}

type constructor func(w io.Writer, opts Options) runner.Listener

var formatters = map[string]constructor{
	"pretty":   func(w io.Writer, opts Options) runner.Listener { return NewPretty(w, opts) },
	"progress": func(w io.Writer, opts Options) runner.Listener { return NewProgress(w, opts) },
	"junit":    func(w io.Writer, _ Options) runner.Listener { return NewJUnit(w) },
	"json":     func(w io.Writer, _ Options) runner.Listener { return NewJSON(w) },
}

// Names returns the available formatter names, sorted.
func Names() []string {
	names := make([]string, 0, len(formatters))
	for name := range formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsMachineReadable reports whether the named format is meant for tools
// rather than people.
func IsMachineReadable(name string) bool {
	return name == "junit" || name == "json"
}

// New returns the named formatter writing to w.
func New(name string, w io.Writer, opts Options) (runner.Listener, error) {
	ctor, ok := formatters[name]
	if !ok {
		return nil, &errors.ValidationError{
			Field:       "format",
			Message:     fmt.Sprintf("unknown format %q", name),
			SuggestText: "Use one of: " + strings.Join(Names(), ", "),
		}
	}
	return ctor(w, opts), nil
}
