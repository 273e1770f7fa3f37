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

package gherkin

import (
	"bytes"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	gherkinparser "github.com/cucumber/gherkin/go/v26"
	messages "github.com/cucumber/messages/go/v21"
	"github.com/google/uuid"

	"github.com/tombee/gherkit/pkg/errors"
)

// parser errors are rendered as "(line:column): message"
var errLocationRe = regexp.MustCompile(`\((\d+):(\d+)\):\s*(.*)`)

// Load reads and parses the feature file at path.
func Load(path string) (*Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading feature file %s", path)
	}
	return Parse(bytes.NewReader(data), path)
}

// Parse parses feature text from r. uri names the source in errors and
// in the returned Feature's Path.
func Parse(r io.Reader, uri string) (*Feature, error) {
	doc, err := gherkinparser.ParseGherkinDocument(r, uuid.NewString)
	if err != nil {
		return nil, parseError(uri, err)
	}
	if doc.Feature == nil {
		// empty or comment-only file
		return &Feature{Path: uri}, nil
	}

	idx := newIndex(doc.Feature)
	feature := &Feature{
		Path:        uri,
		Name:        doc.Feature.Name,
		Description: strings.TrimSpace(doc.Feature.Description),
		Keyword:     doc.Feature.Keyword,
		Language:    doc.Feature.Language,
		Tags:        tagNames(doc.Feature.Tags),
		Line:        line(doc.Feature.Location),
	}

	for _, p := range gherkinparser.Pickles(*doc, uri, uuid.NewString) {
		feature.Scenarios = append(feature.Scenarios, idx.scenario(p))
	}
	return feature, nil
}

func parseError(uri string, err error) error {
	msg := err.Error()
	pe := &errors.ParseError{File: uri, Message: msg, Cause: err}
	if m := errLocationRe.FindStringSubmatch(msg); m != nil {
		pe.Line, _ = strconv.Atoi(m[1])
		pe.Message = strings.TrimSpace(firstLine(m[3]))
	}
	return pe
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// index maps AST node ids back to the source positions and keywords that
// compiled pickles do not carry.
type index struct {
	scenarios map[string]*messages.Scenario
	rules     map[string]string
	steps     map[string]*messages.Step
	rows      map[string]*messages.TableRow
}

func newIndex(f *messages.Feature) *index {
	idx := &index{
		scenarios: make(map[string]*messages.Scenario),
		rules:     make(map[string]string),
		steps:     make(map[string]*messages.Step),
		rows:      make(map[string]*messages.TableRow),
	}
	for _, child := range f.Children {
		switch {
		case child.Background != nil:
			idx.addSteps(child.Background.Steps)
		case child.Scenario != nil:
			idx.addScenario(child.Scenario, "")
		case child.Rule != nil:
			for _, rc := range child.Rule.Children {
				switch {
				case rc.Background != nil:
					idx.addSteps(rc.Background.Steps)
				case rc.Scenario != nil:
					idx.addScenario(rc.Scenario, child.Rule.Name)
				}
			}
		}
	}
	return idx
}

func (idx *index) addScenario(s *messages.Scenario, rule string) {
	idx.scenarios[s.Id] = s
	idx.rules[s.Id] = rule
	idx.addSteps(s.Steps)
	for _, ex := range s.Examples {
		for _, row := range ex.TableBody {
			idx.rows[row.Id] = row
		}
	}
}

func (idx *index) addSteps(steps []*messages.Step) {
	for _, s := range steps {
		idx.steps[s.Id] = s
	}
}

func (idx *index) scenario(p *messages.Pickle) *Scenario {
	sc := &Scenario{
		ID:   p.Id,
		Name: p.Name,
		Tags: pickleTagNames(p.Tags),
	}

	if len(p.AstNodeIds) > 0 {
		if def, ok := idx.scenarios[p.AstNodeIds[0]]; ok {
			sc.Keyword = def.Keyword
			sc.Rule = idx.rules[def.Id]
			sc.DefinitionLine = line(def.Location)
			sc.Line = sc.DefinitionLine
		}
	}
	if len(p.AstNodeIds) > 1 {
		if row, ok := idx.rows[p.AstNodeIds[1]]; ok {
			sc.Line = line(row.Location)
		}
	}

	for _, ps := range p.Steps {
		sc.Steps = append(sc.Steps, idx.step(ps))
	}
	return sc
}

func (idx *index) step(ps *messages.PickleStep) *Step {
	st := &Step{ID: ps.Id, Text: ps.Text}

	if len(ps.AstNodeIds) > 0 {
		if def, ok := idx.steps[ps.AstNodeIds[0]]; ok {
			st.Keyword = strings.TrimSpace(def.Keyword)
			st.Line = line(def.Location)
		}
	}

	if arg := ps.Argument; arg != nil {
		if arg.DataTable != nil {
			st.Table = make([][]string, 0, len(arg.DataTable.Rows))
			for _, row := range arg.DataTable.Rows {
				cells := make([]string, len(row.Cells))
				for i, c := range row.Cells {
					cells[i] = c.Value
				}
				st.Table = append(st.Table, cells)
			}
		}
		if arg.DocString != nil {
			st.DocString = &DocString{
				Content:   arg.DocString.Content,
				MediaType: arg.DocString.MediaType,
			}
		}
	}
	return st
}

func line(loc *messages.Location) int {
	if loc == nil {
		return 0
	}
	return int(loc.Line)
}

func tagNames(tags []*messages.Tag) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.Name
	}
	return out
}

func pickleTagNames(tags []*messages.PickleTag) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.Name
	}
	return out
}
