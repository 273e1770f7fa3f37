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

package format

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/tombee/gherkit/internal/runner"
)

// Cucumber JSON report types
type jsonFeature struct {
	URI         string        `json:"uri"`
	ID          string        `json:"id"`
	Keyword     string        `json:"keyword"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Line        int           `json:"line"`
	Tags        []jsonTag     `json:"tags,omitempty"`
	Elements    []jsonElement `json:"elements"`
}

type jsonTag struct {
	Name string `json:"name"`
}

type jsonElement struct {
	ID      string     `json:"id"`
	Keyword string     `json:"keyword"`
	Name    string     `json:"name"`
	Line    int        `json:"line"`
	Type    string     `json:"type"`
	Tags    []jsonTag  `json:"tags,omitempty"`
	Steps   []jsonStep `json:"steps"`
}

type jsonStep struct {
	Keyword   string         `json:"keyword"`
	Name      string         `json:"name"`
	Line      int            `json:"line"`
	Match     *jsonMatch     `json:"match,omitempty"`
	Result    jsonResult     `json:"result"`
	Rows      []jsonRow      `json:"rows,omitempty"`
	DocString *jsonDocString `json:"doc_string,omitempty"`
}

type jsonMatch struct {
	Location string `json:"location"`
}

type jsonResult struct {
	Status       string `json:"status"`
	Duration     int64  `json:"duration,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type jsonRow struct {
	Cells []string `json:"cells"`
}

type jsonDocString struct {
	Value       string `json:"value"`
	ContentType string `json:"content_type,omitempty"`
}

// JSON writes a cucumber-compatible JSON report when the run finishes.
type JSON struct {
	runner.BaseListener

	w   io.Writer
	err error
}

// NewJSON returns a JSON formatter.
func NewJSON(w io.Writer) *JSON {
	return &JSON{w: w}
}

// Err returns the error from writing the report, if any.
func (f *JSON) Err() error { return f.err }

func (f *JSON) RunFinished(summary *runner.Summary) {
	report := make([]jsonFeature, 0, len(summary.Features))
	for _, fr := range summary.Features {
		report = append(report, jsonFeatureFor(fr))
	}

	enc := json.NewEncoder(f.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		f.err = fmt.Errorf("failed to write JSON report: %w", err)
	}
}

func jsonFeatureFor(fr *runner.FeatureResult) jsonFeature {
	feature := fr.Feature
	out := jsonFeature{
		URI:         feature.Path,
		ID:          slug(feature.Name),
		Keyword:     feature.Keyword,
		Name:        feature.Name,
		Description: feature.Description,
		Line:        feature.Line,
		Tags:        jsonTags(feature.Tags),
		Elements:    make([]jsonElement, 0, len(fr.Scenarios)),
	}

	for _, sr := range fr.Scenarios {
		sc := sr.Scenario
		el := jsonElement{
			ID:      slug(feature.Name) + ";" + slug(sc.Name),
			Keyword: sc.Keyword,
			Name:    sc.Name,
			Line:    sc.Line,
			Type:    "scenario",
			Tags:    jsonTags(sc.Tags),
			Steps:   make([]jsonStep, 0, len(sr.Steps)),
		}

		for _, st := range sr.Steps {
			js := jsonStep{
				Keyword: st.Step.Keyword + " ",
				Name:    st.Step.Text,
				Line:    st.Step.Line,
				Result: jsonResult{
					Status:   string(st.Status),
					Duration: st.Duration.Nanoseconds(),
				},
			}
			if st.Err != nil && st.Status != runner.StatusUndefined {
				js.Result.ErrorMessage = st.Err.Error()
			}
			if st.Definition != nil {
				js.Match = &jsonMatch{Location: st.Definition.Source}
			}
			for _, row := range st.Step.Table {
				js.Rows = append(js.Rows, jsonRow{Cells: row})
			}
			if ds := st.Step.DocString; ds != nil {
				js.DocString = &jsonDocString{Value: ds.Content, ContentType: ds.MediaType}
			}
			el.Steps = append(el.Steps, js)
		}
		out.Elements = append(out.Elements, el)
	}
	return out
}

func jsonTags(tags []string) []jsonTag {
	if len(tags) == 0 {
		return nil
	}
	out := make([]jsonTag, len(tags))
	for i, t := range tags {
		out[i] = jsonTag{Name: t}
	}
	return out
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slug(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}
