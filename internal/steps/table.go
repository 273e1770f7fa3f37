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

package steps

import "fmt"

// Table is a data table attached to a step. The first row is the header
// when the step treats the table as records.
type Table struct {
	Rows [][]string
}

// NewTable wraps rows in a Table.
func NewTable(rows [][]string) *Table {
	return &Table{Rows: rows}
}

// Len returns the number of rows including the header.
func (t *Table) Len() int { return len(t.Rows) }

// Header returns the first row, or nil for an empty table.
func (t *Table) Header() []string {
	if len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[0]
}

// Body returns every row after the header.
func (t *Table) Body() [][]string {
	if len(t.Rows) < 2 {
		return nil
	}
	return t.Rows[1:]
}

// Records returns the body rows keyed by header cell.
func (t *Table) Records() ([]map[string]string, error) {
	header := t.Header()
	body := t.Body()
	records := make([]map[string]string, 0, len(body))
	for i, row := range body {
		if len(row) != len(header) {
			return nil, fmt.Errorf("table row %d has %d cells, header has %d", i+2, len(row), len(header))
		}
		rec := make(map[string]string, len(header))
		for j, cell := range row {
			rec[header[j]] = cell
		}
		records = append(records, rec)
	}
	return records, nil
}

// Column returns the body values of the named header column.
func (t *Table) Column(name string) ([]string, error) {
	idx := -1
	for i, h := range t.Header() {
		if h == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("table has no column %q", name)
	}
	var values []string
	for _, row := range t.Body() {
		if idx < len(row) {
			values = append(values, row[idx])
		}
	}
	return values, nil
}

// DocString is a multi-line text block attached to a step.
type DocString struct {
	Content   string
	MediaType string
}
