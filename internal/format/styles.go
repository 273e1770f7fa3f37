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
	"github.com/charmbracelet/lipgloss"

	"github.com/tombee/gherkit/internal/runner"
)

var (
	styleOK      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))  // green
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")) // orange
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")) // red
	styleInfo    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))  // blue
	styleMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")) // gray
	styleBold    = lipgloss.NewStyle().Bold(true)
	styleHeader  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	styleSkipped = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

// Symbols for step and scenario outcomes
const (
	SymbolOK      = "✓"
	SymbolWarn    = "⚠"
	SymbolError   = "✗"
	SymbolSkipped = "-"
)

// painter applies styles only when colour is enabled.
type painter struct {
	color bool
}

func (p painter) paint(style lipgloss.Style, s string) string {
	if !p.color {
		return s
	}
	return style.Render(s)
}

func (p painter) status(status runner.Status, s string) string {
	return p.paint(statusStyle(status), s)
}

func statusStyle(status runner.Status) lipgloss.Style {
	switch status {
	case runner.StatusPassed:
		return styleOK
	case runner.StatusFailed, runner.StatusAmbiguous:
		return styleError
	case runner.StatusUndefined, runner.StatusPending:
		return styleWarn
	default:
		return styleSkipped
	}
}

// Symbol returns the indicator printed next to a step or scenario.
func Symbol(status runner.Status) string {
	switch status {
	case runner.StatusPassed:
		return SymbolOK
	case runner.StatusFailed, runner.StatusAmbiguous:
		return SymbolError
	case runner.StatusUndefined, runner.StatusPending:
		return SymbolWarn
	default:
		return SymbolSkipped
	}
}
