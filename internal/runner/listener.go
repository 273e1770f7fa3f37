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

package runner

import (
	"github.com/tombee/gherkit/internal/gherkin"
)

// Listener receives run events in order. Events are delivered
// synchronously from the goroutine calling Run.
type Listener interface {
	RunStarted(run *RunInfo)
	FeatureStarted(feature *gherkin.Feature)
	ScenarioStarted(feature *gherkin.Feature, scenario *gherkin.Scenario)
	StepStarted(scenario *gherkin.Scenario, step *gherkin.Step)
	StepFinished(scenario *gherkin.Scenario, result *StepResult)
	ScenarioFinished(result *ScenarioResult)
	FeatureFinished(result *FeatureResult)
	RunFinished(summary *Summary)
}

// BaseListener implements Listener with no-ops for embedding.
type BaseListener struct{}

func (BaseListener) RunStarted(*RunInfo)                                 {}
func (BaseListener) FeatureStarted(*gherkin.Feature)                     {}
func (BaseListener) ScenarioStarted(*gherkin.Feature, *gherkin.Scenario) {}
func (BaseListener) StepStarted(*gherkin.Scenario, *gherkin.Step)        {}
func (BaseListener) StepFinished(*gherkin.Scenario, *StepResult)         {}
func (BaseListener) ScenarioFinished(*ScenarioResult)                    {}
func (BaseListener) FeatureFinished(*FeatureResult)                      {}
func (BaseListener) RunFinished(*Summary)                                {}

// Listeners fans events out to each listener in order.
type Listeners []Listener

func (ls Listeners) RunStarted(run *RunInfo) {
	for _, l := range ls {
		l.RunStarted(run)
	}
}

func (ls Listeners) FeatureStarted(feature *gherkin.Feature) {
	for _, l := range ls {
		l.FeatureStarted(feature)
	}
}

func (ls Listeners) ScenarioStarted(feature *gherkin.Feature, scenario *gherkin.Scenario) {
	for _, l := range ls {
		l.ScenarioStarted(feature, scenario)
	}
}

func (ls Listeners) StepStarted(scenario *gherkin.Scenario, step *gherkin.Step) {
	for _, l := range ls {
		l.StepStarted(scenario, step)
	}
}

func (ls Listeners) StepFinished(scenario *gherkin.Scenario, result *StepResult) {
	for _, l := range ls {
		l.StepFinished(scenario, result)
	}
}

func (ls Listeners) ScenarioFinished(result *ScenarioResult) {
	for _, l := range ls {
		l.ScenarioFinished(result)
	}
}

func (ls Listeners) FeatureFinished(result *FeatureResult) {
	for _, l := range ls {
		l.FeatureFinished(result)
	}
}

func (ls Listeners) RunFinished(summary *Summary) {
	for _, l := range ls {
		l.RunFinished(summary)
	}
}
