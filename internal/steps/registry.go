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

// Package steps maps human-readable step text to Go handler functions.
//
// Handlers are registered against a pattern, either a cucumber expression
// or a raw regular expression:
//
//	reg := steps.NewRegistry()
//	reg.Given("I have a calculator", func(sc *steps.Context) {
//	    sc.Set("calculator", calculator.New())
//	})
//	reg.When("I add {int} and {int}", func(sc *steps.Context, a, b float64) error {
//	    ...
//	})
//
// Dispatch ignores the Gherkin keyword: a pattern registered with Given also
// matches a When or And line with the same text.
package steps

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// ScenarioHook runs before a scenario's first step.
type ScenarioHook func(sc *Context) error

// AfterScenarioHook runs after a scenario's last step. err is the
// scenario's first step error, or nil when every step passed.
type AfterScenarioHook func(sc *Context, err error) error

// StepHook runs before each step with the step text.
type StepHook func(sc *Context, text string) error

// AfterStepHook runs after each executed step with the handler's error.
type AfterStepHook func(sc *Context, text string, err error) error

// Registry holds step definitions and hooks. It is built once before a run
// and only read while scenarios execute.
type Registry struct {
	defs     []*Definition
	patterns map[string]*Definition

	beforeScenario []ScenarioHook
	afterScenario  []AfterScenarioHook
	beforeStep     []StepHook
	afterStep      []AfterStepHook
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{patterns: make(map[string]*Definition)}
}

// Step registers handler for pattern.
func (r *Registry) Step(pattern string, handler any) error {
	return r.add(pattern, handler, callerSource(2))
}

// MustStep is like Step but panics on an invalid definition. Intended for
// static step libraries where a bad pattern is a programming error.
func (r *Registry) MustStep(pattern string, handler any) {
	if err := r.add(pattern, handler, callerSource(2)); err != nil {
		panic(err)
	}
}

// Given registers a step; the keyword only documents intent.
func (r *Registry) Given(pattern string, handler any) {
	r.mustAdd(pattern, handler)
}

// When registers a step; the keyword only documents intent.
func (r *Registry) When(pattern string, handler any) {
	r.mustAdd(pattern, handler)
}

// Then registers a step; the keyword only documents intent.
func (r *Registry) Then(pattern string, handler any) {
	r.mustAdd(pattern, handler)
}

func (r *Registry) mustAdd(pattern string, handler any) {
	if err := r.add(pattern, handler, callerSource(3)); err != nil {
		panic(err)
	}
}

func (r *Registry) add(pattern string, handler any, source string) error {
	if prev, ok := r.patterns[pattern]; ok {
		return &DefinitionError{Pattern: pattern, Reason: "already registered at " + prev.Source}
	}
	def, err := newDefinition(pattern, handler, source)
	if err != nil {
		return err
	}
	r.defs = append(r.defs, def)
	r.patterns[pattern] = def
	return nil
}

// Definitions returns the registered definitions in registration order.
func (r *Registry) Definitions() []*Definition {
	out := make([]*Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int { return len(r.defs) }

// Match resolves step text to exactly one definition. It returns an
// *UndefinedStepError when nothing matches and an *AmbiguousStepError when
// more than one definition matches.
func (r *Registry) Match(text string) (*Match, error) {
	var matches []*Match
	for _, def := range r.defs {
		args, ok := def.expr.Match(text)
		if !ok {
			continue
		}
		matches = append(matches, &Match{Definition: def, Args: args})
	}

	switch len(matches) {
	case 0:
		return nil, &UndefinedStepError{Text: text}
	case 1:
		return matches[0], nil
	}

	patterns := make([]string, len(matches))
	for i, m := range matches {
		patterns[i] = m.Definition.Pattern
	}
	return nil, &AmbiguousStepError{Text: text, Patterns: patterns}
}

// BeforeScenario registers a hook run before each scenario.
func (r *Registry) BeforeScenario(hook ScenarioHook) {
	r.beforeScenario = append(r.beforeScenario, hook)
}

// AfterScenario registers a hook run after each scenario, even a failed one.
func (r *Registry) AfterScenario(hook AfterScenarioHook) {
	r.afterScenario = append(r.afterScenario, hook)
}

// BeforeStep registers a hook run before each step.
func (r *Registry) BeforeStep(hook StepHook) {
	r.beforeStep = append(r.beforeStep, hook)
}

// AfterStep registers a hook run after each executed step.
func (r *Registry) AfterStep(hook AfterStepHook) {
	r.afterStep = append(r.afterStep, hook)
}

// RunBeforeScenario runs the before-scenario hooks, stopping at the first error.
func (r *Registry) RunBeforeScenario(sc *Context) error {
	for _, hook := range r.beforeScenario {
		if err := hook(sc); err != nil {
			return fmt.Errorf("before scenario hook: %w", err)
		}
	}
	return nil
}

// RunAfterScenario runs every after-scenario hook in reverse registration
// order and returns the first hook error.
func (r *Registry) RunAfterScenario(sc *Context, scenarioErr error) error {
	var first error
	for i := len(r.afterScenario) - 1; i >= 0; i-- {
		if err := r.afterScenario[i](sc, scenarioErr); err != nil && first == nil {
			first = fmt.Errorf("after scenario hook: %w", err)
		}
	}
	return first
}

// RunBeforeStep runs the before-step hooks, stopping at the first error.
func (r *Registry) RunBeforeStep(sc *Context, text string) error {
	for _, hook := range r.beforeStep {
		if err := hook(sc, text); err != nil {
			return fmt.Errorf("before step hook: %w", err)
		}
	}
	return nil
}

// RunAfterStep runs every after-step hook and returns the first hook error.
func (r *Registry) RunAfterStep(sc *Context, text string, stepErr error) error {
	var first error
	for i := len(r.afterStep) - 1; i >= 0; i-- {
		if err := r.afterStep[i](sc, text, stepErr); err != nil && first == nil {
			first = fmt.Errorf("after step hook: %w", err)
		}
	}
	return first
}

func callerSource(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}
