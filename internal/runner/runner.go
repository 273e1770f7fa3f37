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

// Package runner executes parsed feature files against a step registry.
//
// Scenarios run one at a time on the calling goroutine. Each scenario gets
// a fresh steps.Context; after the first step that does not pass, the rest
// of the scenario's steps are skipped. Progress is reported to Listeners.
package runner

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/tombee/gherkit/internal/gherkin"
	"github.com/tombee/gherkit/internal/log"
	"github.com/tombee/gherkit/internal/steps"
	"github.com/tombee/gherkit/internal/tags"
)

// ErrScenariosFailed is returned by Run when any scenario did not pass.
var ErrScenariosFailed = errors.New("one or more scenarios did not pass")

// Options controls scenario selection and execution.
type Options struct {
	// StopOnFailure skips every scenario after the first one that does not pass.
	StopOnFailure bool

	// DryRun matches steps against definitions without invoking handlers.
	DryRun bool

	// Tags selects scenarios by tag expression; nil selects all.
	Tags *tags.Expression

	// Name selects scenarios whose name matches; nil selects all.
	Name *regexp.Regexp

	Logger *slog.Logger
}

// Runner executes scenarios.
type Runner struct {
	registry *steps.Registry
	opts     Options
	listener Listeners
	logger   *slog.Logger
}

// New creates a runner over registry.
func New(registry *steps.Registry, opts Options, listeners ...Listener) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	return &Runner{
		registry: registry,
		opts:     opts,
		listener: Listeners(listeners),
		logger:   log.WithComponent(logger, "runner"),
	}
}

// Select applies the tag and name filters. Features left without scenarios
// are dropped. The input features are not modified.
func (r *Runner) Select(features []*gherkin.Feature) []*gherkin.Feature {
	var out []*gherkin.Feature
	for _, f := range features {
		var selected []*gherkin.Scenario
		for _, s := range f.Scenarios {
			if !r.opts.Tags.Match(s.Tags) {
				continue
			}
			if r.opts.Name != nil && !r.opts.Name.MatchString(s.Name) {
				continue
			}
			selected = append(selected, s)
		}
		if len(selected) == 0 {
			continue
		}
		copied := *f
		copied.Scenarios = selected
		out = append(out, &copied)
	}
	return out
}

// Run executes the selected scenarios of features. It returns
// ErrScenariosFailed when a scenario did not pass and the context error when
// the run was interrupted; the summary is returned in both cases.
func (r *Runner) Run(ctx context.Context, features []*gherkin.Feature) (*Summary, error) {
	features = r.Select(features)

	summary := &Summary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	logger := log.WithRunContext(r.logger, summary.RunID)
	logger.Debug("run started", slog.Int("features", len(features)))

	r.listener.RunStarted(&RunInfo{
		ID:        summary.RunID,
		StartedAt: summary.StartedAt,
		Features:  features,
	})

	snippets := make(map[string]bool)
	stopped := false

	for _, feature := range features {
		fr := &FeatureResult{Feature: feature}
		featureStart := time.Now()
		r.listener.FeatureStarted(feature)

		for _, scenario := range feature.Scenarios {
			// Once interrupted, the remaining scenarios are reported as skipped.
			if ctx.Err() != nil {
				summary.Interrupted = true
				stopped = true
			}

			var res *ScenarioResult
			if stopped {
				res = r.skipScenario(feature, scenario)
			} else {
				res = r.runScenario(ctx, logger, feature, scenario)
			}

			fr.Scenarios = append(fr.Scenarios, res)
			summary.Scenarios.Add(res.Status)
			for _, st := range res.Steps {
				summary.Steps.Add(st.Status)
				if st.Snippet != nil && !snippets[st.Snippet.Pattern] {
					snippets[st.Snippet.Pattern] = true
					summary.Snippets = append(summary.Snippets, *st.Snippet)
				}
			}

			if r.opts.StopOnFailure && res.Status != StatusPassed && res.Status != StatusSkipped {
				stopped = true
			}
		}

		fr.Duration = time.Since(featureStart)
		summary.Features = append(summary.Features, fr)
		r.listener.FeatureFinished(fr)
	}

	if ctx.Err() != nil {
		summary.Interrupted = true
	}
	summary.Duration = time.Since(summary.StartedAt)
	r.listener.RunFinished(summary)

	logger.Debug("run finished",
		slog.Int("scenarios", summary.Scenarios.Total),
		slog.Int("failed", summary.Scenarios.Failed),
		log.Duration(summary.Duration.Milliseconds()),
	)

	if summary.Interrupted {
		return summary, ctx.Err()
	}
	if !summary.OK() {
		return summary, ErrScenariosFailed
	}
	return summary, nil
}

func (r *Runner) runScenario(ctx context.Context, logger *slog.Logger, feature *gherkin.Feature, scenario *gherkin.Scenario) *ScenarioResult {
	logger = log.WithScenarioContext(logger, feature.Path, scenario.Name)
	r.listener.ScenarioStarted(feature, scenario)

	res := &ScenarioResult{Feature: feature, Scenario: scenario}
	start := time.Now()

	sc := steps.NewContext(ctx, scenario.Name, scenario.Tags).WithLogger(logger)

	halted := false
	if !r.opts.DryRun {
		if err := r.registry.RunBeforeScenario(sc); err != nil {
			res.Err = err
			halted = true
		}
	}

	for _, step := range scenario.Steps {
		r.listener.StepStarted(scenario, step)

		var sr *StepResult
		switch {
		case halted:
			sr = &StepResult{Step: step, Status: StatusSkipped, FinishedAt: time.Now()}
		case ctx.Err() != nil:
			halted = true
			sr = &StepResult{Step: step, Status: StatusSkipped, FinishedAt: time.Now()}
		default:
			sr = r.runStep(sc, step)
			if sr.Status != StatusPassed && !(r.opts.DryRun && sr.Status == StatusSkipped) {
				halted = !r.opts.DryRun
				if res.Err == nil {
					res.Err = sr.Err
				}
			}
		}

		res.Steps = append(res.Steps, sr)
		r.listener.StepFinished(scenario, sr)

		log.Trace(logger, "step finished",
			slog.String(log.StepKey, step.Text),
			slog.String(log.StatusKey, string(sr.Status)),
			log.Duration(sr.Duration.Milliseconds()),
		)
	}

	res.Status = scenarioStatus(res, r.opts.DryRun)

	if !r.opts.DryRun {
		if err := r.registry.RunAfterScenario(sc, res.Err); err != nil {
			if res.Err == nil {
				res.Err = err
			}
			res.Status = StatusFailed
		}
	}

	res.Duration = time.Since(start)
	r.listener.ScenarioFinished(res)

	logger.Debug("scenario finished",
		slog.String(log.StatusKey, string(res.Status)),
		log.Duration(res.Duration.Milliseconds()),
	)
	return res
}

func (r *Runner) runStep(sc *steps.Context, step *gherkin.Step) *StepResult {
	sr := &StepResult{Step: step}
	start := time.Now()
	defer func() {
		sr.Duration = time.Since(start)
		sr.FinishedAt = time.Now()
	}()

	match, err := r.registry.Match(step.Text)
	if err != nil {
		sr.Err = err
		var ambiguous *steps.AmbiguousStepError
		if errors.As(err, &ambiguous) {
			sr.Status = StatusAmbiguous
			return sr
		}
		snippet := steps.NewSnippet(step.Text)
		sr.Snippet = &snippet
		sr.Status = StatusUndefined
		return sr
	}
	sr.Definition = match.Definition

	if r.opts.DryRun {
		sr.Status = StatusSkipped
		return sr
	}

	if err := r.registry.RunBeforeStep(sc, step.Text); err != nil {
		sr.Status = StatusFailed
		sr.Err = err
		return sr
	}

	err = match.Invoke(sc, stepArgument(step))
	switch {
	case err == nil:
		sr.Status = StatusPassed
	case errors.Is(err, steps.ErrPending):
		sr.Status = StatusPending
		sr.Err = err
	default:
		sr.Status = StatusFailed
		sr.Err = err
	}

	if hookErr := r.registry.RunAfterStep(sc, step.Text, sr.Err); hookErr != nil && sr.Status == StatusPassed {
		sr.Status = StatusFailed
		sr.Err = hookErr
	}
	return sr
}

func (r *Runner) skipScenario(feature *gherkin.Feature, scenario *gherkin.Scenario) *ScenarioResult {
	r.listener.ScenarioStarted(feature, scenario)
	res := &ScenarioResult{Feature: feature, Scenario: scenario, Status: StatusSkipped}
	for _, step := range scenario.Steps {
		sr := &StepResult{Step: step, Status: StatusSkipped, FinishedAt: time.Now()}
		res.Steps = append(res.Steps, sr)
		r.listener.StepFinished(scenario, sr)
	}
	r.listener.ScenarioFinished(res)
	return res
}

// scenarioStatus derives the scenario outcome from its steps. A failed or
// ambiguous step fails the scenario. In a dry run, matched steps are
// skipped, so a fully defined scenario reports skipped.
func scenarioStatus(res *ScenarioResult, dryRun bool) Status {
	if res.Err != nil && res.FailedStep() == nil {
		// before-scenario hook failure
		return StatusFailed
	}

	status := StatusPassed
	if dryRun && len(res.Steps) > 0 {
		status = StatusSkipped
	}
	for _, st := range res.Steps {
		s := st.Status
		if s == StatusAmbiguous {
			s = StatusFailed
		}
		if severity[s] > severity[status] {
			status = s
		}
	}

	return status
}

func stepArgument(step *gherkin.Step) steps.Argument {
	var arg steps.Argument
	if step.Table != nil {
		arg.Table = steps.NewTable(step.Table)
	}
	if step.DocString != nil {
		arg.DocString = &steps.DocString{
			Content:   step.DocString.Content,
			MediaType: step.DocString.MediaType,
		}
	}
	return arg
}
