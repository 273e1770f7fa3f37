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

package tracing

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/gherkit/internal/gherkin"
	"github.com/tombee/gherkit/internal/runner"
)

// Span attribute keys.
const (
	AttrRunID        = attribute.Key("gherkit.run.id")
	AttrFeaturePath  = attribute.Key("gherkit.feature.path")
	AttrScenarioLine = attribute.Key("gherkit.scenario.line")
	AttrScenarioTags = attribute.Key("gherkit.scenario.tags")
	AttrStepKeyword  = attribute.Key("gherkit.step.keyword")
	AttrStepLine     = attribute.Key("gherkit.step.line")
	AttrStatus       = attribute.Key("gherkit.status")
)

// SpanListener is a runner.Listener that opens a span for the run and for
// each feature, scenario and step. The runner calls it from one goroutine.
type SpanListener struct {
	runner.BaseListener

	tracer trace.Tracer
	parent context.Context

	runCtx, featureCtx, scenarioCtx context.Context
	run, feature, scenario, step    trace.Span
}

// NewSpanListener returns a listener whose run span is a child of any span
// in ctx.
func NewSpanListener(ctx context.Context, tracer trace.Tracer) *SpanListener {
	return &SpanListener{tracer: tracer, parent: ctx}
}

// RunStarted implements runner.Listener.
func (l *SpanListener) RunStarted(run *runner.RunInfo) {
	l.runCtx, l.run = l.tracer.Start(l.parent, "gherkit run",
		trace.WithTimestamp(run.StartedAt),
		trace.WithAttributes(
			AttrRunID.String(run.ID),
			attribute.Int("gherkit.features", len(run.Features)),
		))
}

// FeatureStarted implements runner.Listener.
func (l *SpanListener) FeatureStarted(feature *gherkin.Feature) {
	l.featureCtx, l.feature = l.tracer.Start(l.ctx(l.runCtx), "Feature: "+feature.Name,
		trace.WithAttributes(AttrFeaturePath.String(feature.Path)))
}

// ScenarioStarted implements runner.Listener.
func (l *SpanListener) ScenarioStarted(feature *gherkin.Feature, scenario *gherkin.Scenario) {
	l.scenarioCtx, l.scenario = l.tracer.Start(l.ctx(l.featureCtx), "Scenario: "+scenario.Name,
		trace.WithAttributes(
			AttrFeaturePath.String(feature.Path),
			AttrScenarioLine.Int(scenario.Line),
			AttrScenarioTags.StringSlice(scenario.Tags),
		))
}

// StepStarted implements runner.Listener.
func (l *SpanListener) StepStarted(_ *gherkin.Scenario, step *gherkin.Step) {
	l.step = l.startStep(step)
}

// StepFinished implements runner.Listener. Steps of a scenario skipped as a
// whole are never started, so their span is opened here.
func (l *SpanListener) StepFinished(_ *gherkin.Scenario, res *runner.StepResult) {
	span := l.step
	if span == nil {
		span = l.startStep(res.Step)
	}
	l.step = nil
	finish(span, res.Status, res.Err)
}

// ScenarioFinished implements runner.Listener.
func (l *SpanListener) ScenarioFinished(res *runner.ScenarioResult) {
	if l.scenario != nil {
		finish(l.scenario, res.Status, res.Err)
	}
	l.scenario, l.scenarioCtx = nil, nil
}

// FeatureFinished implements runner.Listener.
func (l *SpanListener) FeatureFinished(res *runner.FeatureResult) {
	if l.feature != nil {
		finish(l.feature, res.Status(), nil)
	}
	l.feature, l.featureCtx = nil, nil
}

// RunFinished implements runner.Listener.
func (l *SpanListener) RunFinished(summary *runner.Summary) {
	if l.run == nil {
		return
	}
	l.run.SetAttributes(
		attribute.Int("gherkit.scenarios.total", summary.Scenarios.Total),
		attribute.Int("gherkit.scenarios.failed", summary.Scenarios.Failed),
		attribute.Bool("gherkit.interrupted", summary.Interrupted),
	)
	var err error
	if summary.Interrupted {
		err = errors.New("run interrupted")
	}
	finish(l.run, summary.Status(), err)
	l.run, l.runCtx = nil, nil
}

func (l *SpanListener) startStep(step *gherkin.Step) trace.Span {
	_, span := l.tracer.Start(l.ctx(l.scenarioCtx), step.Keyword+" "+step.Text,
		trace.WithAttributes(
			AttrStepKeyword.String(step.Keyword),
			AttrStepLine.Int(step.Line),
		))
	return span
}

func (l *SpanListener) ctx(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return l.parent
}

func finish(span trace.Span, status runner.Status, err error) {
	span.SetAttributes(AttrStatus.String(string(status)))
	switch status {
	case runner.StatusPassed:
		span.SetStatus(codes.Ok, "")
	case runner.StatusSkipped:
	default:
		msg := string(status)
		if err != nil {
			span.RecordError(err)
			msg = err.Error()
		}
		span.SetStatus(codes.Error, msg)
	}
	span.End()
}

// MetricsListener is a runner.Listener feeding a MetricsCollector.
type MetricsListener struct {
	runner.BaseListener

	metrics *MetricsCollector
}

// NewMetricsListener returns a listener recording into metrics.
func NewMetricsListener(metrics *MetricsCollector) *MetricsListener {
	return &MetricsListener{metrics: metrics}
}

// StepFinished implements runner.Listener.
func (l *MetricsListener) StepFinished(_ *gherkin.Scenario, res *runner.StepResult) {
	l.metrics.RecordStep(context.Background(), string(res.Status))
}

// ScenarioFinished implements runner.Listener.
func (l *MetricsListener) ScenarioFinished(res *runner.ScenarioResult) {
	l.metrics.RecordScenario(context.Background(), string(res.Status), res.Duration)
}

// RunFinished implements runner.Listener.
func (l *MetricsListener) RunFinished(summary *runner.Summary) {
	l.metrics.RecordRun(context.Background(), string(summary.Status()), summary.Duration)
}
