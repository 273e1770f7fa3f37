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
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsCollector records run outcomes as OpenTelemetry instruments.
type MetricsCollector struct {
	runsTotal      metric.Int64Counter
	scenariosTotal metric.Int64Counter
	stepsTotal     metric.Int64Counter

	runDuration      metric.Float64Histogram
	scenarioDuration metric.Float64Histogram
}

// NewMetricsCollector creates the instruments on the given meter provider.
func NewMetricsCollector(meterProvider metric.MeterProvider) (*MetricsCollector, error) {
	meter := meterProvider.Meter("gherkit")
	mc := &MetricsCollector{}

	var err error
	mc.runsTotal, err = meter.Int64Counter(
		"gherkit_runs_total",
		metric.WithDescription("Total number of test runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	mc.scenariosTotal, err = meter.Int64Counter(
		"gherkit_scenarios_total",
		metric.WithDescription("Total number of scenarios executed"),
		metric.WithUnit("{scenario}"),
	)
	if err != nil {
		return nil, err
	}

	mc.stepsTotal, err = meter.Int64Counter(
		"gherkit_steps_total",
		metric.WithDescription("Total number of steps executed"),
		metric.WithUnit("{step}"),
	)
	if err != nil {
		return nil, err
	}

	mc.runDuration, err = meter.Float64Histogram(
		"gherkit_run_duration_seconds",
		metric.WithDescription("Test run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	mc.scenarioDuration, err = meter.Float64Histogram(
		"gherkit_scenario_duration_seconds",
		metric.WithDescription("Scenario duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return mc, nil
}

// RecordRun records a finished run.
func (mc *MetricsCollector) RecordRun(ctx context.Context, status string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("status", status))
	mc.runsTotal.Add(ctx, 1, attrs)
	mc.runDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordScenario records a finished scenario.
func (mc *MetricsCollector) RecordScenario(ctx context.Context, status string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("status", status))
	mc.scenariosTotal.Add(ctx, 1, attrs)
	mc.scenarioDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordStep records a finished step.
func (mc *MetricsCollector) RecordStep(ctx context.Context, status string) {
	mc.stepsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}
