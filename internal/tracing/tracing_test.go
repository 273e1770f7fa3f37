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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/tombee/gherkit/internal/gherkin"
	"github.com/tombee/gherkit/internal/runner"
	"github.com/tombee/gherkit/internal/steps"
	gerrors "github.com/tombee/gherkit/pkg/errors"
)

const feature = `Feature: Tally

  Scenario: Counting
    Given a count of 2
    Then the count is 2

  Scenario: Miscounting
    Given a count of 2
    Then the count is 3
    And nothing else happens
`

func tallyRegistry() *steps.Registry {
	reg := steps.NewRegistry()
	reg.Given("a count of {int}", func(sc *steps.Context, n int) {
		sc.Set("count", n)
	})
	reg.Then("the count is {int}", func(sc *steps.Context, want int) error {
		got, err := sc.Int("count")
		if err != nil {
			return err
		}
		if got != want {
			return errors.New("count mismatch")
		}
		return nil
	})
	return reg
}

func runTally(t *testing.T, listeners ...runner.Listener) *runner.Summary {
	t.Helper()
	f, err := gherkin.Parse(strings.NewReader(feature), "tally.feature")
	require.NoError(t, err)

	r := runner.New(tallyRegistry(), runner.Options{}, listeners...)
	summary, err := r.Run(context.Background(), []*gherkin.Feature{f})
	require.ErrorIs(t, err, runner.ErrScenariosFailed)
	return summary
}

func newTestProvider(t *testing.T, opts ...sdktrace.TracerProviderOption) *Provider {
	t.Helper()
	p, err := NewProvider(context.Background(), DefaultConfig(), nil, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { p.Shutdown(context.Background()) })
	return p
}

func TestSpanListener_Hierarchy(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	p := newTestProvider(t, sdktrace.WithSpanProcessor(rec))

	runTally(t, NewSpanListener(context.Background(), p.Tracer("test")))

	spans := rec.Ended()
	byName := make(map[string]sdktrace.ReadOnlySpan)
	for _, s := range spans {
		byName[s.Name()] = s
	}

	run := byName["gherkit run"]
	require.NotNil(t, run)
	feat := byName["Feature: Tally"]
	require.NotNil(t, feat)
	counting := byName["Scenario: Counting"]
	require.NotNil(t, counting)
	miscounting := byName["Scenario: Miscounting"]
	require.NotNil(t, miscounting)

	assert.Equal(t, run.SpanContext().SpanID(), feat.Parent().SpanID())
	assert.Equal(t, feat.SpanContext().SpanID(), counting.Parent().SpanID())
	assert.Equal(t, codes.Ok, counting.Status().Code)
	assert.Equal(t, codes.Error, miscounting.Status().Code)
	assert.Equal(t, "count mismatch", miscounting.Status().Description)
	assert.Equal(t, codes.Error, run.Status().Code)

	// 2 steps + 3 steps, the last one skipped and never errored
	var stepSpans int
	for _, s := range spans {
		if s.Parent().SpanID() == miscounting.SpanContext().SpanID() {
			stepSpans++
		}
	}
	assert.Equal(t, 3, stepSpans)

	skipped := byName["And nothing else happens"]
	require.NotNil(t, skipped)
	assert.Equal(t, codes.Unset, skipped.Status().Code)
	assert.Equal(t, 1+1+2+5, len(spans))
}

func TestSpanListener_SkippedScenarioSteps(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	p := newTestProvider(t, sdktrace.WithSpanProcessor(rec))

	f, err := gherkin.Parse(strings.NewReader(feature), "tally.feature")
	require.NoError(t, err)
	r := runner.New(tallyRegistry(), runner.Options{StopOnFailure: true},
		NewSpanListener(context.Background(), p.Tracer("test")))

	// swap the order so the failing scenario stops the run first
	f.Scenarios[0], f.Scenarios[1] = f.Scenarios[1], f.Scenarios[0]
	_, err = r.Run(context.Background(), []*gherkin.Feature{f})
	require.Error(t, err)

	var counting sdktrace.ReadOnlySpan
	for _, s := range rec.Ended() {
		if s.Name() == "Scenario: Counting" {
			counting = s
		}
	}
	require.NotNil(t, counting)

	var children int
	for _, s := range rec.Ended() {
		if s.Parent().SpanID() == counting.SpanContext().SpanID() {
			children++
		}
	}
	assert.Equal(t, 2, children)
}

func TestMetricsListener_Textfile(t *testing.T) {
	p := newTestProvider(t)
	runTally(t, NewMetricsListener(p.Metrics()))

	families, err := p.Gatherer().Gather()
	require.NoError(t, err)

	counts := make(map[string]float64)
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "gherkit_scenarios") {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "status" {
					counts[l.GetValue()] += m.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, 1.0, counts["passed"])
	assert.Equal(t, 1.0, counts["failed"])

	path := filepath.Join(t.TempDir(), "gherkit.prom")
	require.NoError(t, p.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "gherkit_scenarios_total")
	assert.Contains(t, text, "gherkit_steps_total")
	assert.Contains(t, text, "gherkit_scenario_duration_seconds")
	assert.Contains(t, text, `status="skipped"`)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "default", cfg: DefaultConfig()},
		{name: "stdout", cfg: Config{Exporter: ExporterStdout}},
		{name: "otlp without endpoint", cfg: Config{Exporter: ExporterOTLPHTTP}, wantErr: true},
		{name: "otlp grpc", cfg: Config{Exporter: ExporterOTLPGRPC, Endpoint: "localhost:4317"}},
		{name: "unknown", cfg: Config{Exporter: "zipkin"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var ce *gerrors.ConfigError
			assert.True(t, errors.As(err, &ce))
		})
	}
}

func TestNewProvider_StdoutExporter(t *testing.T) {
	var buf strings.Builder
	cfg := DefaultConfig()
	cfg.Exporter = ExporterStdout

	p, err := NewProvider(context.Background(), cfg, &buf)
	require.NoError(t, err)

	_, span := p.Tracer("test").Start(context.Background(), "probe")
	span.End()
	require.NoError(t, p.Shutdown(context.Background()))

	assert.Contains(t, buf.String(), `"Name": "probe"`)
}
