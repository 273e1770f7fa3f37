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

package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/tombee/gherkit/internal/log"
	"github.com/tombee/gherkit/internal/runner"
)

// FromSummary converts a run summary into a storable Run.
func FromSummary(summary *runner.Summary) *Run {
	c := summary.Scenarios
	run := &Run{
		ID:        summary.RunID,
		StartedAt: summary.StartedAt,
		Duration:  summary.Duration,
		Status:    string(summary.Status()),
		Scenarios: c.Total,
		Passed:    c.Passed,
		Failed:    c.Failed + c.Ambiguous,
		Undefined: c.Undefined,
		Pending:   c.Pending,
		Skipped:   c.Skipped,
	}

	for _, fr := range summary.Features {
		for _, sr := range fr.Scenarios {
			rec := ScenarioRecord{
				Feature:  fr.Feature.Path,
				Scenario: sr.Scenario.Name,
				Line:     sr.Scenario.Line,
				Status:   string(sr.Status),
				Duration: sr.Duration,
			}
			if sr.Err != nil {
				rec.Error = sr.Err.Error()
			}
			run.Results = append(run.Results, rec)
		}
	}
	return run
}

// Recorder is a runner.Listener that saves the run when it finishes.
type Recorder struct {
	runner.BaseListener

	store  *Store
	logger *slog.Logger
	err    error
}

// NewRecorder returns a Recorder writing to store.
func NewRecorder(store *Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = log.Discard()
	}
	return &Recorder{store: store, logger: logger}
}

// RunFinished saves the summary.
func (r *Recorder) RunFinished(summary *runner.Summary) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.store.SaveRun(ctx, FromSummary(summary)); err != nil {
		r.err = err
		r.logger.Warn("failed to record run", log.RunIDKey, summary.RunID, log.Error(err))
		return
	}
	r.logger.Debug("recorded run", log.RunIDKey, summary.RunID)
}

// Err returns the error from the last save, if any.
func (r *Recorder) Err() error {
	return r.err
}
