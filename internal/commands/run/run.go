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

package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/gherkit/internal/commands/shared"
	"github.com/tombee/gherkit/internal/config"
	"github.com/tombee/gherkit/internal/format"
	"github.com/tombee/gherkit/internal/history"
	"github.com/tombee/gherkit/internal/log"
	"github.com/tombee/gherkit/internal/runner"
	"github.com/tombee/gherkit/internal/steps"
	"github.com/tombee/gherkit/internal/tags"
	"github.com/tombee/gherkit/internal/tracing"
	"github.com/tombee/gherkit/internal/watch"
)

const shutdownTimeout = 5 * time.Second

// errorer is implemented by reporters that buffer output until the run ends.
type errorer interface {
	Err() error
}

func runFeatures(cmd *cobra.Command, registry *steps.Registry, args []string, opts options) error {
	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg, opts)
	if err := cfg.Validate(); err != nil {
		return shared.NewUsageError("", err)
	}

	logger := shared.NewLogger(cfg)

	runOpts := runner.Options{
		StopOnFailure: cfg.Run.StopOnFailure,
		DryRun:        opts.dryRun,
		Logger:        logger,
	}
	if cfg.Run.Tags != "" {
		expr, err := tags.Parse(cfg.Run.Tags)
		if err != nil {
			return shared.NewUsageError("invalid tag expression", err)
		}
		runOpts.Tags = expr
	}
	if opts.name != "" {
		re, err := regexp.Compile(opts.name)
		if err != nil {
			return shared.NewUsageError("invalid --name pattern", err)
		}
		runOpts.Name = re
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := &execution{
		cmd:      cmd,
		registry: registry,
		cfg:      cfg,
		args:     args,
		runOpts:  runOpts,
		logger:   logger,
	}

	err = e.once(ctx)
	if !opts.watch {
		return err
	}
	if ctx.Err() != nil {
		return shared.NewInterruptedError()
	}
	if err != nil && shared.ExitCode(err) == shared.ExitUsage {
		return err
	}
	shared.PrintError(cmd.ErrOrStderr(), err)
	return e.watch(ctx)
}

// applyFlags overrides configuration with the flags the user set.
func applyFlags(cmd *cobra.Command, cfg *config.Config, opts options) {
	flags := cmd.Flags()
	if flags.Changed("stop-on-failure") {
		cfg.Run.StopOnFailure = opts.stopOnFailure
	}
	if flags.Changed("tags") {
		cfg.Run.Tags = opts.tags
	}
	if flags.Changed("format") {
		cfg.Output.Format = opts.format
	} else if shared.GetJSON() {
		cfg.Output.Format = "json"
	}
	if flags.Changed("output") {
		cfg.Output.File = opts.output
	}
	if flags.Changed("metrics-file") {
		cfg.Metrics.Textfile = opts.metricsFile
	}
	if flags.Changed("trace") {
		cfg.Tracing.Exporter = opts.trace
	}
	if opts.noHistory {
		cfg.History.Enabled = false
	}
	if shared.GetNoColor() {
		cfg.Output.Color = "never"
	}
}

// execution carries the state shared by a single run and the watch loop.
type execution struct {
	cmd      *cobra.Command
	registry *steps.Registry
	cfg      *config.Config
	args     []string
	runOpts  runner.Options
	logger   *slog.Logger
}

// once discovers, runs and reports the features once.
func (e *execution) once(ctx context.Context) (err error) {
	features, err := shared.LoadFeatures(e.cfg, e.args)
	if err != nil {
		return shared.NewUsageError("", err)
	}

	out, closeOut, err := e.output()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeOut(); cerr != nil && err == nil {
			err = fmt.Errorf("closing report: %w", cerr)
		}
	}()

	reporter, err := format.New(e.cfg.Output.Format, out, format.Options{
		Verbose:  shared.GetVerbose(),
		Color:    e.color(out),
		Snippets: true,
	})
	if err != nil {
		return shared.NewUsageError("", err)
	}
	listeners := []runner.Listener{reporter}

	var provider *tracing.Provider
	tracingEnabled := e.cfg.Tracing.Exporter != tracing.ExporterNone
	if tracingEnabled || e.cfg.Metrics.Textfile != "" {
		provider, err = tracing.NewProvider(ctx, e.cfg.TracingConfig(), e.cmd.ErrOrStderr())
		if err != nil {
			return shared.NewUsageError("", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if serr := provider.Shutdown(sctx); serr != nil {
				e.logger.Warn("tracing shutdown failed", log.Error(serr))
			}
		}()
		if tracingEnabled {
			listeners = append(listeners, tracing.NewSpanListener(ctx, provider.Tracer("gherkit/runner")))
		}
		if e.cfg.Metrics.Textfile != "" {
			listeners = append(listeners, tracing.NewMetricsListener(provider.Metrics()))
		}
	}

	var store *history.Store
	if e.cfg.History.Enabled && !e.runOpts.DryRun {
		store = e.openHistory()
		if store != nil {
			defer store.Close()
			listeners = append(listeners, history.NewRecorder(store, e.logger))
		}
	}

	summary, runErr := runner.New(e.registry, e.runOpts, listeners...).Run(ctx, features)

	if r, ok := reporter.(errorer); ok && r.Err() != nil {
		return fmt.Errorf("writing %s report: %w", e.cfg.Output.Format, r.Err())
	}
	if store != nil && e.cfg.History.Keep > 0 {
		if n, perr := store.Prune(context.Background(), e.cfg.History.Keep); perr != nil {
			e.logger.Warn("history prune failed", log.Error(perr))
		} else if n > 0 {
			e.logger.Debug("history pruned", slog.Int64("runs", n))
		}
	}
	if provider != nil && e.cfg.Metrics.Textfile != "" {
		if werr := provider.WriteTextfile(e.cfg.Metrics.Textfile); werr != nil {
			e.logger.Warn("metrics textfile not written", log.Error(werr), slog.String("path", e.cfg.Metrics.Textfile))
		}
	}

	return resultError(summary, runErr)
}

// resultError maps the runner outcome onto exit codes.
func resultError(summary *runner.Summary, err error) error {
	if summary != nil && summary.Interrupted {
		return shared.NewInterruptedError()
	}
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return shared.NewInterruptedError()
	case errors.Is(err, runner.ErrScenariosFailed):
		// the reporter already explained the failure
		return &shared.ExitError{Code: shared.ExitFailed}
	}
	return err
}

// output returns the report destination and a function closing it.
func (e *execution) output() (io.Writer, func() error, error) {
	path := e.cfg.Output.File
	if path == "" {
		if shared.GetQuiet() && !format.IsMachineReadable(e.cfg.Output.Format) {
			return io.Discard, func() error { return nil }, nil
		}
		return e.cmd.OutOrStdout(), func() error { return nil }, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, shared.NewUsageError("creating report directory", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, shared.NewUsageError("opening report file", err)
	}
	return f, f.Close, nil
}

func (e *execution) color(w io.Writer) bool {
	switch e.cfg.Output.Color {
	case "always":
		return true
	case "never":
		return false
	}
	return format.IsTTY(w)
}

// openHistory opens the history database. Failures are logged and the run
// continues without recording.
func (e *execution) openHistory() *history.Store {
	path := e.cfg.History.Path
	if path != ":memory:" {
		if err := config.EnsureDir(path); err != nil {
			e.logger.Warn("history disabled", log.Error(err))
			return nil
		}
	}
	store, err := history.Open(history.Config{Path: path})
	if err != nil {
		e.logger.Warn("history disabled", log.Error(err), slog.String("path", path))
		return nil
	}
	return store
}

// watch re-runs on feature changes until ctx is cancelled.
func (e *execution) watch(ctx context.Context) error {
	roots := make([]string, 0)
	for _, t := range shared.FeatureTargets(e.cfg, e.args) {
		roots = append(roots, t.Path)
	}

	w, err := watch.New(roots, watch.Options{Logger: e.logger})
	if err != nil {
		return shared.NewUsageError("starting watcher", err)
	}

	stderr := e.cmd.ErrOrStderr()
	fmt.Fprintln(stderr, shared.Muted.Render(fmt.Sprintf("Watching %d path(s) for changes. Press Ctrl+C to stop.", len(w.Roots()))))

	err = w.Run(ctx, func(ctx context.Context, events []watch.Event) error {
		for _, ev := range events {
			fmt.Fprintln(stderr, shared.Muted.Render(fmt.Sprintf("%s %s", ev.Op, ev.Path)))
		}
		if rerr := e.once(ctx); rerr != nil && ctx.Err() == nil {
			shared.PrintError(stderr, rerr)
		}
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return shared.NewInterruptedError()
}
