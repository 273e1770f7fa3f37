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

// Package watch re-runs features when files under the watched directories
// change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/tombee/gherkit/internal/discovery"
	"github.com/tombee/gherkit/internal/log"
)

// Event describes one file change.
type Event struct {
	Path string
	Op   string
}

var opNames = []struct {
	op   fsnotify.Op
	name string
}{
	{fsnotify.Create, "created"},
	{fsnotify.Write, "modified"},
	{fsnotify.Remove, "deleted"},
	{fsnotify.Rename, "renamed"},
}

// Options configures a Watcher.
type Options struct {
	// Debounce is the quiet period before a batch is delivered (default 200ms).
	Debounce time.Duration

	// MinInterval is the minimum time between two triggers (default 1s).
	// Negative disables the limit.
	MinInterval time.Duration

	// Matcher filters changed paths, relative to the watched root. Nil
	// accepts feature files outside the default exclusions.
	Matcher *discovery.PatternMatcher

	Logger *slog.Logger
}

// Watcher watches directory trees for feature changes.
type Watcher struct {
	roots   []string
	opts    Options
	fsw     *fsnotify.Watcher
	logger  *slog.Logger
	limiter *rate.Limiter
}

// New creates a watcher over roots. A file root is replaced by its
// directory, since editors often replace files rather than write them.
func New(roots []string, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = 200 * time.Millisecond
	}
	if opts.MinInterval == 0 {
		opts.MinInterval = time.Second
	}
	if opts.Matcher == nil {
		m, err := discovery.NewPatternMatcher([]string{discovery.DefaultInclude}, discovery.DefaultExcludePatterns())
		if err != nil {
			return nil, err
		}
		opts.Matcher = m
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}

	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		opts:    opts,
		fsw:     fsw,
		logger:  log.WithComponent(logger, "watch"),
		limiter: rate.NewLimiter(limit, 1),
	}

	seen := make(map[string]bool)
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to get absolute path: %w", err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", root, err)
		}
		if !info.IsDir() {
			abs = filepath.Dir(abs)
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		w.roots = append(w.roots, abs)
		if err := w.addTree(abs); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// addTree watches dir and every non-excluded directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.opts.Matcher.Excluded(w.rel(path)+"/x") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		w.logger.Debug("watching directory", slog.String("path", path))
		return nil
	})
}

// rel returns path relative to the root containing it, slash-separated.
func (w *Watcher) rel(path string) string {
	for _, root := range w.roots {
		if r, err := filepath.Rel(root, path); err == nil && r != ".." &&
			!strings.HasPrefix(r, ".."+string(filepath.Separator)) {
			return filepath.ToSlash(r)
		}
	}
	return filepath.ToSlash(path)
}

// Run blocks until ctx is done, calling trigger with each debounced batch
// of relevant changes. Triggers never overlap and are spaced by at least
// MinInterval. An error from trigger is logged and watching continues.
func (w *Watcher) Run(ctx context.Context, trigger func(context.Context, []Event) error) error {
	defer w.fsw.Close()

	batches := make(chan []Event, 1)
	debouncer := NewDebouncer(w.opts.Debounce, func(events []Event) {
		select {
		case batches <- events:
		default:
			// a batch is already queued; merge into it
			select {
			case prev := <-batches:
				batches <- append(prev, events...)
			default:
				batches <- events
			}
		}
	})
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev, debouncer)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", log.Error(err))

		case events := <-batches:
			if err := w.limiter.Wait(ctx); err != nil {
				return nil
			}
			w.logger.Debug("changes detected", slog.Int("files", len(events)))
			if err := trigger(ctx, events); err != nil {
				w.logger.Warn("watch trigger failed", log.Error(err))
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event, debouncer *Debouncer) {
	op := ""
	for _, o := range opNames {
		if ev.Op.Has(o.op) {
			op = o.name
			break
		}
	}
	if op == "" {
		return
	}

	if op == "created" {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				w.logger.Warn("failed to watch new directory", log.Error(err))
			}
			return
		}
	}

	if !w.opts.Matcher.Match(w.rel(ev.Name)) {
		w.logger.Debug("ignoring change", slog.String("path", ev.Name))
		return
	}
	debouncer.Add(Event{Path: ev.Name, Op: op})
}

// Roots returns the watched root directories.
func (w *Watcher) Roots() []string {
	return w.roots
}
