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

package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_BatchesAndKeepsLatest(t *testing.T) {
	var (
		mu      sync.Mutex
		batches [][]Event
	)
	d := NewDebouncer(30*time.Millisecond, func(events []Event) {
		mu.Lock()
		defer mu.Unlock()
		batches = append(batches, events)
	})

	d.Add(Event{Path: "b.feature", Op: "created"})
	d.Add(Event{Path: "a.feature", Op: "modified"})
	d.Add(Event{Path: "b.feature", Op: "modified"})
	assert.Equal(t, 2, d.Pending())

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(batches) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Event{
		{Path: "a.feature", Op: "modified"},
		{Path: "b.feature", Op: "modified"},
	}, batches[0])
	assert.Zero(t, d.Pending())
}

func TestDebouncer_StopDropsPending(t *testing.T) {
	called := make(chan struct{}, 1)
	d := NewDebouncer(20*time.Millisecond, func([]Event) { called <- struct{}{} })

	d.Add(Event{Path: "x.feature"})
	d.Stop()
	d.Add(Event{Path: "y.feature"})

	select {
	case <-called:
		t.Fatal("flush after stop")
	case <-time.After(80 * time.Millisecond):
	}
	assert.Zero(t, d.Pending())
}

func TestWatcher_TriggersOnFeatureChange(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o755))

	w, err := New([]string{dir}, Options{Debounce: 20 * time.Millisecond, MinInterval: -1})
	require.NoError(t, err)
	assert.Len(t, w.Roots(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan []Event, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, events []Event) error {
			got <- events
			return nil
		})
	}()

	// ignored: not a feature file
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	target := filepath.Join(sub, "calc.feature")
	require.NoError(t, os.WriteFile(target, []byte("Feature: Calc\n"), 0o644))

	select {
	case events := <-got:
		require.NotEmpty(t, events)
		for _, ev := range events {
			assert.Equal(t, target, ev.Path)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no trigger for feature change")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestNew_FileRootUsesDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.feature")
	require.NoError(t, os.WriteFile(file, []byte("Feature: A\n"), 0o644))

	w, err := New([]string{file, dir}, Options{})
	require.NoError(t, err)
	defer w.fsw.Close()

	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{abs}, w.Roots())
}

func TestNew_MissingRoot(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "missing")}, Options{})
	assert.Error(t, err)
}
