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

package steps

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/tombee/gherkit/internal/log"
)

// Context is the per-scenario scratch space handed to every step handler.
// A new Context is created for each scenario and discarded when it ends, so
// values never leak between scenarios.
type Context struct {
	ctx      context.Context
	scenario string
	tags     []string
	values   map[string]any
	logger   *slog.Logger
}

// NewContext creates an empty scenario context.
func NewContext(ctx context.Context, scenario string, tags []string) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Context{
		ctx:      ctx,
		scenario: scenario,
		tags:     tags,
		values:   make(map[string]any),
		logger:   log.Discard(),
	}
}

// WithLogger sets the logger returned by Logger.
func (c *Context) WithLogger(logger *slog.Logger) *Context {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// Context returns the run's context.Context. Handlers doing blocking work
// should honour its cancellation.
func (c *Context) Context() context.Context { return c.ctx }

// Scenario returns the name of the running scenario.
func (c *Context) Scenario() string { return c.scenario }

// Tags returns the tags of the running scenario, including inherited ones.
func (c *Context) Tags() []string { return c.tags }

// HasTag reports whether the running scenario carries tag (with its @).
func (c *Context) HasTag(tag string) bool {
	for _, t := range c.tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Logger returns a logger scoped to the running scenario.
func (c *Context) Logger() *slog.Logger { return c.logger }

// Set stores value under key, replacing any previous value.
func (c *Context) Set(key string, value any) {
	c.values[key] = value
}

// Get returns the value stored under key.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Delete removes key.
func (c *Context) Delete(key string) {
	delete(c.values, key)
}

// Keys returns the stored keys in sorted order.
func (c *Context) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Values returns a shallow copy of the stored values.
func (c *Context) Values() map[string]any {
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Int returns the value under key as an int.
func (c *Context) Int(key string) (int, error) {
	v, ok := c.values[key]
	if !ok {
		return 0, &MissingKeyError{Key: key, Want: "int"}
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case int32:
		return int(n), nil
	}
	return 0, &MissingKeyError{Key: key, Want: "int", Got: fmt.Sprintf("%T", v)}
}

// Float returns the value under key as a float64. Integer values are widened.
func (c *Context) Float(key string) (float64, error) {
	v, ok := c.values[key]
	if !ok {
		return 0, &MissingKeyError{Key: key, Want: "float64"}
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, &MissingKeyError{Key: key, Want: "float64", Got: fmt.Sprintf("%T", v)}
}

// String returns the value under key as a string.
func (c *Context) String(key string) (string, error) {
	v, ok := c.values[key]
	if !ok {
		return "", &MissingKeyError{Key: key, Want: "string"}
	}
	s, ok := v.(string)
	if !ok {
		return "", &MissingKeyError{Key: key, Want: "string", Got: fmt.Sprintf("%T", v)}
	}
	return s, nil
}

// Lookup fetches key from the context and asserts it to T.
//
//	calc, err := steps.Lookup[*calculator.Calculator](sc, "calculator")
func Lookup[T any](c *Context, key string) (T, error) {
	var zero T
	v, ok := c.values[key]
	if !ok {
		return zero, &MissingKeyError{Key: key, Want: fmt.Sprintf("%T", zero)}
	}
	t, ok := v.(T)
	if !ok {
		return zero, &MissingKeyError{Key: key, Want: fmt.Sprintf("%T", zero), Got: fmt.Sprintf("%T", v)}
	}
	return t, nil
}
