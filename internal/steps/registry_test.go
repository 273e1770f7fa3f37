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
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompilePattern(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		text    string
		want    []string
		noMatch bool
		wantErr bool
	}{
		{name: "literal", pattern: "I have a calculator", text: "I have a calculator", want: []string{}},
		{name: "literal with regex metachars", pattern: "the total is approx. right?", text: "the total is approx. right?", want: []string{}},
		{name: "ints", pattern: "I add {int} and {int}", text: "I add 5 and -3", want: []string{"5", "-3"}},
		{name: "float accepts integers", pattern: "the result should be {float}", text: "the result should be 8", want: []string{"8"}},
		{name: "float decimal", pattern: "I convert {float} degrees", text: "I convert -273.15 degrees", want: []string{"-273.15"}},
		{name: "float keeps precision", pattern: "the result should be {float}", text: "the result should be 3.14159265358979", want: []string{"3.14159265358979"}},
		{name: "word", pattern: "to {word}", text: "to Fahrenheit", want: []string{"Fahrenheit"}},
		{name: "string strips quotes", pattern: "fail with {string}", text: `fail with "division by zero"`, want: []string{"division by zero"}},
		{name: "any", pattern: "note: {any}", text: "note: anything at all", want: []string{"anything at all"}},
		{name: "optional text", pattern: "I have {int} cucumber(s)", text: "I have 1 cucumber", want: []string{"1"}},
		{name: "optional text present", pattern: "I have {int} cucumber(s)", text: "I have 2 cucumbers", want: []string{"2"}},
		{name: "alternation", pattern: "I add/sum {int} and {int}", text: "I sum 1 and 2", want: []string{"1", "2"}},
		{name: "anchored", pattern: "I add {int} and {int}", text: "I add 5 and 3 twice", noMatch: true},
		{name: "int rejects decimals", pattern: "I add {int}", text: "I add 5.5", noMatch: true},
		{name: "raw regexp", pattern: `^I have (\d+) cukes$`, text: "I have 12 cukes", want: []string{"12"}},
		{name: "raw regexp missing end anchor", pattern: `^I add`, text: "I add 1 and 2 extra", noMatch: true},
		{name: "raw regexp missing start anchor", pattern: `I add (\d+)$`, text: "then I add 3", noMatch: true},
		{name: "raw regexp alternation stays anchored", pattern: `^I add|I sum$`, text: "I add more", noMatch: true},
		{name: "unknown placeholder", pattern: "I have {number}", wantErr: true},
		{name: "empty", pattern: "  ", wantErr: true},
		{name: "bad regexp", pattern: `^I have (\d+$`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := CompilePattern(tt.pattern)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			args, ok := expr.Match(tt.text)
			if tt.noMatch {
				assert.False(t, ok)
				return
			}
			require.True(t, ok, "pattern %q should match %q", tt.pattern, tt.text)
			assert.Equal(t, tt.want, args)
			assert.Equal(t, len(tt.want), expr.Params())
		})
	}
}

func TestRegistry_MatchAndInvoke(t *testing.T) {
	reg := NewRegistry()
	reg.When("I add {int} and {int}", func(sc *Context, a, b int) error {
		sc.Set("result", a+b)
		return nil
	})
	reg.Then("the result should be {float}", func(sc *Context, want float64) error {
		got, err := sc.Float("result")
		if err != nil {
			return err
		}
		if got != want {
			return errors.New("mismatch")
		}
		return nil
	})

	sc := NewContext(context.Background(), "adding", nil)

	m, err := reg.Match("I add 5 and 3")
	require.NoError(t, err)
	assert.Equal(t, []string{"5", "3"}, m.Args)
	require.NoError(t, m.Invoke(sc, Argument{}))

	result, err := sc.Int("result")
	require.NoError(t, err)
	assert.Equal(t, 8, result)

	m, err = reg.Match("the result should be 8")
	require.NoError(t, err)
	assert.NoError(t, m.Invoke(sc, Argument{}))

	m, err = reg.Match("the result should be 9")
	require.NoError(t, err)
	assert.Error(t, m.Invoke(sc, Argument{}))
}

func TestRegistry_Undefined(t *testing.T) {
	reg := NewRegistry()
	reg.Given("I have a calculator", func(*Context) {})

	_, err := reg.Match("I have an abacus")
	var undefined *UndefinedStepError
	require.ErrorAs(t, err, &undefined)
	assert.Equal(t, "I have an abacus", undefined.Text)
}

func TestRegistry_Ambiguous(t *testing.T) {
	reg := NewRegistry()
	reg.Then("the result should be {int}", func(*Context, int) {})
	reg.Then("the result should be {float}", func(*Context, float64) {})

	_, err := reg.Match("the result should be 8")
	var ambiguous *AmbiguousStepError
	require.ErrorAs(t, err, &ambiguous)
	assert.Len(t, ambiguous.Patterns, 2)

	m, err := reg.Match("the result should be 8.5")
	require.NoError(t, err, "only the float pattern matches a decimal")
	assert.Equal(t, "the result should be {float}", m.Definition.Pattern)
}

func TestRegistry_InvalidDefinitions(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		handler any
		reason  string
	}{
		{name: "not a function", pattern: "x", handler: 42, reason: "must be a function"},
		{name: "missing context", pattern: "x {int}", handler: func(int) {}, reason: "first parameter"},
		{name: "wrong return", pattern: "x", handler: func(*Context) int { return 0 }, reason: "return nothing or a single error"},
		{name: "arity mismatch", pattern: "x {int} {int}", handler: func(*Context, int) {}, reason: "captures 2 values but handler takes 1"},
		{name: "unsupported param", pattern: "x {int}", handler: func(*Context, []int) {}, reason: "unsupported type"},
		{name: "variadic", pattern: "x", handler: func(*Context, ...int) {}, reason: "variadic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRegistry().Step(tt.pattern, tt.handler)
			var defErr *DefinitionError
			require.ErrorAs(t, err, &defErr)
			assert.Contains(t, defErr.Reason, tt.reason)
		})
	}
}

func TestRegistry_DuplicatePattern(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Step("I have a calculator", func(*Context) {}))

	err := reg.Step("I have a calculator", func(*Context) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered at registry_test.go:")
}

func TestRegistry_MustStepPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewRegistry().MustStep("x {bogus}", func(*Context) {})
	})
}

func TestDefinition_Source(t *testing.T) {
	reg := NewRegistry()
	reg.Given("I have a calculator", func(*Context) {})

	defs := reg.Definitions()
	require.Len(t, defs, 1)
	assert.True(t, strings.HasPrefix(defs[0].Source, "registry_test.go:"), "source = %s", defs[0].Source)
}

func TestInvoke_ArgumentConversion(t *testing.T) {
	type Scale string

	var (
		gotInt   int64
		gotUint  uint8
		gotFloat float32
		gotBool  bool
		gotScale Scale
	)
	reg := NewRegistry()
	reg.When("values {int} {int} {float} {word} {word}", func(sc *Context, i int64, u uint8, f float32, b bool, s Scale) {
		gotInt, gotUint, gotFloat, gotBool, gotScale = i, u, f, b, s
	})

	m, err := reg.Match("values -7 200 1.5 true Kelvin")
	require.NoError(t, err)
	require.NoError(t, m.Invoke(NewContext(context.Background(), "", nil), Argument{}))

	assert.Equal(t, int64(-7), gotInt)
	assert.Equal(t, uint8(200), gotUint)
	assert.Equal(t, float32(1.5), gotFloat)
	assert.True(t, gotBool)
	assert.Equal(t, Scale("Kelvin"), gotScale)

	m, err = reg.Match("values 1 999 1.5 true K")
	require.NoError(t, err)
	err = m.Invoke(NewContext(context.Background(), "", nil), Argument{})
	require.Error(t, err, "999 overflows uint8")
	assert.Contains(t, err.Error(), "argument 2")
}

func TestInvoke_StepArguments(t *testing.T) {
	reg := NewRegistry()
	var sum int
	reg.When("I add the following numbers:", func(sc *Context, table *Table) error {
		values, err := table.Column("number")
		if err != nil {
			return err
		}
		sum = len(values)
		return nil
	})
	var doc string
	reg.Given("the description:", func(sc *Context, ds DocString) {
		doc = ds.Content
	})
	reg.Given("plain", func(sc *Context) {})

	sc := NewContext(context.Background(), "", nil)
	table := NewTable([][]string{{"number"}, {"1"}, {"2"}})

	m, err := reg.Match("I add the following numbers:")
	require.NoError(t, err)
	assert.True(t, m.Definition.AcceptsTable())
	require.NoError(t, m.Invoke(sc, Argument{Table: table}))
	assert.Equal(t, 2, sum)
	assert.Error(t, m.Invoke(sc, Argument{}), "missing table")

	m, err = reg.Match("the description:")
	require.NoError(t, err)
	assert.True(t, m.Definition.AcceptsDocString())
	require.NoError(t, m.Invoke(sc, Argument{DocString: &DocString{Content: "hello"}}))
	assert.Equal(t, "hello", doc)

	m, err = reg.Match("plain")
	require.NoError(t, err)
	assert.Error(t, m.Invoke(sc, Argument{Table: table}), "unexpected table")
}

func TestInvoke_RecoversPanic(t *testing.T) {
	reg := NewRegistry()
	reg.When("it explodes", func(*Context) { panic("kaboom") })

	m, err := reg.Match("it explodes")
	require.NoError(t, err)

	err = m.Invoke(NewContext(context.Background(), "", nil), Argument{})
	var panicErr *PanicError
	require.ErrorAs(t, err, &panicErr)
	assert.Equal(t, "kaboom", panicErr.Value)
}

func TestHooks(t *testing.T) {
	reg := NewRegistry()
	var order []string

	reg.BeforeScenario(func(sc *Context) error {
		order = append(order, "before:"+sc.Scenario())
		return nil
	})
	reg.AfterScenario(func(sc *Context, err error) error {
		order = append(order, "after-1")
		return nil
	})
	reg.AfterScenario(func(sc *Context, err error) error {
		order = append(order, "after-2")
		return errors.New("cleanup failed")
	})
	reg.BeforeStep(func(sc *Context, text string) error {
		order = append(order, "step:"+text)
		return nil
	})
	reg.AfterStep(func(sc *Context, text string, err error) error {
		order = append(order, "stepped:"+text)
		return nil
	})

	sc := NewContext(context.Background(), "s1", nil)
	require.NoError(t, reg.RunBeforeScenario(sc))
	require.NoError(t, reg.RunBeforeStep(sc, "a"))
	require.NoError(t, reg.RunAfterStep(sc, "a", nil))

	err := reg.RunAfterScenario(sc, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cleanup failed")

	assert.Equal(t, []string{"before:s1", "step:a", "stepped:a", "after-2", "after-1"}, order)
}
