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

package assert

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Evaluator evaluates boolean assertion expressions against scenario values.
// Compiled programs are cached by expression text.
type Evaluator struct {
	cache map[string]*vm.Program
	mu    sync.RWMutex
}

// NewEvaluator creates a new assertion evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		cache: make(map[string]*vm.Program),
	}
}

// Result represents the result of an assertion evaluation.
type Result struct {
	// Passed indicates whether the assertion passed
	Passed bool

	// Expression is the assertion expression that was evaluated
	Expression string

	// Values are the variables the expression was evaluated against
	Values map[string]interface{}

	// Error is set if evaluation failed (syntax error, runtime error, etc.)
	Error error
}

// Err converts the result into an error: the evaluation error, a *Failure
// when the expression was false, or nil when it held.
func (r Result) Err() error {
	if r.Error != nil {
		return r.Error
	}
	if !r.Passed {
		return &Failure{Message: "expression does not hold", Expected: r.Expression, Actual: r.Values}
	}
	return nil
}

// Evaluate evaluates an assertion expression against vars.
//
// Example expressions:
//   - result == 8
//   - approx(result, 98.6, 0.01)
//   - has(error, "division by zero")
//   - result > 0 && result < 100
func (e *Evaluator) Evaluate(expression string, vars map[string]interface{}) Result {
	if expression == "" {
		return Result{Passed: true, Expression: expression, Values: vars}
	}

	program, err := e.compile(expression)
	if err != nil {
		return Result{
			Expression: expression,
			Values:     vars,
			Error:      fmt.Errorf("failed to compile expression: %w", err),
		}
	}

	env := make(map[string]interface{}, len(vars)+len(functions))
	for k, v := range vars {
		env[k] = v
	}
	for name, fn := range Functions() {
		env[name] = fn
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return Result{
			Expression: expression,
			Values:     vars,
			Error:      fmt.Errorf("expression evaluation failed: %w", err),
		}
	}

	passed, ok := out.(bool)
	if !ok {
		return Result{
			Expression: expression,
			Values:     vars,
			Error:      fmt.Errorf("expression must return boolean, got %T (%v)", out, out),
		}
	}

	return Result{Passed: passed, Expression: expression, Values: vars}
}

func (e *Evaluator) compile(expression string) (*vm.Program, error) {
	e.mu.RLock()
	if prog, ok := e.cache[expression]; ok {
		e.mu.RUnlock()
		return prog, nil
	}
	e.mu.RUnlock()

	env := make(map[string]interface{}, len(functions))
	for name, fn := range Functions() {
		env[name] = fn
	}

	prog, err := expr.Compile(expression,
		expr.Env(env),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.cache[expression] = prog
	e.mu.Unlock()

	return prog, nil
}

// CacheSize returns the number of cached expressions.
func (e *Evaluator) CacheSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}
