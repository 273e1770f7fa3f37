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

// Package assert provides the checks used by step definitions: typed
// comparisons that return descriptive failures, and an expression
// evaluator for free-form assertions over scenario values.
package assert

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
)

// Failure describes a failed assertion.
type Failure struct {
	// Message is a short description of the check
	Message string

	// Expected is the expected value
	Expected interface{}

	// Actual is the observed value
	Actual interface{}
}

// Error implements the error interface.
func (f *Failure) Error() string {
	if f.Message == "" {
		return fmt.Sprintf("expected %s, got %s", formatValue(f.Expected), formatValue(f.Actual))
	}
	return fmt.Sprintf("%s: expected %s, got %s", f.Message, formatValue(f.Expected), formatValue(f.Actual))
}

// Equal fails unless expected and actual are equal. Numbers of different
// Go types compare by value, so Equal(8, 8.0) passes.
func Equal(expected, actual interface{}, msg ...string) error {
	if ef, ok := toFloat(expected); ok {
		if af, ok := toFloat(actual); ok {
			if ef == af {
				return nil
			}
			return &Failure{Message: join(msg), Expected: expected, Actual: actual}
		}
	}
	if reflect.DeepEqual(expected, actual) {
		return nil
	}
	return &Failure{Message: join(msg), Expected: expected, Actual: actual}
}

// InDelta fails unless actual is within delta of expected.
func InDelta(expected, actual, delta float64, msg ...string) error {
	if math.IsNaN(expected) || math.IsNaN(actual) {
		return &Failure{Message: join(msg), Expected: expected, Actual: actual}
	}
	if math.Abs(expected-actual) <= delta {
		return nil
	}
	m := join(msg)
	if m == "" {
		m = fmt.Sprintf("difference exceeds %g", delta)
	}
	return &Failure{Message: m, Expected: expected, Actual: actual}
}

// ErrorIs fails unless errors.Is(err, target).
func ErrorIs(err, target error) error {
	if errors.Is(err, target) {
		return nil
	}
	return &Failure{Message: "error mismatch", Expected: target, Actual: err}
}

// ErrorContains fails unless err is non-nil and its message contains want.
func ErrorContains(err error, want string) error {
	if err == nil {
		return &Failure{Message: "expected an error", Expected: want, Actual: nil}
	}
	if !strings.Contains(err.Error(), want) {
		return &Failure{Message: "error message mismatch", Expected: want, Actual: err.Error()}
	}
	return nil
}

func toFloat(v interface{}) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch {
	case !rv.IsValid():
		return 0, false
	case rv.CanInt():
		return float64(rv.Int()), true
	case rv.CanUint():
		return float64(rv.Uint()), true
	case rv.CanFloat():
		return rv.Float(), true
	}
	return 0, false
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return fmt.Sprintf("%q", val)
	case float64:
		return fmt.Sprintf("%g", val)
	case float32:
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func join(msg []string) string {
	return strings.Join(msg, " ")
}
