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
	"math"
	"reflect"
	"regexp"
	"strings"
)

type function = func(args ...interface{}) (interface{}, error)

// expr reserves contains, in, matches and count as operators and already
// provides abs, round and len as builtins, so the helpers use other names.
var functions = map[string]function{
	"has":     hasFn,
	"match":   matchFn,
	"approx":  approxFn,
	"roundTo": roundToFn,
	"isError": isErrorFn,
}

// Functions returns the helper functions available to assertion expressions.
func Functions() map[string]interface{} {
	out := make(map[string]interface{}, len(functions))
	for name, fn := range functions {
		out[name] = fn
	}
	return out
}

// hasFn reports whether a string contains a substring, a collection
// contains an element, or a map has a key. Errors are matched by message.
//
//	has(error, "division by zero")
func hasFn(args ...interface{}) (interface{}, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("has requires exactly 2 arguments, got %d", len(args))
	}

	haystack, needle := args[0], args[1]
	if haystack == nil {
		return false, nil
	}
	if err, ok := haystack.(error); ok {
		haystack = err.Error()
	}

	v := reflect.ValueOf(haystack)
	switch v.Kind() {
	case reflect.String:
		substr, ok := needle.(string)
		if !ok {
			return false, nil
		}
		return strings.Contains(v.String(), substr), nil

	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if reflect.DeepEqual(v.Index(i).Interface(), needle) {
				return true, nil
			}
		}
		return false, nil

	case reflect.Map:
		key := reflect.ValueOf(needle)
		if !key.IsValid() || !key.Type().AssignableTo(v.Type().Key()) {
			return false, nil
		}
		return v.MapIndex(key).IsValid(), nil

	default:
		return false, fmt.Errorf("has: unsupported type %T", haystack)
	}
}

// matchFn reports whether a string matches a regular expression.
//
//	match(name, "^[A-Z]")
func matchFn(args ...interface{}) (interface{}, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("match requires exactly 2 arguments, got %d", len(args))
	}

	str, ok := args[0].(string)
	if !ok {
		return false, fmt.Errorf("match: first argument must be a string, got %T", args[0])
	}
	pattern, ok := args[1].(string)
	if !ok {
		return false, fmt.Errorf("match: second argument must be a string pattern, got %T", args[1])
	}

	matched, err := regexp.MatchString(pattern, str)
	if err != nil {
		return false, fmt.Errorf("match: invalid regex pattern: %w", err)
	}
	return matched, nil
}

// approxFn reports whether two numbers differ by at most a tolerance.
//
//	approx(result, 98.6, 0.001)
func approxFn(args ...interface{}) (interface{}, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("approx requires exactly 3 arguments, got %d", len(args))
	}
	nums := make([]float64, 3)
	for i, a := range args {
		f, ok := toFloat(a)
		if !ok {
			return nil, fmt.Errorf("approx: argument %d must be a number, got %T", i+1, a)
		}
		nums[i] = f
	}
	return math.Abs(nums[0]-nums[1]) <= nums[2], nil
}

// roundToFn rounds a number to the given number of decimal places.
//
//	roundTo(result, 2) == 37.78
func roundToFn(args ...interface{}) (interface{}, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("roundTo requires exactly 2 arguments, got %d", len(args))
	}
	f, ok := toFloat(args[0])
	if !ok {
		return nil, fmt.Errorf("roundTo: expected number, got %T", args[0])
	}
	places, ok := toFloat(args[1])
	if !ok {
		return nil, fmt.Errorf("roundTo: places must be a number, got %T", args[1])
	}
	scale := math.Pow(10, places)
	return math.Round(f*scale) / scale, nil
}

// isErrorFn reports whether a value is a non-nil error.
func isErrorFn(args ...interface{}) (interface{}, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("isError requires exactly 1 argument, got %d", len(args))
	}
	_, ok := args[0].(error)
	return ok, nil
}
