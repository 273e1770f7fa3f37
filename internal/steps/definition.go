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
	"errors"
	"fmt"
	"reflect"
	"strconv"
)

var (
	contextType   = reflect.TypeOf((*Context)(nil))
	tableType     = reflect.TypeOf((*Table)(nil))
	docStringType = reflect.TypeOf(DocString{})
	errorType     = reflect.TypeOf((*error)(nil)).Elem()
)

// Definition binds a step pattern to a handler function.
type Definition struct {
	// Pattern is the pattern as registered.
	Pattern string

	// Source is file:line of the registration call.
	Source string

	expr    Expression
	handler reflect.Value
	params  []reflect.Type
	argType reflect.Type
}

// AcceptsTable reports whether the handler takes a trailing data table.
func (d *Definition) AcceptsTable() bool { return d.argType == tableType }

// AcceptsDocString reports whether the handler takes a trailing doc string.
func (d *Definition) AcceptsDocString() bool { return d.argType == docStringType }

// newDefinition validates handler against pattern.
//
// A handler has the shape func(*Context, p1, p2, ..., [*Table|DocString]) [error].
// Each p is a scalar (integer, float, string or bool kind) fed from one
// capture group of the pattern.
func newDefinition(pattern string, handler any, source string) (*Definition, error) {
	expr, err := CompilePattern(pattern)
	if err != nil {
		return nil, &DefinitionError{Pattern: pattern, Reason: err.Error()}
	}

	fn := reflect.ValueOf(handler)
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return nil, &DefinitionError{Pattern: pattern, Reason: fmt.Sprintf("handler must be a function, got %T", handler)}
	}
	t := fn.Type()
	if t.IsVariadic() {
		return nil, &DefinitionError{Pattern: pattern, Reason: "handler must not be variadic"}
	}
	if t.NumIn() == 0 || t.In(0) != contextType {
		return nil, &DefinitionError{Pattern: pattern, Reason: "first parameter must be *steps.Context"}
	}
	switch {
	case t.NumOut() == 0:
	case t.NumOut() == 1 && t.Out(0) == errorType:
	default:
		return nil, &DefinitionError{Pattern: pattern, Reason: "handler must return nothing or a single error"}
	}

	def := &Definition{
		Pattern: pattern,
		Source:  source,
		expr:    expr,
		handler: fn,
	}

	for i := 1; i < t.NumIn(); i++ {
		p := t.In(i)
		if i == t.NumIn()-1 && (p == tableType || p == docStringType) {
			def.argType = p
			break
		}
		if !isScalar(p) {
			return nil, &DefinitionError{Pattern: pattern, Reason: fmt.Sprintf("parameter %d has unsupported type %s", i, p)}
		}
		def.params = append(def.params, p)
	}

	if n := expr.Params(); n != len(def.params) {
		return nil, &DefinitionError{
			Pattern: pattern,
			Reason:  fmt.Sprintf("pattern captures %d values but handler takes %d", n, len(def.params)),
		}
	}

	return def, nil
}

func isScalar(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String, reflect.Bool:
		return true
	}
	return false
}

// Argument is the optional block attached to a step.
type Argument struct {
	Table     *Table
	DocString *DocString
}

// Match is a step text resolved to a definition.
type Match struct {
	Definition *Definition

	// Args are the raw captured strings, one per handler parameter.
	Args []string
}

// Invoke converts the captured arguments and calls the handler. A panic in
// the handler is recovered and returned as a *PanicError.
func (m *Match) Invoke(sc *Context, arg Argument) (err error) {
	d := m.Definition

	in := make([]reflect.Value, 0, len(d.params)+2)
	in = append(in, reflect.ValueOf(sc))
	for i, p := range d.params {
		v, err := convert(m.Args[i], p)
		if err != nil {
			return fmt.Errorf("argument %d: %w", i+1, err)
		}
		in = append(in, v)
	}

	switch d.argType {
	case tableType:
		if arg.Table == nil {
			return errors.New("step definition expects a data table")
		}
		in = append(in, reflect.ValueOf(arg.Table))
	case docStringType:
		if arg.DocString == nil {
			return errors.New("step definition expects a doc string")
		}
		in = append(in, reflect.ValueOf(*arg.DocString))
	default:
		if arg.Table != nil {
			return fmt.Errorf("step has a data table but %q does not accept one", d.Pattern)
		}
		if arg.DocString != nil {
			return fmt.Errorf("step has a doc string but %q does not accept one", d.Pattern)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()

	out := d.handler.Call(in)
	if len(out) == 1 && !out[0].IsNil() {
		return out[0].Interface().(error)
	}
	return nil
}

// convert parses s into a value of type t.
func convert(s string, t reflect.Type) (reflect.Value, error) {
	v := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, t.Bits())
		if err != nil {
			return v, fmt.Errorf("cannot convert %q to %s", s, t)
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, t.Bits())
		if err != nil {
			return v, fmt.Errorf("cannot convert %q to %s", s, t)
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, t.Bits())
		if err != nil {
			return v, fmt.Errorf("cannot convert %q to %s", s, t)
		}
		v.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return v, fmt.Errorf("cannot convert %q to %s", s, t)
		}
		v.SetBool(b)
	case reflect.String:
		v.SetString(s)
	default:
		return v, fmt.Errorf("unsupported parameter type %s", t)
	}
	return v, nil
}
