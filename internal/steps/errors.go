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
	"strings"
)

// ErrPending can be returned by a handler whose implementation is not
// written yet. The step is reported as pending rather than failed.
var ErrPending = errors.New("step implementation is pending")

// UndefinedStepError is returned by Match when no definition matches.
type UndefinedStepError struct {
	Text string
}

func (e *UndefinedStepError) Error() string {
	return fmt.Sprintf("undefined step: %q", e.Text)
}

// AmbiguousStepError is returned by Match when several definitions match.
type AmbiguousStepError struct {
	Text     string
	Patterns []string
}

func (e *AmbiguousStepError) Error() string {
	return fmt.Sprintf("ambiguous step %q matches %d definitions: %s",
		e.Text, len(e.Patterns), strings.Join(e.Patterns, ", "))
}

// MissingKeyError is returned by the typed Context getters.
type MissingKeyError struct {
	Key  string
	Want string
	Got  string
}

func (e *MissingKeyError) Error() string {
	if e.Got == "" {
		return fmt.Sprintf("context has no value for %q", e.Key)
	}
	return fmt.Sprintf("context value %q is %s, not %s", e.Key, e.Got, e.Want)
}

// DefinitionError is returned when a handler cannot be registered.
type DefinitionError struct {
	Pattern string
	Reason  string
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("invalid step definition %q: %s", e.Pattern, e.Reason)
}

// PanicError wraps a value recovered from a panicking handler.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("step panicked: %v", e.Value)
}
