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

package errors_test

import (
	"errors"
	"fmt"
	"testing"

	gherkiterrors "github.com/tombee/gherkit/pkg/errors"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *gherkiterrors.ValidationError
		wantMsg string
	}{
		{
			name: "with field",
			err: &gherkiterrors.ValidationError{
				Field:       "format",
				Message:     "unknown formatter \"xml\"",
				SuggestText: "Use one of: pretty, progress, junit, json",
			},
			wantMsg: "validation failed on format: unknown formatter \"xml\"",
		},
		{
			name:    "without field",
			err:     &gherkiterrors.ValidationError{Message: "invalid format"},
			wantMsg: "validation failed: invalid format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("ValidationError.Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestValidationError_UserVisible(t *testing.T) {
	var err gherkiterrors.UserVisibleError = &gherkiterrors.ValidationError{
		Message:     "bad flag",
		SuggestText: "drop it",
	}
	if !err.IsUserVisible() {
		t.Error("expected ValidationError to be user visible")
	}
	if err.Suggestion() != "drop it" {
		t.Errorf("Suggestion() = %q, want %q", err.Suggestion(), "drop it")
	}
}

func TestNotFoundError_Error(t *testing.T) {
	err := &gherkiterrors.NotFoundError{Resource: "run", ID: "abc123"}
	if got, want := err.Error(), "run not found: abc123"; got != want {
		t.Errorf("NotFoundError.Error() = %q, want %q", got, want)
	}
}

func TestConfigError_Unwrap(t *testing.T) {
	cause := errors.New("yaml: line 3: mapping values are not allowed")
	err := &gherkiterrors.ConfigError{Key: "config_file", Reason: "failed to parse", Cause: cause}

	if got, want := err.Error(), "config error at config_file: failed to parse"; got != want {
		t.Errorf("ConfigError.Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, cause) {
		t.Error("ConfigError should unwrap to its cause")
	}

	noKey := &gherkiterrors.ConfigError{Reason: "missing"}
	if got, want := noKey.Error(), "config error: missing"; got != want {
		t.Errorf("ConfigError.Error() = %q, want %q", got, want)
	}
}

func TestParseError(t *testing.T) {
	cause := errors.New("(4:3): expected: #EOF, #TableRow")
	err := &gherkiterrors.ParseError{File: "calc.feature", Line: 4, Message: "unexpected step", Cause: cause}

	if got, want := err.Error(), "calc.feature:4: unexpected step"; got != want {
		t.Errorf("ParseError.Error() = %q, want %q", got, want)
	}

	wrapped := fmt.Errorf("loading features: %w", err)
	var parseErr *gherkiterrors.ParseError
	if !gherkiterrors.As(wrapped, &parseErr) {
		t.Fatal("expected errors.As to find ParseError")
	}
	if parseErr.Line != 4 {
		t.Errorf("Line = %d, want 4", parseErr.Line)
	}
	if !errors.Is(wrapped, cause) {
		t.Error("ParseError should unwrap to its cause")
	}

	noLine := &gherkiterrors.ParseError{File: "x.feature", Message: "empty"}
	if got, want := noLine.Error(), "x.feature: empty"; got != want {
		t.Errorf("ParseError.Error() = %q, want %q", got, want)
	}
}
