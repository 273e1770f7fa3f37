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

package shared

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tombee/gherkit/internal/runner"
	pkgerrors "github.com/tombee/gherkit/pkg/errors"
)

// Exit codes for gherkit commands
const (
	ExitSuccess     = 0
	ExitFailed      = 1   // a scenario failed, was undefined or pending
	ExitUsage       = 2   // bad flags, config, feature syntax or paths
	ExitInterrupted = 130 // SIGINT
)

// ExitError is an error that carries an exit code
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		if e.Message == "" {
			return e.Cause.Error()
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewFailedError creates an error for runs with non-passing scenarios
func NewFailedError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitFailed, Message: msg, Cause: cause}
}

// NewUsageError creates an error for invalid input: flags, configuration,
// feature files or paths
func NewUsageError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitUsage, Message: msg, Cause: cause}
}

// NewInterruptedError reports a run cancelled by a signal.
func NewInterruptedError() *ExitError {
	return &ExitError{Code: ExitInterrupted, Message: "interrupted"}
}

// ExitCode maps err to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}
	if errors.Is(err, runner.ErrScenariosFailed) {
		return ExitFailed
	}

	var (
		validationErr *pkgerrors.ValidationError
		configErr     *pkgerrors.ConfigError
		parseErr      *pkgerrors.ParseError
		notFoundErr   *pkgerrors.NotFoundError
	)
	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &configErr),
		errors.As(err, &parseErr),
		errors.As(err, &notFoundErr):
		return ExitUsage
	}
	return ExitFailed
}

// PrintError writes err and any suggestion it carries to w. Runs that
// failed only because scenarios failed print nothing: the reporter has
// already said everything.
func PrintError(w io.Writer, err error) {
	if err == nil {
		return
	}
	var exitErr *ExitError
	isExit := errors.As(err, &exitErr)
	if errors.Is(err, runner.ErrScenariosFailed) && !isExit {
		return
	}
	if isExit && exitErr.Message == "" && exitErr.Cause == nil {
		return
	}

	fmt.Fprintln(w, RenderError("Error: "+err.Error()))
	printUserVisibleSuggestion(w, err)
}

// HandleExitError prints err and exits with its code.
func HandleExitError(err error) {
	if err == nil {
		return
	}
	PrintError(os.Stderr, err)
	os.Exit(ExitCode(err))
}

// printUserVisibleSuggestion walks the chain for a UserVisibleError and
// prints its suggestion.
func printUserVisibleSuggestion(w io.Writer, err error) {
	var userErr pkgerrors.UserVisibleError
	if !errors.As(err, &userErr) || !userErr.IsUserVisible() {
		return
	}
	if suggestion := userErr.Suggestion(); suggestion != "" {
		fmt.Fprintf(w, "\nSuggestion: %s\n", suggestion)
	}
}
