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

package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tombee/gherkit/internal/commands/shared"
	"github.com/tombee/gherkit/internal/config"
	"github.com/tombee/gherkit/internal/tags"
	gerrors "github.com/tombee/gherkit/pkg/errors"
)

// ValidationResult represents the result of config validation.
type ValidationResult struct {
	shared.JSONResponse
	Valid    bool     `json:"valid"`
	Features int      `json:"features"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// NewValidateCommand creates the 'config validate' subcommand.
func NewValidateCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and feature files",
		Long: `Validate the configuration file and the feature files it points at.

Checks performed:
  - YAML syntax and known keys
  - Setting values (formats, exporters, log levels)
  - The default tag expression parses
  - Feature paths exist and every feature file parses

With --strict, warnings are treated as errors.`,
		Example: `  # Validate configuration
  gherkit config validate

  # Validate with warnings as errors
  gherkit config validate --strict

  # Get validation result as JSON
  gherkit config validate --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")

	return cmd
}

func runValidate(cmd *cobra.Command, strict bool) error {
	result := validate()
	if strict && len(result.Warnings) > 0 {
		result.Valid = false
	}
	result.Success = result.Valid

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		if err := shared.EmitJSON(out, result); err != nil {
			return err
		}
	} else {
		for _, e := range result.Errors {
			fmt.Fprintln(out, shared.RenderError(e))
		}
		for _, w := range result.Warnings {
			fmt.Fprintln(out, shared.RenderWarn(w))
		}
		if result.Valid {
			fmt.Fprintln(out, shared.RenderOK(fmt.Sprintf("Configuration is valid (%d feature file(s))", result.Features)))
		}
	}

	if !result.Valid {
		return &shared.ExitError{Code: shared.ExitUsage}
	}
	return nil
}

func validate() ValidationResult {
	result := ValidationResult{
		JSONResponse: shared.JSONResponse{Version: "1.0", Command: "config validate"},
		Valid:        true,
	}
	fail := func(format string, args ...any) {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf(format, args...))
	}

	path := configPath()
	if _, err := os.Stat(path); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s not found, using defaults", path))
	}

	cfg, err := config.Load(shared.GetConfigPath())
	if err != nil {
		fail("%v", err)
		return result
	}

	if cfg.Run.Tags != "" {
		if _, err := tags.Parse(cfg.Run.Tags); err != nil {
			fail("run.tags: %v", err)
		}
	}
	for _, p := range cfg.Features.Paths {
		if _, err := os.Stat(p); err != nil {
			fail("features.paths: %s does not exist", p)
		}
	}
	if !result.Valid {
		return result
	}

	features, err := shared.LoadFeatures(cfg, nil)
	var notFound *gerrors.NotFoundError
	switch {
	case errors.As(err, &notFound):
		result.Warnings = append(result.Warnings, "no feature files found")
		return result
	case err != nil:
		fail("%v", err)
		return result
	}
	result.Features = len(features)
	for _, f := range features {
		if len(f.Scenarios) == 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s has no scenarios", f.Path))
		}
	}
	return result
}
