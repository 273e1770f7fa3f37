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

// Package project implements the init command, which scaffolds a
// gherkit.yaml and a features directory.
package project

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tombee/gherkit/internal/cli/prompt"
	"github.com/tombee/gherkit/internal/commands/shared"
	"github.com/tombee/gherkit/internal/config"
	"github.com/tombee/gherkit/internal/examples"
	"github.com/tombee/gherkit/internal/format"
	"github.com/tombee/gherkit/internal/tracing"
)

type initOptions struct {
	yes   bool
	force bool
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	return newInitCommand(nil)
}

// newInitCommand uses p for questions; nil selects a terminal prompter.
func newInitCommand(p prompt.Prompter) *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create gherkit.yaml and a features directory",
		Annotations: map[string]string{
			"group": "config",
		},
		Long: `Initialize a gherkit project in the current directory.

Asks where feature files live, which report format to use and whether
to record run history, then writes gherkit.yaml. The example features are copied
when the features directory has none.

In CI or with --yes the defaults are used without asking.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompter := p
			if prompter == nil {
				prompter = prompt.NewSurveyPrompter(!opts.yes && !shared.IsNonInteractive())
			}
			return runInit(cmd, prompter, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Accept the defaults without prompting")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Overwrite an existing gherkit.yaml")

	return cmd
}

func runInit(cmd *cobra.Command, p prompt.Prompter, opts initOptions) error {
	path := config.FileName
	if cp := shared.GetConfigPath(); cp != "" {
		path = cp
	}
	if _, err := os.Stat(path); err == nil && !opts.force {
		return shared.NewUsageError(fmt.Sprintf("%s already exists (use --force to overwrite)", path), nil)
	}

	ctx := cmd.Context()
	cfg := config.Default()

	featuresDir, err := askString(ctx, p, "Where do feature files live?", cfg.Features.Paths[0], prompt.ValidateRelativePath)
	if err != nil {
		return err
	}
	cfg.Features.Paths = []string{filepath.Clean(featuresDir)}

	if cfg.Output.Format, err = askEnum(ctx, p, "Report format", format.Names(), cfg.Output.Format); err != nil {
		return err
	}
	if cfg.History.Enabled, err = askBool(ctx, p, "Record run history?", cfg.History.Enabled); err != nil {
		return err
	}
	exporters := []string{tracing.ExporterNone, tracing.ExporterStdout, tracing.ExporterOTLPHTTP, tracing.ExporterOTLPGRPC}
	if cfg.Tracing.Exporter, err = askEnum(ctx, p, "Export OpenTelemetry spans", exporters, cfg.Tracing.Exporter); err != nil {
		return err
	}
	if cfg.Tracing.Exporter == tracing.ExporterOTLPHTTP || cfg.Tracing.Exporter == tracing.ExporterOTLPGRPC {
		def := "localhost:4318"
		if cfg.Tracing.Exporter == tracing.ExporterOTLPGRPC {
			def = "localhost:4317"
		}
		if cfg.Tracing.Endpoint, err = askString(ctx, p, "Collector endpoint", def, prompt.ValidateString); err != nil {
			return err
		}
		cfg.Tracing.Insecure = true
	}

	if err := config.Write(path, cfg); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, shared.RenderOK("Wrote "+path))

	created, err := scaffoldFeatures(cfg.Features.Paths[0])
	if err != nil {
		return err
	}
	for _, path := range created {
		fmt.Fprintln(out, shared.RenderOK("Created "+path))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  gherkit steps     # list the available step definitions")
	fmt.Fprintln(out, "  gherkit run       # run your features")
	return nil
}

// scaffoldFeatures creates dir and copies the embedded example features
// into it when it holds no feature files. It returns the created paths.
func scaffoldFeatures(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}
	existing, err := filepath.Glob(filepath.Join(dir, "*.feature"))
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, nil
	}

	samples, err := examples.List()
	if err != nil {
		return nil, err
	}
	var created []string
	for _, ex := range samples {
		dest := filepath.Join(dir, ex.FilePath)
		if err := examples.CopyTo(ex.Name, dest); err != nil {
			return created, err
		}
		created = append(created, dest)
	}
	return created, nil
}

// The ask helpers fall back to the default when prompting is impossible.

func askString(ctx context.Context, p prompt.Prompter, msg, def string, validate func(string) error) (string, error) {
	if !p.IsInteractive() {
		return def, nil
	}
	v, err := p.PromptString(ctx, msg, def, validate)
	if errors.Is(err, prompt.ErrNonInteractive) {
		return def, nil
	}
	return v, err
}

func askBool(ctx context.Context, p prompt.Prompter, msg string, def bool) (bool, error) {
	if !p.IsInteractive() {
		return def, nil
	}
	v, err := p.PromptBool(ctx, msg, def)
	if errors.Is(err, prompt.ErrNonInteractive) {
		return def, nil
	}
	return v, err
}

func askEnum(ctx context.Context, p prompt.Prompter, msg string, options []string, def string) (string, error) {
	if !p.IsInteractive() {
		return def, nil
	}
	v, err := p.PromptEnum(ctx, msg, options, def)
	if errors.Is(err, prompt.ErrNonInteractive) {
		return def, nil
	}
	return v, err
}
