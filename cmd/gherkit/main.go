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

package main

import (
	"github.com/tombee/gherkit/internal/calcsteps"
	"github.com/tombee/gherkit/internal/cli"
	"github.com/tombee/gherkit/internal/commands/completion"
	"github.com/tombee/gherkit/internal/commands/config"
	"github.com/tombee/gherkit/internal/commands/management"
	"github.com/tombee/gherkit/internal/commands/project"
	"github.com/tombee/gherkit/internal/commands/run"
	"github.com/tombee/gherkit/internal/commands/stepdefs"
	versioncmd "github.com/tombee/gherkit/internal/commands/version"
	"github.com/tombee/gherkit/internal/steps"
)

// Version information (injected via ldflags at build time)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildDate)

	registry := steps.NewRegistry()
	calcsteps.Register(registry)

	rootCmd := cli.NewRootCommand()

	// Execution
	rootCmd.AddCommand(run.NewCommand(registry))
	rootCmd.AddCommand(stepdefs.NewCommand(registry))

	// Configuration
	rootCmd.AddCommand(project.NewInitCommand())
	rootCmd.AddCommand(config.NewConfigCommand())

	// Management
	rootCmd.AddCommand(management.NewHistoryCommand())

	rootCmd.AddCommand(completion.NewCommand())
	rootCmd.AddCommand(versioncmd.NewCommand())

	// Custom help command with JSON support
	rootCmd.SetHelpCommand(cli.NewHelpCommand(rootCmd))

	if err := rootCmd.Execute(); err != nil {
		cli.HandleExitError(err)
	}
}
