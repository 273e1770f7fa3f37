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

/*
Package cli provides the root command and shared configuration for gherkit's CLI.

This package creates the root Cobra command and handles global concerns like
version information, persistent flags, and error handling. Individual commands
are implemented in the internal/commands subpackages and wired in main.

# Command Tree

	gherkit
	├── run           Run feature files
	├── steps         List step definitions
	├── init          Create gherkit.yaml and a features directory
	├── config        Show or validate the effective configuration
	├── history       List, show and prune recorded runs
	├── completion    Generate shell completion scripts
	├── version       Show version
	└── help          Show help

# Global Flags

	--verbose, -v    Show step details for passing scenarios
	--quiet, -q      Suppress non-error output
	--json           Output in JSON format
	--config         Path to config file
	--log-level      Diagnostic log level
	--no-color       Disable colored output

# Exit Codes

  - 0: every scenario passed
  - 1: a scenario failed, or had undefined or pending steps
  - 2: invalid usage, configuration, paths or feature syntax
  - 130: interrupted
*/
package cli
