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
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/gherkit/internal/commands/shared"
	"github.com/tombee/gherkit/internal/config"
)

func project(t *testing.T, yamlText string, features map[string]string) string {
	t.Helper()
	shared.ResetFlags()
	t.Cleanup(shared.ResetFlags)

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	if yamlText != "" {
		require.NoError(t, os.WriteFile(config.FileName, []byte(yamlText), 0o644))
	}
	if features != nil {
		require.NoError(t, os.MkdirAll("features", 0o755))
		for name, content := range features {
			require.NoError(t, os.WriteFile(filepath.Join("features", name), []byte(content), 0o644))
		}
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "gherkit", SilenceErrors: true, SilenceUsage: true}
	flags := shared.RegisterFlagPointers()
	root.PersistentFlags().BoolVar(flags.JSON, "json", false, "")
	root.PersistentFlags().StringVar(flags.Config, "config", "", "")
	root.AddCommand(NewConfigCommand())

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"config"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConfigShowYAML(t *testing.T) {
	project(t, "run:\n  tags: '@smoke'\n", nil)

	out, err := execute(t, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# Configuration: gherkit.yaml")
	assert.Contains(t, out, "tags: '@smoke'")
	assert.Contains(t, out, "format: pretty")
}

func TestConfigShowJSONMasksHeaders(t *testing.T) {
	project(t, `tracing:
  exporter: otlp-http
  endpoint: localhost:4318
  headers:
    authorization: Bearer abcdefghijkl
`, nil)

	out, err := execute(t, "--json")
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, "otlp-http", cfg.Tracing.Exporter)
	assert.Equal(t, "Bear***********ijkl", cfg.Tracing.Headers["authorization"])
}

func TestConfigPath(t *testing.T) {
	project(t, "", nil)

	out, err := execute(t, "path")
	require.NoError(t, err)
	assert.Equal(t, "gherkit.yaml\n", out)

	out, err = execute(t, "path", "--config", "ci/gherkit.yaml")
	require.NoError(t, err)
	assert.Equal(t, "ci/gherkit.yaml\n", out)
}

func TestConfigValidate(t *testing.T) {
	project(t, "output:\n  format: progress\n", map[string]string{
		"a.feature": "Feature: A\n  Scenario: one\n    Given x\n",
	})

	out, err := execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid (1 feature file(s))")
}

func TestConfigValidateErrors(t *testing.T) {
	project(t, "run:\n  tags: '@a and'\n", map[string]string{
		"a.feature": "Feature: A\n  Scenario: one\n    Given x\n",
	})

	out, err := execute(t, "validate", "--json")
	require.Error(t, err)
	assert.Equal(t, shared.ExitUsage, shared.ExitCode(err))

	var result ValidationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "run.tags")
}

func TestConfigValidateStrict(t *testing.T) {
	project(t, "", map[string]string{})

	_, err := execute(t, "validate")
	require.NoError(t, err)

	_, err = execute(t, "validate", "--strict")
	require.Error(t, err)
}

func TestMaskValue(t *testing.T) {
	assert.Equal(t, "", maskValue(""))
	assert.Equal(t, "****", maskValue("short"))
	assert.Equal(t, "${TOKEN}", maskValue("${TOKEN}"))
	assert.Equal(t, "abcd**ghij", maskValue("abcdefghij"))
}
