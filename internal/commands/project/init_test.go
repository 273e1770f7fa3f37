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

package project

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/gherkit/internal/cli/prompt"
	"github.com/tombee/gherkit/internal/commands/shared"
	"github.com/tombee/gherkit/internal/config"
)

func runInitCmd(t *testing.T, p prompt.Prompter, args ...string) (string, error) {
	t.Helper()
	cmd := newInitCommand(p)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func chdir(t *testing.T) string {
	t.Helper()
	shared.ResetFlags()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestInitDefaults(t *testing.T) {
	dir := chdir(t)

	out, err := runInitCmd(t, prompt.NewMockPrompter(false))
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote gherkit.yaml")

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, []string{"features"}, cfg.Features.Paths)
	assert.Equal(t, "pretty", cfg.Output.Format)
	assert.True(t, cfg.History.Enabled)

	data, err := os.ReadFile(filepath.Join(dir, "features", "calculator.feature"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Feature: Calculator")
	assert.FileExists(t, filepath.Join(dir, "features", "temperature.feature"))
}

func TestInitInteractive(t *testing.T) {
	dir := chdir(t)

	p := prompt.NewMockPrompter(true, "specs", "junit", false, "otlp-grpc", "collector:4317")
	_, err := runInitCmd(t, p)
	require.NoError(t, err)

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, []string{"specs"}, cfg.Features.Paths)
	assert.Equal(t, "junit", cfg.Output.Format)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, "otlp-grpc", cfg.Tracing.Exporter)
	assert.Equal(t, "collector:4317", cfg.Tracing.Endpoint)
	assert.Len(t, p.CallLog(), 5)

	_, err = os.Stat(filepath.Join(dir, "specs", "calculator.feature"))
	assert.NoError(t, err)
}

func TestInitKeepsExistingFeatures(t *testing.T) {
	dir := chdir(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "features"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "features", "mine.feature"), []byte("Feature: Mine\n"), 0o644))

	out, err := runInitCmd(t, prompt.NewMockPrompter(false))
	require.NoError(t, err)
	assert.NotContains(t, out, "calculator.feature")

	_, err = os.Stat(filepath.Join(dir, "features", "calculator.feature"))
	assert.True(t, os.IsNotExist(err))
}

func TestInitRefusesOverwrite(t *testing.T) {
	dir := chdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte("run:\n  tags: '@keep'\n"), 0o644))

	_, err := runInitCmd(t, prompt.NewMockPrompter(false))
	require.Error(t, err)
	assert.Equal(t, shared.ExitUsage, shared.ExitCode(err))

	_, err = runInitCmd(t, prompt.NewMockPrompter(false), "--force")
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "@keep")
}

func TestInitRejectsEscapingPath(t *testing.T) {
	chdir(t)

	_, err := runInitCmd(t, prompt.NewMockPrompter(true, "../outside"))
	assert.Error(t, err)
}
