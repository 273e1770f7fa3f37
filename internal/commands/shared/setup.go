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
	"log/slog"
	"os"

	"github.com/tombee/gherkit/internal/config"
	"github.com/tombee/gherkit/internal/log"
)

// LoadConfig loads the project configuration named by --config, or
// gherkit.yaml in the working directory. Failures are usage errors.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(GetConfigPath())
	if err != nil {
		return nil, NewUsageError("", err)
	}
	return cfg, nil
}

// NewLogger builds the diagnostic logger on stderr. Precedence, lowest
// first: the config file, the environment, --log-level.
func NewLogger(cfg *config.Config) *slog.Logger {
	lc := log.FromEnv()
	if cfg != nil {
		if os.Getenv("LOG_FORMAT") == "" {
			lc.Format = log.Format(cfg.Log.Format)
		}
		if lc.Level == log.DefaultConfig().Level {
			lc.Level = cfg.Log.Level
		}
	}
	if lvl := GetLogLevel(); lvl != "" {
		lc.Level = lvl
	}
	return log.New(lc)
}
